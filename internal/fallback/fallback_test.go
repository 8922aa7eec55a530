package fallback

import (
	"testing"

	"github.com/ixink/uiu-student-bot/internal/match"
	"github.com/ixink/uiu-student-bot/internal/record"
)

func TestNewParsesEmbeddedData(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, kind := range record.AllKinds() {
		if !r.Has(kind) {
			t.Errorf("no curated set for %s", kind)
		}
	}
}

func TestResolveMatchingTerms(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	got := r.Resolve(record.KindResources, []string{"python"}, match.Opts{})
	if len(got) == 0 {
		t.Fatal("expected curated resources for python")
	}
	if got[0].Title() != "Learn Python" {
		t.Errorf("best match: got %q, want %q", got[0].Title(), "Learn Python")
	}
	if got[0].Get("platform") != "freeCodeCamp" {
		t.Errorf("platform: got %q", got[0].Get("platform"))
	}
}

func TestResolveNoMatchReturnsWholeSetCapped(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	got := r.Resolve(record.KindFaculty, []string{"zzzzqqqq"}, match.Opts{Limit: 2})
	if len(got) != 2 {
		t.Fatalf("expected capped unfiltered set of 2, got %d", len(got))
	}
	for _, rec := range got {
		if rec.IsMarker() {
			t.Error("non-empty curated set must not yield a marker")
		}
	}
}

func TestResolveEmptySetYieldsMarker(t *testing.T) {
	r := &Resolver{sets: map[record.SourceKind][]record.Record{}}

	got := r.Resolve(record.KindNotices, nil, match.Opts{})
	if len(got) != 1 {
		t.Fatalf("expected exactly one marker record, got %d", len(got))
	}
	if !got[0].IsMarker() {
		t.Errorf("expected marker, got %+v", got[0])
	}
	if got[0].Kind != record.KindNotices {
		t.Errorf("marker kind: got %s", got[0].Kind)
	}
}

func TestResolveNoTermsReturnsCappedSet(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	got := r.Resolve(record.KindFaculty, nil, match.Opts{Limit: 3})
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
}

func TestFieldOrderRebuilt(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	got := r.Resolve(record.KindFaculty, []string{"suman"}, match.Opts{})
	if len(got) == 0 {
		t.Fatal("expected faculty match")
	}
	fields := got[0].Fields
	if fields[0].Name != "title" || fields[1].Name != "designation" {
		t.Errorf("field order not canonical: %q, %q", fields[0].Name, fields[1].Name)
	}
}
