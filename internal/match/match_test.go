package match

import (
	"reflect"
	"testing"

	"github.com/ixink/uiu-student-bot/internal/record"
)

func resourceRecords() []record.Record {
	return []record.Record{
		record.New(record.KindResources, record.F("title", "Python Programming"), record.F("platform", "freeCodeCamp")),
		record.New(record.KindResources, record.F("title", "Structural Engineering Basics"), record.F("platform", "edX")),
		record.New(record.KindResources, record.F("title", "Learn Python"), record.F("platform", "freeCodeCamp")),
		record.New(record.KindResources, record.F("title", "Intro to Marketing"), record.F("platform", "Coursera")),
	}
}

func titles(records []record.Record) []string {
	var out []string
	for _, r := range records {
		out = append(out, r.Title())
	}
	return out
}

func TestFilterFuzzyTerm(t *testing.T) {
	got := Filter(resourceRecords(), []string{"python"}, Opts{})
	want := []string{"Python Programming", "Learn Python"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Errorf("filter: got %v, want %v", titles(got), want)
	}
}

func TestShortTermMatchesLongTitle(t *testing.T) {
	// "py" must surface "Python Programming": approximate substring
	// similarity, not exact tokenization.
	got := Filter(resourceRecords(), []string{"py"}, Opts{})
	if len(got) == 0 {
		t.Fatal("expected matches for short term")
	}
	for _, r := range got {
		if r.Title() == "Intro to Marketing" {
			t.Error("unrelated record passed the filter")
		}
	}
}

func TestFilterEmptyTermsPassThrough(t *testing.T) {
	records := resourceRecords()
	got := Filter(records, nil, Opts{})
	if !reflect.DeepEqual(titles(got), titles(records)) {
		t.Errorf("pass-through changed order or content: %v", titles(got))
	}

	capped := Filter(records, []string{" ", ""}, Opts{Limit: 2})
	if len(capped) != 2 {
		t.Errorf("cap not applied: got %d records", len(capped))
	}
	if capped[0].Title() != records[0].Title() {
		t.Error("pass-through should keep input order")
	}
}

func TestFilterIdempotent(t *testing.T) {
	terms := []string{"python"}
	first := Filter(resourceRecords(), terms, Opts{})
	second := Filter(first, terms, Opts{})
	if !reflect.DeepEqual(titles(first), titles(second)) {
		t.Errorf("refiltering changed result: %v vs %v", titles(first), titles(second))
	}
}

func TestFilterThreshold(t *testing.T) {
	records := []record.Record{
		record.New(record.KindJobs, record.F("title", "Backend Developer")),
	}
	if got := Filter(records, []string{"pharmacy"}, Opts{}); len(got) != 0 {
		t.Errorf("unrelated term should filter everything, got %v", titles(got))
	}
	// A lenient threshold lets weak matches through.
	if got := Filter(records, []string{"dev"}, Opts{Threshold: 50}); len(got) != 1 {
		t.Errorf("lenient threshold: got %v", titles(got))
	}
}

func TestFilterScansAllFields(t *testing.T) {
	records := []record.Record{
		record.New(record.KindFaculty,
			record.F("title", "Dr. Rumana Afrin"),
			record.F("department", "Civil Engineering"),
			record.F("expertise", "Structural Engineering"),
		),
	}
	got := Filter(records, []string{"civil"}, Opts{})
	if len(got) != 1 {
		t.Error("term matching a secondary field should keep the record")
	}
}

func TestBest(t *testing.T) {
	if got := Best([]string{"python"}, "Learn Python"); got < DefaultThreshold {
		t.Errorf("expected strong score, got %d", got)
	}
	if got := Best(nil, "anything"); got != 0 {
		t.Errorf("no terms: got %d", got)
	}
	if got := Best([]string{"python"}); got != 0 {
		t.Errorf("no values: got %d", got)
	}
}

func TestNormalizeTerms(t *testing.T) {
	got := NormalizeTerms([]string{" Python ", "", "DSA"})
	want := []string{"python", "dsa"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("normalize: got %v, want %v", got, want)
	}
}
