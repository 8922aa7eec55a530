package profile

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func validProfile() Profile {
	return Profile{
		UserID:     42,
		Department: "CSE",
		Year:       2,
		Interests:  []string{"python", "dsa"},
		Courses:    []string{"CSE 2215"},
	}
}

func TestSetAndGet(t *testing.T) {
	s := testStore(t)

	if err := s.Set(validProfile()); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := s.Get(42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Department != "CSE" || got.Year != 2 {
		t.Errorf("got %+v", got)
	}
	if !reflect.DeepEqual(got.Interests, []string{"python", "dsa"}) {
		t.Errorf("interests: got %v", got.Interests)
	}
}

func TestGetUnknownUser(t *testing.T) {
	s := testStore(t)
	_, err := s.Get(999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetOverwrites(t *testing.T) {
	s := testStore(t)
	if err := s.Set(validProfile()); err != nil {
		t.Fatalf("set: %v", err)
	}

	p := validProfile()
	p.Department = "EEE"
	p.Interests = []string{"embedded"}
	if err := s.Set(p); err != nil {
		t.Fatalf("second set: %v", err)
	}

	got, err := s.Get(42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Department != "EEE" || len(got.Interests) != 1 {
		t.Errorf("last write must win, got %+v", got)
	}
}

func TestSetInvalidLeavesStoreUnchanged(t *testing.T) {
	s := testStore(t)
	if err := s.Set(validProfile()); err != nil {
		t.Fatalf("set: %v", err)
	}

	invalid := []Profile{
		{UserID: 42, Department: "", Year: 2, Interests: []string{"python"}},
		{UserID: 42, Department: "CSE", Year: 0, Interests: []string{"python"}},
		{UserID: 42, Department: "CSE", Year: -3, Interests: []string{"python"}},
		{UserID: 42, Department: "CSE", Year: 2},
	}
	for _, p := range invalid {
		if err := s.Set(p); !errors.Is(err, ErrInvalid) {
			t.Errorf("expected ErrInvalid for %+v, got %v", p, err)
		}
	}

	got, err := s.Get(42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Department != "CSE" || got.Year != 2 {
		t.Errorf("invalid set mutated the store: %+v", got)
	}
}

func TestTerms(t *testing.T) {
	p := validProfile()
	want := []string{"python", "CSE"}
	if got := p.Terms(); !reflect.DeepEqual(got, want) {
		t.Errorf("terms: got %v, want %v", got, want)
	}

	if got := (Profile{Department: "CSE"}).Terms(); !reflect.DeepEqual(got, []string{"CSE"}) {
		t.Errorf("department-only terms: got %v", got)
	}
}

func TestSnippets(t *testing.T) {
	s := testStore(t)

	add := []Snippet{
		{Description: "quicksort", Tags: "python, algorithms", Body: "def qs(a): ..."},
		{Description: "binary search", Tags: "java", Body: "int bs(...) {}"},
	}
	for _, sn := range add {
		if err := s.AddSnippet(7, sn); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	all, err := s.Snippets(7, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 snippets, got %d", len(all))
	}
	if all[0].Description != "binary search" {
		t.Errorf("expected newest first, got %q", all[0].Description)
	}

	py, err := s.Snippets(7, "python")
	if err != nil {
		t.Fatalf("list with tag: %v", err)
	}
	if len(py) != 1 || py[0].Description != "quicksort" {
		t.Errorf("tag filter: got %+v", py)
	}

	other, err := s.Snippets(8, "")
	if err != nil {
		t.Fatalf("list other user: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("snippets leaked across users: %+v", other)
	}
}

func TestAddSnippetValidation(t *testing.T) {
	s := testStore(t)
	if err := s.AddSnippet(7, Snippet{Tags: "python"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestParseList(t *testing.T) {
	got := ParseList(" python, dsa ,,javascript ")
	want := []string{"python", "dsa", "javascript"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if ParseList("  ") != nil {
		t.Error("blank input should yield nil")
	}
}
