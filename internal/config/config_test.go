package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ixink/uiu-student-bot/internal/record"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	if cfg.Cooldown() != 60*time.Second {
		t.Errorf("cooldown: got %v", cfg.Cooldown())
	}
	if cfg.FetchTimeoutDuration() != 10*time.Second {
		t.Errorf("fetch timeout: got %v", cfg.FetchTimeoutDuration())
	}
	if len(cfg.SourcesFor(record.KindJobs)) != 3 {
		t.Errorf("expected 3 job sources, got %d", len(cfg.SourcesFor(record.KindJobs)))
	}
	if err := validate(cfg); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestTTLTable(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	if got := cfg.TTLFor(record.KindFaculty); got != 24*time.Hour {
		t.Errorf("faculty ttl: got %v", got)
	}
	if got := cfg.TTLFor(record.KindTrending); got != 0 {
		t.Errorf("trending ttl: got %v, want always-refetch", got)
	}
	// Unknown kind falls back to always-refetch.
	cfg.TTL = nil
	if got := cfg.TTLFor(record.KindFaculty); got != 0 {
		t.Errorf("missing ttl entry: got %v", got)
	}
}

func TestExpandURL(t *testing.T) {
	s := Source{URL: "https://github.com/trending/{query}"}
	if got := s.ExpandURL("python"); got != "https://github.com/trending/python" {
		t.Errorf("expand: got %q", got)
	}
	if got := s.ExpandURL(""); got != "https://github.com/trending" {
		t.Errorf("expand empty query: got %q", got)
	}

	plain := Source{URL: "https://www.bdjobs.com/"}
	if got := plain.ExpandURL("python"); got != "https://www.bdjobs.com/" {
		t.Errorf("plain url should be unchanged, got %q", got)
	}
}

func TestKindUsesQuery(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	if !cfg.KindUsesQuery(record.KindTrending) {
		t.Error("trending should be query-scoped")
	}
	if cfg.KindUsesQuery(record.KindJobs) {
		t.Error("jobs should not be query-scoped")
	}
}

func TestLoadMissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Sources) == 0 {
		t.Error("expected default sources")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("defaults not written to %s: %v", path, err)
	}
}

func TestValidateRejectsBadSource(t *testing.T) {
	cases := []struct {
		name string
		src  Source
	}{
		{"missing name", Source{Kind: "jobs", URL: "https://x.com", Format: "html"}},
		{"bad kind", Source{Name: "x", Kind: "weather", URL: "https://x.com", Format: "html"}},
		{"bad scheme", Source{Name: "x", Kind: "jobs", URL: "ftp://x.com", Format: "html"}},
		{"bad format", Source{Name: "x", Kind: "jobs", URL: "https://x.com", Format: "pdf"}},
	}
	for _, tc := range cases {
		cfg := &Config{Sources: []Source{tc.src}}
		if err := validate(cfg); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestValidateRejectsBadTTL(t *testing.T) {
	cfg := &Config{TTL: map[string]string{"jobs": "soon"}}
	if err := validate(cfg); err == nil {
		t.Error("expected error for unparseable ttl")
	}
	cfg = &Config{TTL: map[string]string{"weather": "1h"}}
	if err := validate(cfg); err == nil {
		t.Error("expected error for unknown ttl kind")
	}
}

func TestRecommendOrderSkipsInvalid(t *testing.T) {
	cfg := &Config{RecommendKinds: []string{"jobs", "weather", "faculty"}}
	got := cfg.RecommendOrder()
	if len(got) != 2 || got[0] != record.KindJobs || got[1] != record.KindFaculty {
		t.Errorf("recommend order: got %v", got)
	}

	empty := &Config{}
	if len(empty.RecommendOrder()) != 4 {
		t.Errorf("expected default order, got %v", empty.RecommendOrder())
	}
}
