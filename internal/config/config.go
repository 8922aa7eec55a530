package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/ixink/uiu-student-bot/internal/record"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// Source is one external page or feed the pipeline scrapes. The URL may
// contain a {query} placeholder; kinds whose sources carry one are fetched
// (and cached) per query key instead of once per kind.
type Source struct {
	Name    string `yaml:"name"`
	Kind    string `yaml:"kind"`
	URL     string `yaml:"url"`
	Format  string `yaml:"format"` // "html" or "rss"
	Enabled bool   `yaml:"enabled"`
}

// HasQueryPlaceholder reports whether the source URL is templated on the
// query key.
func (s Source) HasQueryPlaceholder() bool {
	return strings.Contains(s.URL, "{query}")
}

// ExpandURL substitutes the query key into a templated URL. Sources without
// a placeholder return the URL unchanged; a templated URL with an empty
// query drops the placeholder (the sites serve an unfiltered listing then).
func (s Source) ExpandURL(query string) string {
	if !s.HasQueryPlaceholder() {
		return s.URL
	}
	u := strings.ReplaceAll(s.URL, "{query}", url.PathEscape(query))
	return strings.TrimRight(u, "/")
}

type Config struct {
	CooldownSeconds int    `yaml:"cooldown_seconds"`
	FetchTimeout    string `yaml:"fetch_timeout"`
	RequestDeadline string `yaml:"request_deadline"`
	MaxInFlight     int    `yaml:"max_in_flight"`
	MaxResults      int    `yaml:"max_results"`
	MergeTopN       int    `yaml:"merge_top_n"`
	MatchThreshold  int    `yaml:"match_threshold"`
	ListenAddr      string `yaml:"listen_addr"`

	// TTL maps a source kind to its staleness window ("24h", "0s"). A zero
	// or negative TTL means the kind is always refetched.
	TTL map[string]string `yaml:"ttl"`

	// RecommendKinds is the fixed kind order composed recommendations merge.
	RecommendKinds []string `yaml:"recommend_kinds"`

	Sources []Source `yaml:"sources"`
}

func (c *Config) Cooldown() time.Duration {
	if c.CooldownSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.CooldownSeconds) * time.Second
}

func (c *Config) FetchTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

func (c *Config) RequestDeadlineDuration() time.Duration {
	d, err := time.ParseDuration(c.RequestDeadline)
	if err != nil || d <= 0 {
		return 20 * time.Second
	}
	return d
}

func (c *Config) FanOutLimit() int {
	if c.MaxInFlight <= 0 {
		return 4
	}
	return c.MaxInFlight
}

// ResultCap bounds every per-kind record list.
func (c *Config) ResultCap() int {
	if c.MaxResults <= 0 {
		return 5
	}
	return c.MaxResults
}

// TopN is how many records per kind a composed recommendation keeps.
func (c *Config) TopN() int {
	if c.MergeTopN <= 0 {
		return 3
	}
	return c.MergeTopN
}

func (c *Config) Threshold() int {
	if c.MatchThreshold <= 0 {
		return 70
	}
	return c.MatchThreshold
}

func (c *Config) Addr() string {
	if c.ListenAddr == "" {
		return ":8080"
	}
	return c.ListenAddr
}

// TTLFor returns the staleness window for a kind. Kinds absent from the TTL
// table get 0: always refetch, the safe default for fast-changing sources.
func (c *Config) TTLFor(kind record.SourceKind) time.Duration {
	raw, ok := c.TTL[string(kind)]
	if !ok {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0
	}
	return d
}

// SourcesFor returns the enabled sources for a kind, in config order.
func (c *Config) SourcesFor(kind record.SourceKind) []Source {
	var out []Source
	for _, s := range c.Sources {
		if s.Enabled && s.Kind == string(kind) {
			out = append(out, s)
		}
	}
	return out
}

// KindUsesQuery reports whether any enabled source for the kind is templated
// on the query key. Such kinds cache one entry per query key.
func (c *Config) KindUsesQuery(kind record.SourceKind) bool {
	for _, s := range c.SourcesFor(kind) {
		if s.HasQueryPlaceholder() {
			return true
		}
	}
	return false
}

// RecommendOrder returns the kinds a composed recommendation covers, in
// merge order. Invalid names in config are skipped.
func (c *Config) RecommendOrder() []record.SourceKind {
	var kinds []record.SourceKind
	for _, name := range c.RecommendKinds {
		k, err := record.ParseKind(name)
		if err != nil {
			continue
		}
		kinds = append(kinds, k)
	}
	if len(kinds) == 0 {
		kinds = []record.SourceKind{record.KindResources, record.KindTrending, record.KindJobs, record.KindFaculty}
	}
	return kinds
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "uiu-student-bot", "config.yaml")
}

// CachePath is the staleness cache database. It must survive restarts: it is
// the only defense against redundant load on the scraped sites.
func CachePath() string {
	return filepath.Join(xdg.CacheHome, "uiu-student-bot", "sources.db")
}

// UserDBPath is the profile and snippet database.
func UserDBPath() string {
	return filepath.Join(xdg.DataHome, "uiu-student-bot", "users.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run
			if err := writeDefaults(path); err != nil {
				// Non-fatal: just use embedded defaults
				return defaults, nil
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	validFormats := map[string]bool{"html": true, "rss": true}
	for i, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if _, err := record.ParseKind(s.Kind); err != nil {
			return fmt.Errorf("source %q: %w", s.Name, err)
		}
		if s.URL == "" {
			return fmt.Errorf("source %q: url is required", s.Name)
		}
		u, err := url.Parse(strings.ReplaceAll(s.URL, "{query}", "q"))
		if err != nil {
			return fmt.Errorf("source %q: invalid url: %w", s.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("source %q: url scheme must be http or https, got %q", s.Name, u.Scheme)
		}
		if !validFormats[s.Format] {
			return fmt.Errorf("source %q: unknown format %q (valid: html, rss)", s.Name, s.Format)
		}
	}
	for kind, raw := range cfg.TTL {
		if _, err := record.ParseKind(kind); err != nil {
			return fmt.Errorf("ttl: %w", err)
		}
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("ttl for %s: invalid duration %q", kind, raw)
		}
	}
	return nil
}
