// Package fallback serves curated records when live sources come up empty.
package fallback

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ixink/uiu-student-bot/internal/match"
	"github.com/ixink/uiu-student-bot/internal/record"
)

//go:embed fallback_data.yaml
var curatedYAML []byte

// Resolver holds the curated record sets, one per source kind.
type Resolver struct {
	sets map[record.SourceKind][]record.Record
}

// New parses the embedded curated data. The YAML maps kind names to lists
// of name→value records; field order is rebuilt from the kind's canonical
// order.
func New() (*Resolver, error) {
	var raw map[string][]map[string]string
	if err := yaml.Unmarshal(curatedYAML, &raw); err != nil {
		return nil, fmt.Errorf("parsing curated data: %w", err)
	}

	sets := make(map[record.SourceKind][]record.Record, len(raw))
	for name, items := range raw {
		kind, err := record.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("curated data: %w", err)
		}
		recs := make([]record.Record, 0, len(items))
		for _, item := range items {
			recs = append(recs, record.FromMap(kind, item))
		}
		sets[kind] = recs
	}
	return &Resolver{sets: sets}, nil
}

// Resolve returns records for a kind whose live pipeline produced nothing.
// A non-empty curated set is filtered against the terms; when the filter
// keeps nothing the whole set is returned capped rather than empty, since
// loosely matching curated data beats a blank answer. A kind with no
// curated set yields exactly one marker record.
func (r *Resolver) Resolve(kind record.SourceKind, terms []string, opts match.Opts) []record.Record {
	set := r.sets[kind]
	if len(set) == 0 {
		return []record.Record{record.Marker(kind)}
	}

	filtered := match.Filter(set, terms, opts)
	if len(filtered) > 0 {
		return filtered
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = match.DefaultLimit
	}
	if len(set) > limit {
		set = set[:limit]
	}
	out := make([]record.Record, len(set))
	copy(out, set)
	return out
}

// Has reports whether a curated set exists for the kind.
func (r *Resolver) Has(kind record.SourceKind) bool {
	return len(r.sets[kind]) > 0
}
