// Package match is the single relevance filter every source kind goes
// through. Scoring is approximate substring similarity on a 0-100 scale, so
// a user interest like "py" still surfaces a record titled "Python
// Programming"; exact tokenization is deliberately not required.
package match

import (
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/ixink/uiu-student-bot/internal/record"
)

// DefaultThreshold is the acceptance score: a record survives filtering when
// its best score across all terms reaches it.
const DefaultThreshold = 70

// DefaultLimit caps result lists when the caller gives no limit.
const DefaultLimit = 5

type Opts struct {
	Limit     int
	Threshold int
}

func (o Opts) withDefaults() Opts {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	return o
}

// Best returns the highest partial-ratio score of any term against any of
// the given values. Empty terms and values score zero.
func Best(terms []string, values ...string) int {
	best := 0
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		for _, v := range values {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "" {
				continue
			}
			if s := fuzzy.PartialRatio(term, v); s > best {
				best = s
			}
		}
	}
	return best
}

// NormalizeTerms trims, lowercases, and drops empty entries.
func NormalizeTerms(terms []string) []string {
	var out []string
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Filter scores each record against the terms and returns the ranked subset
// whose best score reaches the threshold, capped at the limit. Ranking is by
// score descending with ties kept in input order, so filtering an
// already-passing set again returns it unchanged. Empty terms mean
// pass-through: the input order survives, only the cap applies.
func Filter(records []record.Record, terms []string, opts Opts) []record.Record {
	opts = opts.withDefaults()
	terms = NormalizeTerms(terms)

	if len(terms) == 0 {
		out := make([]record.Record, 0, min(len(records), opts.Limit))
		for _, r := range records {
			if len(out) == opts.Limit {
				break
			}
			out = append(out, r)
		}
		return out
	}

	type scored struct {
		rec   record.Record
		score int
	}
	var kept []scored
	for _, r := range records {
		s := Best(terms, r.SearchValues()...)
		if s >= opts.Threshold {
			kept = append(kept, scored{rec: r, score: s})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})

	if len(kept) > opts.Limit {
		kept = kept[:opts.Limit]
	}
	out := make([]record.Record, 0, len(kept))
	for _, k := range kept {
		out = append(out, k.rec)
	}
	return out
}
