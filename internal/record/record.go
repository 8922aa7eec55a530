// Package record defines the typed records the aggregation pipeline moves
// around: one external information domain per SourceKind, one ordered set of
// named string fields per Record.
package record

import (
	"fmt"
	"sort"
	"strings"
)

// SourceKind identifies which external information domain a record belongs to.
// It selects the extractor and fallback set that apply.
type SourceKind string

const (
	KindCalendar  SourceKind = "calendar"
	KindResources SourceKind = "resources"
	KindTrending  SourceKind = "trending"
	KindQuestions SourceKind = "questions"
	KindJobs      SourceKind = "jobs"
	KindFaculty   SourceKind = "faculty"
	KindNotices   SourceKind = "notices"
	KindRoadmaps  SourceKind = "roadmaps"
)

// AllKinds returns every valid kind in canonical display order. The order is
// stable: composed responses concatenate per-kind sections in this order.
func AllKinds() []SourceKind {
	return []SourceKind{
		KindCalendar, KindNotices, KindResources, KindTrending,
		KindQuestions, KindJobs, KindFaculty, KindRoadmaps,
	}
}

// ParseKind validates a kind name coming from config, CLI flags, or URLs.
func ParseKind(s string) (SourceKind, error) {
	k := SourceKind(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range AllKinds() {
		if k == valid {
			return k, nil
		}
	}
	names := make([]string, 0, len(AllKinds()))
	for _, valid := range AllKinds() {
		names = append(names, string(valid))
	}
	return "", fmt.Errorf("unknown source kind %q (valid: %s)", s, strings.Join(names, ", "))
}

// Field is one named string value. Records keep fields as a slice, not a map,
// so extraction order survives serialization.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// F builds a Field. Empty values are legal; extractors use "N/A" for fields
// a source page simply does not carry.
func F(name, value string) Field {
	return Field{Name: name, Value: value}
}

// Record is one extracted item: a title-ish leading field plus secondary
// fields, all strings. Records are immutable once built and have structural
// identity; there is no synthetic id.
type Record struct {
	Kind   SourceKind `json:"kind"`
	Fields []Field    `json:"fields"`
}

// New builds a record from fields in the given order.
func New(kind SourceKind, fields ...Field) Record {
	return Record{Kind: kind, Fields: fields}
}

// Get returns the value of the named field, or "" if absent.
func (r Record) Get(name string) string {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Title returns the leading field's value, the record's headline.
func (r Record) Title() string {
	if len(r.Fields) == 0 {
		return ""
	}
	return r.Fields[0].Value
}

// SearchValues returns every field value, for relevance scoring.
func (r Record) SearchValues() []string {
	vals := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		vals = append(vals, f.Value)
	}
	return vals
}

// Display renders the record as one line of user-facing text:
// the headline first, secondary fields in parentheses, links bare.
func (r Record) Display() string {
	if len(r.Fields) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(r.Title())

	var secondary []string
	var links []string
	for _, f := range r.Fields[1:] {
		if f.Value == "" {
			continue
		}
		if f.Name == "link" || f.Name == "email" {
			links = append(links, f.Value)
			continue
		}
		secondary = append(secondary, fmt.Sprintf("%s: %s", f.Name, f.Value))
	}
	if len(secondary) > 0 {
		b.WriteString(" (" + strings.Join(secondary, ", ") + ")")
	}
	for _, l := range links {
		b.WriteString(" " + l)
	}
	return b.String()
}

// markerTitle is the headline of the "no data available" record the fallback
// resolver emits when a kind has no curated data at all. It is distinct from
// an empty result so the transport can render a proper message.
const markerTitle = "No data available"

// Marker builds the no-data marker record for a kind.
func Marker(kind SourceKind) Record {
	return New(kind,
		F("title", markerTitle),
		F("detail", fmt.Sprintf("no %s data is available right now, try again later", kind)),
	)
}

// IsMarker reports whether r is a no-data marker.
func (r Record) IsMarker() bool {
	return r.Title() == markerTitle
}

// FieldOrder returns the canonical field names for a kind, in display order.
// Loaders that read records from unordered formats (the curated fallback
// YAML) use it to rebuild the order extractors produce naturally.
func FieldOrder(kind SourceKind) []string {
	switch kind {
	case KindCalendar:
		return []string{"title", "date", "detail"}
	case KindResources:
		return []string{"title", "platform", "link"}
	case KindTrending:
		return []string{"title", "language", "stars", "detail"}
	case KindQuestions:
		return []string{"title", "tags", "link"}
	case KindJobs:
		return []string{"title", "company", "location", "link"}
	case KindFaculty:
		return []string{"title", "designation", "department", "expertise", "email", "phone"}
	case KindNotices:
		return []string{"title", "date", "detail"}
	case KindRoadmaps:
		return []string{"title", "level", "steps", "detail"}
	default:
		return []string{"title", "detail", "link"}
	}
}

// FromMap builds a record from an unordered name→value map using the kind's
// canonical field order. Unknown names are appended alphabetically so no
// data is silently dropped.
func FromMap(kind SourceKind, values map[string]string) Record {
	known := make(map[string]bool)
	var fields []Field
	for _, name := range FieldOrder(kind) {
		known[name] = true
		if v, ok := values[name]; ok && v != "" {
			fields = append(fields, F(name, v))
		}
	}
	var extra []string
	for name := range values {
		if !known[name] && values[name] != "" {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		fields = append(fields, F(name, values[name]))
	}
	return New(kind, fields...)
}
