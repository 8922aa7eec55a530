// Package extract turns raw fetched content into typed records. Extraction
// is best-effort pattern matching over untrusted markup: an item missing an
// expected substructure is skipped, a page that matches nothing yields an
// empty slice, and nothing in here ever panics the pipeline. Markup-shape
// assumptions live only in this package, so a site redesign means
// reimplementing one extractor.
package extract

import (
	"strings"

	"go.uber.org/zap"

	"github.com/ixink/uiu-student-bot/internal/record"
)

// maxItems caps every extractor's output so downstream filtering and message
// size stay bounded.
const maxItems = 5

// Input describes the content handed to Extract.
type Input struct {
	Kind   record.SourceKind
	Source string // source name, for logging
	URL    string // the URL the content was fetched from
	Format string // "html" or "rss"
}

// Extract parses content into records. An empty result is a valid,
// non-error outcome; failures are logged and swallowed.
func Extract(in Input, content []byte, log *zap.Logger) []record.Record {
	if len(content) == 0 {
		return nil
	}

	var records []record.Record
	switch in.Format {
	case "rss":
		records = fromFeed(in, content, log)
	default:
		records = fromHTML(in, content, log)
	}

	if len(records) > maxItems {
		records = records[:maxItems]
	}
	log.Debug("extracted records",
		zap.String("source", in.Source),
		zap.String("kind", string(in.Kind)),
		zap.Int("count", len(records)),
	)
	return records
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
