package extract

import (
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/ixink/uiu-student-bot/internal/record"
)

// fromFeed maps RSS/Atom items to records. Feed-backed kinds share one
// shape: title, date, detail, link.
func fromFeed(in Input, content []byte, log *zap.Logger) []record.Record {
	feed, err := gofeed.NewParser().ParseString(string(content))
	if err != nil {
		log.Warn("parsing feed failed",
			zap.String("source", in.Source),
			zap.Error(err),
		)
		return nil
	}

	var out []record.Record
	for _, item := range feed.Items {
		if len(out) == maxItems {
			break
		}
		if item.Title == "" {
			continue
		}

		date := ""
		if item.PublishedParsed != nil {
			date = item.PublishedParsed.Format(time.DateOnly)
		} else if item.UpdatedParsed != nil {
			date = item.UpdatedParsed.Format(time.DateOnly)
		}

		detail := item.Description
		if detail == "" {
			detail = item.Content
		}
		detail = truncate(stripHTML(detail), 200)

		out = append(out, record.New(in.Kind,
			record.F("title", clean(item.Title)),
			record.F("date", date),
			record.F("detail", detail),
			record.F("link", item.Link),
		))
	}
	return out
}
