package cache

import (
	"time"

	"github.com/ixink/uiu-student-bot/internal/record"
)

// Entry is one cached extraction result, keyed by (kind, query key). Writes
// replace entries wholesale; there is no partial merge.
type Entry struct {
	Kind        record.SourceKind
	QueryKey    string
	Records     []record.Record
	LastUpdated time.Time
}

// IsStale reports whether the entry is older than the ttl. A zero or
// negative ttl means the kind is always refetched. Staleness is monotonic:
// once stale, an entry stays stale until the next Put.
func (e Entry) IsStale(ttl time.Duration) bool {
	if ttl <= 0 {
		return true
	}
	return time.Since(e.LastUpdated) > ttl
}
