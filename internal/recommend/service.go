// Package recommend composes personalized answers from cached, live and
// curated records.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ixink/uiu-student-bot/internal/cache"
	"github.com/ixink/uiu-student-bot/internal/config"
	"github.com/ixink/uiu-student-bot/internal/extract"
	"github.com/ixink/uiu-student-bot/internal/fallback"
	"github.com/ixink/uiu-student-bot/internal/fetch"
	"github.com/ixink/uiu-student-bot/internal/match"
	"github.com/ixink/uiu-student-bot/internal/profile"
	"github.com/ixink/uiu-student-bot/internal/ratelimit"
	"github.com/ixink/uiu-student-bot/internal/record"
)

// noProfileText is the terminal answer for users without a profile. It is
// a valid composition result, not an error.
const noProfileText = "No profile set. Save your department, year and interests first " +
	"(for example: department CSE, year 2, interests python,dsa) to get personalized recommendations."

// Service runs the composition pipeline: cache lookup, rate-gated live
// refresh, relevance filter, curated fallback.
type Service struct {
	cfg      *config.Config
	cache    *cache.Cache
	profiles *profile.Store
	fetcher  *fetch.Client
	limiter  *ratelimit.Limiter
	curated  *fallback.Resolver
	log      *zap.Logger
}

// New wires a Service from its collaborators.
func New(cfg *config.Config, c *cache.Cache, p *profile.Store, f *fetch.Client, l *ratelimit.Limiter, fb *fallback.Resolver, log *zap.Logger) *Service {
	return &Service{
		cfg:      cfg,
		cache:    c,
		profiles: p,
		fetcher:  f,
		limiter:  l,
		curated:  fb,
		log:      log,
	}
}

// Recommend composes recommendations for a user across the configured
// kinds. An explicit term overrides the profile-derived terms. The rate
// limiter is consulted once for the whole request: within the cooldown
// every kind is answered from cache or curated data, never live.
func (s *Service) Recommend(ctx context.Context, userID int64, term string) (string, error) {
	p, err := s.profiles.Get(userID)
	if errors.Is(err, profile.ErrNotFound) {
		return noProfileText, nil
	}
	if err != nil {
		return "", fmt.Errorf("loading profile: %w", err)
	}

	terms := p.Terms()
	if term != "" {
		terms = []string{term}
	}

	allowFetch := s.limiter.TryAcquire(userID)
	if !allowFetch {
		s.log.Debug("cooldown active, serving cached data only", zap.Int64("user_id", userID))
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestDeadlineDuration())
	defer cancel()

	kinds := s.cfg.RecommendOrder()
	sections := make([][]record.Record, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.FanOutLimit())
	for i, kind := range kinds {
		i, kind := i, kind
		g.Go(func() error {
			recs := s.gather(gctx, kind, terms, allowFetch)
			if n := s.cfg.TopN(); len(recs) > n {
				recs = recs[:n]
			}
			sections[i] = recs
			return nil
		})
	}
	g.Wait()

	var b strings.Builder
	b.WriteString("Recommended Resources & Opportunities:\n")
	for i, kind := range kinds {
		b.WriteString("\n" + sectionTitle(kind) + ":\n")
		for _, rec := range sections[i] {
			b.WriteString("- " + rec.Display() + "\n")
		}
	}
	return b.String(), nil
}

// Lookup answers a single kind. Terms come from the explicit term when
// given, otherwise from the user's profile when one exists.
func (s *Service) Lookup(ctx context.Context, userID int64, kind record.SourceKind, term string) (string, error) {
	var terms []string
	if term != "" {
		terms = []string{term}
	} else if p, err := s.profiles.Get(userID); err == nil {
		terms = p.Terms()
	} else if !errors.Is(err, profile.ErrNotFound) {
		return "", fmt.Errorf("loading profile: %w", err)
	}

	allowFetch := s.limiter.TryAcquire(userID)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestDeadlineDuration())
	defer cancel()

	recs := s.gather(ctx, kind, terms, allowFetch)

	var b strings.Builder
	b.WriteString(sectionTitle(kind) + ":\n")
	for _, rec := range recs {
		b.WriteString("- " + rec.Display() + "\n")
	}
	return b.String(), nil
}

// gather resolves records for one kind: cached entry first, live refresh
// when the entry is stale and the request is not rate-limited, then the
// relevance filter, then curated fallback when nothing survives. Fetch,
// extract and cache failures are logged, never returned; the pipeline
// always degrades to an answer.
func (s *Service) gather(ctx context.Context, kind record.SourceKind, terms []string, allowFetch bool) []record.Record {
	queryKey := ""
	if s.cfg.KindUsesQuery(kind) && len(terms) > 0 {
		queryKey = terms[0]
	}

	entry, found, err := s.cache.Get(kind, queryKey)
	if err != nil {
		s.log.Warn("cache read failed", zap.String("kind", string(kind)), zap.Error(err))
	}

	var records []record.Record
	if found {
		records = entry.Records
	}

	stale := !found || entry.IsStale(s.cfg.TTLFor(kind))
	if stale && allowFetch {
		if live := s.fetchKind(ctx, kind, queryKey); len(live) > 0 {
			records = live
			if err := s.cache.Put(kind, queryKey, live); err != nil {
				s.log.Warn("cache write failed", zap.String("kind", string(kind)), zap.Error(err))
			}
		}
		// A failed refresh keeps serving the stale entry.
	}

	opts := match.Opts{Limit: s.cfg.ResultCap(), Threshold: s.cfg.Threshold()}
	if filtered := match.Filter(records, terms, opts); len(filtered) > 0 {
		return filtered
	}
	return s.curated.Resolve(kind, terms, opts)
}

// fetchKind fetches and extracts every enabled source for the kind in
// sequence, pooling their records.
func (s *Service) fetchKind(ctx context.Context, kind record.SourceKind, query string) []record.Record {
	var records []record.Record
	for _, src := range s.cfg.SourcesFor(kind) {
		url := src.ExpandURL(query)
		content, err := s.fetcher.Fetch(ctx, url)
		if err != nil {
			s.log.Warn("source fetch failed",
				zap.String("source", src.Name),
				zap.String("url", url),
				zap.Error(err))
			continue
		}
		recs := extract.Extract(extract.Input{
			Kind:   kind,
			Source: src.Name,
			URL:    url,
			Format: src.Format,
		}, content, s.log)
		s.log.Debug("source extracted",
			zap.String("source", src.Name),
			zap.Int("records", len(recs)))
		records = append(records, recs...)
	}
	return records
}

func sectionTitle(kind record.SourceKind) string {
	switch kind {
	case record.KindCalendar:
		return "Academic Calendar & Events"
	case record.KindNotices:
		return "UIU Notices"
	case record.KindResources:
		return "Learning Resources"
	case record.KindTrending:
		return "GitHub Trending Repositories"
	case record.KindQuestions:
		return "Stack Overflow Questions"
	case record.KindJobs:
		return "Job & Internship Opportunities"
	case record.KindFaculty:
		return "Faculty Mentors"
	case record.KindRoadmaps:
		return "Learning Roadmaps"
	default:
		return strings.ToUpper(string(kind)[:1]) + string(kind)[1:]
	}
}
