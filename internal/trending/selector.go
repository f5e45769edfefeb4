// Package trending picks a currently popular music video to use as a
// replacement soundtrack. Every failure degrades to the next tier; Select
// never fails.
package trending

import (
	"context"
	"time"

	"github.com/samber/lo"

	"trend-audio-remux/internal/logging"
	"trend-audio-remux/internal/metrics"
	"trend-audio-remux/internal/model"
)

// Tier names which fallback level produced a selection.
type Tier string

const (
	TierRanker    Tier = "ranker"
	TierMaxViews  Tier = "max_views"
	TierDefault   Tier = "default"
	defaultRegion      = "US"
)

// ChartSource lists the top music videos for a region.
type ChartSource interface {
	TopMusic(ctx context.Context, region string, n int) ([]model.Track, error)
}

// Ranker chooses one candidate. ok is false when it has no usable answer.
type Ranker interface {
	Rank(ctx context.Context, candidates []model.Track) (idx int, ok bool)
}

type Options struct {
	Region     string
	Candidates int
	DefaultURL string
	Timeout    time.Duration
}

type Selector struct {
	source ChartSource
	ranker Ranker
	opts   Options
	log    *logging.Logger
}

// NewSelector builds a selector. source and ranker may be nil.
func NewSelector(source ChartSource, ranker Ranker, opts Options, log *logging.Logger) *Selector {
	if opts.Region == "" {
		opts.Region = defaultRegion
	}
	if opts.Candidates <= 0 {
		opts.Candidates = 5
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Selector{source: source, ranker: ranker, opts: opts, log: log}
}

func (s *Selector) Select(ctx context.Context) (model.Track, Tier) {
	track, tier := s.selectTrack(ctx)
	metrics.TrendingSelectionsTotal.WithLabelValues(string(tier)).Inc()
	s.log.Infof("trending: selected %s via %s", track, tier)
	return track, tier
}

func (s *Selector) selectTrack(ctx context.Context) (model.Track, Tier) {
	fallback := model.Track{URL: s.opts.DefaultURL}
	if s.source == nil {
		s.log.Infof("trending: no ranking source configured, using default track")
		return fallback, TierDefault
	}

	listCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	candidates, err := s.source.TopMusic(listCtx, s.opts.Region, s.opts.Candidates)
	cancel()
	if err != nil {
		s.log.Warnf("trending: chart lookup failed: %v", err)
		return fallback, TierDefault
	}
	candidates = lo.Filter(candidates, func(t model.Track, _ int) bool { return t.URL != "" })
	if len(candidates) == 0 {
		s.log.Warnf("trending: chart returned no candidates")
		return fallback, TierDefault
	}

	if s.ranker != nil {
		rankCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
		idx, ok := s.ranker.Rank(rankCtx, candidates)
		cancel()
		if ok && idx >= 0 && idx < len(candidates) {
			return candidates[idx], TierRanker
		}
		s.log.Infof("trending: ranker gave no usable choice, falling back to most viewed")
	}

	return MostViewed(candidates), TierMaxViews
}

// MostViewed returns the candidate with the highest view count; the first one wins ties.
func MostViewed(candidates []model.Track) model.Track {
	return lo.MaxBy(candidates, func(a, b model.Track) bool { return a.ViewCount > b.ViewCount })
}
