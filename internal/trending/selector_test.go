package trending

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"trend-audio-remux/internal/logging"
	"trend-audio-remux/internal/model"
)

const fallbackURL = "https://www.youtube.com/watch?v=default"

type fakeChart struct {
	tracks []model.Track
	err    error
	region string
	n      int
}

func (f *fakeChart) TopMusic(_ context.Context, region string, n int) ([]model.Track, error) {
	f.region, f.n = region, n
	return f.tracks, f.err
}

type fakeRanker struct {
	idx   int
	ok    bool
	calls int
}

func (f *fakeRanker) Rank(_ context.Context, _ []model.Track) (int, bool) {
	f.calls++
	return f.idx, f.ok
}

var candidates = []model.Track{
	{URL: "https://www.youtube.com/watch?v=a", Title: "A", ViewCount: 10},
	{URL: "https://www.youtube.com/watch?v=b", Title: "B", ViewCount: 300},
	{URL: "https://www.youtube.com/watch?v=c", Title: "C", ViewCount: 200},
}

func newTestSelector(source ChartSource, ranker Ranker) *Selector {
	return NewSelector(source, ranker, Options{DefaultURL: fallbackURL}, logging.Discard())
}

func TestSelectTiers(t *testing.T) {
	tests := []struct {
		name     string
		source   ChartSource
		ranker   Ranker
		wantURL  string
		wantTier Tier
	}{
		{
			name:     "no source",
			wantURL:  fallbackURL,
			wantTier: TierDefault,
		},
		{
			name:     "source error",
			source:   &fakeChart{err: errors.New("quota exceeded")},
			wantURL:  fallbackURL,
			wantTier: TierDefault,
		},
		{
			name:     "empty chart",
			source:   &fakeChart{},
			wantURL:  fallbackURL,
			wantTier: TierDefault,
		},
		{
			name:     "no ranker picks most viewed",
			source:   &fakeChart{tracks: candidates},
			wantURL:  "https://www.youtube.com/watch?v=b",
			wantTier: TierMaxViews,
		},
		{
			name:     "ranker choice wins",
			source:   &fakeChart{tracks: candidates},
			ranker:   &fakeRanker{idx: 2, ok: true},
			wantURL:  "https://www.youtube.com/watch?v=c",
			wantTier: TierRanker,
		},
		{
			name:     "ranker without answer",
			source:   &fakeChart{tracks: candidates},
			ranker:   &fakeRanker{ok: false},
			wantURL:  "https://www.youtube.com/watch?v=b",
			wantTier: TierMaxViews,
		},
		{
			name:     "ranker index out of range",
			source:   &fakeChart{tracks: candidates},
			ranker:   &fakeRanker{idx: 7, ok: true},
			wantURL:  "https://www.youtube.com/watch?v=b",
			wantTier: TierMaxViews,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSelector(tt.source, tt.ranker)
			track, tier := s.Select(context.Background())
			assert.Equal(t, tt.wantURL, track.URL)
			assert.Equal(t, tt.wantTier, tier)
		})
	}
}

func TestSelectPassesRegionAndCount(t *testing.T) {
	chart := &fakeChart{tracks: candidates}
	s := NewSelector(chart, nil, Options{Region: "GB", Candidates: 3, DefaultURL: fallbackURL}, logging.Discard())
	s.Select(context.Background())
	assert.Equal(t, "GB", chart.region)
	assert.Equal(t, 3, chart.n)
}

func TestSelectDefaultsCandidatesToFive(t *testing.T) {
	chart := &fakeChart{tracks: candidates}
	s := newTestSelector(chart, nil)
	s.Select(context.Background())
	assert.Equal(t, 5, chart.n)
	assert.Equal(t, "US", chart.region)
}

func TestMostViewedFirstWinsTie(t *testing.T) {
	got := MostViewed([]model.Track{
		{URL: "x", ViewCount: 5},
		{URL: "y", ViewCount: 5},
	})
	assert.Equal(t, "x", got.URL)
}
