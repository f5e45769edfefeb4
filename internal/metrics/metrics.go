// Package metrics exposes Prometheus metrics for the fetch and remux pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts handled API requests by route and outcome (ok, bad_request, error, not_found).
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "remux_requests_total",
		Help: "Total number of API requests, by route and outcome.",
	}, []string{"route", "outcome"})

	// FetchAttemptsTotal counts fetch strategy runs by kind (video, audio), strategy and result.
	FetchAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "remux_fetch_attempts_total",
		Help: "Total number of media fetch strategy attempts, by kind, strategy and result.",
	}, []string{"kind", "strategy", "result"})

	// TrendingSelectionsTotal counts which tier produced the trending track.
	TrendingSelectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "remux_trending_selections_total",
		Help: "Total number of trending selections, by tier (ranker, max_views, default).",
	}, []string{"tier"})

	// ReplacementsTotal counts audio replacement runs by result (replaced, silent, error).
	ReplacementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "remux_replacements_total",
		Help: "Total number of audio replacement runs, by result.",
	}, []string{"result"})

	// TrackLoops observes how many track copies were concatenated per replacement.
	TrackLoops = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "remux_track_loops",
		Help:    "Number of sequential track copies used to cover the video.",
		Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 20},
	})

	// EncodeSeconds observes wall time of ffmpeg encodes.
	EncodeSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "remux_encode_seconds",
		Help:    "Wall time of ffmpeg encode runs.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	// ScratchEvictionsTotal counts files removed by the scratch sweep.
	ScratchEvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "remux_scratch_evictions_total",
		Help: "Total number of scratch files removed by the TTL sweep.",
	})
)
