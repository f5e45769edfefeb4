// Package sources resolves a media URL to a local file. Fetch strategies are
// tried in order and the first success wins; each strategy writes to the exact
// path it is given.
package sources

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"trend-audio-remux/internal/logging"
	"trend-audio-remux/internal/metrics"
	"trend-audio-remux/internal/model"
)

type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
)

var (
	// ErrUnsupported is returned by a strategy that cannot produce the requested kind.
	ErrUnsupported         = errors.New("strategy does not support this media kind")
	ErrNoStrategy          = errors.New("no fetch strategy configured")
	ErrAllStrategiesFailed = errors.New("all fetch strategies failed")
)

// Request asks for url to be stored at OutPath. OutPath carries the final
// extension (.mp4 for video, .mp3 for audio).
type Request struct {
	URL     string
	OutPath string
	Kind    Kind
}

type Strategy interface {
	Name() string
	Fetch(ctx context.Context, req Request) error
}

type Fetcher struct {
	strategies []Strategy
	log        *logging.Logger
}

func NewFetcher(log *logging.Logger, strategies ...Strategy) *Fetcher {
	return &Fetcher{strategies: strategies, log: log}
}

func (f *Fetcher) Strategies() []string {
	names := make([]string, 0, len(f.strategies))
	for _, s := range f.strategies {
		names = append(names, s.Name())
	}
	return names
}

func (f *Fetcher) FetchVideo(ctx context.Context, url, outPath string) (*model.FetchResult, error) {
	return f.Fetch(ctx, Request{URL: url, OutPath: outPath, Kind: KindVideo})
}

func (f *Fetcher) FetchAudio(ctx context.Context, url, outPath string) (*model.FetchResult, error) {
	return f.Fetch(ctx, Request{URL: url, OutPath: outPath, Kind: KindAudio})
}

// Fetch runs the strategy chain. A strategy counts as successful only when it
// returned nil and left a non-empty file at req.OutPath.
func (f *Fetcher) Fetch(ctx context.Context, req Request) (*model.FetchResult, error) {
	if len(f.strategies) == 0 {
		return nil, ErrNoStrategy
	}
	res := &model.FetchResult{Path: req.OutPath}
	var errs []error

	for _, s := range f.strategies {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		f.log.Infof("fetch: %s %s via %s -> %s", req.Kind, req.URL, s.Name(), req.OutPath)

		err := s.Fetch(ctx, req)
		if errors.Is(err, ErrUnsupported) {
			continue
		}
		if err == nil {
			err = checkOutput(req.OutPath)
		}
		if err == nil {
			metrics.FetchAttemptsTotal.WithLabelValues(string(req.Kind), s.Name(), "ok").Inc()
			res.Strategy = s.Name()
			res.Attempts = append(res.Attempts, model.FetchAttempt{Strategy: s.Name()})
			f.log.Infof("fetch: ✓ %s fetched via %s", req.Kind, s.Name())
			return res, nil
		}

		metrics.FetchAttemptsTotal.WithLabelValues(string(req.Kind), s.Name(), "error").Inc()
		f.log.Warnf("fetch: %s failed: %v", s.Name(), err)
		res.Attempts = append(res.Attempts, model.FetchAttempt{Strategy: s.Name(), Err: err.Error()})
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		_ = os.Remove(req.OutPath)
	}

	if len(errs) == 0 {
		return res, fmt.Errorf("%w for %s", ErrNoStrategy, req.Kind)
	}
	return res, fmt.Errorf("%w: %w", ErrAllStrategiesFailed, errors.Join(errs...))
}

func checkOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("output missing after fetch: %w", err)
	}
	if info.Size() == 0 {
		return errors.New("output is empty")
	}
	return nil
}

// partPath names an intermediate file next to the final output.
func partPath(outPath, tag string) string {
	return strings.TrimSuffix(outPath, extOf(outPath)) + "." + tag + ".part"
}

func extOf(p string) string {
	if i := strings.LastIndexByte(p, '.'); i > strings.LastIndexAny(p, `/\`) {
		return p[i:]
	}
	return ""
}
