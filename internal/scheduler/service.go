// Package scheduler runs the periodic housekeeping of the service: the
// scratch-directory sweep and the resource check.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"

	"trend-audio-remux/internal/logging"
	"trend-audio-remux/internal/metrics"
)

type Sweeper interface {
	Sweep(ttl time.Duration) ([]string, error)
}

type Service struct {
	log     *logging.Logger
	cron    *cron.Cron
	sweeper Sweeper
	ttl     time.Duration
	monitor *ResourceMonitor
}

// New registers the sweep on spec (cron syntax with a seconds field). A zero
// ttl leaves the sweep unscheduled. monitor may be nil.
func New(sweeper Sweeper, ttl time.Duration, spec string, monitor *ResourceMonitor, log *logging.Logger) (*Service, error) {
	c := cron.New(cron.WithSeconds())
	s := &Service{log: log, cron: c, sweeper: sweeper, ttl: ttl, monitor: monitor}

	if ttl > 0 {
		if _, err := c.AddFunc(spec, func() { s.SweepOnce() }); err != nil {
			return nil, err
		}
		log.Infof("cron: scratch sweep scheduled %q (ttl %s)", spec, ttl)
	} else {
		log.Infof("cron: scratch sweep disabled")
	}

	if monitor != nil {
		if _, err := c.AddFunc(monitorSpec, monitor.Check); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// SweepOnce deletes expired scratch files and returns how many were removed.
func (s *Service) SweepOnce() int {
	removed, err := s.sweeper.Sweep(s.ttl)
	if err != nil {
		s.log.Errorf("cron sweep: %v", err)
	}
	if len(removed) > 0 {
		metrics.ScratchEvictionsTotal.Add(float64(len(removed)))
		s.log.Infof("cron: evicted %d scratch file(s)", len(removed))
	}
	return len(removed)
}

func (s *Service) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()

	ctxStop := s.cron.Stop()
	select {
	case <-ctxStop.Done():
		return nil
	case <-time.After(10 * time.Second):
		return errors.New("cron stop timeout")
	}
}

// Entries reports the number of registered jobs.
func (s *Service) Entries() int {
	return len(s.cron.Entries())
}
