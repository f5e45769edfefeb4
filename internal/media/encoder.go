package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"trend-audio-remux/internal/logging"
	"trend-audio-remux/internal/metrics"
)

// Encoder runs ffmpeg graphs. A semaphore bounds the number of concurrent
// ffmpeg processes to avoid "pthread_create() failed" under load.
type Encoder struct {
	bin string
	sem chan struct{}
	log *logging.Logger
}

func NewEncoder(maxConcurrent int, log *logging.Logger) *Encoder {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Encoder{bin: "ffmpeg", sem: make(chan struct{}, maxConcurrent), log: log}
}

// Args returns the full ffmpeg argument list for a compiled graph.
func Args(stream *ffmpeg.Stream) []string {
	return append([]string{"-hide_banner", "-loglevel", "error"}, stream.GetArgs()...)
}

// Run executes the graph and verifies that output exists afterwards.
func (e *Encoder) Run(ctx context.Context, label string, stream *ffmpeg.Stream, output string) error {
	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-e.sem }()

	args := Args(stream)
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.bin, args...)
	cmd.Stderr = &stderr

	e.log.Infof("[FFMPEG] %s: executing ffmpeg -> %s", label, output)
	start := time.Now()
	err := cmd.Run()
	metrics.EncodeSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		errMsg := stderr.String()
		if errMsg == "" {
			errMsg = err.Error()
		}
		e.log.Errorf("[FFMPEG] %s: ffmpeg failed (%v): %s", label, err, errMsg)
		return fmt.Errorf("ffmpeg %s: %s", label, errMsg)
	}

	if _, err := os.Stat(output); err != nil {
		return fmt.Errorf("ffmpeg did not create output file: %s (%w)", output, err)
	}
	e.log.Infof("[FFMPEG] %s: done in %s", label, time.Since(start).Round(time.Millisecond))
	return nil
}
