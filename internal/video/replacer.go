// Package video strips the original audio from a video and replaces it with
// a trending track, looped and trimmed to the video's exact duration.
package video

import (
	"context"
	"fmt"
	"os"

	"github.com/mowshon/moviego"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"trend-audio-remux/internal/logging"
	"trend-audio-remux/internal/media"
	"trend-audio-remux/internal/metrics"
	"trend-audio-remux/internal/model"
	"trend-audio-remux/internal/scratch"
	"trend-audio-remux/internal/trending"
)

type TrackSelector interface {
	Select(ctx context.Context) (model.Track, trending.Tier)
}

type AudioFetcher interface {
	FetchAudio(ctx context.Context, url, outPath string) (*model.FetchResult, error)
}

type Runner interface {
	Run(ctx context.Context, label string, stream *ffmpeg.Stream, output string) error
}

type Replacer struct {
	selector TrackSelector
	fetcher  AudioFetcher
	enc      Runner
	scratch  *scratch.Dir
	bitrate  string
	log      *logging.Logger

	open  func(path string) (source, error)
	probe func(path string) (media.Info, error)
}

func NewReplacer(selector TrackSelector, fetcher AudioFetcher, enc Runner, dir *scratch.Dir, audioBitrate string, log *logging.Logger) *Replacer {
	if audioBitrate == "" {
		audioBitrate = "192k"
	}
	return &Replacer{
		selector: selector,
		fetcher:  fetcher,
		enc:      enc,
		scratch:  dir,
		bitrate:  audioBitrate,
		log:      log,
		open:     openVideo,
		probe:    media.Probe,
	}
}

// Replace writes outputPath: videoPath with its audio replaced by a freshly
// fetched trending track. When the track cannot be fetched the output is a
// re-encoded silent copy and Silent is set on the result.
func (r *Replacer) Replace(ctx context.Context, videoPath, outputPath string) (*model.ReplaceResult, error) {
	res, err := r.replace(ctx, videoPath, outputPath)
	switch {
	case err != nil:
		metrics.ReplacementsTotal.WithLabelValues("error").Inc()
	case res.Silent:
		metrics.ReplacementsTotal.WithLabelValues("silent").Inc()
	default:
		metrics.ReplacementsTotal.WithLabelValues("replaced").Inc()
		metrics.TrackLoops.Observe(float64(res.Loops))
	}
	return res, err
}

func (r *Replacer) replace(ctx context.Context, videoPath, outputPath string) (*model.ReplaceResult, error) {
	r.log.Infof("replace: START %s -> %s", videoPath, outputPath)

	src, err := r.open(videoPath)
	if err != nil {
		return nil, fmt.Errorf("open source video: %w", err)
	}
	vinfo, err := r.probe(videoPath)
	if err != nil {
		return nil, fmt.Errorf("probe source video: %w", err)
	}
	if !vinfo.HasVideo {
		return nil, fmt.Errorf("source %s has no video stream", videoPath)
	}
	// moviego reads format.duration only; fall back to the stream durations
	duration := src.Duration
	if duration <= 0 {
		duration = vinfo.Duration
	}
	res := &model.ReplaceResult{OutputPath: outputPath, VideoDuration: duration}
	r.log.Infof("replace: ✓ video %dx%d, duration %.2fs", src.Width, src.Height, duration)

	track, _ := r.selector.Select(ctx)
	res.Track = &track

	audioPath := r.scratch.Path(scratch.KindTrack, ".mp3")
	defer os.Remove(audioPath)

	if _, err := r.fetcher.FetchAudio(ctx, track.URL, audioPath); err != nil {
		r.log.Warnf("replace: failed to download trending song (%v), using silent video", err)
		res.Silent = true
		res.FetchError = err.Error()
		if err := r.enc.Run(ctx, "silent", media.SilentCopy(videoPath, outputPath), outputPath); err != nil {
			return nil, fmt.Errorf("encode silent video: %w", err)
		}
		return res, nil
	}

	ainfo, err := r.probe(audioPath)
	if err != nil {
		return nil, fmt.Errorf("probe track: %w", err)
	}
	plan, err := PlanLoop(duration, ainfo.Duration)
	if err != nil {
		return nil, err
	}
	res.TrackDuration = ainfo.Duration
	res.Loops = plan.Loops
	r.log.Infof("replace: track %.2fs, %d copies at %v spanning %.2fs, trimmed to %.2fs",
		plan.TrackDuration, plan.Loops, plan.Offsets, plan.Span, plan.TrimEnd)

	stream := media.ReplaceAudio(videoPath, audioPath, outputPath, plan.Loops, plan.TrimEnd, r.bitrate)
	if err := r.enc.Run(ctx, "replace", stream, outputPath); err != nil {
		return nil, fmt.Errorf("encode replaced audio: %w", err)
	}
	r.log.Infof("replace: ✓ done %s", outputPath)
	return res, nil
}

// source is what moviego reports about the input video.
type source struct {
	Duration float64
	Width    int64
	Height   int64
}

// openVideo loads the file through moviego, which validates it and reads its
// dimensions and duration. moviego panics on some malformed inputs.
func openVideo(path string) (src source, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("moviego.Load panicked: %v", rec)
		}
	}()
	vid, err := moviego.Load(path)
	if err != nil {
		return source{}, err
	}
	return source{Duration: vid.Duration(), Width: vid.Width(), Height: vid.Height()}, nil
}
