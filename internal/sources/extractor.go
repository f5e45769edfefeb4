package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"

	"trend-audio-remux/internal/logging"
	"trend-audio-remux/internal/media"
)

// ExtractorStrategy downloads YouTube media in-process with kkdai/youtube.
// Video is the best mp4 stream at or below maxHeight; when the best candidate
// is a video-only stream it is muxed with the best m4a audio stream.
type ExtractorStrategy struct {
	client    youtube.Client
	maxHeight int
	bitrate   string
	enc       *media.Encoder
	log       *logging.Logger
}

func NewExtractorStrategy(maxHeight int, audioBitrate string, timeout time.Duration, enc *media.Encoder, log *logging.Logger) *ExtractorStrategy {
	return &ExtractorStrategy{
		client:    youtube.Client{HTTPClient: &http.Client{Timeout: timeout}},
		maxHeight: maxHeight,
		bitrate:   audioBitrate,
		enc:       enc,
		log:       log,
	}
}

func (e *ExtractorStrategy) Name() string { return "extractor" }

func (e *ExtractorStrategy) Fetch(ctx context.Context, req Request) error {
	video, err := e.client.GetVideoContext(ctx, req.URL)
	if err != nil {
		return fmt.Errorf("get video: %w", err)
	}
	e.log.Infof("fetch: extractor resolved %q by %s (%d formats)", video.Title, video.Author, len(video.Formats))

	if req.Kind == KindAudio {
		return e.fetchAudio(ctx, video, req.OutPath)
	}
	return e.fetchVideo(ctx, video, req.OutPath)
}

func (e *ExtractorStrategy) fetchVideo(ctx context.Context, video *youtube.Video, outPath string) error {
	plan, err := planVideoFormats(video.Formats, e.maxHeight)
	if err != nil {
		return err
	}
	if plan.Muxed != nil {
		e.log.Infof("fetch: extractor using muxed itag %d (%s)", plan.Muxed.ItagNo, plan.Muxed.QualityLabel)
		return e.download(ctx, video, plan.Muxed, outPath)
	}

	e.log.Infof("fetch: extractor merging video itag %d (%s) with audio itag %d",
		plan.Video.ItagNo, plan.Video.QualityLabel, plan.Audio.ItagNo)
	videoPart := partPath(outPath, "video")
	audioPart := partPath(outPath, "audio")
	defer os.Remove(videoPart)
	defer os.Remove(audioPart)

	if err := e.download(ctx, video, plan.Video, videoPart); err != nil {
		return err
	}
	if err := e.download(ctx, video, plan.Audio, audioPart); err != nil {
		return err
	}
	return e.enc.Run(ctx, "merge", media.MergeStreams(videoPart, audioPart, outPath), outPath)
}

func (e *ExtractorStrategy) fetchAudio(ctx context.Context, video *youtube.Video, outPath string) error {
	format := bestAudioFormat(video.Formats, false)
	if format == nil {
		return fmt.Errorf("no audio formats for %s", video.ID)
	}
	source := partPath(outPath, "source")
	defer os.Remove(source)

	if err := e.download(ctx, video, format, source); err != nil {
		return err
	}
	return e.enc.Run(ctx, "mp3", media.TranscodeMP3(source, outPath, e.bitrate), outPath)
}

func (e *ExtractorStrategy) download(ctx context.Context, video *youtube.Video, format *youtube.Format, path string) error {
	stream, _, err := e.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return fmt.Errorf("get stream itag %d: %w", format.ItagNo, err)
	}
	defer stream.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	_, err = io.Copy(f, stream)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("copy stream itag %d: %w", format.ItagNo, err)
	}
	return nil
}

type formatPlan struct {
	Muxed *youtube.Format
	Video *youtube.Format
	Audio *youtube.Format
}

// planVideoFormats picks the highest mp4 stream not taller than maxHeight.
// A video-only stream is chosen only when it beats every muxed stream and a
// compatible audio stream exists.
func planVideoFormats(formats youtube.FormatList, maxHeight int) (formatPlan, error) {
	var muxed, videoOnly *youtube.Format
	for i := range formats {
		f := &formats[i]
		if !strings.HasPrefix(f.MimeType, "video/mp4") || f.Height <= 0 || (maxHeight > 0 && f.Height > maxHeight) {
			continue
		}
		if f.AudioChannels > 0 {
			if better(f, muxed) {
				muxed = f
			}
		} else if better(f, videoOnly) {
			videoOnly = f
		}
	}

	if videoOnly != nil && (muxed == nil || videoOnly.Height > muxed.Height) {
		if audio := bestAudioFormat(formats, true); audio != nil {
			return formatPlan{Video: videoOnly, Audio: audio}, nil
		}
	}
	if muxed != nil {
		return formatPlan{Muxed: muxed}, nil
	}
	return formatPlan{}, fmt.Errorf("no mp4 format at or below %dp", maxHeight)
}

func better(f, cur *youtube.Format) bool {
	if cur == nil {
		return true
	}
	if f.Height != cur.Height {
		return f.Height > cur.Height
	}
	return f.Bitrate > cur.Bitrate
}

// bestAudioFormat returns the highest bitrate audio-only stream. With mp4Only
// set, only audio/mp4 streams qualify so they can be muxed into an mp4 container.
func bestAudioFormat(formats youtube.FormatList, mp4Only bool) *youtube.Format {
	var best *youtube.Format
	for i := range formats {
		f := &formats[i]
		if f.AudioChannels <= 0 || !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		if mp4Only && !strings.HasPrefix(f.MimeType, "audio/mp4") {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	return best
}
