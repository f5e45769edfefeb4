// Package media builds and runs the ffmpeg graphs used by the fetcher and the
// audio replacer, and reads media durations through ffprobe.
package media

import (
	"fmt"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const (
	VideoCodec = "libx264"
	AudioCodec = "aac"
)

func seconds(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

// MergeStreams muxes a video-only and an audio-only file into one container
// without re-encoding.
func MergeStreams(videoPath, audioPath, output string) *ffmpeg.Stream {
	return ffmpeg.Output([]*ffmpeg.Stream{
		ffmpeg.Input(videoPath).Video(),
		ffmpeg.Input(audioPath).Audio(),
	}, output, ffmpeg.KwArgs{
		"c:v":      "copy",
		"c:a":      "copy",
		"movflags": "+faststart",
	}).OverWriteOutput()
}

// TranscodeMP3 extracts the audio of input into an MP3 file at a fixed bitrate.
func TranscodeMP3(input, output, bitrate string) *ffmpeg.Stream {
	return ffmpeg.Input(input).Audio().
		Output(output, ffmpeg.KwArgs{
			"c:a": "libmp3lame",
			"b:a": bitrate,
		}).OverWriteOutput()
}

// SilentCopy re-encodes only the video stream of input.
func SilentCopy(input, output string) *ffmpeg.Stream {
	return ffmpeg.Input(input).Video().
		Output(output, ffmpeg.KwArgs{
			"c:v":      VideoCodec,
			"pix_fmt":  "yuv420p",
			"movflags": "+faststart",
		}).OverWriteOutput()
}

// ReplaceAudio drops the audio of videoPath and attaches audioPath played
// loops times back to back, trimmed to [0, duration].
func ReplaceAudio(videoPath, audioPath, output string, loops int, duration float64, audioBitrate string) *ffmpeg.Stream {
	audioIn := ffmpeg.KwArgs{}
	if loops > 1 {
		// stream_loop counts extra plays after the first one
		audioIn["stream_loop"] = loops - 1
	}
	audio := ffmpeg.Input(audioPath, audioIn).Audio().
		Filter("atrim", ffmpeg.Args{}, ffmpeg.KwArgs{"start": "0", "end": seconds(duration)}).
		Filter("asetpts", ffmpeg.Args{"PTS-STARTPTS"})

	return ffmpeg.Output([]*ffmpeg.Stream{
		ffmpeg.Input(videoPath).Video(),
		audio,
	}, output, ffmpeg.KwArgs{
		"c:v":      VideoCodec,
		"c:a":      AudioCodec,
		"b:a":      audioBitrate,
		"pix_fmt":  "yuv420p",
		"t":        seconds(duration),
		"movflags": "+faststart",
	}).OverWriteOutput()
}
