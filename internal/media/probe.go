package media

import (
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const probeTimeout = 30 * time.Second

// Info is the subset of ffprobe output the pipeline needs.
type Info struct {
	Duration float64 // seconds
	HasVideo bool
	HasAudio bool
}

// Probe runs ffprobe on path.
func Probe(path string) (Info, error) {
	out, err := ffmpeg.ProbeWithTimeout(path, probeTimeout, ffmpeg.KwArgs{})
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return ParseProbe([]byte(out))
}

// ParseProbe reads ffprobe -show_format -show_streams JSON. The container
// duration wins; the longest stream duration is used when it is absent.
func ParseProbe(data []byte) (Info, error) {
	if !gjson.ValidBytes(data) {
		return Info{}, errors.New("ffprobe: invalid json")
	}
	res := gjson.ParseBytes(data)

	var info Info
	var longest float64
	for _, s := range res.Get("streams").Array() {
		switch s.Get("codec_type").String() {
		case "video":
			info.HasVideo = true
		case "audio":
			info.HasAudio = true
		}
		longest = max(longest, s.Get("duration").Float())
	}
	info.Duration = res.Get("format.duration").Float()
	if info.Duration <= 0 {
		info.Duration = longest
	}
	if info.Duration <= 0 {
		return info, errors.New("ffprobe: no duration")
	}
	return info, nil
}
