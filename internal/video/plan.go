package video

import (
	"fmt"
	"math"
)

// LoopPlan describes how a track of length TrackDuration is laid out to cover
// a video of length VideoDuration: Loops copies placed back to back at
// Offsets, then trimmed to [0, TrimEnd]. The encoder realises this layout
// with ffmpeg's -stream_loop, which plays the copies sequentially at i*d.
type LoopPlan struct {
	VideoDuration float64
	TrackDuration float64
	Loops         int
	Offsets       []float64
	Span          float64 // Loops * TrackDuration
	TrimEnd       float64 // always VideoDuration
}

// PlanLoop computes the layout. Looping only happens when the video is
// strictly longer than the track, in which case floor(D/d)+1 copies are used.
func PlanLoop(videoDuration, trackDuration float64) (LoopPlan, error) {
	if videoDuration <= 0 || math.IsNaN(videoDuration) || math.IsInf(videoDuration, 0) {
		return LoopPlan{}, fmt.Errorf("invalid video duration %v", videoDuration)
	}
	if trackDuration <= 0 || math.IsNaN(trackDuration) || math.IsInf(trackDuration, 0) {
		return LoopPlan{}, fmt.Errorf("invalid track duration %v", trackDuration)
	}

	loops := 1
	if videoDuration > trackDuration {
		loops = int(math.Floor(videoDuration/trackDuration)) + 1
	}
	offsets := make([]float64, loops)
	for i := range offsets {
		offsets[i] = float64(i) * trackDuration
	}
	return LoopPlan{
		VideoDuration: videoDuration,
		TrackDuration: trackDuration,
		Loops:         loops,
		Offsets:       offsets,
		Span:          float64(loops) * trackDuration,
		TrimEnd:       videoDuration,
	}, nil
}
