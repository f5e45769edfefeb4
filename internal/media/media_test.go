package media

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trend-audio-remux/internal/logging"
)

func TestParseProbe(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    Info
		wantErr bool
	}{
		{
			name: "video with audio",
			json: `{"streams":[{"codec_type":"video","duration":"130.0"},{"codec_type":"audio","duration":"129.9"}],"format":{"duration":"130.033"}}`,
			want: Info{Duration: 130.033, HasVideo: true, HasAudio: true},
		},
		{
			name: "audio only",
			json: `{"streams":[{"codec_type":"audio"}],"format":{"duration":"47.0"}}`,
			want: Info{Duration: 47, HasAudio: true},
		},
		{
			name: "stream duration fallback",
			json: `{"streams":[{"codec_type":"video","duration":"12.5"}],"format":{}}`,
			want: Info{Duration: 12.5, HasVideo: true},
		},
		{
			name:    "no duration",
			json:    `{"streams":[{"codec_type":"video"}],"format":{}}`,
			wantErr: true,
		},
		{
			name:    "garbage",
			json:    `not json`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProbe([]byte(tt.json))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want.Duration, got.Duration, 1e-9)
			assert.Equal(t, tt.want.HasVideo, got.HasVideo)
			assert.Equal(t, tt.want.HasAudio, got.HasAudio)
		})
	}
}

func argString(t *testing.T, args []string) string {
	t.Helper()
	require.NotEmpty(t, args)
	return strings.Join(args, " ")
}

func TestReplaceAudioLoopsAndTrims(t *testing.T) {
	cmd := argString(t, Args(ReplaceAudio("in.mp4", "song.mp3", "out.mp4", 3, 130, "192k")))

	assert.Contains(t, cmd, "-stream_loop 2 -i song.mp3")
	assert.Contains(t, cmd, "-i in.mp4")
	assert.Contains(t, cmd, "atrim=")
	assert.Contains(t, cmd, "end=130.000")
	assert.Contains(t, cmd, "asetpts=PTS-STARTPTS")
	assert.Contains(t, cmd, "-t 130.000")
	assert.Contains(t, cmd, "-c:v libx264")
	assert.Contains(t, cmd, "-c:a aac")
	assert.Contains(t, cmd, "-b:a 192k")
	assert.Contains(t, cmd, " -y")
}

func TestReplaceAudioSingleCopy(t *testing.T) {
	cmd := argString(t, Args(ReplaceAudio("in.mp4", "song.mp3", "out.mp4", 1, 30, "192k")))
	assert.NotContains(t, cmd, "-stream_loop")
	assert.Contains(t, cmd, "end=30.000")
}

func TestSilentCopyHasNoAudio(t *testing.T) {
	cmd := argString(t, Args(SilentCopy("in.mp4", "out.mp4")))
	assert.Contains(t, cmd, "-map 0:v")
	assert.Contains(t, cmd, "-c:v libx264")
	assert.NotContains(t, cmd, "-c:a")
	assert.NotContains(t, cmd, "0:a")
}

func TestTranscodeMP3(t *testing.T) {
	cmd := argString(t, Args(TranscodeMP3("src.webm", "out.mp3", "192k")))
	assert.Contains(t, cmd, "-map 0:a")
	assert.Contains(t, cmd, "-c:a libmp3lame")
	assert.Contains(t, cmd, "-b:a 192k")
	assert.True(t, strings.HasPrefix(cmd, "-hide_banner -loglevel error"))
}

func TestMergeStreamsCopies(t *testing.T) {
	cmd := argString(t, Args(MergeStreams("v.mp4", "a.m4a", "out.mp4")))
	assert.Contains(t, cmd, "-c:v copy")
	assert.Contains(t, cmd, "-c:a copy")
	assert.Contains(t, cmd, "-i v.mp4")
	assert.Contains(t, cmd, "-i a.m4a")
}

func TestEncoderRunHonoursCancelledContext(t *testing.T) {
	e := NewEncoder(1, logging.Discard())
	e.sem <- struct{}{} // occupy the only slot

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := e.Run(ctx, "test", SilentCopy("in.mp4", "out.mp4"), "out.mp4")
	require.ErrorIs(t, err, context.Canceled)
}
