package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "YOUTUBE_API_KEY", "FETCH_STRATEGIES", "SCRATCH_TTL", "SCRATCH_DIR", "GEMINI_API_KEY", "GOOGLE_API_KEY",
		"TRENDING_REGION", "TRENDING_CANDIDATES", "DEFAULT_TRACK_URL", "AUDIO_BITRATE", "S3_ENDPOINT", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID"} {
		t.Setenv(k, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "US", cfg.TrendingRegion)
	assert.Equal(t, 5, cfg.TrendingCandidates)
	assert.Equal(t, DefaultTrackURL, cfg.DefaultTrackURL)
	assert.Equal(t, filepath.Join(os.TempDir(), "trend-audio-remux"), cfg.ScratchDir)
	assert.Equal(t, []string{"api", "extractor", "ytdlp"}, cfg.FetchStrategies)
	assert.Equal(t, 24*time.Hour, cfg.ScratchTTL)
	assert.Equal(t, "192k", cfg.AudioBitrate)
	assert.False(t, cfg.S3Enabled())
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("YOUTUBE_API_KEY", "yt-key")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("TRENDING_REGION", "gb")
	t.Setenv("FETCH_STRATEGIES", " Extractor , ,ytdlp")
	t.Setenv("SCRATCH_TTL", "0")
	t.Setenv("MAX_VIDEO_HEIGHT", "not-a-number")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "yt-key", cfg.YouTubeAPIKey)
	assert.Equal(t, "google-key", cfg.GeminiAPIKey)
	assert.Equal(t, "GB", cfg.TrendingRegion)
	assert.Equal(t, []string{"extractor", "ytdlp"}, cfg.FetchStrategies)
	assert.Equal(t, time.Duration(0), cfg.ScratchTTL)
	assert.Equal(t, 720, cfg.MaxVideoHeight)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoadConfigRejectsBadPort(t *testing.T) {
	for _, port := range []string{"abc", "0", "70000"} {
		t.Run(port, func(t *testing.T) {
			t.Setenv("PORT", port)
			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}

func TestS3Enabled(t *testing.T) {
	cfg := Config{S3Endpoint: "http://minio:9000", S3Region: "us-east-1", S3Bucket: "b", S3AccessKey: "a"}
	assert.False(t, cfg.S3Enabled())
	cfg.S3SecretKey = "s"
	assert.True(t, cfg.S3Enabled())
}
