package internal

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const DefaultTrackURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

// DefaultScratchDir is a service-owned directory under the OS temp dir, so
// the sweep never sees other programs' files.
func DefaultScratchDir() string {
	return filepath.Join(os.TempDir(), "trend-audio-remux")
}

type Config struct {
	Port int

	YouTubeAPIKey      string
	TrendingRegion     string
	TrendingCandidates int
	DefaultTrackURL    string

	GeminiAPIKey string
	GeminiModel  string

	ScratchDir     string
	MaxVideoHeight int
	AudioBitrate   string

	// FetchStrategies is the ordered fallback chain: "api", "extractor", "ytdlp".
	FetchStrategies     []string
	ConvenienceAPIURL   string
	ConvenienceAPIKey   string
	ConvenienceAPIField string
	YtDlpPath           string

	HTTPTimeout time.Duration // direct media downloads
	APITimeout  time.Duration // ranking source, heuristic and convenience API calls

	MaxConcurrentEncodes int

	ScratchTTL    time.Duration // 0 disables eviction
	SweepSchedule string        // cron spec with seconds field

	RateLimitPerMinute int // 0 disables

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Prefix    string

	TelegramToken  string
	TelegramChatID int64

	ErrorsLogPath string
}

func LoadConfig() (Config, error) {
	cfg := Config{
		Port: 5000,

		YouTubeAPIKey:      os.Getenv("YOUTUBE_API_KEY"),
		TrendingRegion:     "US",
		TrendingCandidates: 5,
		DefaultTrackURL:    DefaultTrackURL,

		GeminiAPIKey: firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY")),
		GeminiModel:  "gemini-2.0-flash",

		ScratchDir:     DefaultScratchDir(),
		MaxVideoHeight: 720,
		AudioBitrate:   "192k",

		FetchStrategies:     []string{"api", "extractor", "ytdlp"},
		ConvenienceAPIURL:   os.Getenv("CONVENIENCE_API_URL"),
		ConvenienceAPIKey:   os.Getenv("CONVENIENCE_API_KEY"),
		ConvenienceAPIField: "downloadUrl",
		YtDlpPath:           "yt-dlp",

		HTTPTimeout: 300 * time.Second,
		APITimeout:  10 * time.Second,

		MaxConcurrentEncodes: 1,

		ScratchTTL:    24 * time.Hour,
		SweepSchedule: "0 */10 * * * *",

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    os.Getenv("S3_REGION"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3AccessKey: firstNonEmpty(os.Getenv("S3_ACCESS_KEY"), os.Getenv("S3_ACCESS_KEY_ID")),
		S3SecretKey: firstNonEmpty(os.Getenv("S3_SECRET_ACCESS_KEY"), os.Getenv("S3_SECRET_KEY")),
		S3Prefix:    "processed/",

		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),

		ErrorsLogPath: "errors.log",
	}

	if v := os.Getenv("PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 65535 {
			return cfg, errors.New("PORT must be a number in 1..65535")
		}
		cfg.Port = n
	}

	if v := os.Getenv("TRENDING_REGION"); v != "" {
		cfg.TrendingRegion = strings.ToUpper(v)
	}
	if v := os.Getenv("TRENDING_CANDIDATES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
			cfg.TrendingCandidates = n
		}
	}
	if v := os.Getenv("DEFAULT_TRACK_URL"); v != "" {
		cfg.DefaultTrackURL = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}

	if v := os.Getenv("SCRATCH_DIR"); v != "" {
		cfg.ScratchDir = v
	}
	if v := os.Getenv("MAX_VIDEO_HEIGHT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxVideoHeight = n
		}
	}
	if v := os.Getenv("AUDIO_BITRATE"); v != "" {
		cfg.AudioBitrate = v
	}

	if v := os.Getenv("FETCH_STRATEGIES"); v != "" {
		var names []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(strings.ToLower(s)); s != "" {
				names = append(names, s)
			}
		}
		if len(names) > 0 {
			cfg.FetchStrategies = names
		}
	}
	if v := os.Getenv("CONVENIENCE_API_FIELD"); v != "" {
		cfg.ConvenienceAPIField = v
	}
	if v := os.Getenv("YTDLP_PATH"); v != "" {
		cfg.YtDlpPath = v
	}

	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.HTTPTimeout = d
		}
	}
	if v := os.Getenv("API_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.APITimeout = d
		}
	}

	if v := os.Getenv("MAX_CONCURRENT_ENCODES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxConcurrentEncodes = n
		}
	}

	// SCRATCH_TTL=0 turns the sweep off
	if v := os.Getenv("SCRATCH_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.ScratchTTL = d
		}
	}
	if v := os.Getenv("SWEEP_SCHEDULE"); v != "" {
		cfg.SweepSchedule = v
	}

	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.RateLimitPerMinute = n
		}
	}

	if v := os.Getenv("S3_PREFIX"); v != "" {
		cfg.S3Prefix = v
	}

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TelegramChatID = n
		}
	}

	if v := os.Getenv("ERRORS_LOG"); v != "" {
		cfg.ErrorsLogPath = v
	}

	return cfg, nil
}

// S3Enabled reports whether every S3_* setting needed for archiving is present.
func (c Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3Region != "" && c.S3Bucket != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

func firstNonEmpty(v ...string) string {
	for _, s := range v {
		if s != "" {
			return s
		}
	}
	return ""
}
