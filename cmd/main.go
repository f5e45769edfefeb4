package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"trend-audio-remux/internal"
	"trend-audio-remux/internal/ai"
	"trend-audio-remux/internal/bot"
	"trend-audio-remux/internal/logging"
	"trend-audio-remux/internal/media"
	"trend-audio-remux/internal/s3"
	"trend-audio-remux/internal/scheduler"
	"trend-audio-remux/internal/scratch"
	"trend-audio-remux/internal/server"
	"trend-audio-remux/internal/sources"
	"trend-audio-remux/internal/trending"
	"trend-audio-remux/internal/video"
)

func main() {
	// Load .env file if it exists (try multiple paths)
	for _, path := range []string{".env", "../.env", "../../.env"} {
		_ = godotenv.Load(path)
	}

	cfg, err := internal.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.ErrorsLogPath)
	if err != nil {
		panic(err)
	}
	defer log.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg internal.Config, log *logging.Logger) error {
	dir, err := scratch.New(cfg.ScratchDir)
	if err != nil {
		return err
	}

	enc := media.NewEncoder(cfg.MaxConcurrentEncodes, log)
	dl := sources.NewDownloader(cfg.HTTPTimeout)
	fetcher := sources.BuildFetcher(cfg, enc, dl, log)

	var chart trending.ChartSource
	if cfg.YouTubeAPIKey != "" {
		yt, err := trending.NewYouTubeChart(ctx, cfg.YouTubeAPIKey)
		if err != nil {
			log.Warnf("trending: %v, using default track only", err)
		} else {
			chart = yt
		}
	} else {
		log.Infof("trending: YOUTUBE_API_KEY not set, using default track only")
	}

	var ranker trending.Ranker
	if cfg.GeminiAPIKey != "" {
		ranker = ai.NewRanker(cfg.GeminiAPIKey, cfg.GeminiModel, log)
	}

	selector := trending.NewSelector(chart, ranker, trending.Options{
		Region:     cfg.TrendingRegion,
		Candidates: cfg.TrendingCandidates,
		DefaultURL: cfg.DefaultTrackURL,
		Timeout:    cfg.APITimeout,
	}, log)
	replacer := video.NewReplacer(selector, fetcher, enc, dir, cfg.AudioBitrate, log)

	srv := server.New(fetcher, dl, replacer, dir, server.Options{
		YouTubeConfigured:  cfg.YouTubeAPIKey != "",
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ErrorsLogPath:      cfg.ErrorsLogPath,
	}, log)

	if cfg.S3Enabled() {
		client, err := s3.New(cfg)
		if err != nil {
			return fmt.Errorf("s3 client: %w", err)
		}
		srv.WithArchiver(s3.NewArchiver(client, cfg.S3Prefix, log))
	}

	var alerter scheduler.Alerter
	if cfg.TelegramEnabled() {
		n, err := bot.NewNotifier(cfg.TelegramToken, cfg.TelegramChatID, log)
		if err != nil {
			log.Errorf("telegram init: %v", err)
		} else {
			srv.WithNotifier(n)
			alerter = n
		}
	}

	sched, err := scheduler.New(dir, cfg.ScratchTTL, cfg.SweepSchedule, scheduler.NewResourceMonitor(alerter, log), log)
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	go func() {
		if err := sched.Run(ctx); err != nil {
			log.Errorf("scheduler stopped: %v", err)
		}
	}()

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("http: listening on %s (scratch %s)", httpSrv.Addr, dir.Root())
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Infof("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
