// Package server exposes the download and remux pipeline over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trend-audio-remux/internal/logging"
	"trend-audio-remux/internal/metrics"
	"trend-audio-remux/internal/model"
	"trend-audio-remux/internal/scratch"
)

type VideoFetcher interface {
	FetchVideo(ctx context.Context, url, outPath string) (*model.FetchResult, error)
	Strategies() []string
}

type Downloader interface {
	Download(ctx context.Context, url, outPath string) (int64, error)
}

type AudioReplacer interface {
	Replace(ctx context.Context, videoPath, outputPath string) (*model.ReplaceResult, error)
}

type Archiver interface {
	Archive(ctx context.Context, localPath string) (string, error)
}

type Notifier interface {
	Processed(filename string, res *model.ReplaceResult, archiveKey string)
}

type Options struct {
	YouTubeConfigured  bool
	RateLimitPerMinute int
	ErrorsLogPath      string
}

type Server struct {
	fetcher    VideoFetcher
	downloader Downloader
	replacer   AudioReplacer
	scratch    *scratch.Dir
	opts       Options
	log        *logging.Logger

	archiver Archiver
	notifier Notifier
}

func New(fetcher VideoFetcher, downloader Downloader, replacer AudioReplacer, dir *scratch.Dir, opts Options, log *logging.Logger) *Server {
	return &Server{
		fetcher:    fetcher,
		downloader: downloader,
		replacer:   replacer,
		scratch:    dir,
		opts:       opts,
		log:        log,
	}
}

// WithArchiver uploads every processed output after encoding.
func (s *Server) WithArchiver(a Archiver) *Server {
	s.archiver = a
	return s
}

// WithNotifier reports every processed output.
func (s *Server) WithNotifier(n Notifier) *Server {
	s.notifier = n
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/get-file/{filename}", s.handleGetFile)
	r.Get("/debug/errors", s.handleErrorsTail)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if s.opts.RateLimitPerMinute > 0 {
			r.Use(httprate.Limit(s.opts.RateLimitPerMinute, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					writeError(w, http.StatusTooManyRequests, "Too many requests")
				}),
			))
		}
		r.Post("/download", s.handleDownload)
		r.Post("/process-video", s.handleProcessVideo)
	})
	return r
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		if route != "/metrics" {
			metrics.RequestsTotal.WithLabelValues(route, outcome(ww.Status())).Inc()
		}
		s.log.Infof("http: %s %s -> %d (%d bytes, %s) req=%s", r.Method, r.URL.Path, ww.Status(),
			ww.BytesWritten(), time.Since(start).Round(time.Millisecond), middleware.GetReqID(r.Context()))
	})
}

func outcome(status int) string {
	switch {
	case status == 0 || status < 400:
		return "ok"
	case status == http.StatusNotFound:
		return "not_found"
	case status < 500:
		return "bad_request"
	default:
		return "error"
	}
}
