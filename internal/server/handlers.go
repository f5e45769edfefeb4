package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"trend-audio-remux/internal/bot"
	"trend-audio-remux/internal/model"
	"trend-audio-remux/internal/scratch"
)

const (
	msgNoURL         = "No video URL provided"
	msgDownloadFail  = "Failed to download video"
	msgProcessFail   = "Failed to process video"
	msgFileNotFound  = "File not found"
	defaultTailLines = 50
	maxTailLines     = 1000
)

type videoRequest struct {
	VideoURL string `json:"videoUrl"`
}

type downloadResponse struct {
	Success  bool   `json:"success"`
	FileURL  string `json:"fileUrl"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Strategy string `json:"strategy,omitempty"`
}

type processResponse struct {
	Success          bool         `json:"success"`
	ProcessedFileURL string       `json:"processedFileUrl"`
	Filename         string       `json:"filename"`
	Size             int64        `json:"size"`
	Silent           bool         `json:"silent"`
	Track            *model.Track `json:"track,omitempty"`
	Loops            int          `json:"loops,omitempty"`
	ArchiveKey       string       `json:"archiveKey,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// readVideoURL decodes the request body. A body that is not JSON counts as
// a missing URL.
func readVideoURL(w http.ResponseWriter, r *http.Request) string {
	var req videoRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024)).Decode(&req); err != nil {
		return ""
	}
	return req.VideoURL
}

func fileURL(path string) string {
	return "/get-file/" + filepath.Base(path)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	videoURL := readVideoURL(w, r)
	if videoURL == "" {
		writeError(w, http.StatusBadRequest, msgNoURL)
		return
	}

	out := s.scratch.Path(scratch.KindVideo, ".mp4")
	res, err := s.fetcher.FetchVideo(r.Context(), videoURL, out)
	if err != nil {
		s.log.Errorf("http: download %s: %v", videoURL, err)
		writeError(w, http.StatusInternalServerError, msgDownloadFail)
		return
	}
	st, err := os.Stat(res.Path)
	if err != nil {
		s.log.Errorf("http: download %s: %v", videoURL, err)
		writeError(w, http.StatusInternalServerError, msgDownloadFail)
		return
	}

	writeJSON(w, http.StatusOK, downloadResponse{
		Success:  true,
		FileURL:  fileURL(res.Path),
		Filename: filepath.Base(res.Path),
		Size:     st.Size(),
		Strategy: res.Strategy,
	})
}

func (s *Server) handleProcessVideo(w http.ResponseWriter, r *http.Request) {
	videoURL := readVideoURL(w, r)
	if videoURL == "" {
		writeError(w, http.StatusBadRequest, msgNoURL)
		return
	}
	ctx := r.Context()

	input := s.scratch.Path(scratch.KindInput, ".mp4")
	defer os.Remove(input)

	if _, err := s.downloader.Download(ctx, videoURL, input); err != nil {
		s.log.Errorf("http: process-video fetch %s: %v", videoURL, err)
		writeError(w, http.StatusInternalServerError, msgProcessFail)
		return
	}

	output := s.scratch.Path(scratch.KindOutput, ".mp4")
	res, err := s.replacer.Replace(ctx, input, output)
	if err != nil {
		s.log.Errorf("http: process-video %s: %v", videoURL, err)
		writeError(w, http.StatusInternalServerError, msgProcessFail)
		return
	}
	st, err := os.Stat(res.OutputPath)
	if err != nil {
		s.log.Errorf("http: process-video %s: output missing: %v", videoURL, err)
		writeError(w, http.StatusInternalServerError, msgProcessFail)
		return
	}

	resp := processResponse{
		Success:          true,
		ProcessedFileURL: fileURL(res.OutputPath),
		Filename:         filepath.Base(res.OutputPath),
		Size:             st.Size(),
		Silent:           res.Silent,
		Track:            res.Track,
		Loops:            res.Loops,
	}
	if s.archiver != nil {
		key, err := s.archiver.Archive(ctx, res.OutputPath)
		if err != nil {
			s.log.Errorf("http: %v", err)
		} else {
			resp.ArchiveKey = key
		}
	}
	if s.notifier != nil {
		s.notifier.Processed(resp.Filename, res, resp.ArchiveKey)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	path, err := s.scratch.Resolve(name)
	if err != nil {
		if !errors.Is(err, scratch.ErrNotFound) && !errors.Is(err, scratch.ErrInvalidName) {
			s.log.Errorf("http: get-file %q: %v", name, err)
		}
		writeError(w, http.StatusNotFound, msgFileNotFound)
		return
	}

	f, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusNotFound, msgFileNotFound)
		return
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusNotFound, msgFileNotFound)
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, st.ModTime(), f)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":               "healthy",
		"youtubeApiConfigured": s.opts.YouTubeConfigured,
		"archiveConfigured":    s.archiver != nil,
		"notifierConfigured":   s.notifier != nil,
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":         "trend-audio-remux",
		"description":     "Downloads videos and replaces their audio with a trending song",
		"fetchStrategies": s.fetcher.Strategies(),
		"endpoints": []string{
			"POST /download",
			"POST /process-video",
			"GET /get-file/{filename}",
			"GET /health",
			"GET /metrics",
			"GET /debug/errors?n=",
		},
	})
}

func (s *Server) handleErrorsTail(w http.ResponseWriter, r *http.Request) {
	n := defaultTailLines
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = min(parsed, maxTailLines)
	}

	lines := []string{}
	if s.opts.ErrorsLogPath != "" {
		got, err := bot.TailLastNLines(s.opts.ErrorsLogPath, n)
		switch {
		case err == nil:
			lines = got
		case !os.IsNotExist(err):
			writeError(w, http.StatusInternalServerError, "Failed to read errors log")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"lines": lines})
}
