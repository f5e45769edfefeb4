package model

import "fmt"

// Track is a candidate song returned by the trending selector.
type Track struct {
	URL       string `json:"url"`
	VideoID   string `json:"video_id,omitempty"`
	Title     string `json:"title,omitempty"`
	Channel   string `json:"channel,omitempty"`
	ViewCount uint64 `json:"view_count,omitempty"`
}

// WatchURL builds the canonical YouTube watch link for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func (t Track) String() string {
	if t.Title == "" {
		return t.URL
	}
	return fmt.Sprintf("%s — %s (%s)", t.Channel, t.Title, t.URL)
}

// FetchAttempt records a single strategy run inside a fetch chain.
type FetchAttempt struct {
	Strategy string `json:"strategy"`
	Err      string `json:"error,omitempty"`
}

// FetchResult is the outcome of a fetch chain. Path is exactly the path the
// caller asked for.
type FetchResult struct {
	Path     string         `json:"path"`
	Strategy string         `json:"strategy"`
	Attempts []FetchAttempt `json:"attempts"`
}

// ReplaceResult describes one audio replacement run.
type ReplaceResult struct {
	OutputPath    string  `json:"output_path"`
	Track         *Track  `json:"track,omitempty"`
	Silent        bool    `json:"silent"`
	Loops         int     `json:"loops"`
	VideoDuration float64 `json:"video_duration_s"`
	TrackDuration float64 `json:"track_duration_s,omitempty"`
	// FetchError is set when the track could not be fetched and a silent copy was produced.
	FetchError string `json:"fetch_error,omitempty"`
}
