package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Downloader streams a direct media URL to disk.
type Downloader struct {
	client *http.Client
}

func NewDownloader(timeout time.Duration) *Downloader {
	return &Downloader{client: &http.Client{Timeout: timeout}}
}

// Download writes the body of rawURL to outPath and returns the number of
// bytes written. A partial file is removed on failure.
func (d *Downloader) Download(ctx context.Context, rawURL, outPath string) (int64, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return 0, fmt.Errorf("invalid media url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("http %d for %s", resp.StatusCode, rawURL)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", outPath, err)
	}
	n, err := io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(outPath)
		return 0, fmt.Errorf("stream %s: %w", rawURL, err)
	}
	return n, nil
}
