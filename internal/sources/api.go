package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

// APIStrategy asks a remote convenience API for a direct media link and then
// streams that link to disk. Only video is supported.
type APIStrategy struct {
	endpoint string
	apiKey   string
	field    string
	client   *http.Client
	dl       *Downloader
}

func NewAPIStrategy(endpoint, apiKey, field string, timeout time.Duration, dl *Downloader) *APIStrategy {
	if field == "" {
		field = "downloadUrl"
	}
	return &APIStrategy{
		endpoint: endpoint,
		apiKey:   apiKey,
		field:    field,
		client:   &http.Client{Timeout: timeout},
		dl:       dl,
	}
}

func (a *APIStrategy) Name() string { return "api" }

func (a *APIStrategy) Fetch(ctx context.Context, req Request) error {
	if req.Kind != KindVideo {
		return ErrUnsupported
	}
	link, err := a.resolve(ctx, req.URL)
	if err != nil {
		return err
	}
	_, err = a.dl.Download(ctx, link, req.OutPath)
	return err
}

func (a *APIStrategy) resolve(ctx context.Context, videoURL string) (string, error) {
	u, err := url.Parse(a.endpoint)
	if err != nil {
		return "", fmt.Errorf("api endpoint: %w", err)
	}
	q := u.Query()
	q.Set("url", videoURL)
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	if a.apiKey != "" {
		httpReq.Header.Set("X-API-Key", a.apiKey)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api http %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("api read: %w", err)
	}
	link := gjson.GetBytes(body, a.field).String()
	if link == "" {
		return "", fmt.Errorf("api response has no %q field", a.field)
	}
	return link, nil
}
