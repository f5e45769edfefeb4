package trending

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestYouTubeChartTopMusic(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/videos") {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		gotQuery = map[string]string{
			"chart":           q.Get("chart"),
			"videoCategoryId": q.Get("videoCategoryId"),
			"regionCode":      q.Get("regionCode"),
			"maxResults":      q.Get("maxResults"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{"id": "abc", "snippet": {"title": "Hit", "channelTitle": "Artist"}, "statistics": {"viewCount": "1500"}},
				{"id": "", "snippet": {"title": "broken"}},
				{"id": "def", "snippet": {"title": "Other", "channelTitle": "Band"}}
			]
		}`))
	}))
	defer srv.Close()

	chart, err := NewYouTubeChart(context.Background(), "test-key",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	tracks, err := chart.TopMusic(context.Background(), "US", 5)
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	assert.Equal(t, "https://www.youtube.com/watch?v=abc", tracks[0].URL)
	assert.Equal(t, "Hit", tracks[0].Title)
	assert.Equal(t, "Artist", tracks[0].Channel)
	assert.Equal(t, uint64(1500), tracks[0].ViewCount)
	assert.Equal(t, uint64(0), tracks[1].ViewCount)

	assert.Equal(t, map[string]string{
		"chart":           "mostPopular",
		"videoCategoryId": "10",
		"regionCode":      "US",
		"maxResults":      "5",
	}, gotQuery)
}

func TestYouTubeChartError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"quota"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	chart, err := NewYouTubeChart(context.Background(), "test-key",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	_, err = chart.TopMusic(context.Background(), "US", 5)
	require.Error(t, err)
}
