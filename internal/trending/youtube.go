package trending

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"trend-audio-remux/internal/model"
)

// musicCategoryID is the YouTube "Music" video category.
const musicCategoryID = "10"

// YouTubeChart reads the mostPopular chart from the YouTube Data API.
type YouTubeChart struct {
	svc *youtube.Service
}

func NewYouTubeChart(ctx context.Context, apiKey string, opts ...option.ClientOption) (*YouTubeChart, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return &YouTubeChart{svc: svc}, nil
}

func (c *YouTubeChart) TopMusic(ctx context.Context, region string, n int) ([]model.Track, error) {
	resp, err := c.svc.Videos.List([]string{"snippet", "statistics"}).
		Chart("mostPopular").
		VideoCategoryId(musicCategoryID).
		RegionCode(region).
		MaxResults(int64(n)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("videos.list: %w", err)
	}

	tracks := make([]model.Track, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || item.Id == "" {
			continue
		}
		t := model.Track{VideoID: item.Id, URL: model.WatchURL(item.Id)}
		if item.Snippet != nil {
			t.Title = item.Snippet.Title
			t.Channel = item.Snippet.ChannelTitle
		}
		if item.Statistics != nil {
			t.ViewCount = item.Statistics.ViewCount
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}
