package sources

import (
	"trend-audio-remux/internal"
	"trend-audio-remux/internal/logging"
	"trend-audio-remux/internal/media"
)

// BuildFetcher assembles the strategy chain named by cfg.FetchStrategies.
// The api strategy is left out when no endpoint is configured.
func BuildFetcher(cfg internal.Config, enc *media.Encoder, dl *Downloader, log *logging.Logger) *Fetcher {
	var chain []Strategy
	for _, name := range cfg.FetchStrategies {
		switch name {
		case "api":
			if cfg.ConvenienceAPIURL == "" {
				log.Infof("fetch: api strategy skipped, CONVENIENCE_API_URL not set")
				continue
			}
			chain = append(chain, NewAPIStrategy(cfg.ConvenienceAPIURL, cfg.ConvenienceAPIKey, cfg.ConvenienceAPIField, cfg.APITimeout, dl))
		case "extractor":
			chain = append(chain, NewExtractorStrategy(cfg.MaxVideoHeight, cfg.AudioBitrate, cfg.HTTPTimeout, enc, log))
		case "ytdlp":
			chain = append(chain, NewYtDlpStrategy(cfg.YtDlpPath, cfg.MaxVideoHeight, cfg.AudioBitrate))
		default:
			log.Warnf("fetch: unknown strategy %q ignored", name)
		}
	}
	f := NewFetcher(log, chain...)
	log.Infof("fetch: strategy chain %v", f.Strategies())
	return f
}
