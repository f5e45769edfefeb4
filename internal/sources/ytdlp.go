package sources

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const ytdlpTimeout = 10 * time.Minute

// YtDlpStrategy shells out to yt-dlp. The output template is derived from the
// requested path so the file always lands exactly at req.OutPath.
type YtDlpStrategy struct {
	bin       string
	maxHeight int
	bitrate   string
	run       func(ctx context.Context, name string, args ...string) error
}

func NewYtDlpStrategy(bin string, maxHeight int, audioBitrate string) *YtDlpStrategy {
	if bin == "" {
		bin = "yt-dlp"
	}
	return &YtDlpStrategy{bin: bin, maxHeight: maxHeight, bitrate: audioBitrate, run: runCommand}
}

func (y *YtDlpStrategy) Name() string { return "ytdlp" }

func (y *YtDlpStrategy) Fetch(ctx context.Context, req Request) error {
	ctx, cancel := context.WithTimeout(ctx, ytdlpTimeout)
	defer cancel()
	return y.run(ctx, y.bin, y.args(req)...)
}

func (y *YtDlpStrategy) args(req Request) []string {
	args := []string{"--no-playlist", "--no-warnings", "--quiet", "--force-overwrites"}
	if req.Kind == KindAudio {
		// yt-dlp picks the extension itself; the template stem plus mp3 gives OutPath
		stem := strings.TrimSuffix(req.OutPath, extOf(req.OutPath))
		return append(args,
			"-f", "bestaudio/best",
			"-x",
			"--audio-format", "mp3",
			"--audio-quality", strings.ToUpper(y.bitrate),
			"-o", stem+".%(ext)s",
			req.URL,
		)
	}
	h := y.maxHeight
	return append(args,
		"-f", fmt.Sprintf("bv*[height<=%d][ext=mp4]+ba[ext=m4a]/b[height<=%d][ext=mp4]/b[height<=%d]", h, h, h),
		"--merge-output-format", "mp4",
		"-o", req.OutPath,
		req.URL,
	)
}

func runCommand(ctx context.Context, name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
