package ytdlp

import (
	"context"
	"errors"
	"strings"
	"time"

	goytdlp "github.com/lrstanley/go-ytdlp"

	"vidqueue/internal/services"
)

const progressInterval = 500 * time.Millisecond

// Info is the subset of extracted metadata vidqueue consumes.
type Info struct {
	Title string
}

// Progress captures a download progress sample.
type Progress struct {
	Downloaded int64
	Total      int64
	Percent    float64
	ETA        time.Duration
}

// DownloadOptions controls a single download.
type DownloadOptions struct {
	Format         string
	OutputTemplate string
	ExtractAudio   bool
	AudioFormat    string
	AudioQuality   string
	Progress       func(Progress)
}

// Client wraps yt-dlp invocations.
type Client struct {
	binary             string
	ffmpegDir          string
	noCheckCertificate bool
	restrictFilenames  bool
}

// Option configures the client.
type Option func(*Client)

// WithFFmpegDir points yt-dlp at a directory holding ffmpeg and ffprobe.
func WithFFmpegDir(dir string) Option {
	return func(c *Client) {
		c.ffmpegDir = strings.TrimSpace(dir)
	}
}

// WithNoCheckCertificate disables TLS certificate validation in yt-dlp.
func WithNoCheckCertificate(enabled bool) Option {
	return func(c *Client) {
		c.noCheckCertificate = enabled
	}
}

// WithRestrictFilenames limits output names to ASCII without spaces or "&".
func WithRestrictFilenames(enabled bool) Option {
	return func(c *Client) {
		c.restrictFilenames = enabled
	}
}

// New constructs a yt-dlp client. An empty binary leaves resolution to PATH.
func New(binary string, opts ...Option) *Client {
	client := &Client{binary: strings.TrimSpace(binary)}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Metadata resolves the media title for url without downloading anything.
func (c *Client) Metadata(ctx context.Context, url string) (Info, error) {
	cmd := c.base().SkipDownload().DumpSingleJSON()
	result, err := cmd.Run(ctx, url)
	if err != nil {
		return Info{}, c.wrap("metadata", result, err)
	}
	extracted, err := result.GetExtractedInfo()
	if err != nil {
		return Info{}, services.Wrap(services.ErrExternalTool, "ytdlp", "metadata", "decode extracted info", err)
	}
	if len(extracted) == 0 || extracted[0] == nil {
		return Info{}, services.Wrap(services.ErrExternalTool, "ytdlp", "metadata", "no extracted info", nil)
	}
	info := Info{}
	if title := extracted[0].Title; title != nil {
		info.Title = strings.TrimSpace(*title)
	}
	return info, nil
}

// Download fetches url using opts.
func (c *Client) Download(ctx context.Context, url string, opts DownloadOptions) error {
	if strings.TrimSpace(opts.OutputTemplate) == "" {
		return services.Wrap(services.ErrValidation, "ytdlp", "download", "output template required", nil)
	}
	cmd := c.base().Output(opts.OutputTemplate)
	if format := strings.TrimSpace(opts.Format); format != "" {
		cmd = cmd.Format(format)
	}
	if opts.ExtractAudio {
		cmd = cmd.ExtractAudio()
		if opts.AudioFormat != "" {
			cmd = cmd.AudioFormat(opts.AudioFormat)
		}
		if opts.AudioQuality != "" {
			cmd = cmd.AudioQuality(opts.AudioQuality)
		}
	}
	if opts.Progress != nil {
		report := opts.Progress
		cmd = cmd.ProgressFunc(progressInterval, func(update goytdlp.ProgressUpdate) {
			report(convertProgress(update))
		})
	}
	result, err := cmd.Run(ctx, url)
	if err != nil {
		return c.wrap("download", result, err)
	}
	return nil
}

func (c *Client) base() *goytdlp.Command {
	cmd := goytdlp.New().NoPlaylist()
	if c.binary != "" {
		cmd = cmd.SetExecutable(c.binary)
	}
	if c.ffmpegDir != "" {
		cmd = cmd.FFmpegLocation(c.ffmpegDir)
	}
	if c.noCheckCertificate {
		cmd = cmd.NoCheckCertificates()
	}
	if c.restrictFilenames {
		cmd = cmd.RestrictFilenames()
	}
	return cmd
}

func (c *Client) wrap(op string, result *goytdlp.Result, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	message := "yt-dlp failed"
	if result != nil {
		if line := lastErrorLine(result.Stderr); line != "" {
			message = line
		}
	}
	return services.Wrap(services.ErrExternalTool, "ytdlp", op, message, err)
}

// lastErrorLine returns the final "ERROR:" line yt-dlp printed, falling back
// to the last non-empty line.
func lastErrorLine(stderr string) string {
	lines := strings.Split(stderr, "\n")
	var fallback string
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "ERROR:") {
			return line
		}
		if fallback == "" {
			fallback = line
		}
	}
	return fallback
}

func convertProgress(update goytdlp.ProgressUpdate) Progress {
	p := Progress{
		Downloaded: int64(update.DownloadedBytes),
		Total:      int64(update.TotalBytes),
	}
	if p.Total > 0 {
		p.Percent = float64(p.Downloaded) / float64(p.Total) * 100
	}
	if eta := update.ETA(); eta > 0 {
		p.ETA = eta
	}
	return p
}
