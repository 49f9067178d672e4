package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"talkscout/internal/config"
	"talkscout/internal/fileutil"
	"talkscout/internal/logging"
)

// Defaults applied when Settings leaves a field empty.
const (
	DefaultBinary      = "yt-dlp"
	DefaultFormat      = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"
	DefaultMergeFormat = "mp4"

	// partSuffix marks an in-progress download next to its final path.
	partSuffix = ".part-download"
	// maxLineBytes bounds a single JSON line from -j output.
	maxLineBytes = 16 << 20
	// stderrTailBytes bounds the stderr excerpt attached to errors.
	stderrTailBytes = 4 << 10
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithLogger sets the logger used for download progress.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Settings controls how yt-dlp downloads videos.
type Settings struct {
	Format       string
	MergeFormat  string
	PlayerClient string
	UserAgent    string
	Timeout      time.Duration
}

// SettingsFromConfig maps the [download] config section.
func SettingsFromConfig(cfg config.Download) Settings {
	return Settings{
		Format:       cfg.Format,
		MergeFormat:  cfg.MergeFormat,
		PlayerClient: cfg.PlayerClient,
		UserAgent:    cfg.UserAgent,
		Timeout:      time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary   string
	settings Settings
	exec     Executor
	logger   *slog.Logger
}

// New constructs a yt-dlp client.
func New(binary string, settings Settings, opts ...Option) *Client {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	if strings.TrimSpace(settings.Format) == "" {
		settings.Format = DefaultFormat
	}
	if strings.TrimSpace(settings.MergeFormat) == "" {
		settings.MergeFormat = DefaultMergeFormat
	}
	client := &Client{
		binary:   binary,
		settings: settings,
		exec:     commandExecutor{},
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// NewFromConfig constructs a client from the [download] config section.
func NewFromConfig(cfg config.Download, opts ...Option) *Client {
	return New(cfg.Binary, SettingsFromConfig(cfg), opts...)
}

// Binary returns the yt-dlp executable name or path.
func (c *Client) Binary() string {
	return c.binary
}

// Search runs a flat YouTube search and returns the raw JSON lines, one
// entry per line.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]byte, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query required")
	}
	if maxResults <= 0 {
		return nil, fmt.Errorf("max results must be positive, got %d", maxResults)
	}
	var out bytes.Buffer
	err := c.exec.Run(ctx, c.binary, buildSearchArgs(query, maxResults), func(line string) {
		out.WriteString(line)
		out.WriteByte('\n')
	})
	if err != nil {
		return nil, fmt.Errorf("yt-dlp search: %w", err)
	}
	return out.Bytes(), nil
}

// VideoInfo holds the subset of yt-dlp metadata used for captures.
type VideoInfo struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Duration   float64 `json:"duration"`
	Channel    string  `json:"channel"`
	Uploader   string  `json:"uploader"`
	WebpageURL string  `json:"webpage_url"`
}

// ChannelName returns the channel, falling back to the uploader.
func (v VideoInfo) ChannelName() string {
	if channel := strings.TrimSpace(v.Channel); channel != "" {
		return channel
	}
	return strings.TrimSpace(v.Uploader)
}

// Metadata fetches metadata for a single video without downloading it.
func (c *Client) Metadata(ctx context.Context, url string) (VideoInfo, error) {
	var info VideoInfo
	url = strings.TrimSpace(url)
	if url == "" {
		return info, errors.New("video url required")
	}
	var lines []string
	if err := c.exec.Run(ctx, c.binary, buildMetadataArgs(url), func(line string) {
		lines = append(lines, line)
	}); err != nil {
		return info, fmt.Errorf("yt-dlp metadata: %w", err)
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") {
			continue
		}
		if err := json.Unmarshal([]byte(line), &info); err != nil {
			return VideoInfo{}, fmt.Errorf("parse yt-dlp metadata: %w", err)
		}
		return info, nil
	}
	return info, errors.New("yt-dlp metadata: no json output")
}

// PartPath returns the in-progress download path for dest. The extension is
// kept last so yt-dlp does not append the merge format a second time.
func PartPath(dest string) string {
	ext := filepath.Ext(dest)
	return strings.TrimSuffix(dest, ext) + partSuffix + ext
}

// Download fetches url into dest. The video is written to PartPath(dest)
// first and renamed into place once yt-dlp exits cleanly.
func (c *Client) Download(ctx context.Context, url, dest string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return errors.New("video url required")
	}
	if dest == "" {
		return errors.New("destination path required")
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	partPath := PartPath(dest)
	if err := fileutil.RemoveIfExists(partPath); err != nil {
		return fmt.Errorf("remove stale download: %w", err)
	}

	downloadCtx := ctx
	if c.settings.Timeout > 0 {
		var cancel context.CancelFunc
		downloadCtx, cancel = context.WithTimeout(ctx, c.settings.Timeout)
		defer cancel()
	}

	logger := logging.WithContext(ctx, c.logger)
	sampler := logging.NewProgressSampler(10)
	err := c.exec.Run(downloadCtx, c.binary, c.buildDownloadArgs(url, partPath), func(line string) {
		update, ok := parseProgress(line)
		if !ok || !sampler.ShouldLog(update.Percent, update.Phase) {
			return
		}
		attrs := []logging.Attr{logging.String("phase", update.Phase)}
		if update.Percent >= 0 {
			attrs = append(attrs, logging.String("progress", strconv.FormatFloat(update.Percent, 'f', 1, 64)+"%"))
		}
		if update.Message != "" {
			attrs = append(attrs, logging.String("detail", update.Message))
		}
		logger.Info("download progress", logging.Args(attrs...)...)
	})
	if err != nil {
		_ = fileutil.RemoveIfExists(partPath)
		if errors.Is(downloadCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("yt-dlp download timed out after %s: %w", c.settings.Timeout, err)
		}
		return fmt.Errorf("yt-dlp download: %w", err)
	}

	if !fileutil.NonEmptyFile(partPath) {
		return fmt.Errorf("yt-dlp produced no output file at %s", partPath)
	}
	if err := os.Rename(partPath, dest); err != nil {
		return fmt.Errorf("finalize download: %w", err)
	}
	return nil
}

func buildSearchArgs(query string, maxResults int) []string {
	return []string{
		fmt.Sprintf("ytsearch%d:%s", maxResults, query),
		"--flat-playlist",
		"-j",
		"--no-warnings",
	}
}

func buildMetadataArgs(url string) []string {
	return []string{"-j", "--no-playlist", "--no-warnings", url}
}

func (c *Client) buildDownloadArgs(url, output string) []string {
	args := []string{
		"-f", c.settings.Format,
		"--merge-output-format", c.settings.MergeFormat,
	}
	if client := strings.TrimSpace(c.settings.PlayerClient); client != "" {
		args = append(args, "--extractor-args", "youtube:player_client="+client)
	}
	if ua := strings.TrimSpace(c.settings.UserAgent); ua != "" {
		args = append(args, "--user-agent", ua)
	}
	args = append(args,
		"--no-playlist",
		"--no-warnings",
		"--newline",
		"-o", output,
		url,
	)
	return args
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	stderr := &tailBuffer{limit: stderrTailBytes}
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start command: %w", err)
	}

	scanErr := scanLines(stdout, onStdout)
	if scanErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fmt.Errorf("scan output: %w", scanErr)
	}

	if err := cmd.Wait(); err != nil {
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return fmt.Errorf("wait command: %w: %s", err, detail)
		}
		return fmt.Errorf("wait command: %w", err)
	}
	return nil
}

func scanLines(r io.Reader, forward func(string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
	for scanner.Scan() {
		if forward != nil {
			forward(scanner.Text())
		}
	}
	return scanner.Err()
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
