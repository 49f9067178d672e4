package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/h2non/filetype"

	"talkscout/internal/fileutil"
	"talkscout/internal/logging"
	"talkscout/internal/services"
	"talkscout/internal/services/whisperx"
	"talkscout/internal/services/ytdlp"
)

// Metadata is the content of metadata.json.
type Metadata struct {
	URL        string  `json:"url"`
	Title      string  `json:"title"`
	Speaker    string  `json:"speaker"`
	Duration   float64 `json:"duration"`
	Channel    string  `json:"channel"`
	CapturedAt string  `json:"captured_at"`
	RunID      string  `json:"run_id"`
}

// stepError wraps a failed step. Cancellation is reported as such so callers
// can tell an interrupted capture from a broken one.
func stepError(ctx context.Context, marker error, stage, op, msg string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", stage, ctxErr)
	}
	return services.Wrap(marker, stage, op, msg, err)
}

func (p *Pipeline) fetchMetadata(ctx context.Context, req Request, result *Result) (ytdlp.VideoInfo, error) {
	logger := logging.WithContext(ctx, p.logger)
	info, err := p.video.Metadata(ctx, result.URL)
	if err != nil {
		return info, stepError(ctx, services.ErrExternalTool, "metadata", "read video", "yt-dlp could not read the video page", err)
	}

	result.Title = strings.TrimSpace(info.Title)
	channel := strings.TrimSpace(req.Channel)
	if channel == "" {
		channel = info.ChannelName()
	}
	if name := strings.TrimSpace(req.Speaker); name != "" {
		result.Speaker = name
	} else {
		result.Speaker = p.chain.Extract(result.Title, channel)
	}

	logger.Info("video metadata fetched",
		logging.String("title", result.Title),
		logging.String("speaker", result.Speaker),
		logging.String("channel", channel),
		logging.Duration("length", time.Duration(info.Duration*float64(time.Second))),
	)
	if result.Title == "" {
		logging.WarnWithContext(logger, "video has no title", "missing_title",
			logging.String(logging.FieldImpact, "files are named with the default base name"),
		)
	}
	return info, nil
}

func (p *Pipeline) writeMetadata(ctx context.Context, info ytdlp.VideoInfo, result *Result) error {
	channel := info.ChannelName()
	meta := Metadata{
		URL:        result.URL,
		Title:      result.Title,
		Speaker:    result.Speaker,
		Duration:   info.Duration,
		Channel:    channel,
		CapturedAt: p.now().UTC().Format(time.RFC3339),
		RunID:      result.RunID,
	}
	path := filepath.Join(result.OutputDir, MetadataFileName)
	err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	})
	if err != nil {
		return stepError(ctx, services.ErrConfiguration, "metadata", "write metadata", path, err)
	}
	result.MetadataPath = path
	return nil
}

func (p *Pipeline) downloadVideo(ctx context.Context, result *Result) error {
	logger := logging.WithContext(ctx, p.logger)
	path := result.VideoPath

	if isVideoFile(path) {
		logger.Info("video already downloaded", logging.String("path", path))
		result.Reused = append(result.Reused, path)
		return nil
	}
	if fileutil.NonEmptyFile(path) {
		logging.WarnWithContext(logger, "existing file is not a video; downloading again", "invalid_video",
			logging.String("path", path),
			logging.String(logging.FieldImpact, "previous file is replaced"),
		)
		if err := fileutil.RemoveIfExists(path); err != nil {
			return stepError(ctx, services.ErrConfiguration, "download", "remove invalid video", path, err)
		}
	}

	logger.Info("downloading video", logging.String("path", path))
	if err := p.video.Download(ctx, result.URL, path); err != nil {
		return stepError(ctx, services.ErrExternalTool, "download", "yt-dlp download", "", err)
	}
	if !isVideoFile(path) {
		return services.Wrap(services.ErrExternalTool, "download", "verify video", "downloaded file is not a recognized video container", nil)
	}
	logger.Info("video downloaded", logging.String("path", path))
	return nil
}

func (p *Pipeline) extractAudio(ctx context.Context, result *Result) error {
	logger := logging.WithContext(ctx, p.logger)
	path := result.AudioPath

	if fileutil.NonEmptyFile(path) {
		logger.Info("audio already extracted", logging.String("path", path))
		result.Reused = append(result.Reused, path)
		return nil
	}
	if err := p.audio.ExtractMP3(ctx, result.VideoPath, path); err != nil {
		return stepError(ctx, services.ErrExternalTool, "extract", "ffmpeg mp3", "", err)
	}
	if !fileutil.NonEmptyFile(path) {
		return services.Wrap(services.ErrExternalTool, "extract", "verify audio", "ffmpeg produced no audio", nil)
	}
	logger.Info("audio extracted", logging.String("path", path))
	return nil
}

func (p *Pipeline) transcribe(ctx context.Context, base string, result *Result) error {
	logger := logging.WithContext(ctx, p.logger)
	txtPath := filepath.Join(result.OutputDir, base+".txt")
	detailedPath := whisperx.DetailedPath(txtPath)

	// An empty .txt is a finished transcript of a silent talk; the detailed
	// JSON is always written with content.
	if fileutil.RegularFile(txtPath) && fileutil.NonEmptyFile(detailedPath) {
		logger.Info("transcript already present", logging.String("path", txtPath))
		result.TranscriptPath = txtPath
		result.DetailedPath = detailedPath
		result.Reused = append(result.Reused, txtPath, detailedPath)
		return nil
	}

	workDir, err := os.MkdirTemp(result.OutputDir, ".talkscout-work-")
	if err != nil {
		return stepError(ctx, services.ErrConfiguration, "transcribe", "create work directory", result.OutputDir, err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warn("failed to remove transcription work directory", logging.String("path", workDir), logging.Error(err))
		}
	}()

	wavPath := filepath.Join(workDir, "audio.wav")
	if err := p.audio.ExtractWAV(ctx, result.VideoPath, wavPath); err != nil {
		return stepError(ctx, services.ErrExternalTool, "transcribe", "ffmpeg wav", "", err)
	}

	logger.Info("transcribing audio", logging.String("language", p.language))
	transcript, err := p.transcriber.TranscribeFile(ctx, wavPath, workDir, p.language)
	if err != nil {
		return stepError(ctx, services.ErrExternalTool, "transcribe", "whisperx", "", err)
	}
	if strings.TrimSpace(transcript.Text) == "" {
		logging.WarnWithContext(logger, "transcript is empty", "empty_transcript",
			logging.String(logging.FieldImpact, "text file is written without content and reused by later runs"),
		)
	}

	written, err := whisperx.WriteTranscript(transcript, txtPath)
	if err != nil {
		return stepError(ctx, services.ErrConfiguration, "transcribe", "write transcript", txtPath, err)
	}
	result.TranscriptPath = txtPath
	result.DetailedPath = written
	logger.Info("transcript written",
		logging.String("path", txtPath),
		logging.String("detected_language", transcript.Language),
		logging.Int("segments", len(transcript.Segments)),
	)
	return nil
}

// isVideoFile sniffs the container signature of path.
func isVideoFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return false
	}
	return filetype.IsVideo(head[:n])
}
