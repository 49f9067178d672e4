package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"talkscout/internal/history"
	"talkscout/internal/logging"
	"talkscout/internal/services"
	"talkscout/internal/services/whisperx"
	"talkscout/internal/services/ytdlp"
	"talkscout/internal/speaker"
	"talkscout/internal/textutil"
)

// LockFileName is created in each output directory while a capture runs.
const LockFileName = ".talkscout.lock"

// MetadataFileName holds the capture metadata inside the output directory.
const MetadataFileName = "metadata.json"

// ErrCaptureInProgress reports that another capture holds the output
// directory lock.
var ErrCaptureInProgress = errors.New("another capture is using this output directory")

// VideoService fetches video metadata and media.
type VideoService interface {
	Metadata(ctx context.Context, url string) (ytdlp.VideoInfo, error)
	Download(ctx context.Context, url, dest string) error
}

// AudioService extracts audio tracks from a downloaded video.
type AudioService interface {
	ExtractMP3(ctx context.Context, source, dest string) error
	ExtractWAV(ctx context.Context, source, dest string) error
}

// Transcriber converts speech in an audio file to text.
type Transcriber interface {
	TranscribeFile(ctx context.Context, source, outputDir, language string) (whisperx.TranscribeResult, error)
}

// Dependencies wires the collaborators of a Pipeline. Store and Transcriber
// are optional; a nil Transcriber disables transcription.
type Dependencies struct {
	Video          VideoService
	Audio          AudioService
	Transcriber    Transcriber
	Store          *history.Store
	Chain          *speaker.Chain
	Logger         *slog.Logger
	Language       string
	StartInterval  time.Duration
	VideoExtension string // container yt-dlp merges into; empty means mp4
}

// Request describes a single capture.
type Request struct {
	URL       string
	OutputDir string
	// Channel is the speaker fallback; empty uses the video's channel.
	Channel string
	// Speaker, when set, is recorded as-is instead of attributing one from
	// the title. Talk lists carry operator-corrected names this way.
	Speaker string
}

// Result reports the artifacts of a capture.
type Result struct {
	RunID          string
	RecordID       int64
	URL            string
	Title          string
	Speaker        string
	OutputDir      string
	MetadataPath   string
	VideoPath      string
	AudioPath      string
	TranscriptPath string
	DetailedPath   string
	// Reused lists artifacts that already existed and were not regenerated.
	Reused []string
	// Err is the capture's failure when the result comes from RunBatch.
	Err error
}

// Pipeline captures a talk: metadata, video, audio, and transcript.
type Pipeline struct {
	video         VideoService
	audio         AudioService
	transcriber   Transcriber
	store         *history.Store
	chain         *speaker.Chain
	logger        *slog.Logger
	language      string
	startInterval time.Duration
	videoExt      string

	now      func() time.Time
	newRunID func() string
}

// NewPipeline validates dependencies and constructs a pipeline.
func NewPipeline(deps Dependencies) (*Pipeline, error) {
	if deps.Video == nil || deps.Audio == nil {
		return nil, errors.New("capture pipeline requires video and audio services")
	}
	chain := deps.Chain
	if chain == nil {
		chain = speaker.DefaultChain()
	}
	videoExt := strings.TrimPrefix(strings.TrimSpace(deps.VideoExtension), ".")
	if videoExt == "" {
		videoExt = "mp4"
	}
	return &Pipeline{
		video:         deps.Video,
		audio:         deps.Audio,
		transcriber:   deps.Transcriber,
		store:         deps.Store,
		chain:         chain,
		logger:        logging.NewComponentLogger(deps.Logger, "capture"),
		language:      deps.Language,
		startInterval: deps.StartInterval,
		videoExt:      videoExt,
		now:           time.Now,
		newRunID:      uuid.NewString,
	}, nil
}

// TranscriptionEnabled reports whether captures produce transcripts.
func (p *Pipeline) TranscriptionEnabled() bool {
	return p.transcriber != nil
}

// Run performs one capture. Existing video and audio files in the output
// directory are reused, so an interrupted capture can be resumed by running
// it again.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	result := Result{URL: strings.TrimSpace(req.URL), OutputDir: strings.TrimSpace(req.OutputDir)}
	if result.URL == "" {
		return result, services.Wrap(services.ErrValidation, "capture", "validate request", "video url required", nil)
	}
	if result.OutputDir == "" {
		return result, services.Wrap(services.ErrValidation, "capture", "validate request", "output directory required", nil)
	}
	if err := os.MkdirAll(result.OutputDir, 0o755); err != nil {
		return result, services.Wrap(services.ErrConfiguration, "capture", "create output directory", result.OutputDir, err)
	}

	lock := flock.New(filepath.Join(result.OutputDir, LockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return result, fmt.Errorf("acquire capture lock: %w", err)
	}
	if !locked {
		return result, fmt.Errorf("%w: %s", ErrCaptureInProgress, result.OutputDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			p.logger.Warn("failed to release capture lock", logging.Error(err))
		}
	}()

	result.RunID = p.newRunID()
	ctx = services.WithRunID(ctx, result.RunID)
	ctx = services.WithVideoURL(ctx, result.URL)
	logger := logging.WithContext(ctx, p.logger)

	rec := p.createRecord(ctx, logger, &result)
	start := p.now()
	logger.Info("capture started",
		logging.String(logging.FieldEventType, "capture_start"),
		logging.String("output_dir", result.OutputDir),
		logging.Bool("transcription", p.TranscriptionEnabled()),
	)

	if err := p.execute(ctx, req, rec, &result); err != nil {
		p.recordFailure(ctx, rec, err)
		if errors.Is(err, context.Canceled) {
			logger.Info("capture interrupted", logging.String(logging.FieldEventType, "capture_interrupted"))
			return result, err
		}
		logging.ErrorWithContext(logger, "capture failed", "capture_failed",
			logging.String("resolved_status", string(services.FailureStatus(err))),
			logging.Error(err),
		)
		return result, err
	}

	p.updateRecord(ctx, rec, history.StatusCompleted, &result)
	logger.Info("capture completed",
		logging.String(logging.FieldEventType, "capture_complete"),
		logging.String("title", result.Title),
		logging.String("speaker", result.Speaker),
		logging.Int("reused_artifacts", len(result.Reused)),
		logging.Duration("duration", p.now().Sub(start)),
	)
	return result, nil
}

func (p *Pipeline) execute(ctx context.Context, req Request, rec *history.Record, result *Result) error {
	info, err := p.fetchMetadata(services.WithStage(ctx, "metadata"), req, result)
	if err != nil {
		return err
	}
	p.updateRecord(ctx, rec, history.StatusDownloading, result)

	base := textutil.SafeBaseName(result.Title)
	result.VideoPath = filepath.Join(result.OutputDir, base+"."+p.videoExt)
	result.AudioPath = filepath.Join(result.OutputDir, base+".mp3")
	if err := p.writeMetadata(ctx, info, result); err != nil {
		return err
	}

	if err := p.downloadVideo(services.WithStage(ctx, "download"), result); err != nil {
		return err
	}

	p.updateRecord(ctx, rec, history.StatusExtracting, result)
	if err := p.extractAudio(services.WithStage(ctx, "extract"), result); err != nil {
		return err
	}

	if p.transcriber == nil {
		return nil
	}
	p.updateRecord(ctx, rec, history.StatusTranscribing, result)
	return p.transcribe(services.WithStage(ctx, "transcribe"), base, result)
}

func (p *Pipeline) createRecord(ctx context.Context, logger *slog.Logger, result *Result) *history.Record {
	if p.store == nil {
		return nil
	}
	rec, err := p.store.Create(ctx, &history.Record{
		RunID:     result.RunID,
		URL:       result.URL,
		Status:    history.StatusPending,
		OutputDir: result.OutputDir,
	})
	if err != nil {
		logging.WarnWithContext(logger, "failed to record capture in history", "history_write_failed",
			logging.String(logging.FieldImpact, "capture continues without a history entry"),
			logging.Error(err),
		)
		return nil
	}
	result.RecordID = rec.ID
	return rec
}

func (p *Pipeline) updateRecord(ctx context.Context, rec *history.Record, status history.Status, result *Result) {
	if p.store == nil || rec == nil {
		return
	}
	rec.Status = status
	rec.Title = result.Title
	rec.Speaker = result.Speaker
	rec.VideoPath = result.VideoPath
	rec.AudioPath = result.AudioPath
	rec.TranscriptPath = result.TranscriptPath
	if status != history.StatusFailed && status != history.StatusReview {
		rec.ErrorMessage = ""
	}
	if err := p.store.Update(ctx, rec); err != nil {
		logging.WithContext(ctx, p.logger).Warn("failed to update capture history",
			logging.String("status", string(status)),
			logging.Error(err),
		)
	}
}

func (p *Pipeline) recordFailure(ctx context.Context, rec *history.Record, err error) {
	if p.store == nil || rec == nil {
		return
	}
	status := services.FailureStatus(err)
	message := err.Error()
	if errors.Is(err, context.Canceled) {
		status = history.StatusFailed
		message = history.InterruptedReason
	}
	rec.Status = status
	rec.ErrorMessage = message
	// The run context may already be cancelled; the failure must still persist.
	if updateErr := p.store.Update(context.WithoutCancel(ctx), rec); updateErr != nil {
		logging.WithContext(ctx, p.logger).Error("failed to persist capture failure", logging.Error(updateErr))
	}
}
