package capture

import (
	"errors"
	"log/slog"
	"time"

	"talkscout/internal/config"
	"talkscout/internal/history"
	"talkscout/internal/services/whisperx"
	"talkscout/internal/services/ytdlp"
)

// NewFromConfig builds a pipeline backed by yt-dlp, ffmpeg, and WhisperX.
// store may be nil to run without history.
func NewFromConfig(cfg *config.Config, store *history.Store, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("capture requires configuration")
	}
	video := ytdlp.NewFromConfig(cfg.Download, ytdlp.WithLogger(logger))
	audio := whisperx.NewService(whisperx.Config{
		Model:       cfg.Transcription.Model,
		Language:    cfg.Transcription.Language,
		CUDAEnabled: cfg.Transcription.CUDAEnabled,
		VADMethod:   cfg.Transcription.VADMethod,
		HFToken:     cfg.Transcription.HFToken,
	}, cfg.Audio.FFmpegBinary, whisperx.MP3Options{
		Bitrate:    cfg.Audio.Bitrate,
		SampleRate: cfg.Audio.SampleRate,
	})

	deps := Dependencies{
		Video:          video,
		Audio:          audio,
		Store:          store,
		Logger:         logger,
		Language:       cfg.Transcription.Language,
		StartInterval:  time.Duration(cfg.Capture.StartIntervalSeconds) * time.Second,
		VideoExtension: cfg.Download.MergeFormat,
	}
	if cfg.Transcription.Enabled {
		deps.Transcriber = audio
	}
	return NewPipeline(deps)
}
