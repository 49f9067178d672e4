package deps

import (
	"talkscout/internal/config"
	"talkscout/internal/services/whisperx"
)

// ForConfig lists the binaries the configured pipeline invokes. uvx is only
// required when transcription is enabled.
func ForConfig(cfg *config.Config) []Requirement {
	if cfg == nil {
		return nil
	}
	return []Requirement{
		{
			Name:        "yt-dlp",
			Command:     cfg.Download.Binary,
			Description: "Required for search, metadata, and downloads",
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.Audio.FFmpegBinary,
			Description: "Required for audio extraction",
		},
		{
			Name:        "uvx",
			Command:     whisperx.UVXCommand,
			Description: "Runs WhisperX for transcription",
			Optional:    !cfg.Transcription.Enabled,
		},
	}
}
