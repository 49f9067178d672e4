package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var bitratePattern = regexp.MustCompile(`^[0-9]+k$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateListing(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateListing() error {
	if c.Listing.MaxResults < 1 || c.Listing.MaxResults > maxListingResults {
		return fmt.Errorf("listing.max_results must be between 1 and %d", maxListingResults)
	}
	return nil
}

func (c *Config) validateDownload() error {
	if c.Download.MergeFormat != "mp4" && c.Download.MergeFormat != "mkv" && c.Download.MergeFormat != "webm" {
		return fmt.Errorf("download.merge_format: unsupported value %q (expected mp4, mkv, or webm)", c.Download.MergeFormat)
	}
	return nil
}

func (c *Config) validateAudio() error {
	if !bitratePattern.MatchString(c.Audio.Bitrate) {
		return fmt.Errorf("audio.bitrate: invalid value %q (expected e.g. 192k)", c.Audio.Bitrate)
	}
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000 {
		return errors.New("audio.sample_rate must be between 8000 and 192000")
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("transcription.vad_method: unsupported value %q (expected silero or pyannote)", c.Transcription.VADMethod)
	}
	if c.Transcription.Enabled && c.Transcription.VADMethod == "pyannote" && c.Transcription.HFToken == "" {
		return errors.New("transcription.hf_token is required when vad_method is pyannote. Set HF_TOKEN env var or edit the config file")
	}
	return nil
}

func (c *Config) validateCapture() error {
	if c.Capture.Workers < 1 || c.Capture.Workers > maxCaptureWorkers {
		return fmt.Errorf("capture.workers must be between 1 and %d", maxCaptureWorkers)
	}
	if c.Capture.StartIntervalSeconds < 0 || c.Capture.StartIntervalSeconds > maxStartInterval {
		return fmt.Errorf("capture.start_interval_seconds must be between 0 and %d", maxStartInterval)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (expected console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
