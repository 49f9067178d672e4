// Package services defines shared utilities consumed by the capture pipeline
// and the external tool adapters (yt-dlp, ffmpeg, WhisperX).
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, video URLs, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent history statuses (failed vs review).
//
// Use these helpers when wiring new pipeline steps so error handling and
// observability stay uniform.
package services
