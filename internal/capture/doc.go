// Package capture runs the per-video capture pipeline.
//
// A capture locks its output directory, reads the video metadata with yt-dlp,
// attributes a speaker, writes metadata.json, then downloads the video,
// extracts an MP3 listening copy, and (when enabled) transcribes the talk
// with WhisperX. Each step is recorded in the history store. Artifacts that
// already exist are reused, so re-running an interrupted capture resumes it.
//
// RunBatch captures many videos with bounded concurrency and paced starts.
package capture
