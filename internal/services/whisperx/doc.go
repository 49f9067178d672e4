// Package whisperx wraps ffmpeg and WhisperX for capture audio processing.
//
// This package handles:
//   - MP3 extraction for the listening copy kept with each capture
//   - 16kHz mono WAV extraction for transcription
//   - WhisperX invocation through uvx and JSON result loading
//   - Writing plain text and detailed (timed) transcripts
//
// Configuration options (model, language, CUDA, VAD method) are passed via
// Config. Command execution can be replaced with WithCommandRunner.
package whisperx
