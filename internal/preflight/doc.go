// Package preflight provides readiness checks for the filesystem paths and
// external binaries that talkscout depends on.
//
// These checks run in two contexts:
//   - The capture and list commands call Require before doing any work, so a
//     missing yt-dlp fails fast instead of partway through a batch.
//   - The "talkscout status" command renders every Result for the operator.
//
// uvx is only required when transcription is enabled.
package preflight
