// Package deps reports whether the external binaries talkscout shells out
// to (yt-dlp, ffmpeg, uvx) can be resolved on PATH.
package deps
