// Package ytdlp wraps the yt-dlp CLI for searching, probing, and downloading
// YouTube videos.
//
// Search returns the raw --flat-playlist JSON lines consumed by the catalog
// package. Metadata replaces page scraping with yt-dlp's -j output. Download
// writes to a ".part-download" path and renames it into place so an
// interrupted capture never leaves a truncated video at the final path.
// Command execution is abstracted behind Executor for tests.
package ytdlp
