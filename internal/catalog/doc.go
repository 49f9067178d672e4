// Package catalog builds the talk list: search results from yt-dlp are parsed,
// attributed to a speaker, and written as a title,speaker,url CSV.
//
// ReadCSV reads the same format back for batch captures.
package catalog
