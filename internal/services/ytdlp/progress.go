package ytdlp

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Progress captures a yt-dlp progress line. Percent is negative when the
// line carries no percentage.
type Progress struct {
	Phase   string
	Percent float64
	Message string
}

// parseProgress understands the --newline output of yt-dlp:
//
//	[download] Destination: talk.f137.mp4
//	[download]  45.3% of ~ 12.34MiB at 1.23MiB/s ETA 00:10
//	[Merger] Merging formats into "talk.mp4"
func parseProgress(line string) (Progress, bool) {
	line = strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, "[download]"):
		payload := strings.TrimSpace(strings.TrimPrefix(line, "[download]"))
		if dest, ok := strings.CutPrefix(payload, "Destination:"); ok {
			return Progress{Phase: "download " + filepath.Base(strings.TrimSpace(dest)), Percent: -1}, true
		}
		field, rest, _ := strings.Cut(payload, " ")
		pct, ok := strings.CutSuffix(field, "%")
		if !ok {
			return Progress{}, false
		}
		value, err := strconv.ParseFloat(pct, 64)
		if err != nil {
			return Progress{}, false
		}
		return Progress{Phase: "download", Percent: value, Message: strings.TrimSpace(rest)}, true
	case strings.HasPrefix(line, "[Merger]"):
		return Progress{Phase: "merge", Percent: -1, Message: strings.TrimSpace(strings.TrimPrefix(line, "[Merger]"))}, true
	}
	return Progress{}, false
}
