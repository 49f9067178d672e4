package logging

import "time"

// formatTimestamp renders console timestamps in local time to the second.
func formatTimestamp(ts time.Time) string {
	return ts.Local().Format("2006-01-02 15:04:05")
}
