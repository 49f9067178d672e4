package catalog

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"talkscout/internal/logging"
	"talkscout/internal/speaker"
)

// maxLineBytes bounds a single yt-dlp JSON line.
const maxLineBytes = 16 << 20

// Header is the column order of talk list CSV files.
var Header = []string{"title", "speaker", "url"}

// Entry is one search result from yt-dlp --flat-playlist output.
type Entry struct {
	Title   string
	URL     string
	Channel string
}

// Row is one line of the talk list.
type Row struct {
	Title   string
	Speaker string
	URL     string
}

type flatEntry struct {
	Type       string `json:"_type"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	WebpageURL string `json:"webpage_url"`
	Channel    string `json:"channel"`
	Uploader   string `json:"uploader"`
}

// ParseEntries decodes yt-dlp JSON lines. Lines that are blank, malformed, or
// not of type "url" are skipped.
func ParseEntries(r io.Reader, logger *slog.Logger) ([]Entry, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineBytes)

	var entries []Entry
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var raw flatEntry
		if err := json.Unmarshal(line, &raw); err != nil {
			logger.Debug("skipping malformed search line",
				logging.Int("line", lineNo),
				logging.Error(err),
			)
			continue
		}
		if raw.Type != "url" {
			continue
		}
		entries = append(entries, Entry{
			Title:   raw.Title,
			URL:     firstNonEmpty(raw.URL, raw.WebpageURL),
			Channel: firstNonEmpty(raw.Channel, raw.Uploader),
		})
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("read search results: %w", err)
	}
	return entries, nil
}

// Attribute attributes a speaker to every entry, keeping input order. The
// entry's channel is the fallback when no rule matches. A nil chain uses the
// default rule set.
func Attribute(entries []Entry, chain *speaker.Chain) []Row {
	if chain == nil {
		chain = speaker.DefaultChain()
	}
	rows := make([]Row, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, Row{
			Title:   entry.Title,
			Speaker: chain.Extract(entry.Title, entry.Channel),
			URL:     entry.URL,
		})
	}
	return rows
}

// WriteCSV writes rows with a title,speaker,url header. Records end in CRLF
// as RFC 4180 specifies.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.Title, row.Speaker, row.URL}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ErrMissingHeader is returned by ReadCSV when the first record is not the
// talk list header.
var ErrMissingHeader = errors.New("csv header must contain title, speaker, and url columns")

// ReadCSV reads a talk list. Columns are located by header name so extra
// columns and reordering are tolerated. Rows without a URL are skipped.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	for _, col := range Header {
		if _, ok := index[col]; !ok {
			return nil, ErrMissingHeader
		}
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("read csv: %w", err)
		}
		row := Row{
			Title:   field(record, index["title"]),
			Speaker: field(record, index["speaker"]),
			URL:     strings.TrimSpace(field(record, index["url"])),
		}
		if row.URL == "" {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
