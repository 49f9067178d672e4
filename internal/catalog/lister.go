package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"talkscout/internal/fileutil"
	"talkscout/internal/logging"
	"talkscout/internal/services"
	"talkscout/internal/speaker"
)

// Searcher returns raw yt-dlp --flat-playlist JSON lines for a query.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]byte, error)
}

// Request describes one listing run.
type Request struct {
	Query      string
	MaxResults int
	OutputPath string
}

// Result reports what a listing run produced.
type Result struct {
	Rows       []Row
	OutputPath string
}

// Lister searches YouTube, attributes speakers, and writes the talk list.
type Lister struct {
	searcher Searcher
	chain    *speaker.Chain
	logger   *slog.Logger
}

// NewLister constructs a lister. A nil chain uses the default rule set.
func NewLister(searcher Searcher, chain *speaker.Chain, logger *slog.Logger) *Lister {
	if chain == nil {
		chain = speaker.DefaultChain()
	}
	return &Lister{
		searcher: searcher,
		chain:    chain,
		logger:   logging.NewComponentLogger(logger, "catalog"),
	}
}

// Run executes a listing. The CSV is replaced atomically so an existing list
// survives a failed run.
func (l *Lister) Run(ctx context.Context, req Request) (Result, error) {
	var result Result
	if l.searcher == nil {
		return result, services.Wrap(services.ErrConfiguration, "listing", "search", "no searcher configured", nil)
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return result, services.Wrap(services.ErrValidation, "listing", "search", "query required", nil)
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return result, services.Wrap(services.ErrValidation, "listing", "write csv", "output path required", nil)
	}

	ctx = services.WithStage(ctx, "listing")
	logger := logging.WithContext(ctx, l.logger)
	logger.Info("searching youtube",
		logging.String("query", query),
		logging.Int("max_results", req.MaxResults),
	)

	raw, err := l.searcher.Search(ctx, query, req.MaxResults)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return result, err
		}
		return result, services.Wrap(services.ErrExternalTool, "listing", "search", "yt-dlp search failed", err)
	}

	entries, err := ParseEntries(bytes.NewReader(raw), logger)
	if err != nil {
		return result, services.Wrap(services.ErrExternalTool, "listing", "parse", "unreadable search output", err)
	}
	rows := Attribute(entries, l.chain)

	if err := fileutil.WriteAtomic(req.OutputPath, 0o644, func(w io.Writer) error {
		return WriteCSV(w, rows)
	}); err != nil {
		return result, fmt.Errorf("write talk list: %w", err)
	}

	attributed := 0
	for i, row := range rows {
		if row.Speaker != "" && row.Speaker != entries[i].Channel {
			attributed++
		}
	}
	logger.Info("talk list written",
		logging.String("path", req.OutputPath),
		logging.Int("rows", len(rows)),
		logging.Int("attributed_from_title", attributed),
	)

	result.Rows = rows
	result.OutputPath = req.OutputPath
	return result, nil
}
