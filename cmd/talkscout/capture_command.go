package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"talkscout/internal/capture"
	"talkscout/internal/catalog"
	"talkscout/internal/config"
	"talkscout/internal/logging"
	"talkscout/internal/preflight"
	"talkscout/internal/textutil"
)

func newCaptureCommand(ctx *commandContext) *cobra.Command {
	var fromCSV string
	var workers int

	cmd := &cobra.Command{
		Use:   "capture [url] [output_dir]",
		Short: "Download, extract audio from, and transcribe talks",
		Long: "Capture a single talk by URL, or every talk in a list written by " +
			"`talkscout list` when --from-csv is given. Existing artifacts are reused.",
		Args: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(fromCSV) != "" {
				return cobra.MaximumNArgs(1)(cmd, args)
			}
			return cobra.RangeArgs(1, 2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := preflight.Require(cfg); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if reset, err := store.ResetInterrupted(cmd.Context()); err != nil {
				logger.Warn("reset interrupted captures failed", logging.Error(err))
			} else if reset > 0 {
				logger.Info("marked interrupted captures as failed", logging.Int64("count", reset))
			}

			pipeline, err := capture.NewFromConfig(cfg, store, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if csvPath := strings.TrimSpace(fromCSV); csvPath != "" {
				base := cfg.Paths.OutputDir
				if len(args) == 1 {
					if base, err = config.ExpandPath(args[0]); err != nil {
						return fmt.Errorf("resolve output directory: %w", err)
					}
				}
				reqs, err := requestsFromCSV(csvPath, base)
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("workers") {
					workers = cfg.Capture.Workers
				}
				fmt.Fprintf(out, "Capturing %d talks with %d workers\n", len(reqs), workers)
				results, err := pipeline.RunBatch(cmd.Context(), reqs, workers)
				printBatchResults(out, results, err)
				return err
			}

			outputDir := cfg.Paths.OutputDir
			if len(args) == 2 {
				if outputDir, err = config.ExpandPath(args[1]); err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
			}
			if prev, err := store.LatestByURL(cmd.Context(), args[0]); err == nil && prev != nil {
				fmt.Fprintf(out, "Previous capture #%d (%s) in %s\n", prev.ID, prev.Status, prev.OutputDir)
			}
			result, err := pipeline.Run(cmd.Context(), capture.Request{URL: args[0], OutputDir: outputDir})
			if err != nil {
				return err
			}
			printCaptureResult(out, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromCSV, "from-csv", "", "Capture every row of a talk list CSV")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent captures for --from-csv (defaults to capture.workers)")
	return cmd
}

// requestsFromCSV turns talk list rows into capture requests. Each talk gets
// its own directory under base named after its title; a name already handed
// out gets the lowest free numeric suffix.
func requestsFromCSV(path, base string) ([]capture.Request, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve csv path: %w", err)
	}
	file, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("open talk list: %w", err)
	}
	defer file.Close()

	rows, err := catalog.ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("read talk list %s: %w", expanded, err)
	}
	if len(rows) == 0 {
		return nil, errors.New("talk list has no rows with a url")
	}

	used := make(map[string]struct{}, len(rows))
	reqs := make([]capture.Request, 0, len(rows))
	for _, row := range rows {
		stem := textutil.SafeBaseName(row.Title)
		name := stem
		for n := 2; ; n++ {
			if _, taken := used[name]; !taken {
				break
			}
			name = fmt.Sprintf("%s-%d", stem, n)
		}
		used[name] = struct{}{}
		reqs = append(reqs, capture.Request{
			URL:       row.URL,
			OutputDir: filepath.Join(base, name),
			Speaker:   row.Speaker,
		})
	}
	return reqs, nil
}

func printCaptureResult(out io.Writer, result capture.Result) {
	fmt.Fprintf(out, "Title:      %s\n", result.Title)
	fmt.Fprintf(out, "Speaker:    %s\n", result.Speaker)
	fmt.Fprintf(out, "Output:     %s\n", result.OutputDir)
	fmt.Fprintf(out, "Video:      %s\n", result.VideoPath)
	fmt.Fprintf(out, "Audio:      %s\n", result.AudioPath)
	if result.TranscriptPath != "" {
		fmt.Fprintf(out, "Transcript: %s\n", result.TranscriptPath)
	}
	if len(result.Reused) > 0 {
		fmt.Fprintf(out, "Reused:     %s\n", strings.Join(result.Reused, ", "))
	}
}

func printBatchResults(out io.Writer, results []capture.Result, batchErr error) {
	rows := make([][]string, 0, len(results))
	failed := 0
	for _, res := range results {
		title := res.Title
		if title == "" {
			title = res.URL
		}
		state := "ok"
		if res.Err != nil {
			state = "failed"
			failed++
		}
		rows = append(rows, []string{title, res.Speaker, state, res.OutputDir})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Title", "Speaker", "Result", "Output"},
		rows,
		nil,
	))
	fmt.Fprintf(out, "%d captured, %d failed\n", len(results)-failed, failed)
	if batchErr != nil && failed > 0 {
		fmt.Fprintln(out, "Failure details are recorded in `talkscout history`.")
	}
}
