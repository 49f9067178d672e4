package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"talkscout/internal/catalog"
	"talkscout/internal/config"
	"talkscout/internal/services/ytdlp"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var query string
	var maxResults int
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Search YouTube and write the talk list CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			req := catalog.Request{
				Query:      cfg.Listing.Query,
				MaxResults: cfg.Listing.MaxResults,
				OutputPath: cfg.Listing.CSVPath,
			}
			if cmd.Flags().Changed("query") {
				req.Query = strings.TrimSpace(query)
			}
			if cmd.Flags().Changed("max") {
				req.MaxResults = maxResults
			}
			if strings.TrimSpace(output) != "" {
				expanded, err := config.ExpandPath(strings.TrimSpace(output))
				if err != nil {
					return fmt.Errorf("resolve output path: %w", err)
				}
				req.OutputPath = expanded
			}
			if req.MaxResults < 1 {
				return fmt.Errorf("--max must be positive, got %d", req.MaxResults)
			}

			client := ytdlp.NewFromConfig(cfg.Download, ytdlp.WithLogger(logger))
			lister := catalog.NewLister(client, nil, logger)
			result, err := lister.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d talks to %s\n", len(result.Rows), result.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Search query (defaults to listing.query)")
	cmd.Flags().IntVarP(&maxResults, "max", "n", 0, "Maximum search results (defaults to listing.max_results)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV destination (defaults to listing.csv_path)")
	return cmd
}
