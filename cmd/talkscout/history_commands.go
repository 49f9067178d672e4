package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"talkscout/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage capture history",
	}

	listCmd := newHistoryListCommand(ctx)
	historyCmd.RunE = listCmd.RunE
	historyCmd.Flags().AddFlagSet(listCmd.Flags())

	historyCmd.AddCommand(listCmd)
	historyCmd.AddCommand(newHistoryRemoveCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var statusFlags []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded captures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]history.Status, 0, len(statusFlags))
			for _, value := range statusFlags {
				status, err := history.ParseStatus(value)
				if err != nil {
					return err
				}
				statuses = append(statuses, status)
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No captures recorded")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Status", "Speaker", "Title", "Updated", "Detail"},
				historyRows(records),
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&statusFlags, "status", "s", nil, "Filter by status (repeatable)")
	return cmd
}

func historyRows(records []*history.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		title := rec.Title
		if title == "" {
			title = rec.URL
		}
		detail := rec.ErrorMessage
		if detail == "" {
			detail = rec.OutputDir
		}
		rows = append(rows, []string{
			strconv.FormatInt(rec.ID, 10),
			string(rec.Status),
			rec.Speaker,
			truncate(title, 60),
			rec.UpdatedAt.Local().Format(time.DateTime),
			truncate(detail, 60),
		})
	}
	return rows
}

func newHistoryRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove capture records by ID",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
				if err != nil || id < 1 {
					return fmt.Errorf("invalid capture id %q", arg)
				}
				ids = append(ids, id)
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			var missing []string
			for _, id := range ids {
				removed, err := store.Remove(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !removed {
					missing = append(missing, strconv.FormatInt(id, 10))
					continue
				}
				fmt.Fprintf(out, "Removed capture %d\n", id)
			}
			if len(missing) > 0 {
				return errors.New("no capture with id " + strings.Join(missing, ", "))
			}
			return nil
		},
	}
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every capture record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d captures\n", removed)
			return nil
		},
	}
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
