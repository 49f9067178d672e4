package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"talkscout/internal/config"
	"talkscout/internal/deps"
	"talkscout/internal/language"
	"talkscout/internal/logging"
	"talkscout/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, directories, dependencies, and capture totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			var lines []string
			lines = append(lines, renderSectionHeader("Configuration", colorize)...)
			configDetail := ctx.configPath
			if !ctx.configSeen {
				configDetail = fmt.Sprintf("%s (not found, using defaults)", ctx.configPath)
			}
			lines = append(lines, renderStatusLine("Config", statusInfo, configDetail, colorize))
			lines = append(lines, transcriptionLine(cfg.Transcription, colorize))

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Directories", colorize)...)
			lines = append(lines, directoryLines([]preflight.Result{
				preflight.CheckDirectoryAccess("Output", cfg.Paths.OutputDir),
				preflight.CheckDirectoryAccess("Logs", cfg.Paths.LogDir),
				preflight.CheckDirectoryAccess("State", cfg.Paths.StateDir),
			}, colorize)...)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			statuses := preflight.CheckSystemDeps(cfg)
			lines = append(lines, dependencyLines(statuses, colorize)...)

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Captures", colorize)...)
			lines = append(lines, ctx.historyLines(cmd, colorize)...)

			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				if logger, err := ctx.ensureLogger(); err == nil {
					logging.WarnWithContext(logger, "required dependencies missing", "dependency_check",
						logging.String("missing", strings.Join(missing, ",")),
						logging.String(logging.FieldImpact, "captures will fail until resolved"),
						logging.String(logging.FieldErrorHint, "install the missing binaries or set their paths in the config"),
					)
				}
			}
			return nil
		},
	}
}

func (c *commandContext) historyLines(cmd *cobra.Command, colorize bool) []string {
	store, err := c.openStore()
	if err != nil {
		return []string{renderStatusLine("History", statusError, err.Error(), colorize)}
	}
	defer store.Close()

	summary, err := store.Summarize(cmd.Context())
	if err != nil {
		return []string{renderStatusLine("History", statusError, err.Error(), colorize)}
	}
	lines := []string{
		renderStatusLine("Total", statusInfo, fmt.Sprintf("%d", summary.Total), colorize),
		renderStatusLine("Completed", statusOK, fmt.Sprintf("%d", summary.Completed), colorize),
	}
	if summary.Pending+summary.Processing > 0 {
		lines = append(lines, renderStatusLine("In progress", statusInfo, fmt.Sprintf("%d", summary.Pending+summary.Processing), colorize))
	}
	if summary.Review > 0 {
		lines = append(lines, renderStatusLine("Needs review", statusWarn, fmt.Sprintf("%d", summary.Review), colorize))
	}
	if summary.Failed > 0 {
		lines = append(lines, renderStatusLine("Failed", statusError, fmt.Sprintf("%d", summary.Failed), colorize))
	}
	return lines
}

func transcriptionLine(cfg config.Transcription, colorize bool) string {
	if !cfg.Enabled {
		return renderStatusLine("Transcription", statusInfo, "disabled", colorize)
	}
	if strings.TrimSpace(cfg.Language) == "" {
		return renderStatusLine("Transcription", statusInfo, fmt.Sprintf("model %s, language auto-detected", cfg.Model), colorize)
	}
	detail := fmt.Sprintf("model %s, language %s", cfg.Model, language.DisplayName(cfg.Language))
	if !language.IsWhisperSupported(cfg.Language) {
		return renderStatusLine("Transcription", statusWarn, detail+" (not supported by WhisperX alignment)", colorize)
	}
	return renderStatusLine("Transcription", statusOK, detail, colorize)
}
