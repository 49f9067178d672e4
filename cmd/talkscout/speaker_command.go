package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"talkscout/internal/speaker"
)

func newSpeakerCommand() *cobra.Command {
	var channel string
	var explain bool

	cmd := &cobra.Command{
		Use:         "speaker <title>",
		Short:       "Attribute a speaker from a talk title",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			match := speaker.DefaultChain().Explain(title, strings.TrimSpace(channel))

			out := cmd.OutOrStdout()
			if !explain {
				fmt.Fprintln(out, match.Speaker)
				return nil
			}
			fmt.Fprintf(out, "Speaker: %s\n", match.Speaker)
			fmt.Fprintf(out, "Rule:    %s\n", match.Rule)
			return nil
		},
	}

	cmd.Flags().StringVar(&channel, "channel", "", "Fallback speaker when no rule matches (usually the channel name)")
	cmd.Flags().BoolVar(&explain, "explain", false, "Print the rule that produced the speaker")
	return cmd
}
