package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
)

func askCMD() *cobra.Command {
	var (
		maxSteps  int
		sessionID string
		asJSON    bool
	)
	ask := &cobra.Command{
		Use:   "ask [question]",
		Short: "Run the agent once and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.orchestrator.Run(ctx, contractx.RunRequest{
				Query:     strings.Join(args, " "),
				MaxSteps:  maxSteps,
				SessionID: sessionID,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(resp)
			}
			for i, step := range resp.Steps {
				fmt.Fprintf(out, "[%d] %s (%s): %s\n", i+1, step.Tool, step.Output.Kind, step.Reason)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, resp.FinalAnswer)
			return nil
		},
	}
	ask.Flags().IntVar(&maxSteps, "max-steps", 0, "step budget (default APP_DEFAULT_MAX_STEPS)")
	ask.Flags().StringVar(&sessionID, "session", "", "conversation session id")
	ask.Flags().BoolVar(&asJSON, "json", false, "print the full response as JSON")
	return ask
}
