package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
	toolx "github.com/tanpawarit/rulebase-agent/agent/tool"
	configx "github.com/tanpawarit/rulebase-agent/pkg/config"
)

func toolsCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools the planner can choose from",
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := configx.New[AppConfig]("APP")
			if err != nil {
				return err
			}

			// Listing needs the corpus but no language model.
			registry, err := toolx.BuildDefault(
				toolx.BuildConfig{DataPath: appCfg.DataPath, TopK: appCfg.SearchTopK},
				toolx.Completers{},
			)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, info := range registry.Infos() {
				fmt.Fprintf(w, "%s\t%s\n", info.Name, info.Description)
			}
			fmt.Fprintf(w, "%s\t%s\n", contractx.ToolFinalAnswer, "최종 답변 작성 (executor가 직접 처리)")
			return w.Flush()
		},
	}
}
