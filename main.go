package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	configx "github.com/tanpawarit/rulebase-agent/pkg/config"
	logx "github.com/tanpawarit/rulebase-agent/pkg/logger"
	_ "github.com/tanpawarit/rulebase-agent/pkg/logger/autoload"
)

func main() {
	if err := rootCMD().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func rootCMD() *cobra.Command {
	var envPath string
	root := &cobra.Command{
		Use:           "rulebase-agent",
		Short:         "Rule-base question answering agent",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envPath == "" {
				return nil
			}
			configx.SetEnvFile(envPath)
			conf, err := configx.New[logx.Config]("LOG")
			if err != nil {
				return err
			}
			logx.Init(*conf)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envPath, "env", "", "path to .env file (default ./.env when present)")

	root.AddCommand(serveCMD(), askCMD(), toolsCMD())
	return root
}
