package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newServeCmd())
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the catalogue http api",
		Long: `The serve command loads the configuration file, then the optional
environment file, then the LIBRERIA_* environment variables, and starts
the api server until it receives SIGINT or SIGTERM.

Example:
  libreria serve
  libreria serve --config /etc/libreria/config.yml --env-file ""`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadAndInitConfigs(configFile, envFile, GitCommit, GitTag, BuildTime)
			if err != nil {
				return fmt.Errorf("failed to setup app configuration: %s", err)
			}
			app, err := NewApp(config)
			if err != nil {
				return fmt.Errorf("application failed to initialized: %s", err)
			}
			if err = app.Run(); err != nil {
				return fmt.Errorf("application exited. check logs for more details: %s", err)
			}
			return nil
		},
	}
}
