// Command mindgarden runs the breathing backend and a terminal breathing
// session.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"mindgarden/backend/internal/config"
	"mindgarden/backend/internal/logging"
)

const version = "0.1.0"

type app struct {
	cfg    config.Config
	logger *log.Logger
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		envFile  string
		logLevel string
	)
	a := &app{}

	cmd := &cobra.Command{
		Use:           "mindgarden",
		Short:         "Mind garden breathing backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.Load(envFile)
			if logLevel != "" {
				a.cfg.LogLevel = logLevel
			}
			a.logger = logging.New(cmd.ErrOrStderr(), a.cfg.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before the environment")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	cmd.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newBreatheCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "mindgarden version %s\n", version)
			},
		},
	)
	return cmd
}
