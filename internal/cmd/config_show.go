package cmd

import (
	"fmt"
	"os"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the merged configuration after defaults, config file,
environment variables and flags have been applied.

Secret access keys are redacted.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	_, _ = cmd, args

	if appConfig == nil {
		return exitError(foundry.ExitInvalidArgument, "Configuration not loaded", nil)
	}

	cfg := *appConfig
	if cfg.Backend.SecretAccessKey != "" {
		cfg.Backend.SecretAccessKey = "[REDACTED]"
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return exitError(foundry.ExitFileWriteError, "Failed to render configuration", err)
	}
	_, err = fmt.Fprint(os.Stdout, string(out))
	return err
}
