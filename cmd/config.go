package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/smartmd/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or edit the config file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := cfgPath
		if path == "" {
			path = config.DefaultConfigPath()
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
		return err
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set one key in the config file, keeping comments",
	Long: `Set one key in the config file. Nested keys are separated by dots and
missing sections are created. Comments and the order of other keys are kept.

Examples:
  smartmd config set watch.debounce_ms 500
  smartmd config set log.level debug`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgPath
		if path == "" {
			path = config.DefaultConfigPath()
			if err := config.WriteDefaultConfig(path); err != nil {
				return err
			}
		}
		if err := config.SetValue(path, args[0], args[1]); err != nil {
			return err
		}

		// reload to reject values that break validation
		if _, _, err := config.Load(config.NewViper(), path); err != nil {
			return fmt.Errorf("config written but no longer valid: %w", err)
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
		return err
	},
}

func init() {
	configCmd.AddCommand(configPathCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
