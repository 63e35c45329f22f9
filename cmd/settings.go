package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/smartmd/internal/presentation"
	"github.com/zjrosen/smartmd/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change editor settings",
	Long: `Show or change the editor settings stored in the database. These are the
preferences changed from inside the editor, such as the theme or the marker
mode. Startup options live in the config file instead (see 'smartmd config').`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := openServices(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer svc.Close()
		return presentation.NewFormatter(cmd.OutOrStdout()).FormatSettings(svc.Settings.Get())
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one setting",
	Long: `Change one setting. Run 'smartmd settings keys' for the accepted keys.

Examples:
  smartmd settings set theme dark
  smartmd settings set markdownViewMode hidden
  smartmd settings set listMarkers.-.color "#EF4444"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		change, err := svc.Settings.Update(cmd.Context(), func(s *settings.Settings) error {
			return settings.Set(s, args[0], args[1])
		})
		if err != nil {
			return err
		}
		if len(change.Fields) == 0 {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "unchanged")
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", joinFields(change.Fields))
		return err
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := openServices(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer svc.Close()
		if _, err := svc.Settings.Reset(cmd.Context()); err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "settings reset to defaults")
		return err
	},
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the keys accepted by 'settings set'",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(settings.Keys(), "\n"))
		return err
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd, settingsResetCmd, settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func joinFields(fields []settings.Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
