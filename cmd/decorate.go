package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/smartmd/internal/decoration"
	"github.com/zjrosen/smartmd/internal/document"
	"github.com/zjrosen/smartmd/internal/log"
	"github.com/zjrosen/smartmd/internal/presentation"
	"github.com/zjrosen/smartmd/internal/settings"
	"github.com/zjrosen/smartmd/internal/syntax"
)

var (
	decorateMode      string
	decorateCursor    int
	decorateLine      int
	decorateJSON      bool
	decorateDefaults  bool
	decorateNoStatus  bool
	decorateNoBullets bool
)

var decorateCmd = &cobra.Command{
	Use:   "decorate FILE",
	Short: "Print the decorations of a Markdown file",
	Long: `Print the decorations the editor would draw for FILE, one per line, or
as JSON with --json.

The stored settings are used unless --defaults is given. The flags override
single features on top of them.

Examples:
  # Everything hidden, cursor on line 3
  smartmd decorate notes.md --mode hidden --line 3

  # Only status lines, as JSON
  smartmd decorate notes.md --mode visible --no-bullets --json | jq '.decorations[].class'`,
	Args: cobra.ExactArgs(1),
	RunE: runDecorate,
}

func init() {
	decorateCmd.Flags().StringVarP(&decorateMode, "mode", "m", "", "marker mode: visible, current-line or hidden")
	decorateCmd.Flags().IntVar(&decorateCursor, "cursor", 0, "cursor byte offset")
	decorateCmd.Flags().IntVarP(&decorateLine, "line", "l", 0, "place the cursor at the start of this 1-based line")
	decorateCmd.Flags().BoolVar(&decorateJSON, "json", false, "print JSON")
	decorateCmd.Flags().BoolVar(&decorateDefaults, "defaults", false, "ignore stored settings")
	decorateCmd.Flags().BoolVar(&decorateNoStatus, "no-status", false, "disable status line colors")
	decorateCmd.Flags().BoolVar(&decorateNoBullets, "no-bullets", false, "disable bullet points")
	rootCmd.AddCommand(decorateCmd)
}

func runDecorate(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-chosen file
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	s := settings.Defaults()
	if !decorateDefaults {
		svc, err := openServices(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		s = svc.Settings.Get()
		svc.Close()
	}

	if err := applyDecorateFlags(&s); err != nil {
		return err
	}

	doc := document.New(string(data))
	head := doc.Clamp(decorateCursor)
	if decorateLine > 0 {
		head = doc.Line(decorateLine).From
	}

	tree, err := syntax.NewProvider(true).Tree(cmd.Context(), doc)
	if err != nil {
		log.ErrorErr(log.CatDeco, "parse", err, "path", path)
	}
	set := decoration.Compute(decoration.Input{Doc: doc, Tree: tree, Head: head}, s.DecorationConfig())

	report := presentation.FromDecorationSet(path, doc, head, s.MarkdownViewMode, set)
	formatter := presentation.NewFormatter(cmd.OutOrStdout())
	if decorateJSON {
		return formatter.FormatDecorationsJSON(report)
	}
	return formatter.FormatDecorations(report)
}

func applyDecorateFlags(s *settings.Settings) error {
	if decorateMode != "" {
		if err := settings.Set(s, string(settings.FieldViewMode), decorateMode); err != nil {
			return err
		}
	}
	if decorateNoStatus {
		s.EnableStatusColors = false
	}
	if decorateNoBullets {
		s.EnableBulletPoints = false
	}
	return nil
}
