package cmd

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/loog-project/auditlog/pkg/auditdiff"
	"github.com/loog-project/auditlog/pkg/diffpreview"
)

const (
	outputTable   = "table"
	outputYAML    = "yaml"
	outputPreview = "preview"
)

var (
	diffOutput string
	diffTheme  string
)

var diffCmd = &cobra.Command{
	Use:   "diff OLD NEW",
	Short: "Show the changed fields between two snapshots",
	Long: `Show the changed fields between two snapshots of a record.

Use "-" for OLD to diff a created record, or for NEW to diff a deleted one.`,
	Args: cobra.ExactArgs(2),
	ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml", "json"}, cobra.ShellCompDirectiveFilterFileExt
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		oldRec, newRec, err := readPair(args[0], args[1], reg)
		if err != nil {
			return err
		}
		if viper.GetBool("debug") {
			spew.Fdump(cmd.ErrOrStderr(), oldRec, newRec)
		}

		diff, err := auditdiff.Compute(oldRec, newRec, reg)
		if err != nil {
			return err
		}
		log.Debug().Int("fields", len(diff)).Msg("Computed diff")
		theme, err := diffpreview.ThemeByName(diffTheme)
		if err != nil {
			return err
		}
		return printDiff(cmd.OutOrStdout(), diff, diffOutput, theme)
	},
}

func init() {
	diffCmd.Flags().StringVarP(&diffOutput, "output", "o", outputTable,
		"Output format, one of: table, yaml, preview")
	_ = diffCmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions([]string{outputTable, outputYAML, outputPreview}, cobra.ShellCompDirectiveNoFileComp))
	diffCmd.Flags().StringVar(&diffTheme, "theme", diffpreview.DarkTheme.Name,
		"Color theme of the preview output")
	_ = diffCmd.RegisterFlagCompletionFunc("theme",
		cobra.FixedCompletions(diffpreview.ThemeNames(), cobra.ShellCompDirectiveNoFileComp))
	rootCmd.AddCommand(diffCmd)
}

func printDiff(w io.Writer, diff auditdiff.Diff, format string, theme diffpreview.Theme) error {
	switch format {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(diff); err != nil {
			return err
		}
		return enc.Close()
	case outputPreview:
		_, err := fmt.Fprint(w, diffpreview.Render(diff, theme))
		return err
	case outputTable:
		if diff == nil {
			_, err := fmt.Fprintln(w, MutedStyle.Render("no changes"))
			return err
		}
		_, err := fmt.Fprintln(w, changesTable(diff))
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
