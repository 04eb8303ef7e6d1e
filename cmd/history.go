package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/loog-project/auditlog/internal/filter"
	"github.com/loog-project/auditlog/internal/store"
)

var historyShowValues bool

var historyCmd = &cobra.Command{
	Use:               "history KEY",
	Short:             "Show the recorded history of an object",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: objectKeyCompletion,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := compileFilter()
		if err != nil {
			return err
		}
		entries, err := openStore(false)
		if err != nil {
			return err
		}
		defer func() {
			if err := entries.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close history database")
			}
		}()

		list, err := entries.List(cmd.Context(), args[0])
		if errors.Is(err, store.ErrNotFound) {
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n",
				MutedStyle.Render("no history for "+args[0]))
			return err
		}
		if err != nil {
			return err
		}
		list, err = filterEntries(f, list)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), historyTable(list, historyShowValues))
		return err
	},
}

func init() {
	historyCmd.Flags().BoolVarP(&historyShowValues, "values", "v", false,
		"Show old and new values instead of field names only")
	rootCmd.AddCommand(historyCmd)
}

func filterEntries(f *filter.Filter, list []*store.Entry) ([]*store.Entry, error) {
	kept := list[:0:0]
	for _, entry := range list {
		ok, err := f.Match(entry)
		if err != nil {
			return nil, fmt.Errorf("failed to filter revision %s: %w", entry.Revision, err)
		}
		if ok {
			kept = append(kept, entry)
		}
	}
	return kept, nil
}

func historyTable(list []*store.Entry, showValues bool) *table.Table {
	t := table.New().
		StyleFunc(tableStyleFunc).
		Headers("REV", "ACTION", "MODEL", "ACTOR", "WHEN", "CHANGES")
	for _, entry := range list {
		t.Row(
			entry.Revision.String(),
			renderAction(entry.Action),
			entry.Model,
			entry.Actor,
			humanize.Time(entry.Time),
			describeChanges(entry, showValues),
		)
	}
	return t
}

func describeChanges(entry *store.Entry, showValues bool) string {
	if len(entry.Changes) == 0 {
		return MutedStyle.Render("none")
	}
	if !showValues {
		return strings.Join(entry.Changes.Fields(), ", ")
	}
	var sb strings.Builder
	for i, name := range entry.Changes.Fields() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		change := entry.Changes[name]
		fmt.Fprintf(&sb, "%s: %s -> %s", name, change.Old, change.New)
	}
	return sb.String()
}
