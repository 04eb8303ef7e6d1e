package cmd

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/loog-project/auditlog/internal/registry"
	"github.com/loog-project/auditlog/internal/service"
	"github.com/loog-project/auditlog/internal/store"
	"github.com/loog-project/auditlog/pkg/auditdiff"
)

var (
	recordObjectKey string
	recordActor     string
	recordDurable   bool
)

var recordCmd = &cobra.Command{
	Use:   "record OLD NEW",
	Short: "Diff two snapshots and append the result to the history",
	Long: `Diff two snapshots and append the result to the history of an object.

"-" for OLD records a creation, "-" for NEW records a deletion. Updates
without any changed field are not recorded.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		oldRec, newRec, err := readPair(args[0], args[1], reg)
		if err != nil {
			return err
		}
		if viper.GetString("registry") == "" {
			trackImplicitly(reg, oldRec, newRec)
		}

		f, err := compileFilter()
		if err != nil {
			return err
		}
		entries, err := openStore(recordDurable)
		if err != nil {
			return err
		}
		svc := service.New(reg, entries,
			service.WithFilter(f),
			service.WithLogger(log.Logger),
			service.WithCache(false))
		defer func() {
			if err := svc.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close history database")
			}
		}()

		ctx := service.WithActor(cmd.Context(), recordActor)
		var entry *store.Entry
		switch {
		case oldRec == nil && newRec == nil:
			return errors.New("at least one of OLD and NEW must be a document")
		case oldRec == nil:
			entry, err = svc.LogCreate(ctx, recordObjectKey, newRec)
		case newRec == nil:
			entry, err = svc.LogDelete(ctx, recordObjectKey, oldRec)
		default:
			entry, err = svc.LogUpdate(ctx, recordObjectKey, oldRec, newRec)
		}
		if err != nil {
			return err
		}

		if entry == nil {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), MutedStyle.Render("nothing recorded"))
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s revision %s (%d fields)\n",
			renderAction(entry.Action), entry.ObjectKey, entry.Revision, len(entry.Changes))
		return err
	},
}

func init() {
	recordCmd.Flags().StringVarP(&recordObjectKey, "key", "k", "",
		"Key of the object the snapshots belong to")
	recordCmd.Flags().StringVar(&recordActor, "actor", "",
		"Who made the change")
	recordCmd.Flags().BoolVar(&recordDurable, "durable", true,
		"Sync the database to disk after every write")
	_ = recordCmd.MarkFlagRequired("key")
	rootCmd.AddCommand(recordCmd)
}

// trackImplicitly registers the models of the given records without any
// field configuration, so that recording works without a registry file.
func trackImplicitly(reg *registry.Registry, recs ...auditdiff.Record) {
	for _, rec := range recs {
		if rec == nil || reg.Contains(rec.Model().Name) {
			continue
		}
		log.Debug().Str("model", rec.Model().Name).Msg("Tracking model without registry entry")
		if err := reg.Register(rec.Model().Name, registry.Options{}); err != nil {
			log.Warn().Err(err).Msg("Failed to track model")
		}
	}
}
