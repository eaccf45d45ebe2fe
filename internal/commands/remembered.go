package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/logger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

func newRememberedCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remembered",
		Short: "List remembered transaction categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			log := logger.New(cmd.ErrOrStderr(), cfg.Log.Level)

			entries := listRemembered(cmd.Context(), log, cfg.Store.Path)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tINSTITUTION\tREFERENCE\tDEBIT\tCREDIT\tCATEGORY")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					id.Short(e.ID), e.Date, e.Institution, e.Reference, e.DebitKey(), e.CreditKey(), e.Category)
			}
			return tw.Flush()
		},
	}
}

// listRemembered reads every stored entry. Store failures are logged and give an empty list.
func listRemembered(ctx context.Context, log zerolog.Logger, path string) []model.StoredTransaction {
	st, err := store.Open(path)
	if err != nil {
		log.Warn().Err(err).Msg("no remembered categories available")
		return nil
	}
	defer st.Close()

	if err := st.Setup(ctx); err != nil {
		log.Warn().Err(err).Msg("no remembered categories available")
		return nil
	}

	entries, err := st.List(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("listing remembered categories failed")
		return nil
	}
	return entries
}
