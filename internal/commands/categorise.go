package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/categories"
	"github.com/tally-dev/tally/internal/categorise"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/export"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/logger"
	"github.com/tally-dev/tally/internal/store"
)

func newCategoriseCommand(opts *globalOptions) *cobra.Command {
	var source string
	var outDir string

	cmd := &cobra.Command{
		Use:     "categorise [infile]",
		Aliases: []string{"categorize"},
		Short:   "Import a statement, categorise it and export the result",
		Long: "Reads a statement CSV (standard input when no file is given), fills in categories\n" +
			"remembered from earlier runs and asks for the rest. Enter a category key in\n" +
			"upper case to remember the choice for future imports.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("source") && cfg.Import.DefaultSource != "" {
				source = cfg.Import.DefaultSource
			}
			if !cmd.Flags().Changed("out-dir") && cfg.Import.OutDir != "" {
				outDir = cfg.Import.OutDir
			}

			infile := ""
			if len(args) > 0 {
				infile = args[0]
			}
			return runCategorise(cmd, cfg, infile, source, outDir)
		},
	}

	tags := importer.DefaultRegistry().Tags()
	cmd.Flags().StringVarP(&source, "source", "s", "amex", fmt.Sprintf("statement institution %v", tags))
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "directory for the exported CSV")

	return cmd
}

func runCategorise(cmd *cobra.Command, cfg *config.Config, infile, source, outDir string) error {
	log := logger.New(cmd.ErrOrStderr(), cfg.Log.Level)
	ctx := logger.WithContext(cmd.Context(), log)

	normalizer, err := importer.DefaultRegistry().Get(source)
	if err != nil {
		return err
	}

	choices, err := cfg.Choices()
	if err != nil {
		return err
	}
	cats, err := categories.NewService(choices)
	if err != nil {
		return fmt.Errorf("configuring categories: %w", err)
	}

	statement, prompts, closeInputs, err := openInputs(cmd, infile)
	if err != nil {
		return err
	}
	defer closeInputs()

	batch, err := importer.ReadRecords(statement, normalizer)
	if err != nil {
		return fmt.Errorf("reading statement: %w", err)
	}
	log.Info().Str("source", string(normalizer.Institution())).Int("records", len(batch)).Msg("read statement")
	if len(batch) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No transactions to categorise")
		return nil
	}

	st, closeStore := openStore(ctx, log, cfg.Store.Path)
	defer closeStore()

	partition := categorise.Resolve(ctx, st, batch)

	workflow := categorise.NewWorkflow(prompts, cmd.OutOrStdout(), cats, st, cfg.Import.LookAhead)
	manual, err := workflow.Run(ctx, partition.NeedsManual)
	if err != nil {
		return err
	}

	path, err := export.Save(outDir, batch, export.Assemble(manual, partition.Auto), normalizer.Institution())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d transactions (%d remembered, %d manual) to %s\n",
		len(manual)+len(partition.Auto), len(partition.Auto), len(manual), path)
	return nil
}

// openInputs returns the statement reader and the reader for operator choices.
// When the statement arrives on standard input, choices are read from the terminal.
func openInputs(cmd *cobra.Command, infile string) (statement, prompts io.Reader, closeFn func(), err error) {
	if infile != "" {
		f, err := os.Open(infile)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening statement: %w", err)
		}
		return f, cmd.InOrStdin(), func() { f.Close() }, nil
	}

	tty, err := os.Open("/dev/tty")
	if err != nil {
		// No terminal: any record needing a choice will end the session.
		return cmd.InOrStdin(), eofReader{}, func() {}, nil
	}
	return cmd.InOrStdin(), tty, func() { tty.Close() }, nil
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

// openStore opens the remembered-categories database. Failure is logged and yields a nil
// Store so the session continues with every record categorised by hand.
func openStore(ctx context.Context, log zerolog.Logger, path string) (categorise.Store, func()) {
	st, err := store.Open(path)
	if err != nil {
		log.Warn().Err(err).Msg("continuing without remembered categories")
		return nil, func() {}
	}
	if err := st.Setup(ctx); err != nil {
		log.Warn().Err(err).Msg("continuing without remembered categories")
		_ = st.Close()
		return nil, func() {}
	}
	return st, func() {
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("closing database")
		}
	}
}
