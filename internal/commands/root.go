package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/buildinfo"
	"github.com/tally-dev/tally/internal/config"
)

// globalOptions are flags shared by every subcommand.
type globalOptions struct {
	configPath string
	dbPath     string
}

// load reads the config file and applies flag overrides.
func (o *globalOptions) load() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.Store.Path = o.dbPath
	}
	return cfg, nil
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Categorise bank statement exports",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.FileName, "config file")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "remembered categories database (overrides config)")

	rootCmd.AddCommand(newInitCommand(opts))
	rootCmd.AddCommand(newCategoriseCommand(opts))
	rootCmd.AddCommand(newRememberedCommand(opts))

	return rootCmd
}
