package cli

import (
	"fmt"
	"slices"

	"github.com/riskibarqy/league-vault/internal/app"
	"github.com/riskibarqy/league-vault/internal/config"
	"github.com/riskibarqy/league-vault/internal/platform/logging"
	"github.com/riskibarqy/league-vault/internal/usecase"
	"github.com/spf13/cobra"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

var ValidFormats = []string{FormatText, FormatJSON}

// RootOptions holds the flags shared by every leaguectl command.
type RootOptions struct {
	DataDir string
	Format  string
	Verbose bool
}

// NewRootCommand builds the leaguectl command tree. Commands work directly on
// the data directory, so mutating ones should run while the API is stopped.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:          "leaguectl",
		Short:        "Operate a league-vault data directory",
		Long:         "Inspect and restore league snapshots and preview the weekly scheduler windows.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (defaults to DATA_DIR)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr")

	cmd.AddCommand(NewSnapshotCommand(opts))
	cmd.AddCommand(NewWindowCommand(opts))

	return cmd
}

type session struct {
	cfg      config.Config
	services *app.Services
	logger   *logging.Logger
	out      outputFormatter
}

func (o *RootOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}

	logger := logging.NewNop()
	if o.Verbose {
		logger = logging.NewJSONWriter(cmd.ErrOrStderr(), logging.LevelDebug)
	}

	services, err := app.NewServices(cfg, usecase.NewNoopPublisher(), nil, logger)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:      cfg,
		services: services,
		logger:   logger,
		out:      outputFormatter{format: o.Format, w: cmd.OutOrStdout()},
	}, nil
}
