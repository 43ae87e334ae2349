package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/passkeep/pkg/backend"
	"github.com/doodlesbykumbi/passkeep/pkg/config"
	"github.com/doodlesbykumbi/passkeep/pkg/manager"
)

var rootCmd = &cobra.Command{
	Use:   "passkeepctl",
	Short: "Store and retrieve account passwords",
	Long: `Store and retrieve account passwords in a local file, MongoDB or a SQL database.

Run without a subcommand to open the interactive menu.

Example:
  passkeepctl
  passkeepctl --backend sqlite password list`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runShell(cmd.Context(), cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to run shell: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("backend", "B", "", "Storage backend (file, mongodb, postgres, mysql, sqlite, gorm)")
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// loadConfig loads configuration and applies the --backend flag.
func loadConfig(cmd *cobra.Command) (*config.PasskeepConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if b, _ := cmd.Flags().GetString("backend"); b != "" {
		cfg.SetBackend(b)
	}
	return cfg, nil
}

func newLogger(cfg *config.PasskeepConfig) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
}

// openManager builds a Manager over the configured backend together with
// the logger configured for it. The returned function closes the backend.
func openManager(ctx context.Context, cmd *cobra.Command) (*manager.Manager, *slog.Logger, backend.CloseFunc, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger(cfg)

	storage, closeFn, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return manager.New(storage, logger), logger, closeFn, nil
}
