package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/passkeep/pkg/shell"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open the interactive password menu",
	Long: `Open the interactive password menu.

The menu offers Add Password, Get Password, Delete Password, List Passwords
and Exit. Passwords are read without echo when stdin is a terminal.

Example:
  passkeepctl shell
  passkeepctl --backend mongodb shell`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runShell(cmd.Context(), cmd); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to run shell: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(ctx context.Context, cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m, logger, closeFn, err := openManager(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	return shell.New(m, os.Stdin, os.Stdout, logger).Run(ctx)
}
