package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/passkeep/pkg/shell"
)

var passwordAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a password for a new account",
	Long: `Add a password for a new account.

The password is prompted for without echo. Use --password-stdin to read it
from standard input instead. Adding a name that already exists fails and
leaves the stored password unchanged.

Example:
  passkeepctl password add github
  echo -n "s3cret" | passkeepctl password add github --password-stdin`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fromStdin, _ := cmd.Flags().GetBool("password-stdin")

		if err := addPassword(cmd.Context(), cmd, args[0], fromStdin); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to add password: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "Password added successfully.")
	},
}

func init() {
	passwordCmd.AddCommand(passwordAddCmd)
	passwordAddCmd.Flags().Bool("password-stdin", false, "Read the password from stdin")
}

func addPassword(ctx context.Context, cmd *cobra.Command, name string, fromStdin bool) error {
	m, logger, closeFn, err := openManager(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	var password string
	if fromStdin {
		password, err = bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && password == "" {
			return fmt.Errorf("failed to read password from stdin: %w", err)
		}
		password = strings.TrimRight(password, "\r\n")
	} else {
		password, err = shell.ReadSecret(os.Stdin, os.Stderr, "Enter password: ", logger)
		if err != nil {
			return err
		}
	}

	return m.AddPassword(ctx, name, password)
}
