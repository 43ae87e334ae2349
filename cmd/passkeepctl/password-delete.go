package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var passwordDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete the password of an account",
	Long: `Delete the password of an account.

Deleting an account that does not exist succeeds.

Example:
  passkeepctl password delete github`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		if err := deletePassword(cmd.Context(), cmd, name); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to delete password: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Password for %s deleted successfully.\n", name)
	},
}

func init() {
	passwordCmd.AddCommand(passwordDeleteCmd)
}

func deletePassword(ctx context.Context, cmd *cobra.Command, name string) error {
	m, _, closeFn, err := openManager(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	return m.DeletePassword(ctx, name)
}
