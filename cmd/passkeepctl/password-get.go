package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var passwordGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print the password of an account",
	Long: `Print the password of an account to stdout.

Exits with status 1 when the account does not exist.

Example:
  passkeepctl password get github`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := args[0]

		password, ok, err := getPassword(cmd.Context(), cmd, name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to get password: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Fprintf(os.Stderr, "Password for %s not found.\n", name)
			os.Exit(1)
		}
		fmt.Println(password)
	},
}

func init() {
	passwordCmd.AddCommand(passwordGetCmd)
}

func getPassword(ctx context.Context, cmd *cobra.Command, name string) (string, bool, error) {
	m, _, closeFn, err := openManager(ctx, cmd)
	if err != nil {
		return "", false, err
	}
	defer closeFn()

	return m.GetPassword(ctx, name)
}
