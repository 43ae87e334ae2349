package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var passwordListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored account names",
	Long: `List stored account names, one per line. Passwords are not shown.

Example:
  passkeepctl password list
  passkeepctl password list --output json`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")

		if err := listPasswords(cmd.Context(), cmd, output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list passwords: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	passwordCmd.AddCommand(passwordListCmd)
	passwordListCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func listPasswords(ctx context.Context, cmd *cobra.Command, output string) error {
	m, _, closeFn, err := openManager(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	names, err := m.ListPasswords(ctx)
	if err != nil {
		return err
	}

	if output == "json" {
		data, err := json.MarshalIndent(names, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if len(names) == 0 {
		fmt.Fprintln(os.Stderr, "No passwords stored.")
		return nil
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}
