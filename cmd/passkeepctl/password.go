package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Manage stored passwords",
	Long:  `Add, retrieve, delete and list stored passwords without the interactive menu.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'password' requires a subcommand (add, get, delete, list, watch)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(passwordCmd)
}
