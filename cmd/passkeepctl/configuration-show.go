package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configurationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show passkeep configuration attributes and their sources",
	Long: `Show passkeep configuration attributes and their sources.

Values come from built-in defaults, the config file, environment variables
and the --backend flag, in increasing order of precedence. Passwords embedded
in connection URLs are masked.

Config file location: <user config dir>/passkeep/passkeep.yml (or PASSKEEP_CONFIG_PATH)

Example:
  passkeepctl configuration show
  passkeepctl configuration show --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")

		if err := showConfiguration(cmd, output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to show configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationShowCmd)
	configurationShowCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func showConfiguration(cmd *cobra.Command, output string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if output == "json" {
		jsonOutput, err := cfg.FormatJSON()
		if err != nil {
			return err
		}
		fmt.Println(jsonOutput)
	} else {
		fmt.Print(cfg.FormatText())
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "\nwarning: configuration is invalid: %v\n", err)
	}
	return nil
}
