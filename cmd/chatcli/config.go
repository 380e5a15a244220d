package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config [new_display_name]",
	Short: "Gets or sets the saved display name",
	Long: `Without arguments, prints the current configuration. With one
argument, saves it as the display name in the config file.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Printf("Server:       %s\n", serverAddress)
			fmt.Printf("Display name: %s\n", orAnonymous(displayName))
			return
		}

		viper.Set(displayNameKey, args[0])
		if err := viper.WriteConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				home, herr := os.UserHomeDir()
				cobra.CheckErr(herr)
				err = viper.WriteConfigAs(home + "/.chatcli.yaml")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
				return
			}
		}
		fmt.Printf("Display name set to: %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
