package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	serverAddress string
	displayName   string
)

const (
	serverKey      = "server"
	displayNameKey = "display_name"
)

var rootCmd = &cobra.Command{
	Use:   "chatcli",
	Short: "Command line client for the chatroom server",
	Long: `chatcli talks to a chatroom server over its websocket and HTTP
endpoints. Use "join" for an interactive session, "send" for a
one-shot message, and "config" to manage the saved display name.`,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.chatcli.yaml)")
	rootCmd.PersistentFlags().String("server", "http://localhost:8080", "Base URL of the chatroom server")
	rootCmd.PersistentFlags().String("name", "", "Display name to chat under")

	viper.BindPFlag(serverKey, rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag(displayNameKey, rootCmd.PersistentFlags().Lookup("name"))
	viper.SetDefault(serverKey, "http://localhost:8080")
	viper.SetDefault(displayNameKey, "")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".chatcli")
	}

	viper.SetEnvPrefix("CHATCLI")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}

	serverAddress = viper.GetString(serverKey)
	displayName = viper.GetString(displayNameKey)
}
