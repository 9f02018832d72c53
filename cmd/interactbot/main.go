// Package main is the entry point for the interactbot CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"interactbot/pkg/version"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "interactbot",
	Short: "interactbot - an HTTP interactions endpoint for chat application commands",
	Long: `interactbot receives signed interaction webhooks, verifies them against the
application public key, routes them to registered handlers and answers the platform.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetFullVersion())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(commandsCmd)
	rootCmd.AddCommand(serviceCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
