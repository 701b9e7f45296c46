// notifyd delivers K-Le-PaaS platform notifications to Slack.
//
// Installation:
//
//	go build -o notifyd ./cmd/notifyd
//	mv notifyd /usr/local/bin/
//
// Usage:
//
//	notifyd serve --config notifyd.yml
//	notifyd send --event deployment_success --title "Deploy done" --message "v1.2.3 live"
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version    = "dev"
	configPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "notifyd",
		Short: "K-Le-PaaS notification daemon",
		Long: `notifyd routes, renders, and delivers K-Le-PaaS platform
notifications to Slack.

It serves an HTTP API for other platform components and a one-shot
send command for scripts and CI pipelines.`,
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "notifyd.yml", "Path to the YAML configuration file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(sendCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
