// Package cmd provides the CLI commands for the invoke-demo binary.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sentinel-Gate/invoke-core/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "invoke-demo",
	Short: "invoke-core demo CLI",
	Long: `invoke-demo drives the invoke-core pipeline through a handful of named
scenarios that each exercise a different corner of the two-pass interceptor
pipeline and asynchrony state machine: a synchronous happy path, a mid-flight
upgrade to asynchronous, a cancel/result race, a fire-and-forget one-way call,
and a client-side timeout.

Configuration is loaded from invoke-demo.yaml in the current directory or
$HOME/.invoke-demo/, and can be overridden with INVOKE_DEMO_* environment
variables.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./invoke-demo.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
