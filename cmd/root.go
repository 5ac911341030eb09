// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Configuration flags
	configFile string
	logLevel   string
	logFormat  string

	// Output flags
	outputFormat string

	// Vehicle flags
	vehicleVIN   string
	vehicleModel string
	clientID     string
)

var rootCmd = &cobra.Command{
	Use:   "cellstat",
	Short: "Vehicle Telemetry and CAN Command Tool",
	Long: `Cellstat - A CLI tool for decoding electric scooter telemetry and encoding
gateway CAN commands.

Provides commands for decoding telemetry samples, alerts and tire pressure
strings, validating sample streams, and building the hex frames and JSON
envelopes sent to the vehicle command gateway.

Input:
  Samples are read as a JSON array, a single JSON object or JSON lines,
  from a file argument or from stdin.

Configuration is read from cellstat.yaml in the current directory,
$HOME/.config/cellstat or /etc/cellstat, or the file named by --config.
Every key can be overridden with a CELLSTAT_ environment variable
(CELLSTAT_CLIENT_ID, CELLSTAT_LOGGING_LEVEL, ...).`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: initRuntime,
}

func init() {
	// Configuration flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default: cellstat.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")

	// Output flags
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "Output format (text, json, cbor)")

	// Vehicle flags
	rootCmd.PersistentFlags().StringVar(&vehicleVIN, "vin", "", "Vehicle VIN")
	rootCmd.PersistentFlags().StringVarP(&vehicleModel, "model", "m", "", "Vehicle model (selects NTC labels)")
	rootCmd.PersistentFlags().StringVar(&clientID, "client-id", "", "Client identifier stamped on command envelopes")

	bindFlags(rootCmd)
}

// initRuntime loads configuration and configures logging before any command runs
func initRuntime(cmd *cobra.Command, args []string) error {
	if err := loadConfig(configFile); err != nil {
		return err
	}
	return setupLogging(cmd.ErrOrStderr())
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
