// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Cellstat - Vehicle Telemetry and CAN Command Tool
//
// A CLI tool for decoding scooter telemetry samples and alerts, and for
// encoding operator commands into gateway CAN frames.

package main

import (
	"os"

	"github.com/Thermoquad/cellstat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
