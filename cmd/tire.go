// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/cellstat/pkg/scooter"
	"github.com/spf13/cobra"
)

var tireCmd = &cobra.Command{
	Use:   "tire <raw>",
	Short: "Decode a tire pressure string",
	Long: `Decode a tire pressure string such as "F2530R2632" into front and rear
pressure (psi) and temperature (°C). Either wheel may be missing.`,
	Args: cobra.ExactArgs(1),
	RunE: runTire,
}

func init() {
	rootCmd.AddCommand(tireCmd)
}

func runTire(cmd *cobra.Command, args []string) error {
	p := scooter.DecodeTirePressure(args[0])

	out := cmd.OutOrStdout()
	if config.Output.Format == formatJSON {
		if p == nil {
			p = &scooter.TirePressure{}
		}
		return writeJSON(out, p)
	}

	fmt.Fprintln(out, scooter.FormatTirePressure(p))
	return nil
}
