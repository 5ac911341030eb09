// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/Thermoquad/cellstat/pkg/scooter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var alertLocation string

var alertCmd = &cobra.Command{
	Use:   "alert [text...]",
	Short: "Decode vehicle alert text",
	Long: `Decode the short alert strings sent by the vehicle (B=, N1=..N4=, MOS=, M=,
CONTERR=1, IV=/CELL=) into operator messages.

The alert text is taken from the arguments, or one alert per line from stdin
when no arguments are given.`,
	RunE: runAlert,
}

func init() {
	rootCmd.AddCommand(alertCmd)
	alertCmd.Flags().StringVar(&alertLocation, "location", "", "Vehicle location reported with the alert")
}

func runAlert(cmd *cobra.Command, args []string) error {
	alerts := []scooter.Alert{}

	if len(args) > 0 {
		alerts = append(alerts, scooter.NewAlert(strings.Join(args, " "), config.VIN, alertLocation))
	} else {
		r, source, err := openInput(cmd, nil)
		if err != nil {
			return err
		}
		defer r.Close()

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			alerts = append(alerts, scooter.NewAlert(line, config.VIN, alertLocation))
		}
		if err := scanner.Err(); err != nil {
			return errors.Wrapf(err, "unable to read %s", source)
		}
	}

	out := cmd.OutOrStdout()
	if config.Output.Format == formatJSON {
		return writeJSON(out, alerts)
	}

	for _, a := range alerts {
		logger.WithField("vin", a.VIN).Debugf("alert %q", a.RawText)
		fmt.Fprintf(out, "%s %s\n", styled(out, warningTextStyle, "["+a.VIN+" @ "+a.Location+"]"), a.Message)
	}
	return nil
}
