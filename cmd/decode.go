// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/cellstat/pkg/scooter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decode telemetry samples in human-readable format",
	Long: `Decode telemetry samples and display cells, MOSFET flags, NTC temperatures,
the ICV summary and tire pressure of each one.

Samples are read from the file argument, or from stdin when no file (or "-")
is given. The input may be a JSON array, a single object or JSON lines.

Output formats (--output):
  text  Human-readable report (NTC labels follow the sample or --model)
  json  One decoded report per sample, as a JSON array
  cbor  Compact CBOR records, one per sample, written back to back`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}

// cellReport is one cell of a JSON report; Voltage is null when invalid
type cellReport struct {
	Cell    int      `json:"cell"`
	Voltage *float64 `json:"voltage"`
}

// sampleReport is the JSON view of a decoded sample
type sampleReport struct {
	Time        string                `json:"time"`
	VIN         string                `json:"vin,omitempty"`
	Model       string                `json:"model,omitempty"`
	Cells       []cellReport          `json:"cells"`
	MinCell     int                   `json:"minCell,omitempty"`
	MaxCell     int                   `json:"maxCell,omitempty"`
	MOS         map[string]string     `json:"mos"`
	NTC         map[string]int        `json:"ntc"`
	APU         string                `json:"apu"`
	APUTemps    []int                 `json:"apuTemps,omitempty"`
	ICV         *scooter.ICVSummary   `json:"icv"`
	Tire        *scooter.TirePressure `json:"tire,omitempty"`
	Generation  float64               `json:"generation"`
	Consumption float64               `json:"consumption"`
}

func newSampleReport(d *scooter.DecodedSample) sampleReport {
	t := &d.Telemetry
	labels := modelLabels(d.Sample.Model)

	r := sampleReport{
		Time:        d.Sample.Time,
		VIN:         d.Sample.VIN,
		Model:       d.Sample.Model,
		Cells:       make([]cellReport, 0, scooter.CellCount),
		MinCell:     t.MinCell,
		MaxCell:     t.MaxCell,
		MOS:         make(map[string]string),
		NTC:         make(map[string]int),
		ICV:         t.ICV,
		Tire:        d.Tire,
		Generation:  d.Generation,
		Consumption: d.Consumption,
	}

	for _, c := range t.Cells {
		cr := cellReport{Cell: c.Cell}
		if c.Valid {
			v := c.Voltage
			cr.Voltage = &v
		}
		r.Cells = append(r.Cells, cr)
	}

	r.MOS["mainCharge"] = t.MOS.MainCharge.String()
	r.MOS["mainDischarge"] = t.MOS.MainDischarge.String()
	r.MOS["apuCharge"] = t.MOS.APUCharge.String()
	r.MOS["apuDischarge"] = t.MOS.APUDischarge.String()

	for i, v := range t.NTC.Main() {
		r.NTC[labels[i]] = v
	}

	switch t.NTC.APUStatus() {
	case scooter.APUAbsent:
		r.APU = "absent"
	case scooter.APUInstalled:
		r.APU = "installed"
		r.APUTemps = t.NTC.APU()
	default:
		r.APU = "unknown"
	}

	return r
}

func runDecode(cmd *cobra.Command, args []string) error {
	samples, source, err := readSamples(cmd, args)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{"source": source, "samples": len(samples)}).Debug("samples loaded")

	out := cmd.OutOrStdout()

	switch config.Output.Format {
	case formatJSON:
		reports := make([]sampleReport, 0, len(samples))
		for _, s := range samples {
			d := s.Decode()
			reports = append(reports, newSampleReport(&d))
		}
		return writeJSON(out, reports)

	case formatCBOR:
		if isTerminal(out) {
			return errors.New("refusing to write CBOR to a terminal, redirect stdout")
		}
		for i, s := range samples {
			d := s.Decode()
			data, err := scooter.EncodeSampleCBOR(&d)
			if err != nil {
				return errors.Wrapf(err, "sample %d", i+1)
			}
			if _, err := out.Write(data); err != nil {
				return errors.Wrap(err, "unable to write CBOR")
			}
		}
		return nil
	}

	for i, s := range samples {
		d := s.Decode()
		logger.WithFields(logrus.Fields{
			"vin":   s.VIN,
			"time":  s.Time,
			"cells": len(d.Telemetry.ValidCells()),
		}).Debug("sample decoded")

		fmt.Fprintln(out, styled(out, headingStyle, fmt.Sprintf("Sample %d/%d", i+1, len(samples))))
		fmt.Fprint(out, scooter.FormatSample(&d, modelLabels(s.Model)))
		fmt.Fprintln(out)
	}

	return nil
}
