// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/Thermoquad/cellstat/pkg/scooter"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	showAll       bool
	statsInterval int
	useTUI        bool
)

var errorDetectionCmd = &cobra.Command{
	Use:   "error_detection [file]",
	Short: "Detect and analyze malformed samples and telemetry anomalies",
	Long: `Track sample errors, missing telemetry, and anomalous values with statistics.

This command validates each sample and detects:
  - Malformed samples (JSON that does not decode)
  - Missing data (no tokens, no cells, missing ICV, incomplete NTC, unknown MOS)
  - Anomalous values (ICV mismatch, NTC out of range, MOSFET off,
    cell imbalance, SOC out of range)
  - Statistics and trends (sample rate, error rate, clean rate)

By default, only anomalies are displayed. Use --show-all to display clean samples too.

Samples are read from the file argument or stdin as they arrive, so a live
JSON lines feed can be piped in. The terminal UI is used when stdout is a
terminal; a statistics summary is printed at configurable intervals and at
the end of the input in text mode.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runErrorDetection,
}

func init() {
	rootCmd.AddCommand(errorDetectionCmd)
	errorDetectionCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all samples (not just anomalies)")
	errorDetectionCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	errorDetectionCmd.Flags().BoolVar(&useTUI, "tui", true, "Use terminal UI when stdout is a terminal (false for text mode)")
}

func runErrorDetection(cmd *cobra.Command, args []string) error {
	if statsInterval <= 0 {
		return errors.Errorf("invalid --stats-interval %d", statsInterval)
	}

	r, source, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer r.Close()

	if useTUI && isTerminal(cmd.OutOrStdout()) {
		return runTUIMode(r, source)
	}
	return runTextMode(cmd.OutOrStdout(), r, source)
}

// sampleTitle identifies a sample in logs and event lines
func sampleTitle(s *scooter.Sample) string {
	vin := s.VIN
	if vin == "" {
		vin = "-"
	}
	return fmt.Sprintf("%s %s", s.Time, vin)
}

// printDecodeError prints a decode error in highlighted format
func printDecodeError(w io.Writer, err error) {
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(w, "[%s] %s %v\n", timestamp, styled(w, errorTextStyle, "DECODE ERROR:"), err)
	fmt.Fprintf(w, "  >>> SAMPLE REJECTED <<<\n\n")
}

// printValidationErrors prints the anomalies found in one sample
func printValidationErrors(w io.Writer, d *scooter.DecodedSample, errs []scooter.ValidationError) {
	fmt.Fprintf(w, "[%s] %s %d issue(s)\n", sampleTitle(&d.Sample), styled(w, warningTextStyle, "VALIDATION ERROR:"), len(errs))

	for i, err := range errs {
		switch err.Type {
		case scooter.AnomalyNoTokens, scooter.AnomalyNoCells, scooter.AnomalyMissingICV,
			scooter.AnomalyIncompleteNTC, scooter.AnomalyUnknownMOS:
			fmt.Fprintf(w, "  Issue %d: %s\n", i+1, styled(w, errorTextStyle, err.Message))

		case scooter.AnomalyCellImbalance:
			fmt.Fprintf(w, "  Issue %d: %s\n", i+1, styled(w, warningTextStyle, err.Message))
			if spread, ok := err.Details["spread"].(float64); ok {
				fmt.Fprintf(w, "    spread=%.3fV (max %.1fV)\n", spread, scooter.MaxCellSpread)
			}

		case scooter.AnomalyInvalidTemp:
			fmt.Fprintf(w, "  Issue %d: %s\n", i+1, styled(w, warningTextStyle, err.Message))
			if temp, ok := err.Details["value"].(int); ok {
				fmt.Fprintf(w, "    Temperature=%d°C (valid: %d to %d°C)\n", temp, scooter.MinNTCTemp, scooter.MaxNTCTemp)
			}

		default:
			fmt.Fprintf(w, "  Issue %d: %s\n", i+1, styled(w, warningTextStyle, err.Message))
		}
	}

	fmt.Fprintf(w, "  MOS: %s\n", scooter.FormatMOS(d.Telemetry.MOS))
	fmt.Fprintf(w, "  >>> SAMPLE FLAGGED <<<\n\n")
}

// runTUIMode runs error detection in TUI mode
func runTUIMode(r io.Reader, source string) error {
	m := initialModel(source, statsInterval, showAll)
	p := tea.NewProgram(m)

	// Sample reader goroutine
	go func() {
		err := streamSamples(r, func(s *scooter.Sample, decodeErr error) bool {
			if decodeErr != nil {
				p.Send(sampleDataMsg{decodeErr: decodeErr})
				return true
			}
			d := s.Decode()
			p.Send(sampleDataMsg{
				sample:           &d,
				validationErrors: scooter.ValidateSample(&d),
			})
			return true
		})
		p.Send(streamDoneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, "TUI error")
	}

	return nil
}

// runTextMode runs error detection in text mode
func runTextMode(w io.Writer, r io.Reader, source string) error {
	fmt.Fprintf(w, "Cellstat - Error Detection Mode\n")
	fmt.Fprintf(w, "Source: %s\n", source)
	fmt.Fprintf(w, "Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Fprintf(w, "Mode: All samples\n")
	} else {
		fmt.Fprintf(w, "Mode: Anomalies only\n")
	}
	fmt.Fprintf(w, "\n")

	stats := scooter.NewStatistics()

	// Statistics ticker
	statsTicker := time.NewTicker(time.Duration(statsInterval) * time.Second)
	defer statsTicker.Stop()

	type result struct {
		sample    *scooter.Sample
		decodeErr error
	}
	results := make(chan result, 10)
	done := make(chan error, 1)
	go func() {
		done <- streamSamples(r, func(s *scooter.Sample, err error) bool {
			results <- result{sample: s, decodeErr: err}
			return true
		})
		close(results)
	}()

	for {
		select {
		case res, ok := <-results:
			if !ok {
				fmt.Fprint(w, stats.String())
				return <-done
			}

			if res.decodeErr != nil {
				stats.Update(res.decodeErr, nil)
				logger.WithError(res.decodeErr).Debug("sample rejected")
				printDecodeError(w, res.decodeErr)
				continue
			}

			d := res.sample.Decode()
			validationErrors := scooter.ValidateSample(&d)
			stats.Update(nil, validationErrors)

			logger.WithFields(logrus.Fields{
				"vin":       d.Sample.VIN,
				"time":      d.Sample.Time,
				"anomalies": len(validationErrors),
			}).Debug("sample validated")

			if len(validationErrors) > 0 {
				printValidationErrors(w, &d, validationErrors)
			} else if showAll {
				fmt.Fprint(w, scooter.FormatSample(&d, modelLabels(d.Sample.Model)))
				fmt.Fprintln(w)
			}

		case <-statsTicker.C:
			fmt.Fprintln(w)
			fmt.Fprint(w, stats.String())
			fmt.Fprintln(w)
		}
	}
}
