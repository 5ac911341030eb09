// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"

	"github.com/Thermoquad/cellstat/pkg/scooter"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse [file]",
	Short: "Interactive TUI for browsing samples and composing commands",
	Long: `Browse telemetry samples and compose gateway commands in an interactive
terminal UI.

Samples are listed as they are read from the file argument or stdin. The
detail panel shows the decoded cells, MOSFET flags, NTC temperatures and
tire pressure of the selected sample.

The command console takes a command type followed by key=value fields:

  CAN_SET_RPM rpm=3600 duration=10
  CAN_GEAR_CTRL gear=FORWARD
  RESTART

The envelope is addressed to the selected sample's VIN (or --vin when the
sample has none). Encoded envelopes are printed as JSON lines when the TUI
exits, ready to post to the command gateway.

Tab switches between the sample list and the console. Arrow keys navigate
the sample list.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if !isTerminal(cmd.OutOrStdout()) {
		return errors.New("browse needs a terminal, use decode for piped output")
	}

	r, source, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer r.Close()

	m := initialBrowseModel(source, &scooter.Encoder{ClientID: config.ClientID})
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Sample reader goroutine
	go func() {
		err := streamSamples(r, func(s *scooter.Sample, decodeErr error) bool {
			if decodeErr != nil {
				p.Send(browseSampleMsg{decodeErr: decodeErr})
				return true
			}
			d := s.Decode()
			p.Send(browseSampleMsg{sample: &d})
			return true
		})
		p.Send(streamDoneMsg{err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return errors.Wrap(err, "TUI error")
	}

	bm, ok := final.(browseModel)
	if !ok {
		return nil
	}
	return writeEnvelopes(cmd.OutOrStdout(), bm.sent)
}

// writeEnvelopes prints one JSON envelope per line
func writeEnvelopes(w io.Writer, envs []scooter.Envelope) error {
	for _, env := range envs {
		data, err := json.Marshal(env)
		if err != nil {
			return errors.Wrap(err, "unable to encode envelope")
		}
		fmt.Fprintln(w, string(data))
	}
	return nil
}
