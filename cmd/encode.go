// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"

	"github.com/Thermoquad/cellstat/pkg/scooter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	encodeType      string
	encodeFields    []string
	encodeAdvanced  bool
	encodeFrameOnly bool
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode an operator command into a gateway frame",
	Long: `Encode an operator command into the hex frame and JSON envelope posted to
the vehicle command gateway.

CAN commands produce FFAA5501030015 + 8 hex CAN ID + 16 hex payload. POWER,
BLUETOOTH, AIRPLANE and RESTART send their value as-is. Run "cellstat commands"
for the list of command types and their fields.

Examples:
  cellstat encode --vin MD9ABC -t CAN_SET_RPM -f rpm=3600
  cellstat encode --vin MD9ABC -t CAN_GEAR_CTRL -f gear=FORWARD
  cellstat encode --frame-only -t CAN_RAW -f canId=10FBA807 -f canData=00000000
  cellstat encode --vin MD9ABC --advanced -f canId=10F8A807 -f canData=050001020E007387

The envelope needs a VIN (--vin or "vin" in the config file); --frame-only
prints the frame alone.`,
	Args: cobra.NoArgs,
	RunE: runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().StringVarP(&encodeType, "type", "t", "", "Command type (e.g. CAN_SET_RPM)")
	encodeCmd.Flags().StringArrayVarP(&encodeFields, "field", "f", nil, "Command field as key=value (repeatable)")
	encodeCmd.Flags().BoolVar(&encodeAdvanced, "advanced", false, "Send canId/canData verbatim as a CAN frame")
	encodeCmd.Flags().BoolVar(&encodeFrameOnly, "frame-only", false, "Print only the encoded frame, no envelope")
}

// parseFields turns key=value pairs into request fields
func parseFields(pairs []string) (map[string]interface{}, error) {
	fields := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Errorf("invalid field %q, want key=value", pair)
		}
		fields[key] = strings.TrimSpace(value)
	}
	return fields, nil
}

// newCommandRequest builds a request from flags and configuration
func newCommandRequest(cmdType string, pairs []string, advanced bool) (scooter.CommandRequest, error) {
	fields, err := parseFields(pairs)
	if err != nil {
		return scooter.CommandRequest{}, err
	}
	if cmdType == "" && !advanced {
		return scooter.CommandRequest{}, errors.New("command type is required (--type)")
	}
	return scooter.CommandRequest{
		VIN:      config.VIN,
		Type:     scooter.CommandType(strings.ToUpper(strings.TrimSpace(cmdType))),
		Fields:   fields,
		ClientID: config.ClientID,
		Advanced: advanced,
	}, nil
}

// frameReport is the JSON view of a bare frame
type frameReport struct {
	Header  string `json:"header,omitempty"`
	CANID   string `json:"canId,omitempty"`
	Payload string `json:"payload"`
	Value   string `json:"value"`
}

func runEncode(cmd *cobra.Command, args []string) error {
	req, err := newCommandRequest(encodeType, encodeFields, encodeAdvanced)
	if err != nil {
		return err
	}

	log := logger.WithFields(logrus.Fields{"type": req.Type, "vin": req.VIN, "advanced": req.Advanced})
	out := cmd.OutOrStdout()
	encoder := &scooter.Encoder{ClientID: config.ClientID}

	if encodeFrameOnly {
		frame, err := encoder.Encode(req)
		if err != nil {
			return errors.Wrap(err, "encode failed")
		}
		log.WithField("frame", frame.String()).Debug("command encoded")

		if config.Output.Format == formatJSON {
			return writeJSON(out, frameReport{
				Header:  frame.Header,
				CANID:   frame.CANID,
				Payload: frame.Payload,
				Value:   frame.String(),
			})
		}
		fmt.Fprintln(out, frame.String())
		return nil
	}

	env, err := encoder.Envelope(req)
	if err != nil {
		return errors.Wrap(err, "encode failed")
	}
	log.WithField("frame", env.Value).Debug("command encoded")

	if config.Output.Format != formatJSON {
		frame, err := encoder.Encode(req)
		if err != nil {
			return errors.Wrap(err, "encode failed")
		}
		label := string(req.Type)
		if req.Advanced {
			label = scooter.BackendCANType
		}
		fmt.Fprintln(out, styled(out, headingStyle, label), styled(out, dimTextStyle, scooter.FormatFrame(frame)))
	}
	return writeJSON(out, env)
}
