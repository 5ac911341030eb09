// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/cellstat/pkg/scooter"
	"github.com/spf13/cobra"
)

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List supported command types",
	Long: `List every command type the encoder supports with its CAN ID and fields.

Field notation:
  name*           required
  name [n]        optional, defaults to n
  name=A|B        one of the listed literals
  name=A|B [A]    one of the listed literals, defaults to A`,
	Args: cobra.NoArgs,
	RunE: runCommands,
}

func init() {
	rootCmd.AddCommand(commandsCmd)
}

// fieldReport is the JSON view of one command field
type fieldReport struct {
	Name     string   `json:"name"`
	Required bool     `json:"required"`
	Default  *float64 `json:"default,omitempty"`
	Choices  []string `json:"choices,omitempty"`
	Fallback string   `json:"fallback,omitempty"`
}

// commandReport is the JSON view of one command spec
type commandReport struct {
	Type        scooter.CommandType `json:"type"`
	BackendType string              `json:"backendType"`
	CANID       string              `json:"canId,omitempty"`
	Description string              `json:"description"`
	Fields      []fieldReport       `json:"fields"`
}

func runCommands(cmd *cobra.Command, args []string) error {
	specs := scooter.Commands()
	out := cmd.OutOrStdout()

	if config.Output.Format == formatJSON {
		reports := make([]commandReport, 0, len(specs))
		for i := range specs {
			s := &specs[i]
			r := commandReport{
				Type:        s.Type,
				BackendType: s.BackendType(),
				CANID:       s.CANID,
				Description: s.Description,
				Fields:      make([]fieldReport, 0, len(s.Fields)),
			}
			for _, f := range s.Fields {
				fr := fieldReport{Name: f.Name, Required: f.Required, Fallback: f.Fallback}
				switch {
				case f.IsEnum():
					fr.Choices = f.ChoiceNames()
				case !f.Required:
					def := f.Default
					fr.Default = &def
				}
				r.Fields = append(r.Fields, fr)
			}
			reports = append(reports, r)
		}
		return writeJSON(out, reports)
	}

	fmt.Fprintln(out, styled(out, headingStyle, fmt.Sprintf("%-26s %-9s %s", "TYPE", "CAN ID", "FIELDS")))
	for i := range specs {
		fmt.Fprintln(out, scooter.FormatCommandSpec(&specs[i]))
	}
	return nil
}
