// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scooter

import (
	"fmt"
	"strings"
)

// FormatSample formats a decoded sample into a human-readable string
func FormatSample(d *DecodedSample, labels NTCLabels) string {
	s := &d.Sample

	vin := s.VIN
	if vin == "" {
		vin = "-"
	}
	result := fmt.Sprintf("[%s] vin=%s tokens=%d\n", s.Time, vin, len(s.Tokens()))
	result += fmt.Sprintf("  Speed: %s km/h, SOC: %s%%, Trip: %s km, Battery: %s V\n",
		s.SpeedKmph.Format(1), s.SOC.Format(0), s.TripKm.Format(1), s.BatVoltage.Format(1))
	result += fmt.Sprintf("  Motor: %s°C, Controller MOS: %s°C, In: %s Ah, Out: %s Ah\n",
		s.MotorTemp.Format(0), s.ControllerMOSTemp.Format(0), s.InAh.Format(2), s.OutAh.Format(2))
	if s.CurrentConsumption.Valid {
		result += fmt.Sprintf("  Current: %.1f A generation, %.1f A consumption\n", d.Generation, d.Consumption)
	}
	if loc := s.Location(); loc != "" {
		result += fmt.Sprintf("  Location: %s\n", loc)
	}
	result += fmt.Sprintf("  Tires: %s\n", FormatTirePressure(d.Tire))
	result += FormatTelemetry(&d.Telemetry, labels)

	return result
}

// FormatTelemetry formats decoded telemetry tokens
func FormatTelemetry(t *Telemetry, labels NTCLabels) string {
	result := fmt.Sprintf("  MOS: %s\n", FormatMOS(t.MOS))
	result += fmt.Sprintf("  ICV: %s\n", FormatICV(t.ICV))
	result += FormatNTC(t.NTC, labels)
	result += FormatCells(t)
	return result
}

// FormatMOS formats the four MOSFET flags
func FormatMOS(m MOSFETState) string {
	return fmt.Sprintf("main charge=%s discharge=%s, APU charge=%s discharge=%s",
		m.MainCharge, m.MainDischarge, m.APUCharge, m.APUDischarge)
}

// FormatICV formats the BMS min/max summary
func FormatICV(icv *ICVSummary) string {
	if icv == nil {
		return "N/A"
	}
	return fmt.Sprintf("max %.3fV (cell %d), min %.3fV (cell %d)",
		icv.MaxVoltage, icv.MaxCell, icv.MinVoltage, icv.MinCell)
}

// FormatNTC formats the thermistor channels using the model's main pack labels
func FormatNTC(n NTCReading, labels NTCLabels) string {
	parts := make([]string, 0, MainNTCChannels)
	for i := 0; i < MainNTCChannels; i++ {
		if v, ok := n.Channel(i); ok {
			parts = append(parts, fmt.Sprintf("%s %d°C", labels[i], v))
		} else {
			parts = append(parts, fmt.Sprintf("%s N/A", labels[i]))
		}
	}
	result := fmt.Sprintf("  NTC: %s\n", strings.Join(parts, ", "))

	switch n.APUStatus() {
	case APUAbsent:
		result += "  APU: not installed\n"
	case APUUnknown:
		result += "  APU: N/A\n"
	default:
		apu := n.APU()
		temps := make([]string, len(apu))
		for i, v := range apu {
			temps[i] = fmt.Sprintf("%d°C", v)
		}
		result += fmt.Sprintf("  APU: %s\n", strings.Join(temps, ", "))
	}

	return result
}

// FormatCells formats the cell voltage table, four cells per line
func FormatCells(t *Telemetry) string {
	if t.MinCell == 0 {
		return "  Cells: N/A\n"
	}

	result := fmt.Sprintf("  Cells: min cell %d (%.3fV), max cell %d (%.3fV)\n",
		t.MinCell, t.Cells[t.MinCell-1].Voltage, t.MaxCell, t.Cells[t.MaxCell-1].Voltage)

	line := "   "
	for i, c := range t.Cells {
		if c.Valid {
			line += fmt.Sprintf(" %02d:%.3f", c.Cell, c.Voltage)
		} else {
			line += fmt.Sprintf(" %02d:  -  ", c.Cell)
		}
		if (i+1)%4 == 0 || i == CellCount-1 {
			result += line + "\n"
			line = "   "
		}
	}

	return result
}

// FormatTirePressure formats front and rear readings
func FormatTirePressure(p *TirePressure) string {
	if p == nil {
		return "N/A"
	}
	front, rear := "N/A", "N/A"
	if p.Front != nil {
		front = p.Front.String()
	}
	if p.Rear != nil {
		rear = p.Rear.String()
	}
	return fmt.Sprintf("front %s, rear %s", front, rear)
}

// FormatFrame formats an encoded command frame with its parts separated
func FormatFrame(f *CommandFrame) string {
	if !f.Framed() {
		return fmt.Sprintf("value=%s", f.Payload)
	}
	return fmt.Sprintf("header=%s can_id=%s payload=%s", f.Header, f.CANID, f.Payload)
}

// FormatCommandSpec formats one command table entry for listings
func FormatCommandSpec(s *CommandSpec) string {
	canID := s.CANID
	switch {
	case s.Plain():
		canID = "(plain)"
	case canID == "":
		canID = "(caller)"
	}

	fields := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		switch {
		case f.IsEnum() && f.Fallback != "":
			fields = append(fields, fmt.Sprintf("%s=%s [%s]", f.Name, strings.Join(f.ChoiceNames(), "|"), f.Fallback))
		case f.IsEnum():
			fields = append(fields, fmt.Sprintf("%s=%s", f.Name, strings.Join(f.ChoiceNames(), "|")))
		case f.Required:
			fields = append(fields, f.Name+"*")
		default:
			fields = append(fields, fmt.Sprintf("%s [%g]", f.Name, f.Default))
		}
	}

	return fmt.Sprintf("%-26s %-9s %s", s.Type, canID, strings.Join(fields, ", "))
}
