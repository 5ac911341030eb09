// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scooter

import (
	"fmt"
	"math"
)

// AnomalyType represents different types of telemetry anomalies
type AnomalyType int

const (
	AnomalyNoTokens AnomalyType = iota
	AnomalyNoCells
	AnomalyMissingICV
	AnomalyICVMismatch
	AnomalyIncompleteNTC
	AnomalyInvalidTemp
	AnomalyUnknownMOS
	AnomalyMOSFETOff
	AnomalyCellImbalance
	AnomalyInvalidSOC
)

// String returns the anomaly name
func (a AnomalyType) String() string {
	switch a {
	case AnomalyNoTokens:
		return "NO_TOKENS"
	case AnomalyNoCells:
		return "NO_CELLS"
	case AnomalyMissingICV:
		return "MISSING_ICV"
	case AnomalyICVMismatch:
		return "ICV_MISMATCH"
	case AnomalyIncompleteNTC:
		return "INCOMPLETE_NTC"
	case AnomalyInvalidTemp:
		return "INVALID_TEMP"
	case AnomalyUnknownMOS:
		return "UNKNOWN_MOS"
	case AnomalyMOSFETOff:
		return "MOSFET_OFF"
	case AnomalyCellImbalance:
		return "CELL_IMBALANCE"
	case AnomalyInvalidSOC:
		return "INVALID_SOC"
	default:
		return fmt.Sprintf("UNKNOWN_%d", int(a))
	}
}

// Validation limits
const (
	MinNTCTemp        = -40
	MaxNTCTemp        = 125
	MaxCellSpread     = 0.3   // volts between highest and lowest cell
	ICVMatchTolerance = 0.005 // volts
)

// ValidationError represents a telemetry validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateSample validates a decoded sample and detects anomalies
// Returns a slice of validation errors (empty if the sample is clean)
func ValidateSample(d *DecodedSample) []ValidationError {
	if len(d.Sample.Tokens()) == 0 {
		return []ValidationError{{
			Type:    AnomalyNoTokens,
			Message: "Sample has no telemetry tokens",
			Details: map[string]interface{}{"time": d.Sample.Time},
		}}
	}

	errors := ValidateTelemetry(&d.Telemetry)

	if soc := d.Sample.SOC; soc.Valid && (soc.Value < 0 || soc.Value > 100) {
		errors = append(errors, ValidationError{
			Type:    AnomalyInvalidSOC,
			Message: fmt.Sprintf("SOC out of range (%.1f%%, valid: 0-100%%)", soc.Value),
			Details: map[string]interface{}{"soc": soc.Value, "min": 0.0, "max": 100.0},
		})
	}

	return errors
}

// ValidateTelemetry checks decoded telemetry for missing or inconsistent fields
func ValidateTelemetry(t *Telemetry) []ValidationError {
	errors := []ValidationError{}
	errors = append(errors, validateCells(t)...)
	errors = append(errors, validateNTC(&t.NTC)...)
	errors = append(errors, validateMOS(&t.MOS)...)
	return errors
}

// validateCells checks the per-cell voltages against each other and the ICV summary
func validateCells(t *Telemetry) []ValidationError {
	errors := []ValidationError{}

	if t.MinCell == 0 {
		errors = append(errors, ValidationError{
			Type:    AnomalyNoCells,
			Message: "No valid cell voltages",
			Details: map[string]interface{}{},
		})
	} else {
		minV := t.Cells[t.MinCell-1].Voltage
		maxV := t.Cells[t.MaxCell-1].Voltage
		if spread := maxV - minV; spread > MaxCellSpread {
			errors = append(errors, ValidationError{
				Type:    AnomalyCellImbalance,
				Message: fmt.Sprintf("Cell imbalance %.3fV (cell %d %.3fV, cell %d %.3fV, max %.1fV)", spread, t.MaxCell, maxV, t.MinCell, minV, MaxCellSpread),
				Details: map[string]interface{}{"spread": spread, "min_cell": t.MinCell, "max_cell": t.MaxCell, "max": MaxCellSpread},
			})
		}

		if t.ICV != nil {
			if math.Abs(t.ICV.MinVoltage-minV) > ICVMatchTolerance || math.Abs(t.ICV.MaxVoltage-maxV) > ICVMatchTolerance {
				errors = append(errors, ValidationError{
					Type: AnomalyICVMismatch,
					Message: fmt.Sprintf("ICV summary %.3f-%.3fV disagrees with cells %.3f-%.3fV",
						t.ICV.MinVoltage, t.ICV.MaxVoltage, minV, maxV),
					Details: map[string]interface{}{
						"icv_min": t.ICV.MinVoltage, "icv_max": t.ICV.MaxVoltage,
						"cell_min": minV, "cell_max": maxV,
					},
				})
			}
		}
	}

	if t.ICV == nil {
		errors = append(errors, ValidationError{
			Type:    AnomalyMissingICV,
			Message: "ICV summary missing or malformed",
			Details: map[string]interface{}{},
		})
	}

	return errors
}

// validateNTC checks thermistor channel count and range
func validateNTC(n *NTCReading) []ValidationError {
	errors := []ValidationError{}

	if n.Count < NTCChannels {
		errors = append(errors, ValidationError{
			Type:    AnomalyIncompleteNTC,
			Message: fmt.Sprintf("NTC channels incomplete (%d of %d)", n.Count, NTCChannels),
			Details: map[string]interface{}{"count": n.Count, "expected": NTCChannels},
		})
	}

	for i := 0; i < n.Count; i++ {
		temp := n.Channels[i]
		if temp < MinNTCTemp || temp > MaxNTCTemp {
			errors = append(errors, ValidationError{
				Type:    AnomalyInvalidTemp,
				Message: fmt.Sprintf("NTC%d out of range (%d°C, valid: %d to %d°C)", i+1, temp, MinNTCTemp, MaxNTCTemp),
				Details: map[string]interface{}{"channel": i, "value": temp, "min": MinNTCTemp, "max": MaxNTCTemp},
			})
		}
	}

	return errors
}

// validateMOS reports unknown or open main pack MOSFETs
func validateMOS(m *MOSFETState) []ValidationError {
	errors := []ValidationError{}

	if m.MainCharge == SwitchUnknown || m.MainDischarge == SwitchUnknown {
		errors = append(errors, ValidationError{
			Type:    AnomalyUnknownMOS,
			Message: fmt.Sprintf("Main MOSFET state unknown (charge=%s, discharge=%s)", m.MainCharge, m.MainDischarge),
			Details: map[string]interface{}{"charge": m.MainCharge, "discharge": m.MainDischarge},
		})
		return errors
	}

	if m.MainCharge == SwitchOff || m.MainDischarge == SwitchOff {
		errors = append(errors, ValidationError{
			Type:    AnomalyMOSFETOff,
			Message: fmt.Sprintf("Main MOSFET off (charge=%s, discharge=%s)", m.MainCharge, m.MainDischarge),
			Details: map[string]interface{}{"charge": m.MainCharge, "discharge": m.MainDischarge},
		})
	}

	return errors
}
