// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scooter

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	frontTirePattern = regexp.MustCompile(`(?i)F(\d{2})(\d{2})`)
	rearTirePattern  = regexp.MustCompile(`(?i)R(\d{2})(\d{2})`)
)

// TireReading is one wheel's pressure (psi) and temperature (°C)
type TireReading struct {
	Pressure uint8 `json:"pressure"`
	Temp     uint8 `json:"temp"`
}

// String formats the reading as "25 psi / 30°C"
func (r TireReading) String() string {
	return fmt.Sprintf("%d psi / %d°C", r.Pressure, r.Temp)
}

// TirePressure holds the front and rear readings; either may be nil
type TirePressure struct {
	Front *TireReading `json:"front,omitempty"`
	Rear  *TireReading `json:"rear,omitempty"`
}

// DecodeTirePressure searches raw for "F<pp><tt>" and "R<pp><tt>" independently.
// Returns nil when neither wheel is present.
func DecodeTirePressure(raw string) *TirePressure {
	front := matchTire(frontTirePattern, raw)
	rear := matchTire(rearTirePattern, raw)
	if front == nil && rear == nil {
		return nil
	}
	return &TirePressure{Front: front, Rear: rear}
}

func matchTire(re *regexp.Regexp, raw string) *TireReading {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	// Two decimal digits always fit in a uint8
	pressure, _ := strconv.ParseUint(m[1], 10, 8)
	temp, _ := strconv.ParseUint(m[2], 10, 8)
	return &TireReading{Pressure: uint8(pressure), Temp: uint8(temp)}
}
