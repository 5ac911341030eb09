// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scooter

import (
	"fmt"
	"regexp"
	"strings"
)

// Defaults applied by NewAlert when the alert source omits them
const (
	UnknownVIN      = "Unknown VIN"
	UnknownLocation = "unknown location"
)

// Alert is one decoded vehicle alert
type Alert struct {
	RawText  string `json:"rawText"`
	VIN      string `json:"vin"`
	Location string `json:"location"`
	Message  string `json:"message"`
}

// NewAlert decodes rawText and fills in missing VIN and location
func NewAlert(rawText, vin, location string) Alert {
	if vin == "" {
		vin = UnknownVIN
	}
	if location == "" {
		location = UnknownLocation
	}
	return Alert{
		RawText:  rawText,
		VIN:      vin,
		Location: location,
		Message:  DecodeAlert(rawText, vin, location),
	}
}

// ntcAlerts lists the thermistor alert keys in match order
var ntcAlerts = []struct {
	key   string
	label string
}{
	{"N1", "Positive terminal"},
	{"N2", "Cell number 20"},
	{"N3", "Cell number 28"},
	{"N4", "Negative terminal"},
}

var (
	valuePatterns = map[string]*regexp.Regexp{}

	mosPairPattern = regexp.MustCompile(`(?:MOS|M)\s*=\s*(\d)\s*,\s*(\d)`)
	conterrPattern = regexp.MustCompile(`CONTERR\s*=\s*1`)
	minVoltPattern = regexp.MustCompile(`IV\s*=\s*([-+]?\d*\.\d+|\d+)`)
	minCellPattern = regexp.MustCompile(`CELL\s*=\s*(\d+)`)
)

func init() {
	for _, key := range []string{"B", "N1", "N2", "N3", "N4", "MOS", "M"} {
		valuePatterns[key] = regexp.MustCompile(key + `\s*=\s*([-+]?\d*\.?\d+)`)
	}
}

// extractValue returns the number following "KEY=" in text, or "" when absent
func extractValue(text, key string) string {
	m := valuePatterns[key].FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

func orUnknown(v, unit string) string {
	if v == "" {
		return "unknown"
	}
	return v + unit
}

// DecodeAlert turns raw alert text into a readable message.
// Rules are applied in order and the first match wins. vin and location
// identify the alert source for callers; the message depends only on rawText.
func DecodeAlert(rawText, vin, location string) string {
	if rawText == "" {
		return "Unknown alert"
	}
	text := strings.ToUpper(rawText)

	if strings.Contains(text, "B=") {
		return fmt.Sprintf("Battery voltage is low (%s)", orUnknown(extractValue(text, "B"), "V"))
	}

	for _, n := range ntcAlerts {
		if strings.Contains(text, n.key+"=") {
			return fmt.Sprintf("%s temperature is %s", n.label, orUnknown(extractValue(text, n.key), "°C"))
		}
	}

	if strings.Contains(text, "MOS=") || strings.Contains(text, "M=") {
		return decodeMOSAlert(text)
	}

	if conterrPattern.MatchString(text) {
		return "Controller error detected"
	}

	if strings.Contains(text, "IV=") && strings.Contains(text, "CELL=") {
		var voltage, cell string
		if m := minVoltPattern.FindStringSubmatch(text); m != nil {
			voltage = m[1]
		}
		if m := minCellPattern.FindStringSubmatch(text); m != nil {
			cell = m[1]
		}
		switch {
		case voltage != "" && cell != "":
			return fmt.Sprintf("Minimum cell voltage low (%s V) at Cell #%s", voltage, cell)
		case voltage != "":
			return fmt.Sprintf("Minimum cell voltage low (%s V)", voltage)
		default:
			return "Minimum cell voltage low"
		}
	}

	return "Alert received: " + rawText
}

func decodeMOSAlert(text string) string {
	if m := mosPairPattern.FindStringSubmatch(text); m != nil {
		charge, discharge := m[1], m[2]
		switch {
		case charge == "0" && discharge == "1":
			return "Charging MOSFET is OFF"
		case charge == "1" && discharge == "0":
			return "Discharging MOSFET is OFF"
		case charge == "0" && discharge == "0":
			return "Both Charge and Discharge MOSFETs are OFF"
		}
		return fmt.Sprintf("MOSFET status: Charge=%s, Discharge=%s", charge, discharge)
	}

	// Legacy single value form: MOS=0.1, MOS=1.0, MOS=0.0
	val := extractValue(text, "MOS")
	if val == "" {
		val = extractValue(text, "M")
	}
	switch val {
	case "0.1":
		return "Charging MOSFET is OFF"
	case "1.0":
		return "Discharging MOSFET is OFF"
	case "0.0":
		return "Both Charge and Discharge MOSFETs are OFF"
	}
	return fmt.Sprintf("MOSFET status change detected (%s)", orUnknown(val, ""))
}
