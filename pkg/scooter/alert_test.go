// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scooter

import "testing"

func TestDecodeAlert(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", "Unknown alert"},
		{"battery", "B=72.5", "Battery voltage is low (72.5V)"},
		{"battery lowercase", "b=68", "Battery voltage is low (68V)"},
		{"battery without value", "B=", "Battery voltage is low (unknown)"},
		{"battery beats ntc", "B=50 N1=40", "Battery voltage is low (50V)"},
		{"positive terminal", "N1=55", "Positive terminal temperature is 55°C"},
		{"cell 20", "N2=41", "Cell number 20 temperature is 41°C"},
		{"cell 28", "N3=-3", "Cell number 28 temperature is -3°C"},
		{"negative terminal", "N4=60.5", "Negative terminal temperature is 60.5°C"},
		{"ntc without value", "N2=hot", "Cell number 20 temperature is unknown"},
		{"ntc beats controller error", "CONTERR=1 N1=40", "Positive terminal temperature is 40°C"},
		{"charging mosfet off", "M=0,1", "Charging MOSFET is OFF"},
		{"discharging mosfet off", "M=1,0", "Discharging MOSFET is OFF"},
		{"both mosfets off", "M=0 , 0", "Both Charge and Discharge MOSFETs are OFF"},
		{"mosfet pair with MOS key", "MOS=0,1", "Charging MOSFET is OFF"},
		{"mosfet other pair", "M=1,1", "MOSFET status: Charge=1, Discharge=1"},
		{"legacy charging off", "MOS=0.1", "Charging MOSFET is OFF"},
		{"legacy discharging off", "MOS=1.0", "Discharging MOSFET is OFF"},
		{"legacy both off", "mos=0.0", "Both Charge and Discharge MOSFETs are OFF"},
		{"mosfet unrecognized value", "MOS=5", "MOSFET status change detected (5)"},
		{"mosfet no value", "M=", "MOSFET status change detected (unknown)"},
		{"controller error", "CONTERR=1", "Controller error detected"},
		{"controller error spaced", "conterr = 1", "Controller error detected"},
		{"controller ok", "CONTERR=0", "Alert received: CONTERR=0"},
		{"min cell voltage", "IV=2.695V Cell=16", "Minimum cell voltage low (2.695 V) at Cell #16"},
		{"min cell voltage integer", "IV=3 CELL=4", "Minimum cell voltage low (3 V) at Cell #4"},
		{"min cell voltage no cell number", "IV=2.7 CELL=?", "Minimum cell voltage low (2.7 V)"},
		{"min cell voltage no voltage", "IV=low CELL=4", "Minimum cell voltage low"},
		{"fallback keeps original case", "door open", "Alert received: door open"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeAlert(tt.raw, "VIN1", "12.9,77.6"); got != tt.want {
				t.Errorf("DecodeAlert(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNewAlert(t *testing.T) {
	a := NewAlert("B=70", "", "")
	if a.VIN != UnknownVIN {
		t.Errorf("VIN = %q, want %q", a.VIN, UnknownVIN)
	}
	if a.Location != UnknownLocation {
		t.Errorf("Location = %q, want %q", a.Location, UnknownLocation)
	}
	if a.Message != "Battery voltage is low (70V)" {
		t.Errorf("Message = %q", a.Message)
	}
	if a.RawText != "B=70" {
		t.Errorf("RawText = %q, want B=70", a.RawText)
	}

	b := NewAlert("CONTERR=1", "MD9XYZ", "12.9,77.6")
	if b.VIN != "MD9XYZ" || b.Location != "12.9,77.6" {
		t.Errorf("NewAlert() = %+v, want VIN and location kept", b)
	}
}

func TestDecodeAlert_Idempotent(t *testing.T) {
	inputs := []string{"B=72.5", "M=0,1", "IV=2.695V CELL=16", "anything"}
	for _, in := range inputs {
		if DecodeAlert(in, "", "") != DecodeAlert(in, "", "") {
			t.Errorf("DecodeAlert(%q) not deterministic", in)
		}
	}
}
