// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scooter

import (
	"reflect"
	"testing"
	"time"
)

const fullSampleJSON = `{
	"time": "2025-03-14T09:26:53Z",
	"vin": "MD9NX100PRO0001",
	"model": "NX100 Pro",
	"speed_kmph": 42.5,
	"soc": "87",
	"tripkm": 12.25,
	"batvoltage": 84.2,
	"motortemp": 51,
	"controllermostemp": null,
	"currentconsumption": -12.5,
	"lat": 12.971599,
	"lng": 77.594566,
	"tirepressure": "F3228R3430",
	"ntc": ["AllCells 1to3=0E740E7A0E6E00", "cell4to6=0E740E740E7400", "MOS=1,0", 1, "1",
		"ntc=25", 26, 27, 28, -40, -40, -40, -40, "ICV=0E7A020E6E03"]
}`

func TestGauge_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  Gauge
	}{
		{`42.5`, Gauge{Value: 42.5, Valid: true}},
		{`-3`, Gauge{Value: -3, Valid: true}},
		{`"87"`, Gauge{Value: 87, Valid: true}},
		{`" 1.5 "`, Gauge{Value: 1.5, Valid: true}},
		{`null`, Gauge{}},
		{`"N/A"`, Gauge{}},
		{`""`, Gauge{}},
		{`true`, Gauge{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var g Gauge
			if err := g.UnmarshalJSON([]byte(tt.input)); err != nil {
				t.Fatalf("UnmarshalJSON() error: %v", err)
			}
			if g != tt.want {
				t.Errorf("UnmarshalJSON(%s) = %+v, want %+v", tt.input, g, tt.want)
			}
		})
	}
}

func TestGauge_Format(t *testing.T) {
	if got := NewGauge(3.14159).Format(2); got != "3.14" {
		t.Errorf("Format(2) = %q, want %q", got, "3.14")
	}
	if got := (Gauge{}).Format(1); got != "N/A" {
		t.Errorf("Format() of invalid gauge = %q, want N/A", got)
	}

	data, err := Gauge{}.MarshalJSON()
	if err != nil || string(data) != "null" {
		t.Errorf("MarshalJSON() = %s, %v, want null", data, err)
	}
	data, err = NewGauge(2.5).MarshalJSON()
	if err != nil || string(data) != "2.5" {
		t.Errorf("MarshalJSON() = %s, %v, want 2.5", data, err)
	}
}

func TestTokenList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  TokenList
	}{
		{"strings", `["MOS=1,0", "1"]`, TokenList{"MOS=1,0", "1"}},
		{"numbers become text", `["ntc=25", 26, -40, 1.5]`, TokenList{"ntc=25", "26", "-40", "1.5"}},
		{"nulls dropped", `["a", null, "b"]`, TokenList{"a", "b"}},
		{"array inside string", `"[\"MOS=1,1\", \"0\"]"`, TokenList{"MOS=1,1", "0"}},
		{"single string", `"ICV=0E7A020E6E03"`, TokenList{"ICV=0E7A020E6E03"}},
		{"blank string", `"  "`, nil},
		{"null", `null`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got TokenList
			if err := got.UnmarshalJSON([]byte(tt.input)); err != nil {
				t.Fatalf("UnmarshalJSON() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("UnmarshalJSON(%s) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	var bad TokenList
	if err := bad.UnmarshalJSON([]byte(`{"a": 1}`)); err == nil {
		t.Error("UnmarshalJSON(object) should fail")
	}
}

func TestParseSample(t *testing.T) {
	s, err := ParseSample([]byte(fullSampleJSON))
	if err != nil {
		t.Fatalf("ParseSample() error: %v", err)
	}

	if s.VIN != "MD9NX100PRO0001" || s.Model != "NX100 Pro" {
		t.Errorf("VIN/Model = %q/%q", s.VIN, s.Model)
	}
	if !s.SOC.Valid || s.SOC.Value != 87 {
		t.Errorf("SOC = %+v, want 87", s.SOC)
	}
	if s.ControllerMOSTemp.Valid {
		t.Errorf("ControllerMOSTemp = %+v, want invalid", s.ControllerMOSTemp)
	}
	if s.InAh.Valid {
		t.Errorf("InAh = %+v, want invalid when absent", s.InAh)
	}
	if got := len(s.Tokens()); got != 14 {
		t.Errorf("len(Tokens()) = %d, want 14", got)
	}
	if got := s.Location(); got != "12.971599,77.594566" {
		t.Errorf("Location() = %q", got)
	}

	ts, ok := s.Timestamp()
	want := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	if !ok || !ts.Equal(want) {
		t.Errorf("Timestamp() = %v, %v, want %v", ts, ok, want)
	}

	if _, err := ParseSample([]byte(`{"soc": `)); err == nil {
		t.Error("ParseSample() should fail on truncated input")
	}
}

func TestSample_Decode(t *testing.T) {
	s, err := ParseSample([]byte(fullSampleJSON))
	if err != nil {
		t.Fatalf("ParseSample() error: %v", err)
	}
	d := s.Decode()

	if d.Telemetry.MinCell != 3 || d.Telemetry.MaxCell != 2 {
		t.Errorf("min/max cell = %d/%d, want 3/2", d.Telemetry.MinCell, d.Telemetry.MaxCell)
	}
	if d.Telemetry.NTC.APUStatus() != APUAbsent {
		t.Errorf("APUStatus() = %v, want APUAbsent", d.Telemetry.NTC.APUStatus())
	}
	if d.Tire == nil || d.Tire.Front == nil || d.Tire.Front.Pressure != 32 || d.Tire.Rear.Temp != 30 {
		t.Errorf("Tire = %+v, want front 32 psi and rear 30°C", d.Tire)
	}
	if d.Generation != 0 || d.Consumption != 12.5 {
		t.Errorf("Generation/Consumption = %v/%v, want 0/12.5", d.Generation, d.Consumption)
	}

	regen := Sample{CurrentConsumption: NewGauge(4)}.Decode()
	if regen.Generation != 4 || regen.Consumption != 0 {
		t.Errorf("Generation/Consumption = %v/%v, want 4/0", regen.Generation, regen.Consumption)
	}
}

func TestSample_TokensFallback(t *testing.T) {
	s := Sample{NTCArray: TokenList{"ntc=20"}}
	if got := s.Tokens(); len(got) != 1 || got[0] != "ntc=20" {
		t.Errorf("Tokens() = %q, want ntc_array contents", got)
	}

	s.NTC = TokenList{"ntc=30"}
	if got := s.Tokens(); got[0] != "ntc=30" {
		t.Errorf("Tokens() = %q, want ntc contents first", got)
	}
}

func TestSample_Location(t *testing.T) {
	tests := []struct {
		name string
		s    Sample
		want string
	}{
		{"lat_long wins", Sample{LatLong: "1.5,2.5", Lat: NewGauge(9), Lng: NewGauge(9)}, "1.5,2.5"},
		{"coordinates", Sample{Lat: NewGauge(1), Lng: NewGauge(2)}, "1.000000,2.000000"},
		{"partial", Sample{Lat: NewGauge(1)}, ""},
		{"none", Sample{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Location(); got != tt.want {
				t.Errorf("Location() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSample_Timestamp(t *testing.T) {
	for _, raw := range []string{"2025-03-14T09:26:53", "2025-03-14 09:26:53", "2025-03-14 09:26:53.120", "2025-03-14T09:26:53.5+05:30"} {
		s := Sample{Time: raw}
		if _, ok := s.Timestamp(); !ok {
			t.Errorf("Timestamp() failed for %q", raw)
		}
	}
	if _, ok := (&Sample{Time: "yesterday"}).Timestamp(); ok {
		t.Error("Timestamp() accepted garbage")
	}
}

func TestParseSamples(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantN   int
		wantErr bool
	}{
		{"empty", "  ", 0, false},
		{"array", `[{"vin": "A"}, {"vin": "B"}]`, 2, false},
		{"single object", `{"vin": "A"}`, 1, false},
		{"json lines", "{\"vin\": \"A\"}\n{\"vin\": \"B\"}\n{\"vin\": \"C\"}\n", 3, false},
		{"broken array", `[{"vin": "A"}`, 0, true},
		{"broken stream", "{\"vin\": \"A\"}\n{\"vin\": ", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			samples, err := ParseSamples([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSamples() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(samples) != tt.wantN {
				t.Errorf("len(ParseSamples()) = %d, want %d", len(samples), tt.wantN)
			}
		})
	}
}
