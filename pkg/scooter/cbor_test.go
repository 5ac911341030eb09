// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scooter

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func TestSampleCBOR_RoundTrip(t *testing.T) {
	s := Sample{
		Time:         "2025-03-14T09:26:53Z",
		VIN:          "MD9NX100PRO0001",
		Model:        "nx100pro",
		TirePressure: "F3228",
		NTC:          fullSampleTokens,
	}
	d := s.Decode()

	data, err := EncodeSampleCBOR(&d)
	if err != nil {
		t.Fatalf("EncodeSampleCBOR() error: %v", err)
	}

	got, err := DecodeSampleCBOR(data)
	if err != nil {
		t.Fatalf("DecodeSampleCBOR() error: %v", err)
	}

	if got.Sample.Time != s.Time || got.Sample.VIN != s.VIN || got.Sample.Model != s.Model {
		t.Errorf("header = %q/%q/%q", got.Sample.Time, got.Sample.VIN, got.Sample.Model)
	}
	if got.Telemetry.Cells != d.Telemetry.Cells {
		t.Errorf("Cells = %+v, want %+v", got.Telemetry.Cells, d.Telemetry.Cells)
	}
	if got.Telemetry.MOS != d.Telemetry.MOS {
		t.Errorf("MOS = %+v, want %+v", got.Telemetry.MOS, d.Telemetry.MOS)
	}
	if got.Telemetry.NTC != d.Telemetry.NTC {
		t.Errorf("NTC = %+v, want %+v", got.Telemetry.NTC, d.Telemetry.NTC)
	}
	if got.Telemetry.ICV == nil || *got.Telemetry.ICV != *d.Telemetry.ICV {
		t.Errorf("ICV = %+v, want %+v", got.Telemetry.ICV, d.Telemetry.ICV)
	}
	if got.Telemetry.MinCell != 3 || got.Telemetry.MaxCell != 2 {
		t.Errorf("min/max cell = %d/%d, want 3/2", got.Telemetry.MinCell, got.Telemetry.MaxCell)
	}
	if got.Tire == nil || got.Tire.Front == nil || *got.Tire.Front != (TireReading{Pressure: 32, Temp: 28}) || got.Tire.Rear != nil {
		t.Errorf("Tire = %+v, want front only", got.Tire)
	}
}

func TestSampleCBOR_Deterministic(t *testing.T) {
	d := Sample{NTC: fullSampleTokens}.Decode()
	a, err := EncodeSampleCBOR(&d)
	if err != nil {
		t.Fatalf("EncodeSampleCBOR() error: %v", err)
	}
	b, err := EncodeSampleCBOR(&d)
	if err != nil {
		t.Fatalf("EncodeSampleCBOR() error: %v", err)
	}
	if string(a) != string(b) {
		t.Error("EncodeSampleCBOR() output differs between calls")
	}
}

func TestSampleCBOR_EmptyTelemetry(t *testing.T) {
	d := Sample{}.Decode()
	data, err := EncodeSampleCBOR(&d)
	if err != nil {
		t.Fatalf("EncodeSampleCBOR() error: %v", err)
	}
	got, err := DecodeSampleCBOR(data)
	if err != nil {
		t.Fatalf("DecodeSampleCBOR() error: %v", err)
	}
	if got.Telemetry.MinCell != 0 || got.Telemetry.ICV != nil || got.Tire != nil || got.Telemetry.NTC.Count != 0 {
		t.Errorf("DecodeSampleCBOR() = %+v, want empty telemetry", got.Telemetry)
	}
	for i, c := range got.Telemetry.Cells {
		if c.Cell != i+1 || c.Valid {
			t.Errorf("Cells[%d] = %+v", i, c)
		}
	}
}

func TestDecodeSampleCBOR_Errors(t *testing.T) {
	mustMarshal := func(v interface{}) []byte {
		data, err := cbor.Marshal(v)
		if err != nil {
			t.Fatalf("cbor.Marshal() error: %v", err)
		}
		return data
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not cbor", []byte{0xFF, 0xFF}},
		{"wrong version", mustMarshal(map[int]interface{}{0: 7})},
		{"too many cells", mustMarshal(map[int]interface{}{0: 1, 4: make([]float64, CellCount+1)})},
		{"too many mos flags", mustMarshal(map[int]interface{}{0: 1, 5: []int{1, 1, 1, 1, 1}})},
		{"too many ntc channels", mustMarshal(map[int]interface{}{0: 1, 6: make([]int, NTCChannels+1)})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeSampleCBOR(tt.data); err == nil {
				t.Error("DecodeSampleCBOR() should fail")
			}
		})
	}
}

func TestDecodeSampleCBOR_FiltersValues(t *testing.T) {
	bad := 7.5
	good := 3.3
	data, err := cbor.Marshal(map[int]interface{}{
		0: 1,
		4: []*float64{&bad, nil, &good},
		5: []int{int(SwitchOn), 9},
	})
	if err != nil {
		t.Fatalf("cbor.Marshal() error: %v", err)
	}

	got, err := DecodeSampleCBOR(data)
	if err != nil {
		t.Fatalf("DecodeSampleCBOR() error: %v", err)
	}
	if got.Telemetry.Cells[0].Valid || !got.Telemetry.Cells[2].Valid {
		t.Errorf("Cells = %+v, want only cell 3 valid", got.Telemetry.Cells[:3])
	}
	if got.Telemetry.MOS.MainCharge != SwitchOn || got.Telemetry.MOS.MainDischarge != SwitchUnknown {
		t.Errorf("MOS = %+v, want ON and UNKNOWN", got.Telemetry.MOS)
	}
}
