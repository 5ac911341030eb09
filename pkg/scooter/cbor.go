// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scooter

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CBORRecordVersion is written as key 0 of every exported record
const CBORRecordVersion = 1

// cborSample is the compact export record of a decoded sample.
// Invalid cells are encoded as null; MOS flags use the SwitchState values.
type cborSample struct {
	Version uint8      `cbor:"0,keyasint"`
	Time    string     `cbor:"1,keyasint,omitempty"`
	VIN     string     `cbor:"2,keyasint,omitempty"`
	Model   string     `cbor:"3,keyasint,omitempty"`
	Cells   []*float64 `cbor:"4,keyasint"`
	MOS     []uint8    `cbor:"5,keyasint"`
	NTC     []int      `cbor:"6,keyasint"`
	ICV     *cborICV   `cbor:"7,keyasint,omitempty"`
	Front   *cborTire  `cbor:"8,keyasint,omitempty"`
	Rear    *cborTire  `cbor:"9,keyasint,omitempty"`
}

type cborICV struct {
	MaxVoltage float64 `cbor:"0,keyasint"`
	MaxCell    uint8   `cbor:"1,keyasint"`
	MinVoltage float64 `cbor:"2,keyasint"`
	MinCell    uint8   `cbor:"3,keyasint"`
}

type cborTire struct {
	Pressure uint8 `cbor:"0,keyasint"`
	Temp     uint8 `cbor:"1,keyasint"`
}

var sampleEncMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return em
}()

// EncodeSampleCBOR encodes the decoded fields of a sample as a CBOR map
func EncodeSampleCBOR(d *DecodedSample) ([]byte, error) {
	rec := cborSample{
		Version: CBORRecordVersion,
		Time:    d.Sample.Time,
		VIN:     d.Sample.VIN,
		Model:   d.Sample.Model,
		Cells:   make([]*float64, CellCount),
		MOS:     make([]uint8, 0, MOSFETFlags),
		NTC:     make([]int, d.Telemetry.NTC.Count),
	}

	for i, c := range d.Telemetry.Cells {
		if c.Valid {
			v := c.Voltage
			rec.Cells[i] = &v
		}
	}
	for _, f := range d.Telemetry.MOS.Flags() {
		rec.MOS = append(rec.MOS, uint8(f))
	}
	copy(rec.NTC, d.Telemetry.NTC.Channels[:d.Telemetry.NTC.Count])

	if icv := d.Telemetry.ICV; icv != nil {
		rec.ICV = &cborICV{
			MaxVoltage: icv.MaxVoltage,
			MaxCell:    icv.MaxCell,
			MinVoltage: icv.MinVoltage,
			MinCell:    icv.MinCell,
		}
	}
	if d.Tire != nil {
		if d.Tire.Front != nil {
			rec.Front = &cborTire{Pressure: d.Tire.Front.Pressure, Temp: d.Tire.Front.Temp}
		}
		if d.Tire.Rear != nil {
			rec.Rear = &cborTire{Pressure: d.Tire.Rear.Pressure, Temp: d.Tire.Rear.Temp}
		}
	}

	data, err := sampleEncMode.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode CBOR: %w", err)
	}
	return data, nil
}

// DecodeSampleCBOR restores a decoded sample from an exported record.
// Gauge fields are not part of the record and come back invalid.
func DecodeSampleCBOR(data []byte) (*DecodedSample, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty CBOR payload")
	}

	var rec cborSample
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode CBOR: %w", err)
	}
	if rec.Version != CBORRecordVersion {
		return nil, fmt.Errorf("unsupported record version %d", rec.Version)
	}
	if len(rec.Cells) > CellCount {
		return nil, fmt.Errorf("expected at most %d cells, got %d", CellCount, len(rec.Cells))
	}
	if len(rec.MOS) > MOSFETFlags {
		return nil, fmt.Errorf("expected at most %d MOS flags, got %d", MOSFETFlags, len(rec.MOS))
	}
	if len(rec.NTC) > NTCChannels {
		return nil, fmt.Errorf("expected at most %d NTC channels, got %d", NTCChannels, len(rec.NTC))
	}

	d := &DecodedSample{
		Sample: Sample{Time: rec.Time, VIN: rec.VIN, Model: rec.Model},
	}
	t := &d.Telemetry

	for i := range t.Cells {
		t.Cells[i].Cell = i + 1
	}
	for i, v := range rec.Cells {
		if v != nil && *v > MinCellVoltage && *v < MaxCellVoltage {
			t.Cells[i].Voltage = *v
			t.Cells[i].Valid = true
		}
	}
	t.MinCell, t.MaxCell = liveMinMax(&t.Cells)

	var flags [MOSFETFlags]SwitchState
	for i, f := range rec.MOS {
		if s := SwitchState(f); s == SwitchOn || s == SwitchOff {
			flags[i] = s
		}
	}
	t.MOS = MOSFETState{MainCharge: flags[0], MainDischarge: flags[1], APUCharge: flags[2], APUDischarge: flags[3]}

	copy(t.NTC.Channels[:], rec.NTC)
	t.NTC.Count = len(rec.NTC)

	if rec.ICV != nil {
		t.ICV = &ICVSummary{
			MaxVoltage: rec.ICV.MaxVoltage,
			MaxCell:    rec.ICV.MaxCell,
			MinVoltage: rec.ICV.MinVoltage,
			MinCell:    rec.ICV.MinCell,
		}
	}

	if rec.Front != nil || rec.Rear != nil {
		d.Tire = &TirePressure{}
		if rec.Front != nil {
			d.Tire.Front = &TireReading{Pressure: rec.Front.Pressure, Temp: rec.Front.Temp}
		}
		if rec.Rear != nil {
			d.Tire.Rear = &TireReading{Pressure: rec.Rear.Pressure, Temp: rec.Rear.Temp}
		}
	}

	return d, nil
}
