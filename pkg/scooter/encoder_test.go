// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scooter

import (
	"errors"
	"testing"
)

func TestEncode_CANCommands(t *testing.T) {
	tests := []struct {
		name        string
		cmd         CommandType
		fields      map[string]interface{}
		wantCANID   string
		wantPayload string
	}{
		{"set rpm with defaults", CmdSetRPM, map[string]interface{}{FieldRPM: 3600}, CANIDMotorRPM, "100E00000000051E"},
		{"set rpm from string", CmdSetRPM, map[string]interface{}{FieldRPM: "3600", FieldDuration: "", FieldInterval: nil}, CANIDMotorRPM, "100E00000000051E"},
		{"set rpm all fields", CmdSetRPM, map[string]interface{}{FieldRPM: 1500, FieldDuration: 10, FieldInterval: 60}, CANIDMotorRPM, "DC05000000000A3C"},
		{"set duration", CmdSetDuration, map[string]interface{}{FieldDuration: 10}, CANIDMotorRPM, "100E000000000A1E"},
		{"set interval", CmdSetInterval, map[string]interface{}{FieldInterval: 60}, CANIDMotorRPM, "100E00000000053C"},
		{"line current", CmdLineCurrent, map[string]interface{}{FieldLineCurrent: 50}, CANIDMotorCurrent, "C8007800B004A000"},
		{"phase current", CmdPhaseCurrent, map[string]interface{}{FieldPhaseCurrent: 250}, CANIDMotorCurrent, "90017800E803A000"},
		{"regen min", CmdRegenMin, map[string]interface{}{FieldRegenMin: 20}, CANIDMotorCurrent, "90015000B004A000"},
		{"regen max", CmdRegenMax, map[string]interface{}{FieldRegenMax: 50}, CANIDMotorCurrent, "90017800B004C800"},
		{"line current defaults to zero", CmdLineCurrent, nil, CANIDMotorCurrent, "00007800B004A000"},
		{"regen max defaults to zero", CmdRegenMax, map[string]interface{}{}, CANIDMotorCurrent, "90017800B0040000"},
		{"gear forward", CmdGearControl, map[string]interface{}{FieldGear: "FORWARD"}, CANIDMotorControl, "050001020E007387"},
		{"gear neutral", CmdGearControl, map[string]interface{}{FieldGear: "NEUTRAL"}, CANIDMotorControl, "040001020E007387"},
		{"gear backward", CmdGearControl, map[string]interface{}{FieldGear: "BACKWARD"}, CANIDMotorControl, "060001020E007387"},
		{"cruise on", CmdCruiseControl, map[string]interface{}{FieldCruise: "ON"}, CANIDMotorControl, "040001020E007387"},
		{"cruise off", CmdCruiseControl, map[string]interface{}{FieldCruise: "OFF"}, CANIDMotorControl, "0400010200007387"},
		{"rated capacity", CmdRatedCapacity, map[string]interface{}{FieldCapacity: 40}, CANIDRatedCapacity, "00009C4000000000"},
		{"bms rated capacity", CmdBMSRatedCapacity, map[string]interface{}{FieldCapacity: 4.1}, CANIDRatedCapacity, "0000100400000000"},
		{"remaining capacity", CmdRemainingCapacity, map[string]interface{}{FieldRemainingCapacity: 30.5}, CANIDRemainingCapacity, "0000772400000000"},
		{"total charging ah", CmdTotalChargingAh, map[string]interface{}{FieldTotalChargingAh: 1000}, CANIDTotalChargingAh, "000F424000000000"},
		{"total discharging ah", CmdTotalDischargingAh, map[string]interface{}{FieldTotalDischargingAh: 2}, CANIDTotalDischargingAh, "000007D000000000"},
		{"balancing current rounds", CmdBalancingCurrent, map[string]interface{}{FieldBalanceCurrent: 1.25}, CANIDBalancingCurrent, "000D000000000000"},
		{"charge temp high", CmdChargeTempHigh, map[string]interface{}{FieldTemperature: 55}, CANIDChargeTempHigh, "FF0221005F000000"},
		{"discharge temp high", CmdDischargeTempHigh, map[string]interface{}{FieldTemperature: -10}, CANIDDischgTempHigh, "FF0221001E000000"},
		{"charge overcurrent", CmdChargeOvercurrent, map[string]interface{}{FieldOverCurrent: 20}, CANIDChargeOvercurrent, "FF022175F8000000"},
		{"discharge overcurrent", CmdDischargeOvercurrent, map[string]interface{}{FieldOverCurrent: 20}, CANIDDischgOvercurrent, "FF02217468000000"},
		{"manual soc", CmdManualSOC, map[string]interface{}{FieldManualSOC: 80}, CANIDManualSOC, "0320000000000000"},
		{"soc low", CmdSOCLow, map[string]interface{}{FieldSOC: 10}, CANIDSOCLow, "FF02210064000000"},
		{"charge mosfet on", CmdChargeMOSFET, map[string]interface{}{FieldMOSFET: "ON"}, CANIDChargeMOSFET, "0101020304050607"},
		{"discharge mosfet off", CmdDischargeMOSFET, map[string]interface{}{FieldMOSFET: "OFF"}, CANIDDischargeMOSFET, "0001020304050607"},
		{"bms reboot", CmdBMSReboot, nil, CANIDBMSReboot, "0000000000000000"},
		{"cell volt diff truncates", CmdCellVoltDiff, map[string]interface{}{FieldVoltDiff: 0.3}, CANIDCellVoltDiff, "FF0221012C000000"},
		{"cell high volt", CmdCellHighVolt, map[string]interface{}{FieldCellHighVolt: 4.2}, CANIDCellHighVolt, "FF02211068000000"},
		{"cell low volt", CmdCellLowVolt, map[string]interface{}{FieldCellLowVolt: 2.8}, CANIDCellLowVolt, "FF02210AF0000000"},
		{"total high volt is swapped", CmdTotalHighVolt, map[string]interface{}{FieldTotalHighVolt: 84}, CANIDTotalHighVolt, "FF02214803000000"},
		{"total low volt is not swapped", CmdTotalLowVolt, map[string]interface{}{FieldTotalLowVolt: 60}, CANIDTotalLowVolt, "FF02210258000000"},
		{"ntc temp diff", CmdNTCTempDiff, map[string]interface{}{FieldNTCTempDiff: 15}, CANIDNTCTempDiff, "FF0221000F000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := Encode(CommandRequest{VIN: "VIN1", Type: tt.cmd, Fields: tt.fields})
			if err != nil {
				t.Fatalf("Encode() unexpected error: %v", err)
			}
			if frame.Header != FrameHeader {
				t.Errorf("Header = %q, want %q", frame.Header, FrameHeader)
			}
			if frame.CANID != tt.wantCANID {
				t.Errorf("CANID = %q, want %q", frame.CANID, tt.wantCANID)
			}
			if frame.Payload != tt.wantPayload {
				t.Errorf("Payload = %q, want %q", frame.Payload, tt.wantPayload)
			}
			if got := frame.String(); got != FrameHeader+tt.wantCANID+tt.wantPayload {
				t.Errorf("String() = %q", got)
			}
		})
	}
}

func TestEncode_Raw(t *testing.T) {
	tests := []struct {
		name     string
		advanced bool
		canID    interface{}
		canData  interface{}
		want     string
		wantErr  error
	}{
		{"four byte data", false, "10FBA807", "00000000", "FFAA550103001510FBA80700000000", nil},
		{"eight byte data", false, "10FBA807", "0011223344556677", "FFAA550103001510FBA8070011223344556677", nil},
		{"short can id", false, "10FBA80", "00000000", "", ErrInvalidHex},
		{"lowercase can id", false, "10fba807", "00000000", "", ErrInvalidHex},
		{"missing can id", false, nil, "00000000", "", ErrInvalidHex},
		{"odd data length", false, "10FBA807", "000", "", ErrInvalidHex},
		{"data too long", false, "10FBA807", "001122334455667788", "", ErrInvalidHex},
		{"data not hex", false, "10FBA807", "00GG", "", ErrInvalidHex},
		{"advanced full frame", true, "10F8A807", "050001020E007387", "FFAA550103001510F8A807050001020E007387", nil},
		{"advanced short data", true, "10FBA807", "00000000", "", ErrInvalidHex},
		{"advanced lowercase data", true, "10FBA807", "050001020e007387", "", ErrInvalidHex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := CommandRequest{
				Type:     CmdCANRaw,
				Advanced: tt.advanced,
				Fields:   map[string]interface{}{FieldCANID: tt.canID, FieldCANData: tt.canData},
			}
			frame, err := Encode(req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Encode() error = %v, want %v", err, tt.wantErr)
				}
				if frame != nil {
					t.Errorf("Encode() returned frame %q together with error", frame.String())
				}
				return
			}
			if err != nil {
				t.Fatalf("Encode() unexpected error: %v", err)
			}
			if got := frame.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncode_Plain(t *testing.T) {
	tests := []struct {
		name    string
		cmd     CommandType
		value   interface{}
		want    string
		wantErr error
	}{
		{"power on", CmdPower, "1", "1", nil},
		{"power off numeric", CmdPower, 0, "0", nil},
		{"bluetooth", CmdBluetooth, "0", "0", nil},
		{"airplane default", CmdAirplane, nil, "1", nil},
		{"airplane explicit", CmdAirplane, "0", "0", nil},
		{"restart default", CmdRestart, nil, "1", nil},
		{"power missing", CmdPower, nil, "", ErrMissingField},
		{"power invalid", CmdPower, "2", "", ErrInvalidEnum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := map[string]interface{}{}
			if tt.value != nil {
				fields[FieldValue] = tt.value
			}
			frame, err := Encode(CommandRequest{Type: tt.cmd, Fields: fields})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Encode() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Encode() unexpected error: %v", err)
			}
			if frame.Framed() {
				t.Errorf("Framed() = true for plain command")
			}
			if got := frame.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncode_Errors(t *testing.T) {
	tests := []struct {
		name      string
		cmd       CommandType
		fields    map[string]interface{}
		wantErr   error
		wantField string
	}{
		{"unknown command", CommandType("CAN_WARP_DRIVE"), nil, ErrUnknownCommand, ""},
		{"missing rpm", CmdSetRPM, nil, ErrMissingField, FieldRPM},
		{"blank rpm", CmdSetRPM, map[string]interface{}{FieldRPM: "  "}, ErrMissingField, FieldRPM},
		{"rpm not a number", CmdSetRPM, map[string]interface{}{FieldRPM: "fast"}, ErrInvalidNumber, FieldRPM},
		{"rpm negative", CmdSetRPM, map[string]interface{}{FieldRPM: -1}, ErrOutOfRange, FieldRPM},
		{"duration too wide", CmdSetRPM, map[string]interface{}{FieldRPM: 3600, FieldDuration: 300}, ErrOutOfRange, FieldDuration},
		{"capacity too wide", CmdRatedCapacity, map[string]interface{}{FieldCapacity: 66}, ErrOutOfRange, FieldCapacity},
		{"discharge overcurrent below zero", CmdDischargeOvercurrent, map[string]interface{}{FieldOverCurrent: 3001}, ErrOutOfRange, FieldOverCurrent},
		{"gear lowercase", CmdGearControl, map[string]interface{}{FieldGear: "forward"}, ErrInvalidEnum, FieldGear},
		{"gear missing", CmdGearControl, nil, ErrMissingField, FieldGear},
		{"cruise numeric", CmdCruiseControl, map[string]interface{}{FieldCruise: 1}, ErrInvalidEnum, FieldCruise},
		{"mosfet invalid", CmdChargeMOSFET, map[string]interface{}{FieldMOSFET: "MAYBE"}, ErrInvalidEnum, FieldMOSFET},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := Encode(CommandRequest{Type: tt.cmd, Fields: tt.fields})
			if frame != nil {
				t.Errorf("Encode() returned frame %q together with error", frame.String())
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Encode() error = %v, want %v", err, tt.wantErr)
			}
			var cmdErr *CommandError
			if !errors.As(err, &cmdErr) {
				t.Fatalf("Encode() error type = %T, want *CommandError", err)
			}
			if cmdErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", cmdErr.Field, tt.wantField)
			}
		})
	}
}

func TestEncoder_Envelope(t *testing.T) {
	enc := NewEncoder()

	env, err := enc.Envelope(CommandRequest{VIN: "MD9ABC", Type: CmdSetRPM, Fields: map[string]interface{}{FieldRPM: 3600}})
	if err != nil {
		t.Fatalf("Envelope() unexpected error: %v", err)
	}
	want := Envelope{
		VINNumber:   "MD9ABC",
		CommandType: "CAN",
		Value:       "FFAA550103001510FCA807100E00000000051E",
		ClientID:    DefaultClientID,
	}
	if *env != want {
		t.Errorf("Envelope() = %+v, want %+v", *env, want)
	}

	env, err = enc.Envelope(CommandRequest{VIN: "MD9ABC", Type: CmdRestart, ClientID: "OPS"})
	if err != nil {
		t.Fatalf("Envelope() unexpected error: %v", err)
	}
	if env.CommandType != "RESTART" || env.Value != "1" || env.ClientID != "OPS" {
		t.Errorf("Envelope() = %+v, want RESTART/1/OPS", *env)
	}

	env, err = enc.Envelope(CommandRequest{
		VIN:      "MD9ABC",
		Type:     CmdPower,
		Advanced: true,
		Fields:   map[string]interface{}{FieldCANID: "10F8A807", FieldCANData: "050001020E007387"},
	})
	if err != nil {
		t.Fatalf("Envelope() unexpected error: %v", err)
	}
	if env.CommandType != BackendCANType {
		t.Errorf("CommandType = %q, want CAN for advanced mode", env.CommandType)
	}

	if _, err := enc.Envelope(CommandRequest{Type: CmdRestart}); !errors.Is(err, ErrMissingField) {
		t.Errorf("Envelope() without VIN error = %v, want ErrMissingField", err)
	}
}

func TestEncoder_EnvelopeClientID(t *testing.T) {
	enc := &Encoder{ClientID: "DASHBOARD"}
	env, err := enc.Envelope(CommandRequest{VIN: "V", Type: CmdBMSReboot})
	if err != nil {
		t.Fatalf("Envelope() unexpected error: %v", err)
	}
	if env.ClientID != "DASHBOARD" {
		t.Errorf("ClientID = %q, want DASHBOARD", env.ClientID)
	}

	env, err = (&Encoder{}).Envelope(CommandRequest{VIN: "V", Type: CmdBMSReboot})
	if err != nil {
		t.Fatalf("Envelope() unexpected error: %v", err)
	}
	if env.ClientID != DefaultClientID {
		t.Errorf("ClientID = %q, want %q", env.ClientID, DefaultClientID)
	}
}
