// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package scooter decodes vehicle telemetry and encodes gateway CAN commands.
//
// Telemetry arrives as a loosely typed token array ("ntc" field of a sample)
// carrying per-cell voltages, MOSFET flags, NTC temperatures and an ICV
// min/max summary. Commands leave as hex frames: a fixed gateway header,
// an 8-hex CAN identifier and a 16-hex payload.
//
// Every function in this package is pure and safe for concurrent use.
package scooter

// Gateway framing
const (
	FrameHeader   = "FFAA5501030015"
	CANIDLength   = 8
	PayloadLength = 16
)

// Pack layout
const (
	CellCount       = 23
	NTCChannels     = 8
	MainNTCChannels = 4
	MOSFETFlags     = 4
)

// Cell voltage sanity bounds (exclusive, volts)
const (
	MinCellVoltage = 0.0
	MaxCellVoltage = 6.0
)

// APUAbsentTemp is reported on all four APU NTC channels when no APU is fitted
const APUAbsentTemp = -40

// Telemetry token prefixes
const (
	tokenMOS = "MOS="
	tokenNTC = "ntc="
	tokenICV = "ICV="
)

// ICV summary layout: max voltage, max cell, min voltage, min cell (hex digits)
const (
	icvVoltageDigits = 4
	icvCellDigits    = 2
	icvLength        = 2*icvVoltageDigits + 2*icvCellDigits
)

// CAN identifiers - motor controller
const (
	CANIDMotorRPM     = "10FCA807"
	CANIDMotorCurrent = "10FBA807"
	CANIDMotorControl = "10F8A807"
)

// CAN identifiers - BMS
const (
	CANIDRatedCapacity      = "16060180"
	CANIDRemainingCapacity  = "16080180"
	CANIDTotalChargingAh    = "160A0180"
	CANIDTotalDischargingAh = "160C0180"
	CANIDBalancingCurrent   = "16120180"
	CANIDManualSOC          = "161E0180"
	CANIDChargeMOSFET       = "162A0180"
	CANIDDischargeMOSFET    = "162C0180"
	CANIDBMSReboot          = "163A0180"
	CANIDCellHighVolt       = "16800180"
	CANIDTotalHighVolt      = "16810180"
	CANIDCellLowVolt        = "16820180"
	CANIDTotalLowVolt       = "16830180"
	CANIDChargeOvercurrent  = "16840180"
	CANIDDischgOvercurrent  = "16850180"
	CANIDChargeTempHigh     = "16860180"
	CANIDDischgTempHigh     = "16870180"
	CANIDCellVoltDiff       = "168A0180"
	CANIDNTCTempDiff        = "168B0180"
	CANIDSOCLow             = "168C0180"
)

// Level-2 BMS alarm payload framing: prefix + value + fixed tail
const (
	alarmPrefix      = "FF0221"
	alarmBytePrefix  = "FF022100"
	alarmTail        = "000000"
	overcurrentBase  = 30000
	temperatureShift = 40
)

// Client identifier stamped on envelopes when the caller does not supply one
const DefaultClientID = "COMMANDCENTER"

// BackendCANType is the backend commandType for every CAN-framed command
const BackendCANType = "CAN"
