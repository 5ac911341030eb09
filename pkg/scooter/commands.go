// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scooter

import "sort"

// CommandType identifies an operator command as named by the gateway backend
type CommandType string

// Plain value commands (no CAN framing)
const (
	CmdPower     CommandType = "POWER"
	CmdBluetooth CommandType = "BLUETOOTH"
	CmdAirplane  CommandType = "AIRPLANE"
	CmdRestart   CommandType = "RESTART"
)

// Motor controller commands
const (
	CmdCANRaw        CommandType = "CAN_RAW"
	CmdSetRPM        CommandType = "CAN_SET_RPM"
	CmdSetDuration   CommandType = "CAN_STE_DURATION"
	CmdSetInterval   CommandType = "CAN_SET_INTRVAL"
	CmdLineCurrent   CommandType = "CAN_CURRENT"
	CmdPhaseCurrent  CommandType = "CAN_PASH_CURRENT"
	CmdRegenMin      CommandType = "CAN_REGEN_MIN"
	CmdRegenMax      CommandType = "CAN_REGEN_MAX"
	CmdGearControl   CommandType = "CAN_GEAR_CTRL"
	CmdCruiseControl CommandType = "CAN_CRUISE_CTRL"
)

// BMS commands
const (
	CmdRatedCapacity        CommandType = "CAN_RATED_CAPACITY"
	CmdBMSRatedCapacity     CommandType = "CAN_BMS_RATED_CAPACITY"
	CmdRemainingCapacity    CommandType = "CAN_REMAINING_CAPACITY"
	CmdTotalChargingAh      CommandType = "CAN_TOTAL_CHARGING_AH"
	CmdTotalDischargingAh   CommandType = "CAN_TOTAL_DISCHARGING_AH"
	CmdBalancingCurrent     CommandType = "CAN_BALANCING_CURRENT"
	CmdChargeTempHigh       CommandType = "CAN_CHG_TEMP_HIGH_L2"
	CmdDischargeTempHigh    CommandType = "CAN_DES_TEMP_HIGH_L2"
	CmdChargeOvercurrent    CommandType = "CAN_CHG_OVERCURRENT_L2"
	CmdDischargeOvercurrent CommandType = "CAN_DISCHG_OVERCURRENT_L2"
	CmdManualSOC            CommandType = "CAN_MANUAL_SOC"
	CmdSOCLow               CommandType = "CAN_SOC_LOW_L2"
	CmdChargeMOSFET         CommandType = "CAN_CHG_MOSFET"
	CmdDischargeMOSFET      CommandType = "CAN_DISCHG_MOSFET"
	CmdBMSReboot            CommandType = "CAN_BMS_REBOOT"
	CmdCellVoltDiff         CommandType = "CAN_CELL_VOLT_DIFF_L2"
	CmdCellHighVolt         CommandType = "CAN_CELL_HIGH_VOLT_L2"
	CmdCellLowVolt          CommandType = "CAN_CELL_LOW_VOLT_L2"
	CmdTotalHighVolt        CommandType = "CAN_TOTAL_HIGH_VOLT_L2"
	CmdTotalLowVolt         CommandType = "CAN_TOTAL_LOW_VOLT_L2"
	CmdNTCTempDiff          CommandType = "CAN_NTC_TEMP_DIFF_L2"
)

// Request field names
const (
	FieldValue              = "value"
	FieldCANID              = "canId"
	FieldCANData            = "canData"
	FieldRPM                = "rpm"
	FieldDuration           = "duration"
	FieldInterval           = "interval"
	FieldLineCurrent        = "lineCurrent"
	FieldPhaseCurrent       = "phaseCurrent"
	FieldRegenMin           = "regenMin"
	FieldRegenMax           = "regenMax"
	FieldGear               = "gear"
	FieldCruise             = "cruise"
	FieldCapacity           = "capacity"
	FieldRemainingCapacity  = "remainingCapacity"
	FieldTotalChargingAh    = "totalChargingAh"
	FieldTotalDischargingAh = "totalDischargingAh"
	FieldBalanceCurrent     = "balanceCurrent"
	FieldTemperature        = "temperature"
	FieldOverCurrent        = "overCurrent"
	FieldManualSOC          = "manualSoc"
	FieldSOC                = "soc"
	FieldMOSFET             = "mosfet"
	FieldVoltDiff           = "voltDiff"
	FieldCellHighVolt       = "cellHighVolt"
	FieldCellLowVolt        = "cellLowVolt"
	FieldTotalHighVolt      = "totalHighVolt"
	FieldTotalLowVolt       = "totalLowVolt"
	FieldNTCTempDiff        = "ntcTempDiff"
)

// Fixed payload lookup tables
var (
	GearPayloads = map[string]string{
		"NEUTRAL":  "040001020E007387",
		"FORWARD":  "050001020E007387",
		"BACKWARD": "060001020E007387",
	}
	CruisePayloads = map[string]string{
		"ON":  "040001020E007387",
		"OFF": "0400010200007387",
	}
	MOSFETPayloads = map[string]string{
		"ON":  "0101020304050607",
		"OFF": "0001020304050607",
	}
	SwitchValues = map[string]string{
		"0": "0",
		"1": "1",
	}
)

const bmsRebootPayload = "0000000000000000"

// FieldSpec describes one request field of a command
type FieldSpec struct {
	Name     string
	Required bool
	Default  float64           // numeric fields, used when not required
	Choices  map[string]string // enumerated fields: accepted literal -> encoded value
	Fallback string            // enumerated fields: literal used when absent ("" = required)
}

// IsEnum reports whether the field takes one of a fixed set of literals
func (f FieldSpec) IsEnum() bool {
	return f.Choices != nil
}

// ChoiceNames returns the accepted literals in sorted order
func (f FieldSpec) ChoiceNames() []string {
	names := make([]string, 0, len(f.Choices))
	for k := range f.Choices {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func required(name string) FieldSpec {
	return FieldSpec{Name: name, Required: true}
}

func optional(name string, def float64) FieldSpec {
	return FieldSpec{Name: name, Default: def}
}

func choice(name string, choices map[string]string, fallback string) FieldSpec {
	return FieldSpec{Name: name, Required: fallback == "", Choices: choices, Fallback: fallback}
}

// commandKind selects the framing path of a command
type commandKind int

const (
	kindCAN commandKind = iota
	kindPlain
	kindRaw
)

// CommandSpec describes how one command type is encoded
type CommandSpec struct {
	Type        CommandType
	CANID       string // empty for plain and raw commands
	Description string
	Fields      []FieldSpec

	kind  commandKind
	build func(r *fieldReader) string
}

// Plain reports whether the command bypasses CAN framing
func (s *CommandSpec) Plain() bool {
	return s.kind == kindPlain
}

// BackendType is the commandType sent to the gateway backend
func (s *CommandSpec) BackendType() string {
	if s.kind == kindPlain {
		return string(s.Type)
	}
	return BackendCANType
}

// rpmFields orders the RPM family fields as the payload builder reads them
func rpmFields(rpm, duration, interval FieldSpec) []FieldSpec {
	return []FieldSpec{rpm, duration, interval}
}

// currentFields orders the current family fields as the payload builder reads them
func currentFields(line, phase, regenMin, regenMax FieldSpec) []FieldSpec {
	return []FieldSpec{line, phase, regenMin, regenMax}
}

var commandSpecs = []CommandSpec{
	// Plain value commands
	{Type: CmdPower, Description: "Vehicle power", kind: kindPlain,
		Fields: []FieldSpec{choice(FieldValue, SwitchValues, "")}, build: plainPayload},
	{Type: CmdBluetooth, Description: "Bluetooth module", kind: kindPlain,
		Fields: []FieldSpec{choice(FieldValue, SwitchValues, "")}, build: plainPayload},
	{Type: CmdAirplane, Description: "Airplane mode", kind: kindPlain,
		Fields: []FieldSpec{choice(FieldValue, SwitchValues, "1")}, build: plainPayload},
	{Type: CmdRestart, Description: "Restart telematics unit", kind: kindPlain,
		Fields: []FieldSpec{choice(FieldValue, SwitchValues, "1")}, build: plainPayload},

	// Raw frame
	{Type: CmdCANRaw, Description: "Send an arbitrary CAN frame", kind: kindRaw,
		Fields: []FieldSpec{required(FieldCANID), required(FieldCANData)}},

	// Motor controller
	{Type: CmdSetRPM, CANID: CANIDMotorRPM, Description: "Set motor RPM",
		Fields: rpmFields(required(FieldRPM), optional(FieldDuration, 5), optional(FieldInterval, 30)), build: rpmPayload},
	{Type: CmdSetDuration, CANID: CANIDMotorRPM, Description: "Set RPM hold duration",
		Fields: rpmFields(optional(FieldRPM, 3600), required(FieldDuration), optional(FieldInterval, 30)), build: rpmPayload},
	{Type: CmdSetInterval, CANID: CANIDMotorRPM, Description: "Set RPM update interval",
		Fields: rpmFields(optional(FieldRPM, 3600), optional(FieldDuration, 5), required(FieldInterval)), build: rpmPayload},
	{Type: CmdLineCurrent, CANID: CANIDMotorCurrent, Description: "Set line current limit",
		Fields: currentFields(optional(FieldLineCurrent, 0), optional(FieldPhaseCurrent, 300), optional(FieldRegenMin, 30), optional(FieldRegenMax, 40)), build: currentPayload},
	{Type: CmdPhaseCurrent, CANID: CANIDMotorCurrent, Description: "Set phase current limit",
		Fields: currentFields(optional(FieldLineCurrent, 100), optional(FieldPhaseCurrent, 0), optional(FieldRegenMin, 30), optional(FieldRegenMax, 40)), build: currentPayload},
	{Type: CmdRegenMin, CANID: CANIDMotorCurrent, Description: "Set minimum regen current",
		Fields: currentFields(optional(FieldLineCurrent, 100), optional(FieldPhaseCurrent, 300), optional(FieldRegenMin, 0), optional(FieldRegenMax, 40)), build: currentPayload},
	{Type: CmdRegenMax, CANID: CANIDMotorCurrent, Description: "Set maximum regen current",
		Fields: currentFields(optional(FieldLineCurrent, 100), optional(FieldPhaseCurrent, 300), optional(FieldRegenMin, 30), optional(FieldRegenMax, 0)), build: currentPayload},
	{Type: CmdGearControl, CANID: CANIDMotorControl, Description: "Select gear",
		Fields: []FieldSpec{choice(FieldGear, GearPayloads, "")}, build: choicePayload},
	{Type: CmdCruiseControl, CANID: CANIDMotorControl, Description: "Cruise control",
		Fields: []FieldSpec{choice(FieldCruise, CruisePayloads, "")}, build: choicePayload},

	// BMS capacity
	{Type: CmdRatedCapacity, CANID: CANIDRatedCapacity, Description: "Rated capacity (Ah)",
		Fields: []FieldSpec{required(FieldCapacity)}, build: ratedCapacityPayload},
	{Type: CmdBMSRatedCapacity, CANID: CANIDRatedCapacity, Description: "BMS rated capacity (Ah)",
		Fields: []FieldSpec{required(FieldCapacity)}, build: ratedCapacityPayload},
	{Type: CmdRemainingCapacity, CANID: CANIDRemainingCapacity, Description: "Remaining capacity (Ah)",
		Fields: []FieldSpec{required(FieldRemainingCapacity)}, build: amphourPayload},
	{Type: CmdTotalChargingAh, CANID: CANIDTotalChargingAh, Description: "Total charged (Ah)",
		Fields: []FieldSpec{required(FieldTotalChargingAh)}, build: amphourPayload},
	{Type: CmdTotalDischargingAh, CANID: CANIDTotalDischargingAh, Description: "Total discharged (Ah)",
		Fields: []FieldSpec{required(FieldTotalDischargingAh)}, build: amphourPayload},
	{Type: CmdBalancingCurrent, CANID: CANIDBalancingCurrent, Description: "Balancing current (A)",
		Fields: []FieldSpec{required(FieldBalanceCurrent)}, build: func(r *fieldReader) string {
			return r.round(0, r.num(0), 10, 4) + "000000000000"
		}},

	// BMS level 2 alarms
	{Type: CmdChargeTempHigh, CANID: CANIDChargeTempHigh, Description: "Charge over-temperature (°C)",
		Fields: []FieldSpec{required(FieldTemperature)}, build: temperaturePayload},
	{Type: CmdDischargeTempHigh, CANID: CANIDDischgTempHigh, Description: "Discharge over-temperature (°C)",
		Fields: []FieldSpec{required(FieldTemperature)}, build: temperaturePayload},
	{Type: CmdChargeOvercurrent, CANID: CANIDChargeOvercurrent, Description: "Charge over-current (A)",
		Fields: []FieldSpec{required(FieldOverCurrent)}, build: func(r *fieldReader) string {
			return alarmPrefix + r.trunc(0, overcurrentBase+r.num(0)*10, 1, 4) + alarmTail
		}},
	{Type: CmdDischargeOvercurrent, CANID: CANIDDischgOvercurrent, Description: "Discharge over-current (A)",
		Fields: []FieldSpec{required(FieldOverCurrent)}, build: func(r *fieldReader) string {
			return alarmPrefix + r.trunc(0, overcurrentBase-r.num(0)*10, 1, 4) + alarmTail
		}},
	{Type: CmdManualSOC, CANID: CANIDManualSOC, Description: "Set state of charge (%)",
		Fields: []FieldSpec{required(FieldManualSOC)}, build: func(r *fieldReader) string {
			return r.trunc(0, r.num(0), 10, 4) + "000000000000"
		}},
	{Type: CmdSOCLow, CANID: CANIDSOCLow, Description: "Low state of charge alarm (%)",
		Fields: []FieldSpec{required(FieldSOC)}, build: func(r *fieldReader) string {
			return alarmPrefix + r.trunc(0, r.num(0), 10, 4) + alarmTail
		}},
	{Type: CmdChargeMOSFET, CANID: CANIDChargeMOSFET, Description: "Charge MOSFET",
		Fields: []FieldSpec{choice(FieldMOSFET, MOSFETPayloads, "")}, build: choicePayload},
	{Type: CmdDischargeMOSFET, CANID: CANIDDischargeMOSFET, Description: "Discharge MOSFET",
		Fields: []FieldSpec{choice(FieldMOSFET, MOSFETPayloads, "")}, build: choicePayload},
	{Type: CmdBMSReboot, CANID: CANIDBMSReboot, Description: "Reboot BMS",
		build: func(r *fieldReader) string { return bmsRebootPayload }},
	{Type: CmdCellVoltDiff, CANID: CANIDCellVoltDiff, Description: "Cell voltage difference alarm (V)",
		Fields: []FieldSpec{required(FieldVoltDiff)}, build: func(r *fieldReader) string {
			return alarmPrefix + r.trunc(0, r.num(0), 1000, 4) + alarmTail
		}},
	{Type: CmdCellHighVolt, CANID: CANIDCellHighVolt, Description: "Cell over-voltage alarm (V)",
		Fields: []FieldSpec{required(FieldCellHighVolt)}, build: func(r *fieldReader) string {
			return alarmPrefix + r.round(0, r.num(0), 1000, 4) + alarmTail
		}},
	{Type: CmdCellLowVolt, CANID: CANIDCellLowVolt, Description: "Cell under-voltage alarm (V)",
		Fields: []FieldSpec{required(FieldCellLowVolt)}, build: func(r *fieldReader) string {
			return alarmPrefix + r.round(0, r.num(0), 1000, 4) + alarmTail
		}},
	{Type: CmdTotalHighVolt, CANID: CANIDTotalHighVolt, Description: "Pack over-voltage alarm (V)",
		Fields: []FieldSpec{required(FieldTotalHighVolt)}, build: func(r *fieldReader) string {
			return alarmPrefix + SwapBytes(r.round(0, r.num(0), 10, 4)) + alarmTail
		}},
	{Type: CmdTotalLowVolt, CANID: CANIDTotalLowVolt, Description: "Pack under-voltage alarm (V)",
		Fields: []FieldSpec{required(FieldTotalLowVolt)}, build: func(r *fieldReader) string {
			return alarmPrefix + r.trunc(0, r.num(0), 10, 4) + alarmTail
		}},
	{Type: CmdNTCTempDiff, CANID: CANIDNTCTempDiff, Description: "NTC temperature difference alarm (°C)",
		Fields: []FieldSpec{required(FieldNTCTempDiff)}, build: func(r *fieldReader) string {
			return alarmBytePrefix + r.trunc(0, r.num(0), 1, 2) + alarmTail
		}},
}

var commandIndex = func() map[CommandType]*CommandSpec {
	idx := make(map[CommandType]*CommandSpec, len(commandSpecs))
	for i := range commandSpecs {
		idx[commandSpecs[i].Type] = &commandSpecs[i]
	}
	return idx
}()

// LookupCommand returns the spec for a command type
func LookupCommand(t CommandType) (*CommandSpec, bool) {
	spec, ok := commandIndex[t]
	return spec, ok
}

// Commands returns every supported command spec in table order
func Commands() []CommandSpec {
	out := make([]CommandSpec, len(commandSpecs))
	copy(out, commandSpecs)
	return out
}

func plainPayload(r *fieldReader) string {
	return r.choice(0)
}

func choicePayload(r *fieldReader) string {
	return r.choice(0)
}

// rpmPayload: swap(hex4(rpm)) 00000000 hex2(duration) hex2(interval)
func rpmPayload(r *fieldReader) string {
	rpm := SwapBytes(r.trunc(0, r.num(0), 1, 4))
	duration := r.trunc(1, r.num(1), 1, 2)
	interval := r.trunc(2, r.num(2), 1, 2)
	return rpm + "00000000" + duration + interval
}

// currentPayload: each current x4, little-endian, ordered line, regenMin, phase, regenMax
func currentPayload(r *fieldReader) string {
	line := SwapBytes(r.trunc(0, r.num(0), 4, 4))
	phase := SwapBytes(r.trunc(1, r.num(1), 4, 4))
	regenMin := SwapBytes(r.trunc(2, r.num(2), 4, 4))
	regenMax := SwapBytes(r.trunc(3, r.num(3), 4, 4))
	return line + regenMin + phase + regenMax
}

func ratedCapacityPayload(r *fieldReader) string {
	return "0000" + r.trunc(0, r.num(0), 1000, 4) + "00000000"
}

func amphourPayload(r *fieldReader) string {
	return r.trunc(0, r.num(0), 1000, 8) + "00000000"
}

func temperaturePayload(r *fieldReader) string {
	return alarmBytePrefix + r.trunc(0, r.num(0)+temperatureShift, 1, 2) + alarmTail
}
