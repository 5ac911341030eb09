// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scooter

import (
	"regexp"
	"strconv"
	"strings"
)

// SwitchState is the decoded state of a single MOSFET flag
type SwitchState int

const (
	SwitchUnknown SwitchState = iota
	SwitchOff
	SwitchOn
)

// String returns ON, OFF or UNKNOWN
func (s SwitchState) String() string {
	switch s {
	case SwitchOn:
		return "ON"
	case SwitchOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// switchFromInt maps raw flags: 1 is ON, 0 is OFF, anything else is unknown
func switchFromInt(v int64) SwitchState {
	switch v {
	case 1:
		return SwitchOn
	case 0:
		return SwitchOff
	default:
		return SwitchUnknown
	}
}

// MOSFETState holds the main pack and APU charge/discharge MOSFET flags
type MOSFETState struct {
	MainCharge    SwitchState
	MainDischarge SwitchState
	APUCharge     SwitchState
	APUDischarge  SwitchState
}

// Flags returns the four flags in wire order
func (m MOSFETState) Flags() [MOSFETFlags]SwitchState {
	return [MOSFETFlags]SwitchState{m.MainCharge, m.MainDischarge, m.APUCharge, m.APUDischarge}
}

// CellVoltage is one cell of the 23-cell pack. Voltage is meaningful only when Valid.
type CellVoltage struct {
	Cell    int
	Voltage float64
	Valid   bool
}

// NTCReading holds up to eight thermistor channels in °C.
// Channels at or beyond Count were not present in the sample and read as zero.
type NTCReading struct {
	Channels [NTCChannels]int
	Count    int
}

// Channel returns channel i and whether it was present in the sample
func (n NTCReading) Channel(i int) (int, bool) {
	if i < 0 || i >= n.Count || i >= NTCChannels {
		return 0, false
	}
	return n.Channels[i], true
}

// Main returns the main pack channels that were present
func (n NTCReading) Main() []int {
	end := n.Count
	if end > MainNTCChannels {
		end = MainNTCChannels
	}
	out := make([]int, end)
	copy(out, n.Channels[:end])
	return out
}

// APU returns the auxiliary pack channels that were present
func (n NTCReading) APU() []int {
	if n.Count <= MainNTCChannels {
		return []int{}
	}
	out := make([]int, n.Count-MainNTCChannels)
	copy(out, n.Channels[MainNTCChannels:n.Count])
	return out
}

// APUPresence describes whether an auxiliary pack is fitted
type APUPresence int

const (
	APUUnknown APUPresence = iota // fewer than eight channels reported
	APUAbsent                     // all four APU channels at the -40 sentinel
	APUInstalled
)

// APUStatus classifies the auxiliary pack channels
func (n NTCReading) APUStatus() APUPresence {
	if n.Count < NTCChannels {
		return APUUnknown
	}
	for _, v := range n.Channels[MainNTCChannels:] {
		if v != APUAbsentTemp {
			return APUInstalled
		}
	}
	return APUAbsent
}

// ICVSummary is the min/max cell summary reported by the BMS
type ICVSummary struct {
	MaxVoltage float64 `json:"maxVoltage"`
	MaxCell    uint8   `json:"maxCell"`
	MinVoltage float64 `json:"minVoltage"`
	MinCell    uint8   `json:"minCell"`
}

// Telemetry is the decoded content of one token array
type Telemetry struct {
	Cells [CellCount]CellVoltage
	MOS   MOSFETState
	NTC   NTCReading
	ICV   *ICVSummary

	// Live min/max computed from Cells; 1-based, 0 when no cell is valid
	MinCell int
	MaxCell int
}

// ValidCells returns the cells with a valid voltage
func (t *Telemetry) ValidCells() []CellVoltage {
	out := []CellVoltage{}
	for _, c := range t.Cells {
		if c.Valid {
			out = append(out, c)
		}
	}
	return out
}

// cellPattern matches one cell group token, e.g. "cell4to6=0E740E740E7400"
var cellPattern = regexp.MustCompile(`(AllCells 1to3|cell(\d+)to(\d+))=(null|[0-9A-Fa-f]+)`)

// ParseTelemetry decodes a raw token array. It never fails: unrecognized or
// malformed tokens leave the corresponding field unknown or absent.
func ParseTelemetry(raw []string) Telemetry {
	tokens := ClassifyTokens(raw)

	var t Telemetry
	for i := range t.Cells {
		t.Cells[i].Cell = i + 1
	}

	t.MOS = parseMOS(tokens)
	t.NTC = parseNTC(tokens)
	t.ICV = parseICV(tokens)
	parseCells(tokens, &t.Cells)
	t.MinCell, t.MaxCell = liveMinMax(&t.Cells)

	return t
}

// parseMOS reads the comma separated flags of the first MOS= token, then
// consecutive bare tokens for the remaining APU flags.
func parseMOS(tokens []Token) MOSFETState {
	value, idx := valueAfter(tokens, tokenMOS)
	if idx < 0 {
		return MOSFETState{}
	}

	flags := make([]SwitchState, 0, MOSFETFlags)
	if value != "" {
		for _, part := range strings.Split(value, ",") {
			if len(flags) == MOSFETFlags {
				break
			}
			n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				flags = append(flags, SwitchUnknown)
				continue
			}
			flags = append(flags, switchFromInt(n))
		}
	}

	for i := idx + 1; i < len(tokens) && len(flags) < MOSFETFlags; i++ {
		if tokens[i].Kind != TokenBare {
			break
		}
		flags = append(flags, switchFromInt(tokens[i].Number))
	}

	var all [MOSFETFlags]SwitchState
	copy(all[:], flags)
	return MOSFETState{
		MainCharge:    all[0],
		MainDischarge: all[1],
		APUCharge:     all[2],
		APUDischarge:  all[3],
	}
}

// parseNTC reads channel 0 from the first ntc= token and the following
// channels from consecutive bare or ntc= tokens.
func parseNTC(tokens []Token) NTCReading {
	var r NTCReading

	value, idx := valueAfter(tokens, tokenNTC)
	if idx < 0 {
		return r
	}
	first, ok := parseBare(value)
	if !ok {
		return r
	}
	r.Channels[0] = int(first)
	r.Count = 1

	for i := idx + 1; i < len(tokens) && r.Count < NTCChannels; i++ {
		tok := tokens[i]
		switch {
		case tok.Kind == TokenBare:
			r.Channels[r.Count] = int(tok.Number)
			r.Count++
		case strings.Contains(tok.Raw, tokenNTC):
			v, ok := parseBare(tok.Raw[strings.Index(tok.Raw, tokenNTC)+len(tokenNTC):])
			if !ok {
				return r
			}
			r.Channels[r.Count] = int(v)
			r.Count++
		default:
			return r
		}
	}

	return r
}

// parseICV decodes the 4/2/4/2 hex digit summary of the first ICV= token
func parseICV(tokens []Token) *ICVSummary {
	value, idx := valueAfter(tokens, tokenICV)
	if idx < 0 || len(value) < icvLength || !isHexString(value[:icvLength]) {
		return nil
	}

	fields := [4]uint64{}
	widths := [4]int{icvVoltageDigits, icvCellDigits, icvVoltageDigits, icvCellDigits}
	pos := 0
	for i, w := range widths {
		v, err := DecodeHex(value[pos : pos+w])
		if err != nil {
			return nil
		}
		fields[i] = v
		pos += w
	}

	return &ICVSummary{
		MaxVoltage: Unscale(fields[0], 1000, 3),
		MaxCell:    uint8(fields[1]),
		MinVoltage: Unscale(fields[2], 1000, 3),
		MinCell:    uint8(fields[3]),
	}
}

// parseCells applies every cell group token in order; later tokens overwrite earlier ones
func parseCells(tokens []Token, cells *[CellCount]CellVoltage) {
	for _, tok := range tokens {
		m := cellPattern.FindStringSubmatch(tok.Raw)
		if m == nil {
			continue
		}
		label, value := m[1], m[4]
		if value == "null" {
			continue
		}

		start := 1
		if m[2] != "" {
			n, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			start = n
		}

		count := 3
		if strings.Contains(label, "22to23") {
			count = 2
		}

		// Trailing byte is not a voltage
		if len(value) < 2 {
			continue
		}
		data := value[:len(value)-2]

		for i := 0; i < count; i++ {
			idx := start - 1 + i
			if idx < 0 || idx >= CellCount || (i+1)*4 > len(data) {
				continue
			}
			raw, err := DecodeHex(data[i*4 : i*4+4])
			if err != nil {
				continue
			}
			v := float64(raw) / 1000.0
			if v > MinCellVoltage && v < MaxCellVoltage {
				cells[idx].Voltage = v
				cells[idx].Valid = true
			}
		}
	}
}

// liveMinMax returns the 1-based numbers of the first lowest and first highest valid cell
func liveMinMax(cells *[CellCount]CellVoltage) (minCell, maxCell int) {
	var minV, maxV float64
	for i, c := range cells {
		if !c.Valid {
			continue
		}
		if minCell == 0 || c.Voltage < minV {
			minCell, minV = i+1, c.Voltage
		}
		if maxCell == 0 || c.Voltage > maxV {
			maxCell, maxV = i+1, c.Voltage
		}
	}
	return minCell, maxCell
}
