// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scooter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CommandRequest is one operator command before encoding.
// Field values may be numbers or strings; a missing key, nil or an empty
// string counts as absent.
type CommandRequest struct {
	VIN      string
	Type     CommandType
	Fields   map[string]interface{}
	ClientID string

	// Advanced sends canId/canData verbatim regardless of Type
	Advanced bool
}

// CommandFrame is an encoded command. Plain value commands carry only Payload.
type CommandFrame struct {
	Header  string
	CANID   string
	Payload string
}

// String returns the frame as sent to the gateway
func (f CommandFrame) String() string {
	return f.Header + f.CANID + f.Payload
}

// Framed reports whether the frame carries the gateway header
func (f CommandFrame) Framed() bool {
	return f.Header != ""
}

// Envelope is the JSON document posted to the command gateway
type Envelope struct {
	VINNumber   string `json:"vinNumber"`
	CommandType string `json:"commandType"`
	Value       string `json:"value"`
	ClientID    string `json:"clientId"`
}

// Encoder encodes command requests into frames and gateway envelopes
type Encoder struct {
	ClientID string
}

// NewEncoder creates an encoder stamping DefaultClientID on envelopes
func NewEncoder() *Encoder {
	return &Encoder{ClientID: DefaultClientID}
}

// Encode encodes a command request into a frame.
// No frame is returned together with an error.
func Encode(req CommandRequest) (*CommandFrame, error) {
	if req.Advanced {
		return encodeRaw(req, true)
	}

	spec, ok := LookupCommand(req.Type)
	if !ok {
		return nil, newCommandError(req.Type, "", ErrUnknownCommand, "unsupported command type")
	}

	switch spec.kind {
	case kindRaw:
		return encodeRaw(req, false)
	case kindPlain:
		r := newFieldReader(spec, req.Fields)
		value := spec.build(r)
		if r.err != nil {
			return nil, r.err
		}
		return &CommandFrame{Payload: value}, nil
	}

	r := newFieldReader(spec, req.Fields)
	payload := spec.build(r)
	if r.err != nil {
		return nil, r.err
	}
	if len(payload) != PayloadLength {
		return nil, newCommandError(req.Type, "", ErrOutOfRange,
			"payload is %d hex digits, want %d", len(payload), PayloadLength)
	}

	return &CommandFrame{Header: FrameHeader, CANID: spec.CANID, Payload: payload}, nil
}

// Encode encodes a command request into a frame
func (e *Encoder) Encode(req CommandRequest) (*CommandFrame, error) {
	return Encode(req)
}

// Envelope encodes a request and wraps the frame for the gateway backend
func (e *Encoder) Envelope(req CommandRequest) (*Envelope, error) {
	if strings.TrimSpace(req.VIN) == "" {
		return nil, newCommandError(req.Type, "vin", ErrMissingField, "vehicle VIN is required")
	}

	frame, err := Encode(req)
	if err != nil {
		return nil, err
	}

	commandType := BackendCANType
	if !req.Advanced {
		if spec, ok := LookupCommand(req.Type); ok {
			commandType = spec.BackendType()
		}
	}

	clientID := req.ClientID
	if clientID == "" {
		clientID = e.ClientID
	}
	if clientID == "" {
		clientID = DefaultClientID
	}

	return &Envelope{
		VINNumber:   req.VIN,
		CommandType: commandType,
		Value:       frame.String(),
		ClientID:    clientID,
	}, nil
}

// encodeRaw validates a caller supplied CAN ID and data. Advanced mode requires
// a full 8 byte data field; CAN_RAW accepts 1 to 8 bytes.
func encodeRaw(req CommandRequest, advanced bool) (*CommandFrame, error) {
	cmd := req.Type
	if advanced {
		cmd = BackendCANType
	}

	canID := stringField(req.Fields, FieldCANID)
	if len(canID) != CANIDLength || !IsUpperHex(canID) {
		return nil, newCommandError(cmd, FieldCANID, ErrInvalidHex,
			"CAN ID must be %d uppercase hex digits, got %q", CANIDLength, canID)
	}

	data := stringField(req.Fields, FieldCANData)
	if advanced {
		if len(data) != PayloadLength || !IsUpperHex(data) {
			return nil, newCommandError(cmd, FieldCANData, ErrInvalidHex,
				"CAN data must be %d uppercase hex digits, got %q", PayloadLength, data)
		}
	} else if len(data) == 0 || len(data) > PayloadLength || len(data)%2 != 0 || !IsUpperHex(data) {
		return nil, newCommandError(cmd, FieldCANData, ErrInvalidHex,
			"CAN data must be 1 to 8 bytes of uppercase hex, got %q", data)
	}

	return &CommandFrame{Header: FrameHeader, CANID: canID, Payload: data}, nil
}

// fieldReader reads request fields for one command spec. The first failure
// is kept in err and every later read returns a zero value.
type fieldReader struct {
	spec   *CommandSpec
	fields map[string]interface{}
	err    *CommandError
}

func newFieldReader(spec *CommandSpec, fields map[string]interface{}) *fieldReader {
	return &fieldReader{spec: spec, fields: fields}
}

func (r *fieldReader) fail(field, format string, kind error, args ...interface{}) {
	if r.err == nil {
		r.err = newCommandError(r.spec.Type, field, kind, format, args...)
	}
}

// num returns numeric field i, its default, or records a failure
func (r *fieldReader) num(i int) float64 {
	if r.err != nil {
		return 0
	}
	f := r.spec.Fields[i]
	raw, present := lookupField(r.fields, f.Name)
	if !present {
		if f.Required {
			r.fail(f.Name, "required", ErrMissingField)
		}
		return f.Default
	}
	v, ok := toFloat(raw)
	if !ok {
		r.fail(f.Name, "not a number: %v", ErrInvalidNumber, raw)
		return 0
	}
	return v
}

// choice returns the encoded value for enumerated field i
func (r *fieldReader) choice(i int) string {
	if r.err != nil {
		return ""
	}
	f := r.spec.Fields[i]
	raw, present := lookupField(r.fields, f.Name)
	literal := f.Fallback
	if present {
		literal = toString(raw)
	} else if literal == "" {
		r.fail(f.Name, "required (one of %s)", ErrMissingField, strings.Join(f.ChoiceNames(), ", "))
		return ""
	}
	encoded, ok := f.Choices[literal]
	if !ok {
		r.fail(f.Name, "%q is not one of %s", ErrInvalidEnum, literal, strings.Join(f.ChoiceNames(), ", "))
		return ""
	}
	return encoded
}

// trunc scales v, truncates toward zero and renders width hex digits
func (r *fieldReader) trunc(i int, v, scale float64, width int) string {
	return r.hex(i, ScaleTrunc(v, scale), width)
}

// round scales v, rounds and renders width hex digits
func (r *fieldReader) round(i int, v, scale float64, width int) string {
	return r.hex(i, ScaleRound(v, scale), width)
}

func (r *fieldReader) hex(i int, v int64, width int) string {
	if r.err != nil {
		return ""
	}
	s, err := EncodeHex(v, width)
	if err != nil {
		r.err = wrapFieldError(r.spec.Type, r.spec.Fields[i].Name, err)
		return ""
	}
	return s
}

// lookupField returns a field value, treating nil and blank strings as absent
func lookupField(fields map[string]interface{}, name string) (interface{}, bool) {
	v, ok := fields[name]
	if !ok || v == nil {
		return nil, false
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

func stringField(fields map[string]interface{}, name string) string {
	v, ok := lookupField(fields, name)
	if !ok {
		return ""
	}
	return toString(v)
}

func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return val.String()
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func toFloat(v interface{}) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int8:
		f = float64(val)
	case int16:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case uint:
		f = float64(val)
	case uint8:
		f = float64(val)
	case uint16:
		f = float64(val)
	case uint32:
		f = float64(val)
	case uint64:
		f = float64(val)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case fmt.Stringer:
		parsed, err := strconv.ParseFloat(val.String(), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
