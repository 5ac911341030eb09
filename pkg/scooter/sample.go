// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scooter

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Gauge is a numeric sample field. The telemetry source sends gauges as
// numbers or numeric strings; Valid is false when the field is absent or unparseable.
type Gauge struct {
	Value float64
	Valid bool
}

// NewGauge returns a valid gauge
func NewGauge(v float64) Gauge {
	return Gauge{Value: v, Valid: true}
}

// UnmarshalJSON accepts a number, a numeric string or null
func (g *Gauge) UnmarshalJSON(data []byte) error {
	*g = Gauge{}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*g = NewGauge(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			*g = NewGauge(f)
		}
	}
	return nil
}

// MarshalJSON writes the value, or null when not valid
func (g Gauge) MarshalJSON() ([]byte, error) {
	if !g.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(g.Value, 'f', -1, 64)), nil
}

// Format renders the gauge with the given number of decimals, or "N/A"
func (g Gauge) Format(decimals int) string {
	if !g.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(g.Value, 'f', decimals, 64)
}

// TokenList is the raw telemetry token array. Numbers in the array are kept
// as their decimal text. A string holding a JSON array is decoded as the array.
type TokenList []string

// UnmarshalJSON accepts an array of strings and numbers, or a string
func (t *TokenList) UnmarshalJSON(data []byte) error {
	*t = nil
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "[") {
			return t.UnmarshalJSON([]byte(s))
		}
		if s != "" {
			*t = TokenList{s}
		}
		return nil
	case []interface{}:
		out := make(TokenList, 0, len(v))
		for _, item := range v {
			switch tok := item.(type) {
			case nil:
				continue
			case string:
				out = append(out, tok)
			case float64:
				out = append(out, strconv.FormatFloat(tok, 'f', -1, 64))
			default:
				out = append(out, fmt.Sprint(tok))
			}
		}
		*t = out
		return nil
	}
	return fmt.Errorf("token list: unexpected JSON %T", raw)
}

// Sample is one telemetry record as delivered by the telemetry source
type Sample struct {
	Time               string    `json:"time"`
	VIN                string    `json:"vin,omitempty"`
	Model              string    `json:"model,omitempty"`
	SpeedKmph          Gauge     `json:"speed_kmph"`
	SOC                Gauge     `json:"soc"`
	TripKm             Gauge     `json:"tripkm"`
	BatVoltage         Gauge     `json:"batvoltage"`
	MotorTemp          Gauge     `json:"motortemp"`
	ControllerMOSTemp  Gauge     `json:"controllermostemp"`
	CurrentConsumption Gauge     `json:"currentconsumption"`
	InAh               Gauge     `json:"inah"`
	OutAh              Gauge     `json:"outah"`
	LatLong            string    `json:"lat_long,omitempty"`
	Lat                Gauge     `json:"lat"`
	Lng                Gauge     `json:"lng"`
	TirePressure       string    `json:"tirepressure,omitempty"`
	NTC                TokenList `json:"ntc,omitempty"`
	NTCArray           TokenList `json:"ntc_array,omitempty"`
}

// sampleTimeLayouts are the timestamp formats seen from the telemetry source
var sampleTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
}

// Timestamp parses the sample time
func (s *Sample) Timestamp() (time.Time, bool) {
	for _, layout := range sampleTimeLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s.Time)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Tokens returns the telemetry token array, preferring "ntc" over "ntc_array"
func (s *Sample) Tokens() []string {
	if len(s.NTC) > 0 {
		return s.NTC
	}
	return s.NTCArray
}

// Location returns "lat,lng" from lat_long or the separate coordinates
func (s *Sample) Location() string {
	if s.LatLong != "" {
		return s.LatLong
	}
	if s.Lat.Valid && s.Lng.Valid {
		return fmt.Sprintf("%.6f,%.6f", s.Lat.Value, s.Lng.Value)
	}
	return ""
}

// DecodedSample is a sample with its token array and tire string decoded
type DecodedSample struct {
	Sample    Sample
	Telemetry Telemetry
	Tire      *TirePressure

	// Split of CurrentConsumption: positive current is regeneration,
	// negative current is draw. Both are reported as magnitudes.
	Generation  float64
	Consumption float64
}

// Decode decodes the token array and tire string of the sample
func (s Sample) Decode() DecodedSample {
	d := DecodedSample{
		Sample:    s,
		Telemetry: ParseTelemetry(s.Tokens()),
		Tire:      DecodeTirePressure(s.TirePressure),
	}
	if s.CurrentConsumption.Valid {
		if s.CurrentConsumption.Value > 0 {
			d.Generation = s.CurrentConsumption.Value
		} else {
			d.Consumption = -s.CurrentConsumption.Value
		}
	}
	return d
}

// ParseSample decodes a single JSON sample object
func ParseSample(data []byte) (*Sample, error) {
	var s Sample
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode sample: %w", err)
	}
	return &s, nil
}

// ParseSamples decodes a JSON array of samples, a single sample object, or
// a stream of whitespace separated objects (JSON lines).
func ParseSamples(data []byte) ([]Sample, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []Sample{}, nil
	}

	if trimmed[0] == '[' {
		var samples []Sample
		if err := json.Unmarshal(trimmed, &samples); err != nil {
			return nil, fmt.Errorf("failed to decode sample array: %w", err)
		}
		return samples, nil
	}

	samples := []Sample{}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	for dec.More() {
		var s Sample
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode sample %d: %w", len(samples)+1, err)
		}
		samples = append(samples, s)
	}
	return samples, nil
}
