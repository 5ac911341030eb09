// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scooter

import (
	"strings"
	"unicode"
)

// NTCLabels names the four main pack thermistor channels
type NTCLabels [MainNTCChannels]string

// FallbackLabels is used for models missing from the table
var FallbackLabels = NTCLabels{"NTC1", "NTC2", "NTC3", "NTC4"}

// LabelTable maps a normalized model name to its main pack NTC labels
type LabelTable map[string]NTCLabels

// DefaultLabels returns a fresh table holding the known models
func DefaultLabels() LabelTable {
	return LabelTable{
		"nx100pro":     {"Positive terminal", "Cell no 20", "Cell no 28", "Negative terminal"},
		"nx100max":     {"Positive terminal", "Cell no 20", "Cell no 50", "Negative terminal"},
		"nx100classic": {"Positive terminal", "Cell no 07", "Cell no 16", "Negative terminal"},
	}
}

// NormalizeModel lower-cases a model name and strips all whitespace,
// so "NX100 Pro" and "nx100pro" share a key.
func NormalizeModel(model string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, model)
}

// Set adds or replaces the labels for a model
func (t LabelTable) Set(model string, labels NTCLabels) {
	t[NormalizeModel(model)] = labels
}

// Lookup returns the labels for a model, or FallbackLabels when unknown
func (t LabelTable) Lookup(model string) NTCLabels {
	if labels, ok := t[NormalizeModel(model)]; ok {
		return labels
	}
	return FallbackLabels
}
