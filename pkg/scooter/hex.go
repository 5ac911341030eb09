// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scooter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// truncNudge absorbs binary representation error in pre-scaled values
// (4.1*1000 evaluates to 4099.999...) before truncation.
const truncNudge = 1e-9

// EncodeHex renders value as uppercase hex, zero-padded on the left to width digits.
// Negative values and values wider than the field are rejected.
func EncodeHex(value int64, width int) (string, error) {
	if value < 0 {
		return "", fmt.Errorf("%w: %d is negative", ErrOutOfRange, value)
	}
	s := strings.ToUpper(strconv.FormatInt(value, 16))
	if len(s) > width {
		return "", fmt.Errorf("%w: %d does not fit in %d hex digits", ErrOutOfRange, value, width)
	}
	return strings.Repeat("0", width-len(s)) + s, nil
}

// DecodeHex parses an unsigned hex string (either case)
func DecodeHex(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidHex)
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return v, nil
}

// SwapBytes reverses the order of byte pairs in a hex string ("0E10" -> "100E").
// A trailing odd nibble is kept as its own group.
func SwapBytes(hex string) string {
	var b strings.Builder
	b.Grow(len(hex))
	for end := len(hex); end > 0; end -= 2 {
		start := end - 2
		if start < 0 {
			start = 0
		}
		b.WriteString(hex[start:end])
	}
	return b.String()
}

// ScaleTrunc multiplies value by scale and truncates toward zero
func ScaleTrunc(value, scale float64) int64 {
	scaled := value * scale
	if scaled < 0 {
		return int64(scaled - truncNudge)
	}
	return int64(scaled + truncNudge)
}

// ScaleRound multiplies value by scale and rounds half away from zero
func ScaleRound(value, scale float64) int64 {
	return int64(math.Round(value * scale))
}

// Unscale converts a raw fixed-point integer back to engineering units,
// rounded to the given number of decimals.
func Unscale(raw uint64, scale float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(float64(raw)/scale*p) / p
}

// IsUpperHex reports whether s is non-empty and made only of 0-9 and A-F
func IsUpperHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

// isHexString reports whether s is non-empty and made only of hex digits (either case)
func isHexString(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
