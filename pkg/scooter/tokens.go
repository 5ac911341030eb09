// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scooter

import (
	"strconv"
	"strings"
)

// TokenKind classifies a raw telemetry token
type TokenKind int

const (
	TokenOther TokenKind = iota // neither keyed nor a plain integer
	TokenKeyed                  // label=value
	TokenBare                   // signed decimal integer continuing the previous keyed token
)

// String returns the kind name
func (k TokenKind) String() string {
	switch k {
	case TokenKeyed:
		return "KEYED"
	case TokenBare:
		return "BARE"
	default:
		return "OTHER"
	}
}

// Token is a raw telemetry token classified once up front
type Token struct {
	Raw    string
	Kind   TokenKind
	Key    string // text before the first '=' (keyed only)
	Value  string // text after the first '=' (keyed only)
	Number int64  // parsed integer (bare only)
}

// ClassifyTokens classifies every token, preserving order
func ClassifyTokens(tokens []string) []Token {
	out := make([]Token, len(tokens))
	for i, raw := range tokens {
		out[i] = classifyToken(raw)
	}
	return out
}

func classifyToken(raw string) Token {
	tok := Token{Raw: raw}

	if n, ok := parseBare(raw); ok {
		tok.Kind = TokenBare
		tok.Number = n
		return tok
	}

	if idx := strings.IndexByte(raw, '='); idx >= 0 {
		tok.Kind = TokenKeyed
		tok.Key = strings.TrimSpace(raw[:idx])
		tok.Value = strings.TrimSpace(raw[idx+1:])
		return tok
	}

	tok.Kind = TokenOther
	return tok
}

// parseBare parses a whole token as a signed decimal integer
func parseBare(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// valueAfter returns the text following marker in the first token containing it.
// The returned index is the position of that token, or -1 when none matches.
func valueAfter(tokens []Token, marker string) (string, int) {
	for i, tok := range tokens {
		if idx := strings.Index(tok.Raw, marker); idx >= 0 {
			return strings.TrimSpace(tok.Raw[idx+len(marker):]), i
		}
	}
	return "", -1
}
