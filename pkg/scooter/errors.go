// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package scooter

import (
	"errors"
	"fmt"
)

// Command encoding failure kinds
var (
	ErrInvalidHex     = errors.New("invalid hex")
	ErrInvalidEnum    = errors.New("invalid value")
	ErrMissingField   = errors.New("missing field")
	ErrInvalidNumber  = errors.New("invalid number")
	ErrOutOfRange     = errors.New("value out of range")
	ErrUnknownCommand = errors.New("unknown command type")
)

// CommandError describes why a command request could not be encoded.
// Kind is one of the Err* sentinels above.
type CommandError struct {
	Command CommandType
	Field   string
	Kind    error
	Message string
}

// Error implements the error interface
func (e *CommandError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Command, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Command, e.Field, e.Message)
}

// Unwrap exposes the failure kind to errors.Is
func (e *CommandError) Unwrap() error {
	return e.Kind
}

func newCommandError(cmd CommandType, field string, kind error, format string, args ...interface{}) *CommandError {
	return &CommandError{
		Command: cmd,
		Field:   field,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// wrapFieldError turns an EncodeHex error into a CommandError for the given field
func wrapFieldError(cmd CommandType, field string, err error) *CommandError {
	kind := ErrOutOfRange
	if errors.Is(err, ErrInvalidHex) {
		kind = ErrInvalidHex
	}
	return &CommandError{Command: cmd, Field: field, Kind: kind, Message: err.Error()}
}
