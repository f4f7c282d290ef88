package model

import (
	"errors"
	"fmt"
)

// ErrMalformedInput matches every semantic input error.
var ErrMalformedInput = errors.New("malformed problem input")

// MalformedInputError describes a structurally present but semantically
// invalid part of a problem.
type MalformedInputError struct {
	Entity string
	Name   string
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %s: %s", ErrMalformedInput, e.Entity, e.Reason)
	}
	return fmt.Sprintf("%s: %s %q: %s", ErrMalformedInput, e.Entity, e.Name, e.Reason)
}

// Is makes errors.Is(err, ErrMalformedInput) succeed.
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

func malformed(entity, name, format string, args ...any) error {
	return &MalformedInputError{Entity: entity, Name: name, Reason: fmt.Sprintf(format, args...)}
}
