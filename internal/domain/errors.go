package domain

import "fmt"

// MissingFieldError reports a discovery document that lacks a required
// top-level field. Fatal to model construction.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("discovery document missing required field %q", e.Field)
}

// UnsupportedLocationError reports a parameter whose declared location
// is neither "path" nor "query".
type UnsupportedLocationError struct {
	Parameter string
	Location  string
}

func (e *UnsupportedLocationError) Error() string {
	return fmt.Sprintf("parameter %q has unsupported location %q", e.Parameter, e.Location)
}

// UnsupportedVerbError reports a method declaring an HTTP verb the
// executor cannot dispatch.
type UnsupportedVerbError struct {
	Verb string
}

func (e *UnsupportedVerbError) Error() string {
	return fmt.Sprintf("unsupported HTTP method %q", e.Verb)
}
