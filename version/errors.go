// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package version

import (
	"errors"
	"fmt"
)

// package errors
var (
	ErrFormat          = errors.New("version: malformed version string")
	ErrUnsupportedAPI  = errors.New("version: unsupported api")
	ErrIncompatibleAPI = errors.New("version: incompatible api")
)

// FormatError reports a string that does not follow the version grammar.
type FormatError struct {
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("version: cannot parse %q: %s", e.Text, e.Reason)
}

// Unwrap makes FormatError match ErrFormat.
func (e *FormatError) Unwrap() error { return ErrFormat }

// UnsupportedAPIError reports an API string that is not recognized.
type UnsupportedAPIError struct {
	API string
}

func (e *UnsupportedAPIError) Error() string {
	return fmt.Sprintf("version: unsupported api %q", e.API)
}

// Unwrap makes UnsupportedAPIError match ErrUnsupportedAPI.
func (e *UnsupportedAPIError) Unwrap() error { return ErrUnsupportedAPI }

// IncompatibleAPIError is returned when versions of different APIs are ordered.
type IncompatibleAPIError struct {
	Left, Right string
}

func (e *IncompatibleAPIError) Error() string {
	return fmt.Sprintf("version: cannot compare %q version with %q version", e.Left, e.Right)
}

// Unwrap makes IncompatibleAPIError match ErrIncompatibleAPI.
func (e *IncompatibleAPIError) Unwrap() error { return ErrIncompatibleAPI }
