// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"errors"
	"fmt"
)

// package errors
var (
	ErrArgumentNil           = errors.New("device: argument is nil")
	ErrArgumentOutOfRange    = errors.New("device: argument out of range")
	ErrInvalidOperation      = errors.New("device: invalid operation")
	ErrNoPixelFormat         = errors.New("device: no pixel format matches the request")
	ErrPixelFormatNotSet     = errors.New("device: pixel format not set")
	ErrPixelFormatAlreadySet = errors.New("device: pixel format already set")
	ErrUnknownContext        = errors.New("device: context not created by this device")
	ErrDisposed              = errors.New("device: device context disposed")
	ErrNative                = errors.New("device: native call failed")
	ErrSurfaceUnsupported    = errors.New("device: surface kind not supported by backend")
	ErrAPIUnsupported        = errors.New("device: api not supported by surface")
	ErrNoBackendAvailable    = errors.New("device: no backend available")
)

// InvalidOperationError reports a value rejected at a configuration boundary.
type InvalidOperationError struct {
	Op     string
	Value  string
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("device: %s(%q): %s", e.Op, e.Value, e.Reason)
}

// Unwrap makes InvalidOperationError match ErrInvalidOperation.
func (e *InvalidOperationError) Unwrap() error { return ErrInvalidOperation }

// ChooseError is returned by ChoosePixelFormat when no format matches.
// Reason holds the GuessChooseError diagnostic.
type ChooseError struct {
	Request *PixelFormat
	Reason  string
}

func (e *ChooseError) Error() string {
	return fmt.Sprintf("device: no pixel format matches %s: %s", e.Request, e.Reason)
}

// Unwrap makes ChooseError match ErrNoPixelFormat.
func (e *ChooseError) Unwrap() error { return ErrNoPixelFormat }

// NativeError wraps a failed native call, e.g. "eglCreateContext(): 0x3005".
type NativeError struct {
	Call string
	Err  error
}

func (e *NativeError) Error() string {
	if e.Err == nil {
		return e.Call + "(): failed"
	}
	return e.Call + "(): " + e.Err.Error()
}

// Is makes NativeError match ErrNative.
func (e *NativeError) Is(target error) bool { return target == ErrNative }

func (e *NativeError) Unwrap() error { return e.Err }

// NewNativeError is used by backends to report a failed native call.
func NewNativeError(call string, format string, args ...interface{}) error {
	return &NativeError{Call: call, Err: fmt.Errorf(format, args...)}
}

// BackendNotFoundError indicates a named backend is not registered.
type BackendNotFoundError struct {
	Name string
}

func (e *BackendNotFoundError) Error() string {
	return "device: backend not found: " + e.Name
}

// BackendUnavailableError indicates a backend is registered but cannot run here.
type BackendUnavailableError struct {
	Name string
}

func (e *BackendUnavailableError) Error() string {
	return "device: backend unavailable: " + e.Name
}
