// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"fmt"

	"github.com/devblok/glctx/version"
)

// Handle is an opaque native handle of a rendering context.
type Handle uintptr

// NullHandle is the handle of no context. Passing it to MakeCurrent
// unbinds the context current on the calling thread.
const NullHandle Handle = 0

// SurfaceKind tells how a native surface was obtained.
type SurfaceKind int

// Surface kinds
const (
	SurfaceHiddenWindow SurfaceKind = iota
	SurfacePBuffer
	SurfaceExternal
)

func (k SurfaceKind) String() string {
	switch k {
	case SurfaceHiddenWindow:
		return "hidden-window"
	case SurfacePBuffer:
		return "pbuffer"
	case SurfaceExternal:
		return "external"
	default:
		return fmt.Sprintf("SurfaceKind(%d)", int(k))
	}
}

// MarshalText lets surface kinds appear by name in JSON output.
func (k SurfaceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Backend describes a native context management API (WGL, GLX, EGL, ...).
// A Backend is selected once at start-up through Select.
type Backend interface {
	// Name returns the registry name of the backend, e.g. "glx".
	Name() string

	// APIs returns the context APIs this platform can realize.
	APIs() []string

	// CreateHiddenWindow creates a window that is never shown, usable
	// as a drawable once a pixel format is set on it.
	CreateHiddenWindow() (Surface, error)

	// Close releases the connection to the native API.
	Close() error
}

// OffscreenBackend is implemented by backends that can create
// P-Buffers. The pixel format of a P-Buffer is fixed at creation.
type OffscreenBackend interface {
	Backend

	// SupportsPBuffer reports whether P-Buffers are usable at runtime.
	SupportsPBuffer() bool

	// CreatePBuffer creates an offscreen surface of the given size,
	// using the best native format matching the request.
	CreatePBuffer(request *PixelFormat, width, height int) (Surface, error)
}

// Surface is a native drawable together with the pixel formats it supports.
// Surfaces are not safe for concurrent use.
type Surface interface {
	// Kind returns how the surface was obtained.
	Kind() SurfaceKind

	// PixelFormats returns the native pixel format catalog of the surface.
	PixelFormats() *PixelFormatCollection

	// PixelFormat returns the pixel format bound to the surface,
	// or nil when none is set yet.
	PixelFormat() *PixelFormat

	// SetPixelFormat binds a format taken from PixelFormats.
	SetPixelFormat(*PixelFormat) error

	// APIs returns the context APIs this surface can realize.
	APIs() []string

	// CreateContext creates a native rendering context.
	CreateContext(ContextRequest) (Handle, error)

	// MakeCurrent binds ctx to the calling thread. NullHandle unbinds.
	MakeCurrent(ctx Handle) error

	// DeleteContext destroys a context created by CreateContext.
	DeleteContext(ctx Handle) error

	// Release destroys the drawable. Release is idempotent.
	Release() error
}

// ContextAttributes tune context creation beyond the API choice.
type ContextAttributes struct {
	// Version is the minimum context version, nil for the driver default.
	Version *version.Version

	// Profile is version.ProfileCore or version.ProfileCompatibility.
	Profile string

	Debug bool
}

// ContextRequest is what a Surface needs to create a native context.
type ContextRequest struct {
	API   string
	Share Handle
	ContextAttributes
}
