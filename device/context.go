// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

// DeviceContext is a native drawable plus the rendering contexts created
// on it. It is reference counted: the DecRef that releases the last reference
// disposes it. Dispose may also be called directly and is idempotent.
//
// A DeviceContext is not safe for concurrent use, apart from the reference
// counting methods. Rendering contexts are current on one thread at a time:
// callers lock the goroutine to its thread (runtime.LockOSThread) before
// MakeCurrent.
type DeviceContext struct {
	backend     Backend
	ownsBackend bool
	surface     Surface

	defaultAPI string
	format     *PixelFormat
	contexts   map[Handle]struct{}

	refs        atomic.Int32
	disposed    atomic.Bool
	disposeOnce sync.Once

	log logrus.FieldLogger
}

// Create makes a windowless device context on the backend selected by cfg.
// When the backend supports P-Buffers the context is backed by one and its
// pixel format is already set, otherwise by a hidden window whose format
// must be chosen with ChoosePixelFormat.
func Create(cfg Config) (*DeviceContext, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b, err := Select(cfg)
	if err != nil {
		return nil, err
	}
	dc, err := CreateWithBackend(b, cfg)
	if err != nil {
		if cerr := b.Close(); cerr != nil {
			cfg.Log().WithError(cerr).Warn("Backend close failed")
		}
		return nil, err
	}
	dc.ownsBackend = true
	return dc, nil
}

// CreateWithBackend makes a windowless device context on an open backend.
// The backend stays open after the device context is disposed.
func CreateWithBackend(b Backend, cfg Config) (*DeviceContext, error) {
	if b == nil {
		return nil, ErrArgumentNil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.Log().WithField("backend", b.Name())

	if ob, ok := b.(OffscreenBackend); ok && ob.SupportsPBuffer() {
		s, err := ob.CreatePBuffer(cfg.OffscreenFormat, cfg.OffscreenWidth, cfg.OffscreenHeight)
		if err == nil {
			return newDeviceContext(b, s, cfg), nil
		}
		log.WithError(err).Warn("P-Buffer creation failed, falling back to a hidden window")
	}

	s, err := b.CreateHiddenWindow()
	if err != nil {
		return nil, err
	}
	return newDeviceContext(b, s, cfg), nil
}

// NewDeviceContext wraps a surface created outside of this package, e.g. a
// P-Buffer made with a specific format. The pixel format is inherited from
// the surface.
func NewDeviceContext(b Backend, s Surface, cfg Config) (*DeviceContext, error) {
	if b == nil || s == nil {
		return nil, ErrArgumentNil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newDeviceContext(b, s, cfg), nil
}

func newDeviceContext(b Backend, s Surface, cfg Config) *DeviceContext {
	dc := &DeviceContext{
		backend:    b,
		surface:    s,
		defaultAPI: cfg.DefaultAPI,
		format:     s.PixelFormat().Copy(),
		contexts:   make(map[Handle]struct{}),
		log: cfg.Log().WithFields(logrus.Fields{
			"backend": b.Name(),
			"surface": s.Kind().String(),
		}),
	}
	dc.log.WithField("format", dc.format).Debug("Device context created")
	return dc
}

// GetAvailableAPIs returns the context APIs the platform backend selected by
// cfg can realize, independently of any surface.
func GetAvailableAPIs(cfg Config) ([]string, error) {
	b, err := Select(cfg)
	if err != nil {
		return nil, err
	}
	apis := b.APIs()
	return apis, b.Close()
}

// Backend returns the backend the device context was created on.
func (dc *DeviceContext) Backend() Backend {
	return dc.backend
}

// Surface returns the native surface of the device context.
func (dc *DeviceContext) Surface() Surface {
	return dc.surface
}

// AvailableAPIs returns the context APIs the surface of this device context
// can realize.
func (dc *DeviceContext) AvailableAPIs() []string {
	return dc.surface.APIs()
}

// DefaultAPI returns the API of contexts made by CreateContext.
func (dc *DeviceContext) DefaultAPI() string {
	return dc.defaultAPI
}

// SetDefaultAPI changes the API of contexts made by CreateContext.
// Unrecognized APIs are rejected with an *InvalidOperationError.
func (dc *DeviceContext) SetDefaultAPI(api string) error {
	if err := validateAPI(api); err != nil {
		return err
	}
	dc.defaultAPI = api
	return nil
}

// PixelFormats returns the native pixel format catalog.
func (dc *DeviceContext) PixelFormats() *PixelFormatCollection {
	return dc.surface.PixelFormats()
}

// IsPixelFormatSet reports whether a pixel format is bound.
func (dc *DeviceContext) IsPixelFormatSet() bool {
	return dc.format != nil
}

// PixelFormat returns a copy of the bound pixel format, or nil.
func (dc *DeviceContext) PixelFormat() *PixelFormat {
	return dc.format.Copy()
}

// ChoosePixelFormat binds the best native format meeting request. When
// nothing matches the error is a *ChooseError explaining why.
func (dc *DeviceContext) ChoosePixelFormat(request *PixelFormat) error {
	if err := dc.checkUsable(); err != nil {
		return err
	}
	if dc.format != nil {
		return ErrPixelFormatAlreadySet
	}

	catalog := dc.surface.PixelFormats()
	chosen, err := catalog.Choose(request)
	if err != nil {
		return err
	}
	if len(chosen) == 0 {
		reason, err := catalog.GuessChooseError(request)
		if err != nil {
			return err
		}
		return &ChooseError{Request: request.Copy(), Reason: reason}
	}

	// Drivers may still refuse a listed format; try the next best.
	var lastErr error
	for _, pf := range chosen {
		if lastErr = dc.bind(pf); lastErr == nil {
			return nil
		}
		dc.log.WithError(lastErr).WithField("format", pf).Debug("Pixel format rejected")
	}
	return lastErr
}

// SetPixelFormat binds an explicit pixel format, normally one of PixelFormats.
func (dc *DeviceContext) SetPixelFormat(pf *PixelFormat) error {
	if pf == nil {
		return ErrArgumentNil
	}
	if err := dc.checkUsable(); err != nil {
		return err
	}
	if dc.format != nil {
		return ErrPixelFormatAlreadySet
	}
	return dc.bind(pf)
}

func (dc *DeviceContext) bind(pf *PixelFormat) error {
	if err := dc.surface.SetPixelFormat(pf); err != nil {
		return err
	}
	dc.format = pf.Copy()
	dc.log.WithField("format", dc.format).Debug("Pixel format set")
	return nil
}

// CreateContext creates a rendering context of DefaultAPI, sharing objects
// with share unless it is NullHandle. On failure the handle is NullHandle.
func (dc *DeviceContext) CreateContext(share Handle) (Handle, error) {
	return dc.CreateContextAttrib(share, ContextAttributes{})
}

// CreateContextAttrib is CreateContext with an explicit version, profile or
// debug flag.
func (dc *DeviceContext) CreateContextAttrib(share Handle, attribs ContextAttributes) (Handle, error) {
	if err := dc.checkUsable(); err != nil {
		return NullHandle, err
	}
	if dc.format == nil {
		return NullHandle, ErrPixelFormatNotSet
	}
	if !slices.Contains(dc.surface.APIs(), dc.defaultAPI) {
		return NullHandle, fmt.Errorf("%w: %q on %s", ErrAPIUnsupported, dc.defaultAPI, dc.backend.Name())
	}
	if share != NullHandle {
		if _, ok := dc.contexts[share]; !ok {
			return NullHandle, ErrUnknownContext
		}
	}

	h, err := dc.surface.CreateContext(ContextRequest{
		API:               dc.defaultAPI,
		Share:             share,
		ContextAttributes: attribs,
	})
	if err != nil {
		return NullHandle, err
	}
	dc.contexts[h] = struct{}{}
	dc.log.WithFields(logrus.Fields{"api": dc.defaultAPI, "context": h}).Debug("Context created")
	return h, nil
}

// MakeCurrent binds ctx to the calling thread, NullHandle unbinds the
// current context. Native failures are returned, never panicked.
func (dc *DeviceContext) MakeCurrent(ctx Handle) error {
	if err := dc.checkUsable(); err != nil {
		return err
	}
	if ctx != NullHandle {
		if _, ok := dc.contexts[ctx]; !ok {
			return ErrUnknownContext
		}
	}
	return dc.surface.MakeCurrent(ctx)
}

// DeleteContext destroys a context made by CreateContext.
func (dc *DeviceContext) DeleteContext(ctx Handle) error {
	if err := dc.checkUsable(); err != nil {
		return err
	}
	if _, ok := dc.contexts[ctx]; !ok {
		return ErrUnknownContext
	}
	// A context the driver failed to delete stays tracked for Dispose.
	if err := dc.surface.DeleteContext(ctx); err != nil {
		return err
	}
	delete(dc.contexts, ctx)
	dc.log.WithField("context", ctx).Debug("Context deleted")
	return nil
}

// IncRef adds a reference.
func (dc *DeviceContext) IncRef() {
	dc.refs.Add(1)
}

// DecRef drops a reference; dropping the last one disposes the device
// context and returns the Dispose error. Calling DecRef without a reference
// is a programming error and panics.
func (dc *DeviceContext) DecRef() error {
	n := dc.refs.Add(-1)
	if n < 0 {
		dc.refs.Add(1)
		panic("device: DecRef on a device context without references")
	}
	if n == 0 {
		return dc.Dispose()
	}
	return nil
}

// RefCount returns the current number of references.
func (dc *DeviceContext) RefCount() int {
	return int(dc.refs.Load())
}

// IsDisposed reports whether the native resources were released.
func (dc *DeviceContext) IsDisposed() bool {
	return dc.disposed.Load()
}

// Dispose releases contexts left behind, the surface and, when Create opened
// it, the backend. Only the first call does any work.
func (dc *DeviceContext) Dispose() error {
	var err error
	dc.disposeOnce.Do(func() {
		err = dc.release()
		dc.disposed.Store(true)
	})
	return err
}

func (dc *DeviceContext) release() error {
	var errs []error

	if len(dc.contexts) > 0 {
		if err := dc.surface.MakeCurrent(NullHandle); err != nil {
			errs = append(errs, err)
		}
		for h := range dc.contexts {
			dc.log.WithField("context", h).Warn("Deleting context left on disposed device context")
			if err := dc.surface.DeleteContext(h); err != nil {
				errs = append(errs, err)
			}
		}
		dc.contexts = map[Handle]struct{}{}
	}

	if err := dc.surface.Release(); err != nil {
		errs = append(errs, err)
	}
	if dc.ownsBackend {
		if err := dc.backend.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	dc.log.Debug("Device context disposed")
	return errors.Join(errs...)
}

func (dc *DeviceContext) checkUsable() error {
	if dc.disposed.Load() {
		return ErrDisposed
	}
	return nil
}
