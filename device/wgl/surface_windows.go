// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package wgl

import (
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/exp/slices"

	"github.com/devblok/glctx/device"
)

// surface is a hidden window. Rendering contexts are HGLRC handles.
type surface struct {
	b        *Backend
	w        *window
	format   *device.PixelFormat
	contexts map[device.Handle]struct{}
	released bool
}

func (s *surface) Kind() device.SurfaceKind { return device.SurfaceHiddenWindow }

func (s *surface) APIs() []string { return s.b.APIs() }

func (s *surface) PixelFormats() *device.PixelFormatCollection {
	return device.NewPixelFormatCollection(s.b.formats...)
}

func (s *surface) PixelFormat() *device.PixelFormat { return s.format.Copy() }

// SetPixelFormat can succeed once per window.
func (s *surface) SetPixelFormat(pf *device.PixelFormat) error {
	if pf == nil {
		return device.ErrArgumentNil
	}
	if s.format != nil {
		return device.ErrPixelFormatAlreadySet
	}
	if err := setPixelFormat(s.w.hdc, pf.Index); err != nil {
		return err
	}
	s.format = pf.Copy()
	return nil
}

func (s *surface) CreateContext(req device.ContextRequest) (device.Handle, error) {
	if s.format == nil {
		return device.NullHandle, device.ErrPixelFormatNotSet
	}
	if !slices.Contains(s.b.apis, req.API) {
		return device.NullHandle, fmt.Errorf("%w: %q on wgl", device.ErrAPIUnsupported, req.API)
	}

	var ctx uintptr
	if needsAttribs(req) && s.b.createContextAttribs != 0 {
		attribs, err := contextAttribs(req)
		if err != nil {
			return device.NullHandle, err
		}
		r, _, errno := syscall.SyscallN(s.b.createContextAttribs, s.w.hdc, uintptr(req.Share), uintptr(unsafe.Pointer(&attribs[0])))
		if r == 0 {
			return device.NullHandle, device.NewNativeError("wglCreateContextAttribsARB", "%s", errno)
		}
		ctx = r
	} else {
		if needsAttribs(req) {
			s.b.log.WithField("api", req.API).Warn("wglCreateContextAttribsARB missing, ignoring context attributes")
		}
		r, _, err := procwglCreateContext.Call(s.w.hdc)
		if r == 0 {
			return device.NullHandle, device.NewNativeError("wglCreateContext", "%s", err)
		}
		ctx = r
		if req.Share != device.NullHandle {
			if ok, _, err := procwglShareLists.Call(uintptr(req.Share), ctx); ok == 0 {
				procwglDeleteContext.Call(ctx)
				return device.NullHandle, device.NewNativeError("wglShareLists", "%s", err)
			}
		}
	}

	h := device.Handle(ctx)
	s.contexts[h] = struct{}{}
	return h, nil
}

func (s *surface) MakeCurrent(ctx device.Handle) error {
	hdc := s.w.hdc
	if ctx == device.NullHandle {
		hdc = 0
	} else if _, ok := s.contexts[ctx]; !ok {
		return device.ErrUnknownContext
	}
	if r, _, err := procwglMakeCurrent.Call(hdc, uintptr(ctx)); r == 0 {
		return device.NewNativeError("wglMakeCurrent", "%s", err)
	}
	return nil
}

func (s *surface) DeleteContext(ctx device.Handle) error {
	if _, ok := s.contexts[ctx]; !ok {
		return device.ErrUnknownContext
	}
	if r, _, err := procwglDeleteContext.Call(uintptr(ctx)); r == 0 {
		return device.NewNativeError("wglDeleteContext", "%s", err)
	}
	delete(s.contexts, ctx)
	return nil
}

// Release destroys the window.
func (s *surface) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	s.w.destroy()
	return nil
}
