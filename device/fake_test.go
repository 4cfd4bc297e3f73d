// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device_test

import (
	"errors"

	"github.com/devblok/glctx/device"
	"github.com/devblok/glctx/version"
)

// fakeBackend records what the device context asks of it.
type fakeBackend struct {
	name        string
	apis        []string
	pbuffer     bool
	failPBuffer bool
	failWindow  bool
	formats     []*device.PixelFormat

	closed   int
	surfaces []*fakeSurface
}

func newFakeBackend(formats ...*device.PixelFormat) *fakeBackend {
	return &fakeBackend{
		name:    "fake",
		apis:    []string{version.APIGL, version.APIGLES2},
		formats: formats,
	}
}

func (b *fakeBackend) Name() string   { return b.name }
func (b *fakeBackend) APIs() []string { return b.apis }
func (b *fakeBackend) Close() error   { b.closed++; return nil }

func (b *fakeBackend) CreateHiddenWindow() (device.Surface, error) {
	if b.failWindow {
		return nil, device.ErrSurfaceUnsupported
	}
	return b.newSurface(device.SurfaceHiddenWindow), nil
}

func (b *fakeBackend) SupportsPBuffer() bool { return b.pbuffer }

func (b *fakeBackend) CreatePBuffer(request *device.PixelFormat, width, height int) (device.Surface, error) {
	if b.failPBuffer {
		return nil, device.NewNativeError("fakeCreatePbuffer", "0x%x", 0x3009)
	}
	catalog := device.NewPixelFormatCollection(b.formats...)
	chosen, err := catalog.Choose(request)
	if err != nil {
		return nil, err
	}
	if len(chosen) == 0 {
		return nil, device.ErrNoPixelFormat
	}
	s := b.newSurface(device.SurfacePBuffer)
	s.format = chosen[0]
	s.width, s.height = width, height
	return s, nil
}

func (b *fakeBackend) newSurface(kind device.SurfaceKind) *fakeSurface {
	s := &fakeSurface{
		kind:     kind,
		catalog:  device.NewPixelFormatCollection(b.formats...),
		apis:     b.apis,
		live:     make(map[device.Handle]device.ContextRequest),
		rejected: make(map[int]bool),
	}
	b.surfaces = append(b.surfaces, s)
	return s
}

type fakeSurface struct {
	kind          device.SurfaceKind
	catalog       *device.PixelFormatCollection
	format        *device.PixelFormat
	apis          []string
	width, height int

	next     device.Handle
	live     map[device.Handle]device.ContextRequest
	current  device.Handle
	rejected map[int]bool
	failNext bool

	failDelete bool
	deletes    int
	released   int
}

func (s *fakeSurface) Kind() device.SurfaceKind                     { return s.kind }
func (s *fakeSurface) PixelFormats() *device.PixelFormatCollection { return s.catalog }
func (s *fakeSurface) PixelFormat() *device.PixelFormat             { return s.format.Copy() }
func (s *fakeSurface) APIs() []string                               { return s.apis }

func (s *fakeSurface) SetPixelFormat(pf *device.PixelFormat) error {
	if s.rejected[pf.Index] {
		return device.NewNativeError("fakeSetPixelFormat", "format %d refused", pf.Index)
	}
	s.format = pf.Copy()
	return nil
}

func (s *fakeSurface) CreateContext(req device.ContextRequest) (device.Handle, error) {
	if s.failNext {
		s.failNext = false
		return device.NullHandle, device.NewNativeError("fakeCreateContext", "0x%x", 0x3005)
	}
	if req.Share != device.NullHandle {
		if _, ok := s.live[req.Share]; !ok {
			return device.NullHandle, errors.New("share context not live")
		}
	}
	s.next++
	s.live[s.next] = req
	return s.next, nil
}

func (s *fakeSurface) MakeCurrent(ctx device.Handle) error {
	if s.failNext {
		s.failNext = false
		return device.NewNativeError("fakeMakeCurrent", "bad match")
	}
	s.current = ctx
	return nil
}

func (s *fakeSurface) DeleteContext(ctx device.Handle) error {
	s.deletes++
	if s.failDelete {
		s.failDelete = false
		return device.NewNativeError("fakeDeleteContext", "0x%x", 0x3006)
	}
	delete(s.live, ctx)
	if s.current == ctx {
		s.current = device.NullHandle
	}
	return nil
}

func (s *fakeSurface) Release() error {
	s.released++
	return nil
}

func format(index, color, depth, stencil, samples int) *device.PixelFormat {
	pf := device.NewPixelFormat(color)
	pf.Index = index
	pf.DepthBits = depth
	pf.StencilBits = stencil
	pf.MultisampleBits = samples
	pf.DoubleBuffer = true
	pf.RenderPBuffer = true
	return pf
}
