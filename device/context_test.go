// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device_test

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/devblok/glctx/device"
	"github.com/devblok/glctx/version"
)

func testConfig(_ *qt.C) (device.Config, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	cfg := device.DefaultConfig()
	cfg.Logger = logger
	return cfg, hook
}

func windowContext(c *qt.C, formats ...*device.PixelFormat) (*device.DeviceContext, *fakeBackend) {
	cfg, _ := testConfig(c)
	b := newFakeBackend(formats...)
	dc, err := device.CreateWithBackend(b, cfg)
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() { dc.Dispose() })
	return dc, b
}

func TestRefCounting(t *testing.T) {
	c := qt.New(t)

	dc, b := windowContext(c, format(1, 24, 24, 8, 0))
	c.Assert(dc.RefCount(), qt.Equals, 0)

	type state struct {
		refs     int
		disposed bool
	}
	observe := func() state { return state{dc.RefCount(), dc.IsDisposed()} }

	dc.IncRef()
	c.Assert(observe(), qt.Equals, state{1, false})
	dc.IncRef()
	c.Assert(observe(), qt.Equals, state{2, false})
	c.Assert(dc.DecRef(), qt.IsNil)
	c.Assert(observe(), qt.Equals, state{1, false})
	c.Assert(dc.DecRef(), qt.IsNil)
	c.Assert(observe(), qt.Equals, state{0, true})

	c.Assert(b.surfaces[0].released, qt.Equals, 1)
	c.Assert(func() { dc.DecRef() }, qt.PanicMatches, `device: DecRef .*`)
	c.Assert(dc.RefCount(), qt.Equals, 0)
}

func TestDisposeIdempotent(t *testing.T) {
	c := qt.New(t)

	dc, b := windowContext(c)
	c.Assert(dc.Dispose(), qt.IsNil)
	c.Assert(dc.Dispose(), qt.IsNil)
	c.Assert(dc.IsDisposed(), qt.IsTrue)
	c.Assert(b.surfaces[0].released, qt.Equals, 1)
	c.Assert(b.closed, qt.Equals, 0)

	c.Assert(dc.ChoosePixelFormat(device.NewPixelFormat(24)), qt.ErrorIs, device.ErrDisposed)
	_, err := dc.CreateContext(device.NullHandle)
	c.Assert(err, qt.ErrorIs, device.ErrDisposed)
	c.Assert(dc.MakeCurrent(device.NullHandle), qt.ErrorIs, device.ErrDisposed)
}

func TestDisposeDeletesLeftoverContexts(t *testing.T) {
	c := qt.New(t)

	cfg, hook := testConfig(c)
	b := newFakeBackend(format(1, 24, 24, 8, 0))
	dc, err := device.CreateWithBackend(b, cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(dc.ChoosePixelFormat(device.NewPixelFormat(24)), qt.IsNil)

	ctx, err := dc.CreateContext(device.NullHandle)
	c.Assert(err, qt.IsNil)
	c.Assert(dc.MakeCurrent(ctx), qt.IsNil)

	hook.Reset()
	c.Assert(dc.Dispose(), qt.IsNil)

	s := b.surfaces[0]
	c.Assert(s.live, qt.HasLen, 0)
	c.Assert(s.current, qt.Equals, device.NullHandle)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["context"] == ctx {
			warned = true
		}
	}
	c.Assert(warned, qt.IsTrue)
}

func TestChoosePixelFormat(t *testing.T) {
	c := qt.New(t)

	dc, b := windowContext(c,
		format(1, 16, 16, 0, 0),
		format(2, 32, 24, 8, 0),
		format(3, 24, 24, 8, 0),
	)
	c.Assert(dc.IsPixelFormatSet(), qt.IsFalse)
	c.Assert(dc.PixelFormat(), qt.IsNil)

	c.Assert(dc.ChoosePixelFormat(nil), qt.ErrorIs, device.ErrArgumentNil)
	c.Assert(dc.ChoosePixelFormat(device.NewPixelFormat(24)), qt.IsNil)
	c.Assert(dc.IsPixelFormatSet(), qt.IsTrue)
	c.Assert(dc.PixelFormat().Index, qt.Equals, 3)
	c.Assert(b.surfaces[0].format.Index, qt.Equals, 3)

	c.Assert(dc.ChoosePixelFormat(device.NewPixelFormat(24)), qt.ErrorIs, device.ErrPixelFormatAlreadySet)
	c.Assert(dc.SetPixelFormat(format(2, 32, 24, 8, 0)), qt.ErrorIs, device.ErrPixelFormatAlreadySet)
}

func TestChoosePixelFormatSkipsRefusedFormats(t *testing.T) {
	c := qt.New(t)

	dc, b := windowContext(c, format(1, 24, 24, 8, 0), format(2, 32, 24, 8, 0))
	b.surfaces[0].rejected[1] = true

	c.Assert(dc.ChoosePixelFormat(device.NewPixelFormat(24)), qt.IsNil)
	c.Assert(dc.PixelFormat().Index, qt.Equals, 2)
}

func TestChoosePixelFormatNoMatch(t *testing.T) {
	c := qt.New(t)

	dc, _ := windowContext(c, format(1, 24, 16, 0, 0))
	request := device.NewPixelFormat(24)
	request.StencilBits = 8

	err := dc.ChoosePixelFormat(request)
	c.Assert(err, qt.ErrorIs, device.ErrNoPixelFormat)

	var chooseErr *device.ChooseError
	c.Assert(errors.As(err, &chooseErr), qt.IsTrue)
	c.Assert(chooseErr.Reason, qt.Matches, `stencilBits: .*`)
	c.Assert(dc.IsPixelFormatSet(), qt.IsFalse)
}

func TestCreateContextRequiresPixelFormat(t *testing.T) {
	c := qt.New(t)

	dc, _ := windowContext(c, format(1, 24, 24, 8, 0))
	ctx, err := dc.CreateContext(device.NullHandle)
	c.Assert(err, qt.ErrorIs, device.ErrPixelFormatNotSet)
	c.Assert(ctx, qt.Equals, device.NullHandle)
}

func TestCreateContextAndMakeCurrent(t *testing.T) {
	c := qt.New(t)

	dc, b := windowContext(c, format(1, 24, 24, 8, 0))
	c.Assert(dc.ChoosePixelFormat(device.NewPixelFormat(24)), qt.IsNil)
	s := b.surfaces[0]

	first, err := dc.CreateContext(device.NullHandle)
	c.Assert(err, qt.IsNil)
	c.Assert(first, qt.Not(qt.Equals), device.NullHandle)

	v := version.NewWithProfile(3, 3, 0, version.APIGL, version.ProfileCore)
	shared, err := dc.CreateContextAttrib(first, device.ContextAttributes{Version: &v, Profile: version.ProfileCore})
	c.Assert(err, qt.IsNil)
	c.Assert(s.live[shared].Share, qt.Equals, first)
	c.Assert(s.live[shared].API, qt.Equals, version.APIGL)
	c.Assert(s.live[shared].Profile, qt.Equals, version.ProfileCore)

	c.Assert(dc.MakeCurrent(shared), qt.IsNil)
	c.Assert(s.current, qt.Equals, shared)
	c.Assert(dc.MakeCurrent(device.NullHandle), qt.IsNil)
	c.Assert(s.current, qt.Equals, device.NullHandle)

	c.Assert(dc.MakeCurrent(device.Handle(999)), qt.ErrorIs, device.ErrUnknownContext)
	_, err = dc.CreateContext(device.Handle(999))
	c.Assert(err, qt.ErrorIs, device.ErrUnknownContext)

	c.Assert(dc.DeleteContext(shared), qt.IsNil)
	c.Assert(dc.DeleteContext(shared), qt.ErrorIs, device.ErrUnknownContext)
}

func TestNativeFailuresAreErrors(t *testing.T) {
	c := qt.New(t)

	dc, b := windowContext(c, format(1, 24, 24, 8, 0))
	c.Assert(dc.ChoosePixelFormat(device.NewPixelFormat(24)), qt.IsNil)
	s := b.surfaces[0]

	s.failNext = true
	ctx, err := dc.CreateContext(device.NullHandle)
	c.Assert(err, qt.ErrorIs, device.ErrNative)
	c.Assert(err, qt.ErrorMatches, `fakeCreateContext\(\): 0x3005`)
	c.Assert(ctx, qt.Equals, device.NullHandle)

	ctx, err = dc.CreateContext(device.NullHandle)
	c.Assert(err, qt.IsNil)
	s.failNext = true
	c.Assert(dc.MakeCurrent(ctx), qt.ErrorIs, device.ErrNative)
}

func TestFailedDeleteKeepsContextTracked(t *testing.T) {
	c := qt.New(t)

	cfg, _ := testConfig(c)
	b := newFakeBackend(format(1, 24, 24, 8, 0))
	dc, err := device.CreateWithBackend(b, cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(dc.ChoosePixelFormat(device.NewPixelFormat(24)), qt.IsNil)
	s := b.surfaces[0]

	ctx, err := dc.CreateContext(device.NullHandle)
	c.Assert(err, qt.IsNil)

	s.failDelete = true
	c.Assert(dc.DeleteContext(ctx), qt.ErrorIs, device.ErrNative)
	c.Assert(s.live, qt.HasLen, 1)

	// Still known, so the context can be made current and deleted again.
	c.Assert(dc.MakeCurrent(ctx), qt.IsNil)
	c.Assert(dc.DeleteContext(ctx), qt.IsNil)
	c.Assert(s.live, qt.HasLen, 0)
	c.Assert(dc.DeleteContext(ctx), qt.ErrorIs, device.ErrUnknownContext)
	c.Assert(dc.Dispose(), qt.IsNil)
}

func TestDisposeReclaimsContextAfterFailedDelete(t *testing.T) {
	c := qt.New(t)

	cfg, _ := testConfig(c)
	b := newFakeBackend(format(1, 24, 24, 8, 0))
	dc, err := device.CreateWithBackend(b, cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(dc.ChoosePixelFormat(device.NewPixelFormat(24)), qt.IsNil)
	s := b.surfaces[0]

	ctx, err := dc.CreateContext(device.NullHandle)
	c.Assert(err, qt.IsNil)
	s.failDelete = true
	c.Assert(dc.DeleteContext(ctx), qt.IsNotNil)

	c.Assert(dc.Dispose(), qt.IsNil)
	c.Assert(s.live, qt.HasLen, 0)
	c.Assert(s.deletes, qt.Equals, 2)
}

func TestDefaultAPI(t *testing.T) {
	c := qt.New(t)

	dc, b := windowContext(c, format(1, 24, 24, 8, 0))
	c.Assert(dc.DefaultAPI(), qt.Equals, version.APIGL)

	err := dc.SetDefaultAPI("bogus")
	c.Assert(err, qt.ErrorIs, device.ErrInvalidOperation)
	var opErr *device.InvalidOperationError
	c.Assert(errors.As(err, &opErr), qt.IsTrue)
	c.Assert(opErr.Op, qt.Equals, "SetDefaultAPI")
	c.Assert(opErr.Value, qt.Equals, "bogus")
	c.Assert(dc.DefaultAPI(), qt.Equals, version.APIGL)

	c.Assert(dc.SetDefaultAPI(version.APIGLES2), qt.IsNil)
	c.Assert(dc.DefaultAPI(), qt.Equals, version.APIGLES2)

	c.Assert(dc.ChoosePixelFormat(device.NewPixelFormat(24)), qt.IsNil)
	ctx, err := dc.CreateContext(device.NullHandle)
	c.Assert(err, qt.IsNil)
	c.Assert(b.surfaces[0].live[ctx].API, qt.Equals, version.APIGLES2)

	c.Assert(dc.SetDefaultAPI(version.APIVG), qt.IsNil)
	_, err = dc.CreateContext(device.NullHandle)
	c.Assert(err, qt.ErrorIs, device.ErrAPIUnsupported)
}

func TestAvailableAPIs(t *testing.T) {
	c := qt.New(t)

	dc, _ := windowContext(c)
	c.Assert(dc.AvailableAPIs(), qt.DeepEquals, []string{version.APIGL, version.APIGLES2})
}

func TestCreateWithPBuffer(t *testing.T) {
	c := qt.New(t)

	cfg, _ := testConfig(c)
	cfg.OffscreenWidth, cfg.OffscreenHeight = 64, 32
	b := newFakeBackend(format(1, 16, 16, 0, 0), format(2, 24, 24, 8, 0))
	b.pbuffer = true

	dc, err := device.CreateWithBackend(b, cfg)
	c.Assert(err, qt.IsNil)
	defer dc.Dispose()

	c.Assert(dc.Surface().Kind(), qt.Equals, device.SurfacePBuffer)
	c.Assert(dc.IsPixelFormatSet(), qt.IsTrue)
	c.Assert(dc.PixelFormat().Index, qt.Equals, 2)
	c.Assert(b.surfaces[0].width, qt.Equals, 64)
	c.Assert(b.surfaces[0].height, qt.Equals, 32)

	ctx, err := dc.CreateContext(device.NullHandle)
	c.Assert(err, qt.IsNil)
	c.Assert(dc.MakeCurrent(ctx), qt.IsNil)
}

func TestCreateWithWindowOnlyBackend(t *testing.T) {
	c := qt.New(t)

	dc, _ := windowContext(c, format(1, 24, 24, 8, 0))
	c.Assert(dc.Surface().Kind(), qt.Equals, device.SurfaceHiddenWindow)
	c.Assert(dc.IsPixelFormatSet(), qt.IsFalse)
}

func TestCreateFallsBackToHiddenWindow(t *testing.T) {
	c := qt.New(t)

	cfg, hook := testConfig(c)
	b := newFakeBackend(format(1, 24, 24, 8, 0))
	b.pbuffer = true
	b.failPBuffer = true

	dc, err := device.CreateWithBackend(b, cfg)
	c.Assert(err, qt.IsNil)
	defer dc.Dispose()

	c.Assert(dc.Surface().Kind(), qt.Equals, device.SurfaceHiddenWindow)
	var warned bool
	for _, e := range hook.AllEntries() {
		warned = warned || e.Level == logrus.WarnLevel
	}
	c.Assert(warned, qt.IsTrue)

	b = newFakeBackend()
	b.pbuffer = true
	b.failPBuffer = true
	b.failWindow = true
	_, err = device.CreateWithBackend(b, cfg)
	c.Assert(err, qt.ErrorIs, device.ErrSurfaceUnsupported)
}

func TestNewDeviceContextInheritsFormat(t *testing.T) {
	c := qt.New(t)

	cfg, _ := testConfig(c)
	b := newFakeBackend(format(5, 32, 24, 8, 4))
	b.pbuffer = true
	s, err := b.CreatePBuffer(device.NewPixelFormat(32), 1, 1)
	c.Assert(err, qt.IsNil)

	dc, err := device.NewDeviceContext(b, s, cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(dc.IsPixelFormatSet(), qt.IsTrue)
	c.Assert(dc.PixelFormat().Index, qt.Equals, 5)

	_, err = device.NewDeviceContext(b, nil, cfg)
	c.Assert(err, qt.ErrorIs, device.ErrArgumentNil)
}

func TestCreateOwnsSelectedBackend(t *testing.T) {
	c := qt.New(t)

	b := newFakeBackend(format(1, 24, 24, 8, 0))
	b.name = "fake-owned"
	device.Register(b.name, 0, func(device.Config) (device.Backend, error) { return b, nil }, nil)
	c.Cleanup(func() { device.Unregister(b.name) })

	cfg, _ := testConfig(c)
	cfg.Backend = b.name
	dc, err := device.Create(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(dc.Backend(), qt.Equals, device.Backend(b))

	c.Assert(dc.Dispose(), qt.IsNil)
	c.Assert(dc.Dispose(), qt.IsNil)
	c.Assert(b.closed, qt.Equals, 1)

	apis, err := device.GetAvailableAPIs(cfg)
	c.Assert(err, qt.IsNil)
	c.Assert(apis, qt.DeepEquals, b.apis)
	c.Assert(b.closed, qt.Equals, 2)
}
