// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package sdl is the fallback device backend. SDL picks the native context
// API itself, so the pixel format catalog is a list of candidates SDL is
// asked to realize rather than what the driver reports.
package sdl

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/exp/slices"

	"github.com/devblok/glctx/device"
	"github.com/devblok/glctx/version"
)

func init() {
	device.Register(device.BackendSDL, device.PriorityFallback, Open, nil)
}

// Backend keeps the SDL video subsystem and its GL library loaded.
type Backend struct {
	Platform string
	Driver   string

	formats []*device.PixelFormat
	closed  bool
	log     logrus.FieldLogger
}

// Open initializes SDL video and loads the default GL library.
func Open(cfg device.Config) (device.Backend, error) {
	if err := sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
		return nil, device.NewNativeError("sdl.InitSubSystem", "%s", err)
	}
	if err := sdl.GLLoadLibrary(""); err != nil {
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
		return nil, device.NewNativeError("sdl.GLLoadLibrary", "%s", err)
	}

	driver, err := sdl.GetCurrentVideoDriver()
	if err != nil {
		sdl.GLUnloadLibrary()
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
		return nil, device.NewNativeError("sdl.GetCurrentVideoDriver", "%s", err)
	}

	b := &Backend{
		Platform: sdl.GetPlatform(),
		Driver:   driver,
		formats:  candidates(),
		log:      cfg.Log().WithField("backend", device.BackendSDL),
	}
	b.log.WithFields(logrus.Fields{
		"platform": b.Platform,
		"driver":   b.Driver,
	}).Debug("SDL initialized")
	return b, nil
}

// candidates lists the formats offered to SDL, most common first.
func candidates() []*device.PixelFormat {
	var formats []*device.PixelFormat
	for _, color := range []int{32, 24, 16} {
		for _, ds := range [][2]int{{24, 8}, {24, 0}, {16, 0}, {0, 0}} {
			for _, samples := range []int{0, 4} {
				pf := device.NewPixelFormat(color)
				pf.Index = len(formats) + 1
				pf.DepthBits, pf.StencilBits = ds[0], ds[1]
				pf.MultisampleBits = samples
				pf.DoubleBuffer = true
				pf.SRGBCapable = color == 32
				formats = append(formats, pf)
			}
		}
	}
	return formats
}

// Name implements device.Backend.
func (b *Backend) Name() string { return device.BackendSDL }

// APIs implements device.Backend.
func (b *Backend) APIs() []string {
	return []string{version.APIGL, version.APIGLES1, version.APIGLES2}
}

// CreateHiddenWindow implements device.Backend. The window itself is created
// by SetPixelFormat since SDL reads the GL attributes at window creation.
func (b *Backend) CreateHiddenWindow() (device.Surface, error) {
	if b.closed {
		return nil, device.ErrDisposed
	}
	return &surface{
		b:        b,
		contexts: make(map[device.Handle]sdl.GLContext),
	}, nil
}

// Close unloads the GL library and stops the video subsystem.
func (b *Backend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	sdl.GLUnloadLibrary()
	sdl.QuitSubSystem(sdl.INIT_VIDEO)
	return nil
}

// setFormatAttributes sets the GL attributes describing pf.
func setFormatAttributes(pf *device.PixelFormat) error {
	attribs := []struct {
		attr  sdl.GLattr
		value int
	}{
		{sdl.GL_RED_SIZE, pf.RedBits},
		{sdl.GL_GREEN_SIZE, pf.GreenBits},
		{sdl.GL_BLUE_SIZE, pf.BlueBits},
		{sdl.GL_ALPHA_SIZE, pf.AlphaBits},
		{sdl.GL_BUFFER_SIZE, pf.ColorBits},
		{sdl.GL_DEPTH_SIZE, pf.DepthBits},
		{sdl.GL_STENCIL_SIZE, pf.StencilBits},
		{sdl.GL_DOUBLEBUFFER, boolAttr(pf.DoubleBuffer)},
		{sdl.GL_FRAMEBUFFER_SRGB_CAPABLE, boolAttr(pf.SRGBCapable)},
		{sdl.GL_MULTISAMPLEBUFFERS, boolAttr(pf.MultisampleBits > 0)},
		{sdl.GL_MULTISAMPLESAMPLES, pf.MultisampleBits},
	}
	for _, a := range attribs {
		if err := sdl.GLSetAttribute(a.attr, a.value); err != nil {
			return device.NewNativeError("sdl.GLSetAttribute", "%d: %s", a.attr, err)
		}
	}
	return nil
}

// setContextAttributes sets the GL attributes describing req.
func setContextAttributes(req device.ContextRequest) error {
	major, minor := 0, 0
	if req.Version != nil {
		major, minor = req.Version.Major, req.Version.Minor
	}

	profile := 0
	switch req.API {
	case version.APIGL:
		switch req.Profile {
		case version.ProfileCore:
			profile = int(sdl.GL_CONTEXT_PROFILE_CORE)
		case version.ProfileCompatibility:
			profile = int(sdl.GL_CONTEXT_PROFILE_COMPATIBILITY)
		}
	case version.APIGLES1, version.APIGLES2:
		profile = int(sdl.GL_CONTEXT_PROFILE_ES)
		if major == 0 {
			major = 1
			if req.API == version.APIGLES2 {
				major = 2
			}
		}
	default:
		return fmt.Errorf("%w: %q on sdl", device.ErrAPIUnsupported, req.API)
	}

	flags := 0
	if req.Debug {
		flags |= int(sdl.GL_CONTEXT_DEBUG_FLAG)
	}

	attribs := []struct {
		attr  sdl.GLattr
		value int
	}{
		{sdl.GL_CONTEXT_MAJOR_VERSION, major},
		{sdl.GL_CONTEXT_MINOR_VERSION, minor},
		{sdl.GL_CONTEXT_PROFILE_MASK, profile},
		{sdl.GL_CONTEXT_FLAGS, flags},
		{sdl.GL_SHARE_WITH_CURRENT_CONTEXT, boolAttr(req.Share != device.NullHandle)},
	}
	for _, a := range attribs {
		if err := sdl.GLSetAttribute(a.attr, a.value); err != nil {
			return device.NewNativeError("sdl.GLSetAttribute", "%d: %s", a.attr, err)
		}
	}
	return nil
}

func boolAttr(b bool) int {
	if b {
		return 1
	}
	return 0
}

// surface is a hidden SDL window. SDL contexts are opaque pointers kept in
// a handle table.
type surface struct {
	b        *Backend
	window   *sdl.Window
	format   *device.PixelFormat
	contexts map[device.Handle]sdl.GLContext
	next     device.Handle
	released bool
}

func (s *surface) Kind() device.SurfaceKind { return device.SurfaceHiddenWindow }

func (s *surface) APIs() []string { return s.b.APIs() }

func (s *surface) PixelFormats() *device.PixelFormatCollection {
	return device.NewPixelFormatCollection(s.b.formats...)
}

func (s *surface) PixelFormat() *device.PixelFormat { return s.format.Copy() }

// SetPixelFormat creates the hidden window with the attributes of pf.
func (s *surface) SetPixelFormat(pf *device.PixelFormat) error {
	if pf == nil {
		return device.ErrArgumentNil
	}
	if s.format != nil {
		return device.ErrPixelFormatAlreadySet
	}
	if err := setFormatAttributes(pf); err != nil {
		return err
	}
	window, err := sdl.CreateWindow("glctx",
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		1, 1,
		sdl.WINDOW_OPENGL|sdl.WINDOW_HIDDEN)
	if err != nil {
		return device.NewNativeError("sdl.CreateWindow", "%s", err)
	}
	s.window = window
	s.format = pf.Copy()
	return nil
}

func (s *surface) CreateContext(req device.ContextRequest) (device.Handle, error) {
	if s.window == nil {
		return device.NullHandle, device.ErrPixelFormatNotSet
	}
	if !slices.Contains(s.b.APIs(), req.API) {
		return device.NullHandle, fmt.Errorf("%w: %q on sdl", device.ErrAPIUnsupported, req.API)
	}
	if req.Share != device.NullHandle {
		// SDL shares with whatever context is current.
		if err := s.MakeCurrent(req.Share); err != nil {
			return device.NullHandle, err
		}
	}
	if err := setContextAttributes(req); err != nil {
		return device.NullHandle, err
	}

	ctx, err := s.window.GLCreateContext()
	if err != nil {
		return device.NullHandle, device.NewNativeError("sdl.GLCreateContext", "%s", err)
	}
	s.next++
	s.contexts[s.next] = ctx
	return s.next, nil
}

func (s *surface) MakeCurrent(h device.Handle) error {
	if s.window == nil {
		return device.ErrPixelFormatNotSet
	}
	var ctx sdl.GLContext
	if h != device.NullHandle {
		c, ok := s.contexts[h]
		if !ok {
			return device.ErrUnknownContext
		}
		ctx = c
	}
	if err := s.window.GLMakeCurrent(ctx); err != nil {
		return device.NewNativeError("sdl.GLMakeCurrent", "%s", err)
	}
	return nil
}

func (s *surface) DeleteContext(h device.Handle) error {
	ctx, ok := s.contexts[h]
	if !ok {
		return device.ErrUnknownContext
	}
	sdl.GLDeleteContext(ctx)
	delete(s.contexts, h)
	return nil
}

// Release destroys the window.
func (s *surface) Release() error {
	if s.released || s.window == nil {
		return nil
	}
	s.released = true
	if err := s.window.Destroy(); err != nil {
		return device.NewNativeError("sdl.DestroyWindow", "%s", err)
	}
	return nil
}
