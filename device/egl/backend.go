// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

//go:build linux || windows || freebsd || openbsd

package egl

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/devblok/glctx/device"
)

func init() {
	device.Register(device.BackendEGL, device.PriorityPortable, Open, available)
}

func available() bool {
	return loadEGL() == nil
}

type eglConfig struct {
	config     _EGLConfig
	format     *device.PixelFormat
	renderable int
}

// Backend is an initialized EGL default display.
type Backend struct {
	disp _EGLDisplay

	Major, Minor int
	Vendor       string
	ClientAPIs   string
	Extensions   string

	apis    []string
	configs []eglConfig
	closed  bool

	log logrus.FieldLogger
}

// Open initializes the default EGL display and reads all of its configs.
func Open(cfg device.Config) (device.Backend, error) {
	if err := loadEGL(); err != nil {
		return nil, &device.NativeError{Call: "loadEGL", Err: err}
	}
	disp := eglGetDisplay(EGL_DEFAULT_DISPLAY)
	if disp == nilEGLDisplay {
		return nil, eglError("eglGetDisplay")
	}
	major, minor, ok := eglInitialize(disp)
	if !ok {
		return nil, eglError("eglInitialize")
	}

	b := &Backend{
		disp:       disp,
		Major:      int(major),
		Minor:      int(minor),
		Vendor:     eglQueryString(disp, _EGL_VENDOR),
		ClientAPIs: eglQueryString(disp, _EGL_CLIENT_APIS),
		Extensions: eglQueryString(disp, _EGL_EXTENSIONS),
		log:        cfg.Log().WithField("backend", device.BackendEGL),
	}
	if err := b.loadConfigs(); err != nil {
		eglTerminate(disp)
		return nil, err
	}

	b.log.WithFields(logrus.Fields{
		"version": fmt.Sprintf("%d.%d", b.Major, b.Minor),
		"vendor":  b.Vendor,
		"configs": len(b.configs),
	}).Debug("EGL initialized")
	return b, nil
}

func (b *Backend) loadConfigs() error {
	configs, ok := eglGetConfigs(b.disp)
	if !ok {
		return eglError("eglGetConfigs")
	}

	srgb := b.hasExtension("EGL_KHR_gl_colorspace")
	renderable := 0
	for _, c := range configs {
		attribs := make(map[int]int, len(configAttribs))
		for _, a := range configAttribs {
			// Unknown attributes, e.g. without EGL_EXT_pixel_format_float, stay zero.
			if v, ok := eglGetConfigAttrib(b.disp, c, _EGLint(a)); ok {
				attribs[a] = int(v)
			}
		}
		b.configs = append(b.configs, eglConfig{
			config:     c,
			format:     formatOf(attribs, srgb),
			renderable: attribs[_EGL_RENDERABLE_TYPE],
		})
		renderable |= attribs[_EGL_RENDERABLE_TYPE]
	}
	b.apis = apisOf(b.ClientAPIs, renderable)
	return nil
}

// Name implements device.Backend.
func (b *Backend) Name() string { return device.BackendEGL }

// APIs implements device.Backend.
func (b *Backend) APIs() []string { return slices.Clone(b.apis) }

// PixelFormats returns the configs of the display.
func (b *Backend) PixelFormats() *device.PixelFormatCollection {
	formats := make([]*device.PixelFormat, len(b.configs))
	for i, c := range b.configs {
		formats[i] = c.format
	}
	return device.NewPixelFormatCollection(formats...)
}

// CreateHiddenWindow is not available on EGL.
func (b *Backend) CreateHiddenWindow() (device.Surface, error) {
	return nil, fmt.Errorf("%w: egl cannot create hidden windows", device.ErrSurfaceUnsupported)
}

// SupportsPBuffer implements device.OffscreenBackend.
func (b *Backend) SupportsPBuffer() bool {
	return slices.ContainsFunc(b.configs, func(c eglConfig) bool { return c.format.RenderPBuffer })
}

// CreatePBuffer implements device.OffscreenBackend.
func (b *Backend) CreatePBuffer(request *device.PixelFormat, width, height int) (device.Surface, error) {
	if request == nil {
		return nil, device.ErrArgumentNil
	}
	if width <= 0 || height <= 0 {
		return nil, device.ErrArgumentOutOfRange
	}

	request = request.Copy()
	request.RenderPBuffer = true
	catalog := b.PixelFormats()
	chosen, err := catalog.Choose(request)
	if err != nil {
		return nil, err
	}
	if len(chosen) == 0 {
		reason, _ := catalog.GuessChooseError(request)
		return nil, &device.ChooseError{Request: request, Reason: reason}
	}

	s := &surface{
		b:        b,
		width:    width,
		height:   height,
		contexts: make(map[device.Handle]eglContext),
	}
	if err := s.SetPixelFormat(chosen[0]); err != nil {
		return nil, err
	}
	return s, nil
}

// Close terminates the display.
func (b *Backend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	eglReleaseThread()
	if !eglTerminate(b.disp) {
		return eglError("eglTerminate")
	}
	return nil
}

func (b *Backend) hasExtension(name string) bool {
	return slices.Contains(strings.Fields(b.Extensions), name)
}

func (b *Backend) config(index int) (eglConfig, bool) {
	i := slices.IndexFunc(b.configs, func(c eglConfig) bool { return c.format.Index == index })
	if i < 0 {
		return eglConfig{}, false
	}
	return b.configs[i], true
}

type eglContext struct {
	ctx _EGLContext
	api string
}

// surface is an EGL P-Buffer. Native context pointers stay in a handle
// table and never leave the package.
type surface struct {
	b             *Backend
	width, height int

	config    eglConfig
	configSet bool
	surf      _EGLSurface

	contexts map[device.Handle]eglContext
	next     device.Handle
	released bool
}

func (s *surface) Kind() device.SurfaceKind { return device.SurfacePBuffer }

func (s *surface) PixelFormats() *device.PixelFormatCollection { return s.b.PixelFormats() }

func (s *surface) PixelFormat() *device.PixelFormat {
	if !s.configSet {
		return nil
	}
	return s.config.format.Copy()
}

// APIs returns the backend APIs the config of the P-Buffer can render.
func (s *surface) APIs() []string {
	if !s.configSet {
		return s.b.APIs()
	}
	var apis []string
	for _, api := range s.b.apis {
		if s.config.renderable&renderableBit(api) != 0 {
			apis = append(apis, api)
		}
	}
	return apis
}

// SetPixelFormat creates the P-Buffer.
func (s *surface) SetPixelFormat(pf *device.PixelFormat) error {
	if pf == nil {
		return device.ErrArgumentNil
	}
	if s.configSet {
		return device.ErrPixelFormatAlreadySet
	}
	cfg, ok := s.b.config(pf.Index)
	if !ok {
		return fmt.Errorf("%w: no EGLConfig 0x%x", device.ErrArgumentOutOfRange, pf.Index)
	}

	attribs := []_EGLint{_EGL_WIDTH, _EGLint(s.width), _EGL_HEIGHT, _EGLint(s.height), _EGL_NONE}
	surf := eglCreatePbufferSurface(s.b.disp, cfg.config, attribs)
	if surf == nilEGLSurface {
		return eglError("eglCreatePbufferSurface")
	}
	s.surf = surf
	s.config, s.configSet = cfg, true
	return nil
}

func (s *surface) CreateContext(req device.ContextRequest) (device.Handle, error) {
	if !s.configSet {
		return device.NullHandle, device.ErrPixelFormatNotSet
	}
	if !slices.Contains(s.APIs(), req.API) {
		return device.NullHandle, fmt.Errorf("%w: %q on egl config 0x%x", device.ErrAPIUnsupported, req.API, s.config.format.Index)
	}
	api, _ := bindAPI(req.API)
	if !eglBindAPI(api) {
		return device.NullHandle, eglError("eglBindAPI")
	}

	share := nilEGLContext
	if req.Share != device.NullHandle {
		shared, ok := s.contexts[req.Share]
		if !ok {
			return device.NullHandle, device.ErrUnknownContext
		}
		share = shared.ctx
	}

	list, err := contextAttribs(req, s.b.hasExtension("EGL_KHR_create_context"))
	if err != nil {
		return device.NullHandle, err
	}
	attribs := make([]_EGLint, len(list))
	for i, a := range list {
		attribs[i] = _EGLint(a)
	}

	ctx := eglCreateContext(s.b.disp, s.config.config, share, attribs)
	if ctx == nilEGLContext {
		return device.NullHandle, eglError("eglCreateContext")
	}
	s.next++
	s.contexts[s.next] = eglContext{ctx: ctx, api: req.API}
	return s.next, nil
}

func (s *surface) MakeCurrent(h device.Handle) error {
	if h == device.NullHandle {
		if !eglMakeCurrent(s.b.disp, nilEGLSurface, nilEGLSurface, nilEGLContext) {
			return eglError("eglMakeCurrent")
		}
		return nil
	}

	c, ok := s.contexts[h]
	if !ok {
		return device.ErrUnknownContext
	}
	// The current context is tracked per bound API.
	api, _ := bindAPI(c.api)
	if !eglBindAPI(api) {
		return eglError("eglBindAPI")
	}
	if !eglMakeCurrent(s.b.disp, s.surf, s.surf, c.ctx) {
		return eglError("eglMakeCurrent")
	}
	return nil
}

func (s *surface) DeleteContext(h device.Handle) error {
	c, ok := s.contexts[h]
	if !ok {
		return device.ErrUnknownContext
	}
	if !eglDestroyContext(s.b.disp, c.ctx) {
		return eglError("eglDestroyContext")
	}
	delete(s.contexts, h)
	return nil
}

// Release destroys the P-Buffer.
func (s *surface) Release() error {
	if s.released || !s.configSet {
		return nil
	}
	s.released = true
	if !eglDestroySurface(s.b.disp, s.surf) {
		return eglError("eglDestroySurface")
	}
	return nil
}
