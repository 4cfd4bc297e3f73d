// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package glx

import (
	"fmt"

	"github.com/BurntSushi/xgb/glx"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xwindow"
	"golang.org/x/exp/slices"

	"github.com/devblok/glctx/device"
	"github.com/devblok/glctx/version"
)

// GLX_ARB_create_context attributes
const (
	contextMajorVersion = 0x2091
	contextMinorVersion = 0x2092
	contextFlags        = 0x2094
	contextProfileMask  = 0x9126

	contextDebugBit          = 0x1
	contextCoreProfileBit    = 0x1
	contextCompatProfileBit  = 0x2
	contextES2ProfileBit     = 0x4
	rgbaType                 = 0x8014
	rgbaFloatType            = 0x20B9
	pbufferHeight            = 0x8040
	pbufferWidth             = 0x8041
	hiddenWindowSize         = 1
	xColormapAllocNone       = 0
	xWindowClassInputOutput  = 1
	xWindowValueBorderPixel  = 8
	xWindowValueColormapMask = 8192
)

// surface is an unmapped X window with a GLX window on top, or a GLX
// P-Buffer. The drawable is created when the pixel format is set.
type surface struct {
	b    *Backend
	kind device.SurfaceKind

	width, height int
	config        fbConfig
	configSet     bool

	xwin     *xwindow.Window
	colormap xproto.Colormap
	glxWin   glx.Window
	pbuffer  glx.Pbuffer
	drawable glx.Drawable

	contexts map[device.Handle]struct{}
	tag      glx.ContextTag
	released bool
}

func newSurface(b *Backend, kind device.SurfaceKind) *surface {
	return &surface{
		b:        b,
		kind:     kind,
		contexts: make(map[device.Handle]struct{}),
	}
}

func (s *surface) Kind() device.SurfaceKind { return s.kind }

func (s *surface) APIs() []string { return s.b.APIs() }

func (s *surface) PixelFormats() *device.PixelFormatCollection {
	return s.b.PixelFormats()
}

func (s *surface) PixelFormat() *device.PixelFormat {
	if !s.configSet {
		return nil
	}
	return s.config.format.Copy()
}

// SetPixelFormat creates the drawable for the FBConfig with the index of pf.
func (s *surface) SetPixelFormat(pf *device.PixelFormat) error {
	if pf == nil {
		return device.ErrArgumentNil
	}
	if s.configSet {
		return device.ErrPixelFormatAlreadySet
	}
	cfg, ok := s.b.config(pf.Index)
	if !ok {
		return fmt.Errorf("%w: no FBConfig 0x%x", device.ErrArgumentOutOfRange, pf.Index)
	}

	var err error
	switch s.kind {
	case device.SurfacePBuffer:
		err = s.createPBuffer(cfg)
	default:
		err = s.createWindow(cfg)
	}
	if err != nil {
		return err
	}
	s.config, s.configSet = cfg, true
	return nil
}

func (s *surface) createPBuffer(cfg fbConfig) error {
	conn := s.b.conn()
	id, err := glx.NewPbufferId(conn)
	if err != nil {
		return device.NewNativeError("glx.NewPbufferId", "%s", err)
	}
	attribs := []uint32{
		pbufferWidth, uint32(s.width),
		pbufferHeight, uint32(s.height),
	}
	err = glx.CreatePbufferChecked(conn, uint32(s.b.screen), glx.Fbconfig(cfg.format.Index), id,
		uint32(len(attribs)/2), attribs).Check()
	if err != nil {
		return device.NewNativeError("glx.CreatePbuffer", "%s", err)
	}
	s.pbuffer = id
	s.drawable = glx.Drawable(id)
	return nil
}

func (s *surface) createWindow(cfg fbConfig) (err error) {
	if cfg.visual == 0 {
		return device.NewNativeError("glx.CreateWindow", "FBConfig 0x%x has no visual", cfg.format.Index)
	}
	xu := s.b.xu
	conn := xu.Conn()
	screen := xu.Screen()

	depth, ok := visualDepth(screen, cfg.visual)
	if !ok {
		return device.NewNativeError("xproto.CreateWindow", "visual 0x%x not on screen", cfg.visual)
	}

	// A refused FBConfig must not leave its colormap or window behind,
	// the next candidate gets fresh ones.
	var cleanup undo
	defer func() {
		if err != nil {
			cleanup.run()
		}
	}()

	cmap, err := xproto.NewColormapId(conn)
	if err != nil {
		return device.NewNativeError("xproto.NewColormapId", "%s", err)
	}
	err = xproto.CreateColormapChecked(conn, xColormapAllocNone, cmap, screen.Root, cfg.visual).Check()
	if err != nil {
		return device.NewNativeError("xproto.CreateColormap", "%s", err)
	}
	cleanup.push(func() { xproto.FreeColormap(conn, cmap) })

	win, err := xwindow.Generate(xu)
	if err != nil {
		return device.NewNativeError("xwindow.Generate", "%s", err)
	}
	// Never mapped, so the window stays hidden.
	err = xproto.CreateWindowChecked(conn, depth, win.Id, screen.Root,
		0, 0, hiddenWindowSize, hiddenWindowSize, 0,
		xWindowClassInputOutput, cfg.visual,
		xWindowValueBorderPixel|xWindowValueColormapMask, []uint32{0, uint32(cmap)}).Check()
	if err != nil {
		return device.NewNativeError("xproto.CreateWindow", "%s", err)
	}
	cleanup.push(win.Destroy)

	id, err := glx.NewWindowId(conn)
	if err != nil {
		return device.NewNativeError("glx.NewWindowId", "%s", err)
	}
	err = glx.CreateWindowChecked(conn, uint32(s.b.screen), glx.Fbconfig(cfg.format.Index), win.Id, id, 0, nil).Check()
	if err != nil {
		return device.NewNativeError("glx.CreateWindow", "%s", err)
	}

	s.colormap = cmap
	s.xwin = win
	s.glxWin = id
	s.drawable = glx.Drawable(id)
	return nil
}

// undo collects cleanups for resources made so far, run newest first.
type undo []func()

func (u *undo) push(f func()) { *u = append(*u, f) }

func (u *undo) run() {
	for i := len(*u) - 1; i >= 0; i-- {
		(*u)[i]()
	}
	*u = nil
}

func visualDepth(screen *xproto.ScreenInfo, visual xproto.Visualid) (byte, bool) {
	for _, d := range screen.AllowedDepths {
		for _, v := range d.Visuals {
			if v.VisualId == visual {
				return d.Depth, true
			}
		}
	}
	return 0, false
}

// contextAttribs builds the GLX_ARB_create_context attribute list for req.
func contextAttribs(req device.ContextRequest, renderType uint32) ([]uint32, error) {
	attribs := []uint32{attribRenderType, renderType}

	major, minor := 0, 0
	if req.Version != nil {
		major, minor = req.Version.Major, req.Version.Minor
	}

	var profile uint32
	switch req.API {
	case version.APIGL:
		switch req.Profile {
		case version.ProfileCore:
			profile = contextCoreProfileBit
		case version.ProfileCompatibility:
			profile = contextCompatProfileBit
		}
	case version.APIGLES1:
		profile = contextES2ProfileBit
		if major == 0 {
			major = 1
		}
	case version.APIGLES2:
		profile = contextES2ProfileBit
		if major == 0 {
			major = 2
		}
	default:
		return nil, fmt.Errorf("%w: %q on glx", device.ErrAPIUnsupported, req.API)
	}

	if major > 0 {
		attribs = append(attribs, contextMajorVersion, uint32(major), contextMinorVersion, uint32(minor))
	}
	if profile != 0 {
		attribs = append(attribs, contextProfileMask, profile)
	}
	if req.Debug {
		attribs = append(attribs, contextFlags, contextDebugBit)
	}
	return attribs, nil
}

func (s *surface) CreateContext(req device.ContextRequest) (device.Handle, error) {
	if !s.configSet {
		return device.NullHandle, device.ErrPixelFormatNotSet
	}
	if !slices.Contains(s.b.apis, req.API) {
		return device.NullHandle, fmt.Errorf("%w: %q on glx", device.ErrAPIUnsupported, req.API)
	}

	conn := s.b.conn()
	id, err := glx.NewContextId(conn)
	if err != nil {
		return device.NullHandle, device.NewNativeError("glx.NewContextId", "%s", err)
	}

	renderType := uint32(rgbaType)
	if s.config.format.RGBAFloat && !s.config.format.RGBAUnsigned {
		renderType = rgbaFloatType
	}
	fbc := glx.Fbconfig(s.config.format.Index)
	share := glx.Context(req.Share)
	plain := req.API == version.APIGL && req.Version == nil && req.Profile == "" && !req.Debug

	if plain || !s.b.hasExtension(extCreateContext) {
		if !plain {
			s.b.log.WithField("api", req.API).Warn("GLX_ARB_create_context missing, ignoring context attributes")
		}
		err = glx.CreateNewContextChecked(conn, id, fbc, uint32(s.b.screen), renderType, share, false).Check()
		if err != nil {
			return device.NullHandle, device.NewNativeError("glx.CreateNewContext", "%s", err)
		}
	} else {
		attribs, err := contextAttribs(req, renderType)
		if err != nil {
			return device.NullHandle, err
		}
		err = glx.CreateContextAttribsARBChecked(conn, id, fbc, uint32(s.b.screen), share, false,
			uint32(len(attribs)/2), attribs).Check()
		if err != nil {
			return device.NullHandle, device.NewNativeError("glx.CreateContextAttribsARB", "%s", err)
		}
	}

	h := device.Handle(id)
	s.contexts[h] = struct{}{}
	return h, nil
}

func (s *surface) MakeCurrent(ctx device.Handle) error {
	drawable := s.drawable
	if ctx == device.NullHandle {
		drawable = 0
	} else if _, ok := s.contexts[ctx]; !ok {
		return device.ErrUnknownContext
	}

	reply, err := glx.MakeContextCurrent(s.b.conn(), s.tag, drawable, drawable, glx.Context(ctx)).Reply()
	if err != nil {
		return device.NewNativeError("glx.MakeContextCurrent", "%s", err)
	}
	s.tag = reply.ContextTag
	return nil
}

func (s *surface) DeleteContext(ctx device.Handle) error {
	if _, ok := s.contexts[ctx]; !ok {
		return device.ErrUnknownContext
	}
	if err := glx.DestroyContextChecked(s.b.conn(), glx.Context(ctx)).Check(); err != nil {
		return device.NewNativeError("glx.DestroyContext", "%s", err)
	}
	delete(s.contexts, ctx)
	return nil
}

// Release destroys the GLX drawable, the X window and its colormap.
func (s *surface) Release() error {
	if s.released || s.b.xu == nil {
		return nil
	}
	s.released = true
	conn := s.b.conn()

	var err error
	if s.pbuffer != 0 {
		if e := glx.DestroyPbufferChecked(conn, s.pbuffer).Check(); e != nil {
			err = device.NewNativeError("glx.DestroyPbuffer", "%s", e)
		}
	}
	if s.glxWin != 0 {
		if e := glx.DeleteWindowChecked(conn, s.glxWin).Check(); e != nil {
			err = device.NewNativeError("glx.DeleteWindow", "%s", e)
		}
	}
	if s.xwin != nil {
		s.xwin.Destroy()
	}
	if s.colormap != 0 {
		xproto.FreeColormap(conn, s.colormap)
	}
	return err
}
