// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package glx implements the GLX device backend by speaking the GLX X11
// protocol extension directly, so it needs neither cgo nor libGL. Contexts
// created this way are indirect: rendering commands travel over the X
// connection.
//
// Importing the package registers the backend as "glx" when DISPLAY is set.
package glx

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/glx"
	"github.com/BurntSushi/xgbutil"
	"github.com/gobuffalo/envy"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/devblok/glctx/device"
)

const (
	nameExtensions   = 3
	extCreateContext = "GLX_ARB_create_context"
)

func init() {
	device.Register(device.BackendGLX, device.PriorityNative, Open, available)
}

func available() bool {
	return envy.Get("DISPLAY", "") != ""
}

// Backend is a GLX connection to the default screen of an X display.
type Backend struct {
	xu     *xgbutil.XUtil
	screen int

	Major, Minor uint32
	Extensions   string

	apis    []string
	configs []fbConfig

	log logrus.FieldLogger
}

// Open connects to the X server named by DISPLAY and loads the framebuffer
// configurations of its default screen. GLX 1.3 is required.
func Open(cfg device.Config) (device.Backend, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, device.NewNativeError("xgbutil.NewConn", "%s", err)
	}
	b, err := open(xu, cfg)
	if err != nil {
		xu.Conn().Close()
		return nil, err
	}
	return b, nil
}

func open(xu *xgbutil.XUtil, cfg device.Config) (*Backend, error) {
	conn := xu.Conn()
	if err := glx.Init(conn); err != nil {
		return nil, device.NewNativeError("glx.Init", "%s", err)
	}

	b := &Backend{
		xu:     xu,
		screen: conn.DefaultScreen,
		log:    cfg.Log().WithField("backend", device.BackendGLX),
	}

	ver, err := glx.QueryVersion(conn, 1, 4).Reply()
	if err != nil {
		return nil, device.NewNativeError("glx.QueryVersion", "%s", err)
	}
	if ver.MajorVersion < 1 || (ver.MajorVersion == 1 && ver.MinorVersion < 3) {
		return nil, device.NewNativeError("glx.QueryVersion", "GLX %d.%d, need 1.3", ver.MajorVersion, ver.MinorVersion)
	}
	b.Major, b.Minor = ver.MajorVersion, ver.MinorVersion

	exts, err := glx.QueryServerString(conn, uint32(b.screen), nameExtensions).Reply()
	if err != nil {
		return nil, device.NewNativeError("glx.QueryServerString", "%s", err)
	}
	b.Extensions = exts.String
	b.apis = apisOf(b.Extensions)

	fbc, err := glx.GetFBConfigs(conn, uint32(b.screen)).Reply()
	if err != nil {
		return nil, device.NewNativeError("glx.GetFBConfigs", "%s", err)
	}
	if b.configs, err = decodeFBConfigs(fbc.NumFbConfigs, fbc.NumProperties, fbc.PropertyList); err != nil {
		return nil, err
	}

	b.log.WithFields(logrus.Fields{
		"version": fmt.Sprintf("%d.%d", b.Major, b.Minor),
		"configs": len(b.configs),
	}).Debug("GLX initialized")
	return b, nil
}

func (b *Backend) conn() *xgb.Conn {
	return b.xu.Conn()
}

// Name implements device.Backend.
func (b *Backend) Name() string { return device.BackendGLX }

// APIs implements device.Backend.
func (b *Backend) APIs() []string { return slices.Clone(b.apis) }

// PixelFormats returns the framebuffer configurations of the screen.
func (b *Backend) PixelFormats() *device.PixelFormatCollection {
	return device.NewPixelFormatCollection(formatsOf(b.configs)...)
}

// CreateHiddenWindow returns a surface whose unmapped X window is created
// once a pixel format is set, since the window visual depends on it.
func (b *Backend) CreateHiddenWindow() (device.Surface, error) {
	return newSurface(b, device.SurfaceHiddenWindow), nil
}

// SupportsPBuffer implements device.OffscreenBackend. P-Buffers are core
// since GLX 1.3.
func (b *Backend) SupportsPBuffer() bool { return true }

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

	s := newSurface(b, device.SurfacePBuffer)
	s.width, s.height = width, height
	if err := s.SetPixelFormat(chosen[0]); err != nil {
		return nil, err
	}
	return s, nil
}

// Close disconnects from the X server.
func (b *Backend) Close() error {
	if b.xu == nil {
		return nil
	}
	b.xu.Conn().Close()
	b.xu = nil
	return nil
}

func (b *Backend) hasExtension(name string) bool {
	return slices.Contains(strings.Fields(b.Extensions), name)
}

func (b *Backend) config(index int) (fbConfig, bool) {
	i := slices.IndexFunc(b.configs, func(c fbConfig) bool { return c.format.Index == index })
	if i < 0 {
		return fbConfig{}, false
	}
	return b.configs[i], true
}
