// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

//go:build linux || windows || freebsd || openbsd

package egl

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/devblok/glctx/device"
	"github.com/devblok/glctx/version"
)

// EGL enums, from EGL/egl.h and EGL/eglext.h
const (
	_EGL_SUCCESS                  = 0x3000
	_EGL_BUFFER_SIZE              = 0x3020
	_EGL_ALPHA_SIZE               = 0x3021
	_EGL_BLUE_SIZE                = 0x3022
	_EGL_GREEN_SIZE               = 0x3023
	_EGL_RED_SIZE                 = 0x3024
	_EGL_DEPTH_SIZE               = 0x3025
	_EGL_STENCIL_SIZE             = 0x3026
	_EGL_CONFIG_ID                = 0x3028
	_EGL_SAMPLES                  = 0x3031
	_EGL_SURFACE_TYPE             = 0x3033
	_EGL_NONE                     = 0x3038
	_EGL_COLOR_BUFFER_TYPE        = 0x303F
	_EGL_RENDERABLE_TYPE          = 0x3040
	_EGL_VENDOR                   = 0x3053
	_EGL_VERSION                  = 0x3054
	_EGL_EXTENSIONS               = 0x3055
	_EGL_HEIGHT                   = 0x3056
	_EGL_WIDTH                    = 0x3057
	_EGL_RGB_BUFFER               = 0x308E
	_EGL_CLIENT_APIS              = 0x308D
	_EGL_CONTEXT_CLIENT_VERSION   = 0x3098
	_EGL_OPENGL_ES_API            = 0x30A0
	_EGL_OPENVG_API               = 0x30A1
	_EGL_OPENGL_API               = 0x30A2
	_EGL_CONTEXT_MINOR_VERSION    = 0x30FB
	_EGL_CONTEXT_FLAGS_KHR        = 0x30FC
	_EGL_CONTEXT_PROFILE_MASK     = 0x30FD
	_EGL_COLOR_COMPONENT_TYPE_EXT = 0x3339
	_EGL_COLOR_COMPONENT_FLOAT    = 0x333B

	_EGL_PBUFFER_BIT = 0x1
	_EGL_PIXMAP_BIT  = 0x2
	_EGL_WINDOW_BIT  = 0x4

	_EGL_OPENGL_ES_BIT  = 0x1
	_EGL_OPENVG_BIT     = 0x2
	_EGL_OPENGL_ES2_BIT = 0x4
	_EGL_OPENGL_BIT     = 0x8
	_EGL_OPENGL_ES3_BIT = 0x40

	_EGL_CONTEXT_CORE_PROFILE_BIT   = 0x1
	_EGL_CONTEXT_COMPAT_PROFILE_BIT = 0x2
	_EGL_CONTEXT_DEBUG_BIT_KHR      = 0x1
)

// Error is an eglGetError code.
type Error int

func (err Error) Error() string {
	switch err {
	case 0x3001:
		return "not initialized"
	case 0x3002:
		return "bad access"
	case 0x3003:
		return "bad alloc"
	case 0x3004:
		return "bad attribute"
	case 0x3005:
		return "bad config"
	case 0x3006:
		return "bad context"
	case 0x3007:
		return "bad current surface"
	case 0x3008:
		return "bad display"
	case 0x3009:
		return "bad match"
	case 0x300A:
		return "bad native pixmap"
	case 0x300B:
		return "bad native window"
	case 0x300C:
		return "bad parameter"
	case 0x300D:
		return "bad surface"
	case 0x300E:
		return "context lost"
	default:
		return fmt.Sprintf("unknown error: 0x%x", int(err))
	}
}

func eglError(call string) error {
	return &device.NativeError{Call: call, Err: Error(eglGetError())}
}

// configAttribs are the attributes read for every EGLConfig.
var configAttribs = []int{
	_EGL_CONFIG_ID, _EGL_BUFFER_SIZE,
	_EGL_RED_SIZE, _EGL_GREEN_SIZE, _EGL_BLUE_SIZE, _EGL_ALPHA_SIZE,
	_EGL_DEPTH_SIZE, _EGL_STENCIL_SIZE, _EGL_SAMPLES,
	_EGL_SURFACE_TYPE, _EGL_RENDERABLE_TYPE,
	_EGL_COLOR_BUFFER_TYPE, _EGL_COLOR_COMPONENT_TYPE_EXT,
}

// formatOf converts EGLConfig attributes. sRGB is a surface attribute in
// EGL, so it follows EGL_KHR_gl_colorspace support.
func formatOf(attribs map[int]int, srgb bool) *device.PixelFormat {
	surfaceType := attribs[_EGL_SURFACE_TYPE]
	rgb := attribs[_EGL_COLOR_BUFFER_TYPE] == _EGL_RGB_BUFFER
	float := attribs[_EGL_COLOR_COMPONENT_TYPE_EXT] == _EGL_COLOR_COMPONENT_FLOAT
	return &device.PixelFormat{
		Index:           attribs[_EGL_CONFIG_ID],
		ColorBits:       attribs[_EGL_BUFFER_SIZE],
		RedBits:         attribs[_EGL_RED_SIZE],
		GreenBits:       attribs[_EGL_GREEN_SIZE],
		BlueBits:        attribs[_EGL_BLUE_SIZE],
		AlphaBits:       attribs[_EGL_ALPHA_SIZE],
		DepthBits:       attribs[_EGL_DEPTH_SIZE],
		StencilBits:     attribs[_EGL_STENCIL_SIZE],
		MultisampleBits: attribs[_EGL_SAMPLES],
		RGBAUnsigned:    rgb && !float,
		RGBAFloat:       rgb && float,
		SRGBCapable:     srgb,
		// Window surfaces get a back buffer.
		DoubleBuffer:  surfaceType&_EGL_WINDOW_BIT != 0,
		RenderWindow:  surfaceType&_EGL_WINDOW_BIT != 0,
		RenderBuffer:  surfaceType&_EGL_PIXMAP_BIT != 0,
		RenderPBuffer: surfaceType&_EGL_PBUFFER_BIT != 0,
	}
}

// renderableBit returns the EGL_RENDERABLE_TYPE bits allowing api.
func renderableBit(api string) int {
	switch api {
	case version.APIGL:
		return _EGL_OPENGL_BIT
	case version.APIGLES1:
		return _EGL_OPENGL_ES_BIT
	case version.APIGLES2:
		return _EGL_OPENGL_ES2_BIT | _EGL_OPENGL_ES3_BIT
	case version.APIVG:
		return _EGL_OPENVG_BIT
	default:
		return 0
	}
}

// apisOf intersects EGL_CLIENT_APIS with the renderable types of the configs.
func apisOf(clientAPIs string, renderable int) []string {
	tokens := strings.Fields(clientAPIs)
	var apis []string
	add := func(token, api string) {
		if slices.Contains(tokens, token) && renderable&renderableBit(api) != 0 {
			apis = append(apis, api)
		}
	}
	add("OpenGL", version.APIGL)
	add("OpenGL_ES", version.APIGLES1)
	add("OpenGL_ES", version.APIGLES2)
	add("OpenVG", version.APIVG)
	return apis
}

// bindAPI maps a context API to its eglBindAPI enum.
func bindAPI(api string) (int, bool) {
	switch api {
	case version.APIGL:
		return _EGL_OPENGL_API, true
	case version.APIGLES1, version.APIGLES2:
		return _EGL_OPENGL_ES_API, true
	case version.APIVG:
		return _EGL_OPENVG_API, true
	default:
		return 0, false
	}
}

// contextAttribs builds the EGL_NONE terminated eglCreateContext list.
// Versions beyond the client version and profiles need EGL_KHR_create_context.
func contextAttribs(req device.ContextRequest, khrCreateContext bool) ([]int, error) {
	var attribs []int

	major, minor := 0, 0
	if req.Version != nil {
		major, minor = req.Version.Major, req.Version.Minor
	}

	switch req.API {
	case version.APIGLES1, version.APIGLES2:
		if major == 0 {
			major = 1
			if req.API == version.APIGLES2 {
				major = 2
			}
		}
		attribs = append(attribs, _EGL_CONTEXT_CLIENT_VERSION, major)
		if minor > 0 && khrCreateContext {
			attribs = append(attribs, _EGL_CONTEXT_MINOR_VERSION, minor)
		}
	case version.APIGL:
		if major > 0 || req.Profile != "" {
			if !khrCreateContext {
				return nil, fmt.Errorf("%w: EGL_KHR_create_context needed for %s %d.%d %s",
					device.ErrAPIUnsupported, req.API, major, minor, req.Profile)
			}
		}
		if major > 0 {
			attribs = append(attribs, _EGL_CONTEXT_CLIENT_VERSION, major, _EGL_CONTEXT_MINOR_VERSION, minor)
		}
		switch req.Profile {
		case version.ProfileCore:
			attribs = append(attribs, _EGL_CONTEXT_PROFILE_MASK, _EGL_CONTEXT_CORE_PROFILE_BIT)
		case version.ProfileCompatibility:
			attribs = append(attribs, _EGL_CONTEXT_PROFILE_MASK, _EGL_CONTEXT_COMPAT_PROFILE_BIT)
		}
	case version.APIVG:
	default:
		return nil, fmt.Errorf("%w: %q on egl", device.ErrAPIUnsupported, req.API)
	}

	if req.Debug && khrCreateContext {
		attribs = append(attribs, _EGL_CONTEXT_FLAGS_KHR, _EGL_CONTEXT_DEBUG_BIT_KHR)
	}
	return append(attribs, _EGL_NONE), nil
}
