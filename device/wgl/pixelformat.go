// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package wgl implements the WGL device backend over opengl32.dll. It creates
// hidden windows only; WGL P-Buffers are not supported.
//
// The backend registers itself as "wgl" on Windows. On other platforms the
// package is empty apart from the descriptor decoding.
package wgl

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/devblok/glctx/device"
	"github.com/devblok/glctx/version"
)

// PIXELFORMATDESCRIPTOR flags
const (
	pfdDoubleBuffer  = 0x1
	pfdDrawToWindow  = 0x4
	pfdDrawToBitmap  = 0x8
	pfdSupportOpenGL = 0x20
	pfdTypeRGBA      = 0
)

// WGL_ARB_create_context attributes
const (
	contextMajorVersion = 0x2091
	contextMinorVersion = 0x2092
	contextFlags        = 0x2094
	contextProfileMask  = 0x9126

	contextDebugBit         = 0x1
	contextCoreProfileBit   = 0x1
	contextCompatProfileBit = 0x2
	contextES2ProfileBit    = 0x4
)

const extCreateContext = "WGL_ARB_create_context"

// pixelFormatDescriptor mirrors PIXELFORMATDESCRIPTOR.
type pixelFormatDescriptor struct {
	Size           uint16
	Version        uint16
	Flags          uint32
	PixelType      byte
	ColorBits      byte
	RedBits        byte
	RedShift       byte
	GreenBits      byte
	GreenShift     byte
	BlueBits       byte
	BlueShift      byte
	AlphaBits      byte
	AlphaShift     byte
	AccumBits      byte
	AccumRedBits   byte
	AccumGreenBits byte
	AccumBlueBits  byte
	AccumAlphaBits byte
	DepthBits      byte
	StencilBits    byte
	AuxBuffers     byte
	LayerType      byte
	Reserved       byte
	LayerMask      uint32
	VisibleMask    uint32
	DamageMask     uint32
}

// formatOf converts the descriptor of the 1-based format index. Formats
// without OpenGL support are reported as nil.
func formatOf(index int, pfd *pixelFormatDescriptor) *device.PixelFormat {
	if pfd.Flags&pfdSupportOpenGL == 0 {
		return nil
	}
	return &device.PixelFormat{
		Index:        index,
		ColorBits:    int(pfd.ColorBits),
		RedBits:      int(pfd.RedBits),
		GreenBits:    int(pfd.GreenBits),
		BlueBits:     int(pfd.BlueBits),
		AlphaBits:    int(pfd.AlphaBits),
		DepthBits:    int(pfd.DepthBits),
		StencilBits:  int(pfd.StencilBits),
		RGBAUnsigned: pfd.PixelType == pfdTypeRGBA,
		DoubleBuffer: pfd.Flags&pfdDoubleBuffer != 0,
		RenderWindow: pfd.Flags&pfdDrawToWindow != 0,
		RenderBuffer: pfd.Flags&pfdDrawToBitmap != 0,
	}
}

// apisOf derives the context APIs from the WGL extension string.
func apisOf(extensions string) []string {
	exts := strings.Fields(extensions)
	apis := []string{version.APIGL}
	if !slices.Contains(exts, extCreateContext) {
		return apis
	}
	switch {
	case slices.Contains(exts, "WGL_EXT_create_context_es_profile"):
		apis = append(apis, version.APIGLES1, version.APIGLES2)
	case slices.Contains(exts, "WGL_EXT_create_context_es2_profile"):
		apis = append(apis, version.APIGLES2)
	}
	return apis
}

// contextAttribs builds the zero terminated wglCreateContextAttribsARB list.
func contextAttribs(req device.ContextRequest) ([]int32, error) {
	var attribs []int32

	major, minor := 0, 0
	if req.Version != nil {
		major, minor = req.Version.Major, req.Version.Minor
	}

	var profile int32
	switch req.API {
	case version.APIGL:
		switch req.Profile {
		case version.ProfileCore:
			profile = contextCoreProfileBit
		case version.ProfileCompatibility:
			profile = contextCompatProfileBit
		}
	case version.APIGLES1, version.APIGLES2:
		profile = contextES2ProfileBit
		if major == 0 {
			major = 1
			if req.API == version.APIGLES2 {
				major = 2
			}
		}
	default:
		return nil, fmt.Errorf("%w: %q on wgl", device.ErrAPIUnsupported, req.API)
	}

	if major > 0 {
		attribs = append(attribs, contextMajorVersion, int32(major), contextMinorVersion, int32(minor))
	}
	if profile != 0 {
		attribs = append(attribs, contextProfileMask, profile)
	}
	if req.Debug {
		attribs = append(attribs, contextFlags, contextDebugBit)
	}
	return append(attribs, 0), nil
}

// needsAttribs reports whether req goes beyond what wglCreateContext offers.
func needsAttribs(req device.ContextRequest) bool {
	return req.API != version.APIGL || req.Version != nil || req.Profile != "" || req.Debug
}
