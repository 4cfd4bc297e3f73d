// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package wgl

import (
	"testing"
	"unsafe"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/glctx/device"
	"github.com/devblok/glctx/version"
)

func TestDescriptorLayout(t *testing.T) {
	// sizeof(PIXELFORMATDESCRIPTOR)
	qt.Assert(t, unsafe.Sizeof(pixelFormatDescriptor{}), qt.Equals, uintptr(40))
}

func TestFormatOf(t *testing.T) {
	c := qt.New(t)

	pfd := &pixelFormatDescriptor{
		Flags:       pfdSupportOpenGL | pfdDrawToWindow | pfdDoubleBuffer,
		PixelType:   pfdTypeRGBA,
		ColorBits:   32,
		RedBits:     8,
		GreenBits:   8,
		BlueBits:    8,
		AlphaBits:   8,
		DepthBits:   24,
		StencilBits: 8,
	}
	c.Assert(formatOf(3, pfd), qt.DeepEquals, &device.PixelFormat{
		Index:        3,
		ColorBits:    32,
		RedBits:      8,
		GreenBits:    8,
		BlueBits:     8,
		AlphaBits:    8,
		DepthBits:    24,
		StencilBits:  8,
		RGBAUnsigned: true,
		DoubleBuffer: true,
		RenderWindow: true,
	})

	pfd.Flags = pfdDrawToBitmap
	c.Assert(formatOf(4, pfd), qt.IsNil)
}

func TestAPIsOf(t *testing.T) {
	c := qt.New(t)

	c.Assert(apisOf("WGL_ARB_extensions_string"), qt.DeepEquals, []string{version.APIGL})
	c.Assert(apisOf("WGL_ARB_create_context WGL_EXT_create_context_es2_profile"),
		qt.DeepEquals, []string{version.APIGL, version.APIGLES2})
	c.Assert(apisOf("WGL_ARB_create_context WGL_EXT_create_context_es_profile"),
		qt.DeepEquals, []string{version.APIGL, version.APIGLES1, version.APIGLES2})
}

func TestContextAttribs(t *testing.T) {
	c := qt.New(t)

	c.Assert(needsAttribs(device.ContextRequest{API: version.APIGL}), qt.IsFalse)
	c.Assert(needsAttribs(device.ContextRequest{API: version.APIGLES2}), qt.IsTrue)

	v := version.New(3, 2, 0, version.APIGL)
	attribs, err := contextAttribs(device.ContextRequest{
		API:               version.APIGL,
		ContextAttributes: device.ContextAttributes{Version: &v, Profile: version.ProfileCompatibility},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(attribs, qt.DeepEquals, []int32{
		contextMajorVersion, 3, contextMinorVersion, 2,
		contextProfileMask, contextCompatProfileBit,
		0,
	})

	attribs, err = contextAttribs(device.ContextRequest{API: version.APIGLES1})
	c.Assert(err, qt.IsNil)
	c.Assert(attribs, qt.DeepEquals, []int32{
		contextMajorVersion, 1, contextMinorVersion, 0,
		contextProfileMask, contextES2ProfileBit,
		0,
	})

	_, err = contextAttribs(device.ContextRequest{API: version.APIVG})
	c.Assert(err, qt.ErrorIs, device.ErrAPIUnsupported)
}
