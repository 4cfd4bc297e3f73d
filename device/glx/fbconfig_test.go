// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package glx

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	qt "github.com/frankban/quicktest"

	"github.com/devblok/glctx/device"
	"github.com/devblok/glctx/version"
)

func TestDecodeFBConfigs(t *testing.T) {
	c := qt.New(t)

	list := []uint32{
		attribFBConfigID, 0x21,
		attribVisualID, 0x2b,
		attribBufferSize, 32,
		attribRedSize, 8,
		attribGreenSize, 8,
		attribBlueSize, 8,
		attribAlphaSize, 8,
		attribDepthSize, 24,
		attribStencilSize, 8,
		attribDoubleBuffer, 1,
		attribRenderType, renderRGBABit,
		attribDrawableType, drawableWindowBit | drawablePBufferBit,
		attribSamples, 4,
		attribSRGBCapable, 1,

		attribFBConfigID, 0x22,
		attribVisualID, 0,
		attribBufferSize, 64,
		attribRedSize, 16,
		attribGreenSize, 16,
		attribBlueSize, 16,
		attribAlphaSize, 16,
		attribDepthSize, 0,
		attribStencilSize, 0,
		attribDoubleBuffer, 0,
		attribRenderType, renderRGBAFloatBit,
		attribDrawableType, drawablePixmapBit | drawablePBufferBit,
		attribSamples, 0,
		attribSRGBCapable, 0,
	}

	configs, err := decodeFBConfigs(2, 14, list)
	c.Assert(err, qt.IsNil)
	c.Assert(configs, qt.HasLen, 2)

	c.Assert(configs[0].visual, qt.Equals, xproto.Visualid(0x2b))
	c.Assert(configs[0].format, qt.DeepEquals, &device.PixelFormat{
		Index:           0x21,
		ColorBits:       32,
		RedBits:         8,
		GreenBits:       8,
		BlueBits:        8,
		AlphaBits:       8,
		DepthBits:       24,
		StencilBits:     8,
		MultisampleBits: 4,
		RGBAUnsigned:    true,
		SRGBCapable:     true,
		DoubleBuffer:    true,
		RenderWindow:    true,
		RenderPBuffer:   true,
	})

	f := configs[1].format
	c.Assert(f.RGBAFloat, qt.IsTrue)
	c.Assert(f.RGBAUnsigned, qt.IsFalse)
	c.Assert(f.RenderWindow, qt.IsFalse)
	c.Assert(f.RenderBuffer, qt.IsTrue)
	c.Assert(f.ColorBits, qt.Equals, 64)

	// Decoded formats feed the catalog directly.
	catalog := device.NewPixelFormatCollection(formatsOf(configs)...)
	chosen, err := catalog.Choose(device.NewPixelFormat(24))
	c.Assert(err, qt.IsNil)
	c.Assert(chosen, qt.HasLen, 1)
	c.Assert(chosen[0].Index, qt.Equals, 0x21)
}

func TestDecodeFBConfigsShortList(t *testing.T) {
	_, err := decodeFBConfigs(2, 3, make([]uint32, 6))
	qt.Assert(t, err, qt.ErrorMatches, `glx.GetFBConfigs\(\): .*`)
}

func TestAPIsOf(t *testing.T) {
	c := qt.New(t)

	c.Assert(apisOf("GLX_ARB_multisample GLX_EXT_visual_info"), qt.DeepEquals, []string{version.APIGL})
	c.Assert(apisOf("GLX_EXT_create_context_es2_profile"), qt.DeepEquals, []string{version.APIGL})
	c.Assert(apisOf("GLX_ARB_create_context GLX_EXT_create_context_es2_profile"),
		qt.DeepEquals, []string{version.APIGL, version.APIGLES2})
	c.Assert(apisOf("GLX_ARB_create_context GLX_EXT_create_context_es2_profile GLX_EXT_create_context_es_profile"),
		qt.DeepEquals, []string{version.APIGL, version.APIGLES1, version.APIGLES2})
}

func TestContextAttribs(t *testing.T) {
	c := qt.New(t)

	v := version.New(4, 5, 0, version.APIGL)
	attribs, err := contextAttribs(device.ContextRequest{
		API:               version.APIGL,
		ContextAttributes: device.ContextAttributes{Version: &v, Profile: version.ProfileCore, Debug: true},
	}, rgbaType)
	c.Assert(err, qt.IsNil)
	c.Assert(attribs, qt.DeepEquals, []uint32{
		attribRenderType, rgbaType,
		contextMajorVersion, 4, contextMinorVersion, 5,
		contextProfileMask, contextCoreProfileBit,
		contextFlags, contextDebugBit,
	})

	attribs, err = contextAttribs(device.ContextRequest{API: version.APIGLES2}, rgbaType)
	c.Assert(err, qt.IsNil)
	c.Assert(attribs, qt.DeepEquals, []uint32{
		attribRenderType, rgbaType,
		contextMajorVersion, 2, contextMinorVersion, 0,
		contextProfileMask, contextES2ProfileBit,
	})

	_, err = contextAttribs(device.ContextRequest{API: version.APIVG}, rgbaType)
	c.Assert(err, qt.ErrorIs, device.ErrAPIUnsupported)
}
