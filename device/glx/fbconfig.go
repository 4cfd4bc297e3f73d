// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package glx

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"golang.org/x/exp/slices"

	"github.com/devblok/glctx/device"
	"github.com/devblok/glctx/version"
)

// GLX attribute names reported in GetFBConfigs property lists.
const (
	attribBufferSize   = 2
	attribDoubleBuffer = 5
	attribRedSize      = 8
	attribGreenSize    = 9
	attribBlueSize     = 10
	attribAlphaSize    = 11
	attribDepthSize    = 12
	attribStencilSize  = 13
	attribVisualID     = 0x800B
	attribDrawableType = 0x8010
	attribRenderType   = 0x8011
	attribFBConfigID   = 0x8013
	attribSRGBCapable  = 0x20B2
	attribSamples      = 100001

	renderRGBABit      = 0x1
	renderRGBAFloatBit = 0x4

	drawableWindowBit  = 0x1
	drawablePixmapBit  = 0x2
	drawablePBufferBit = 0x4
)

// fbConfig is a decoded GLX framebuffer configuration.
type fbConfig struct {
	format *device.PixelFormat
	visual xproto.Visualid
}

// decodeFBConfigs splits a GetFBConfigs property list into configurations.
// The list holds numConfigs runs of numProps (attribute, value) pairs.
func decodeFBConfigs(numConfigs, numProps uint32, list []uint32) ([]fbConfig, error) {
	stride := int(numProps) * 2
	if want := int(numConfigs) * stride; len(list) < want {
		return nil, fmt.Errorf("glx.GetFBConfigs(): property list holds %d values, want %d", len(list), want)
	}

	configs := make([]fbConfig, 0, numConfigs)
	for i := 0; i < int(numConfigs); i++ {
		props := make(map[uint32]uint32, numProps)
		run := list[i*stride : (i+1)*stride]
		for j := 0; j+1 < len(run); j += 2 {
			props[run[j]] = run[j+1]
		}
		configs = append(configs, fbConfig{
			format: formatOf(props),
			visual: xproto.Visualid(props[attribVisualID]),
		})
	}
	return configs, nil
}

func formatOf(props map[uint32]uint32) *device.PixelFormat {
	renderType := props[attribRenderType]
	drawableType := props[attribDrawableType]
	return &device.PixelFormat{
		Index:           int(props[attribFBConfigID]),
		ColorBits:       int(props[attribBufferSize]),
		RedBits:         int(props[attribRedSize]),
		GreenBits:       int(props[attribGreenSize]),
		BlueBits:        int(props[attribBlueSize]),
		AlphaBits:       int(props[attribAlphaSize]),
		DepthBits:       int(props[attribDepthSize]),
		StencilBits:     int(props[attribStencilSize]),
		MultisampleBits: int(props[attribSamples]),
		RGBAUnsigned:    renderType&renderRGBABit != 0,
		RGBAFloat:       renderType&renderRGBAFloatBit != 0,
		SRGBCapable:     props[attribSRGBCapable] != 0,
		DoubleBuffer:    props[attribDoubleBuffer] != 0,
		RenderWindow:    drawableType&drawableWindowBit != 0,
		RenderBuffer:    drawableType&drawablePixmapBit != 0,
		RenderPBuffer:   drawableType&drawablePBufferBit != 0,
	}
}

func formatsOf(configs []fbConfig) []*device.PixelFormat {
	formats := make([]*device.PixelFormat, len(configs))
	for i, cfg := range configs {
		formats[i] = cfg.format
	}
	return formats
}

// apisOf derives the context APIs from the server GLX_EXTENSIONS string.
func apisOf(extensions string) []string {
	exts := strings.Fields(extensions)
	apis := []string{version.APIGL}
	if !slices.Contains(exts, extCreateContext) {
		return apis
	}
	switch {
	case slices.Contains(exts, "GLX_EXT_create_context_es_profile"):
		apis = append(apis, version.APIGLES1, version.APIGLES2)
	case slices.Contains(exts, "GLX_EXT_create_context_es2_profile"):
		apis = append(apis, version.APIGLES2)
	}
	return apis
}
