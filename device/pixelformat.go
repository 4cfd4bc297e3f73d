// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"fmt"
	"strings"
)

// PixelFormat describes the capabilities of a renderable surface.
// The zero value matches nothing a driver reports and is used as the
// starting point of requests.
type PixelFormat struct {
	// Index is the native identifier of the format (WGL format index,
	// GLX FBConfig id, EGL config id). It never takes part in matching.
	Index int `json:"index"`

	ColorBits       int `json:"colorBits"`
	RedBits         int `json:"redBits"`
	GreenBits       int `json:"greenBits"`
	BlueBits        int `json:"blueBits"`
	AlphaBits       int `json:"alphaBits"`
	DepthBits       int `json:"depthBits"`
	StencilBits     int `json:"stencilBits"`
	MultisampleBits int `json:"multisampleBits"`

	RGBAUnsigned  bool `json:"rgbaUnsigned"`
	RGBAFloat     bool `json:"rgbaFloat"`
	SRGBCapable   bool `json:"srgbCapable"`
	DoubleBuffer  bool `json:"doubleBuffer"`
	RenderWindow  bool `json:"renderWindow"`
	RenderBuffer  bool `json:"renderBuffer"`
	RenderPBuffer bool `json:"renderPBuffer"`
}

// channelBits gives red, green, blue and alpha bits for common color depths.
var channelBits = map[int][4]int{
	15: {5, 5, 5, 0},
	16: {5, 6, 5, 0},
	24: {8, 8, 8, 0},
	30: {10, 10, 10, 0},
	32: {8, 8, 8, 8},
	48: {16, 16, 16, 0},
	64: {16, 16, 16, 16},
}

// NewPixelFormat returns an unsigned RGBA window format of colorBits,
// with per channel bits derived from it. Used as a Choose request the
// derived channel bits are constraints too, so formats reporting only a
// total color depth do not match; build the request literally to leave
// them out.
func NewPixelFormat(colorBits int) *PixelFormat {
	pf := &PixelFormat{
		ColorBits:    colorBits,
		RGBAUnsigned: true,
		RenderWindow: true,
	}
	if bits, ok := channelBits[colorBits]; ok {
		pf.RedBits, pf.GreenBits, pf.BlueBits, pf.AlphaBits = bits[0], bits[1], bits[2], bits[3]
	}
	return pf
}

// Copy returns an independent copy of pf.
func (pf *PixelFormat) Copy() *PixelFormat {
	if pf == nil {
		return nil
	}
	cp := *pf
	return &cp
}

func (pf *PixelFormat) String() string {
	if pf == nil {
		return "<nil>"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d color:%d(%d/%d/%d/%d) depth:%d stencil:%d ms:%d",
		pf.Index, pf.ColorBits, pf.RedBits, pf.GreenBits, pf.BlueBits, pf.AlphaBits,
		pf.DepthBits, pf.StencilBits, pf.MultisampleBits)

	flags := []struct {
		set  bool
		name string
	}{
		{pf.RGBAUnsigned, "unorm"},
		{pf.RGBAFloat, "float"},
		{pf.SRGBCapable, "srgb"},
		{pf.DoubleBuffer, "db"},
		{pf.RenderWindow, "window"},
		{pf.RenderBuffer, "buffer"},
		{pf.RenderPBuffer, "pbuffer"},
	}
	for _, f := range flags {
		if f.set {
			sb.WriteString(" ")
			sb.WriteString(f.name)
		}
	}
	return sb.String()
}
