// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// NoChooseError is what GuessChooseError returns when every constraint of
// the request is met by some format, only never by the same one.
const NoChooseError = "no error"

// PixelFormatCollection is the ordered list of pixel formats a native surface
// reports. Duplicates are kept. A collection is never modified after creation
// so it may be queried from multiple goroutines.
type PixelFormatCollection struct {
	formats []*PixelFormat
}

// NewPixelFormatCollection creates a collection holding copies of formats.
func NewPixelFormatCollection(formats ...*PixelFormat) *PixelFormatCollection {
	c := &PixelFormatCollection{formats: make([]*PixelFormat, 0, len(formats))}
	for _, pf := range formats {
		if pf != nil {
			c.formats = append(c.formats, pf.Copy())
		}
	}
	return c
}

// Len returns the number of formats in the collection.
func (c *PixelFormatCollection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.formats)
}

// At returns a copy of the format at index i.
func (c *PixelFormatCollection) At(i int) *PixelFormat {
	return c.formats[i].Copy()
}

// Formats returns copies of all formats in insertion order.
func (c *PixelFormatCollection) Formats() []*PixelFormat {
	if c == nil {
		return nil
	}
	out := make([]*PixelFormat, len(c.formats))
	for i, pf := range c.formats {
		out[i] = pf.Copy()
	}
	return out
}

// chooseConstraint is one category of request fields. A candidate
// matches a request when it satisfies every constraint.
type chooseConstraint struct {
	name      string
	satisfies func(request, candidate *PixelFormat) bool
	describe  func(request *PixelFormat) string
}

func flagMet(requested, available bool) bool {
	return !requested || available
}

// chooseConstraints is ordered by diagnostic priority: GuessChooseError
// reports the first category no format in the collection can satisfy.
var chooseConstraints = []chooseConstraint{
	{
		name: "rgba",
		satisfies: func(r, c *PixelFormat) bool {
			return flagMet(r.RGBAUnsigned, c.RGBAUnsigned) && flagMet(r.RGBAFloat, c.RGBAFloat)
		},
		describe: func(r *PixelFormat) string {
			return fmt.Sprintf("rgba type (unsigned:%t float:%t)", r.RGBAUnsigned, r.RGBAFloat)
		},
	},
	{
		name: "render-target",
		satisfies: func(r, c *PixelFormat) bool {
			return flagMet(r.RenderWindow, c.RenderWindow) &&
				flagMet(r.RenderPBuffer, c.RenderPBuffer) &&
				flagMet(r.RenderBuffer, c.RenderBuffer)
		},
		describe: func(r *PixelFormat) string {
			return fmt.Sprintf("render target (window:%t pbuffer:%t buffer:%t)", r.RenderWindow, r.RenderPBuffer, r.RenderBuffer)
		},
	},
	{
		name:      "colorBits",
		satisfies: func(r, c *PixelFormat) bool { return c.ColorBits >= r.ColorBits },
		describe:  func(r *PixelFormat) string { return fmt.Sprintf("%d color bits", r.ColorBits) },
	},
	{
		name: "channelBits",
		satisfies: func(r, c *PixelFormat) bool {
			return c.RedBits >= r.RedBits && c.GreenBits >= r.GreenBits &&
				c.BlueBits >= r.BlueBits && c.AlphaBits >= r.AlphaBits
		},
		describe: func(r *PixelFormat) string {
			return fmt.Sprintf("channel bits %d/%d/%d/%d", r.RedBits, r.GreenBits, r.BlueBits, r.AlphaBits)
		},
	},
	{
		name:      "depthBits",
		satisfies: func(r, c *PixelFormat) bool { return c.DepthBits >= r.DepthBits },
		describe:  func(r *PixelFormat) string { return fmt.Sprintf("%d depth bits", r.DepthBits) },
	},
	{
		name:      "stencilBits",
		satisfies: func(r, c *PixelFormat) bool { return c.StencilBits >= r.StencilBits },
		describe:  func(r *PixelFormat) string { return fmt.Sprintf("%d stencil bits", r.StencilBits) },
	},
	{
		name:      "multisampleBits",
		satisfies: func(r, c *PixelFormat) bool { return c.MultisampleBits >= r.MultisampleBits },
		describe:  func(r *PixelFormat) string { return fmt.Sprintf("%d samples", r.MultisampleBits) },
	},
	{
		name:      "doubleBuffer",
		satisfies: func(r, c *PixelFormat) bool { return flagMet(r.DoubleBuffer, c.DoubleBuffer) },
		describe:  func(*PixelFormat) string { return "double buffering" },
	},
	{
		name:      "srgb",
		satisfies: func(r, c *PixelFormat) bool { return flagMet(r.SRGBCapable, c.SRGBCapable) },
		describe:  func(*PixelFormat) string { return "sRGB capable framebuffer" },
	},
}

// ChooseConstraints returns the constraint categories in the order
// GuessChooseError checks them.
func ChooseConstraints() []string {
	names := make([]string, len(chooseConstraints))
	for i, cc := range chooseConstraints {
		names[i] = cc.name
	}
	return names
}

func matches(request, candidate *PixelFormat) bool {
	for _, cc := range chooseConstraints {
		if !cc.satisfies(request, candidate) {
			return false
		}
	}
	return true
}

func distance(requested, available int) int {
	if d := available - requested; d > 0 {
		return d
	}
	return requested - available
}

// Choose returns the formats meeting every constraint of request, best first.
// Formats closer to the requested color, depth, stencil and multisample bits
// come first; ties keep collection order. An empty result is not an error,
// GuessChooseError explains it.
func (c *PixelFormatCollection) Choose(request *PixelFormat) ([]*PixelFormat, error) {
	if request == nil {
		return nil, ErrArgumentNil
	}

	var chosen []*PixelFormat
	for _, pf := range c.formatsOrNil() {
		if matches(request, pf) {
			chosen = append(chosen, pf.Copy())
		}
	}

	slices.SortStableFunc(chosen, func(a, b *PixelFormat) int {
		keys := [][2]int{
			{distance(request.ColorBits, a.ColorBits), distance(request.ColorBits, b.ColorBits)},
			{distance(request.DepthBits, a.DepthBits), distance(request.DepthBits, b.DepthBits)},
			{distance(request.StencilBits, a.StencilBits), distance(request.StencilBits, b.StencilBits)},
			{distance(request.MultisampleBits, a.MultisampleBits), distance(request.MultisampleBits, b.MultisampleBits)},
		}
		for _, k := range keys {
			if k[0] != k[1] {
				return k[0] - k[1]
			}
		}
		return 0
	})
	return chosen, nil
}

// GuessChooseError names the constraint most likely responsible for Choose
// returning nothing: the first category, in ChooseConstraints order, that no
// format of the collection satisfies on its own. When each category is met by
// some format it returns NoChooseError.
func (c *PixelFormatCollection) GuessChooseError(request *PixelFormat) (string, error) {
	if request == nil {
		return "", ErrArgumentNil
	}

	formats := c.formatsOrNil()
	for _, cc := range chooseConstraints {
		satisfiable := false
		for _, pf := range formats {
			if cc.satisfies(request, pf) {
				satisfiable = true
				break
			}
		}
		if !satisfiable {
			return fmt.Sprintf("%s: no pixel format has %s", cc.name, cc.describe(request)), nil
		}
	}
	return NoChooseError, nil
}

func (c *PixelFormatCollection) formatsOrNil() []*PixelFormat {
	if c == nil {
		return nil
	}
	return c.formats
}
