// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestParseRequest(t *testing.T) {
	c := qt.New(t)

	request, err := parseRequest("color=32,depth=24,stencil=8,ms=4,db,srgb")
	c.Assert(err, qt.IsNil)
	c.Assert(request.ColorBits, qt.Equals, 32)
	c.Assert(request.AlphaBits, qt.Equals, 8)
	c.Assert(request.DepthBits, qt.Equals, 24)
	c.Assert(request.StencilBits, qt.Equals, 8)
	c.Assert(request.MultisampleBits, qt.Equals, 4)
	c.Assert(request.DoubleBuffer, qt.IsTrue)
	c.Assert(request.SRGBCapable, qt.IsTrue)
	c.Assert(request.RGBAUnsigned, qt.IsTrue)
	c.Assert(request.RenderWindow, qt.IsTrue)
}

func TestParseRequestDefaults(t *testing.T) {
	c := qt.New(t)

	request, err := parseRequest("")
	c.Assert(err, qt.IsNil)
	c.Assert(request.ColorBits, qt.Equals, 24)
	c.Assert(request.RedBits, qt.Equals, 8)
	c.Assert(request.DoubleBuffer, qt.IsFalse)

	request, err = parseRequest("float, pbuffer")
	c.Assert(err, qt.IsNil)
	c.Assert(request.RGBAFloat, qt.IsTrue)
	c.Assert(request.RGBAUnsigned, qt.IsFalse)
	c.Assert(request.RenderPBuffer, qt.IsTrue)
	c.Assert(request.RenderWindow, qt.IsFalse)
}

func TestParseRequestErrors(t *testing.T) {
	c := qt.New(t)

	for _, text := range []string{"color=deep", "depth=-1", "accum=8", "triple"} {
		_, err := parseRequest(text)
		c.Check(err, qt.IsNotNil, qt.Commentf("%q", text))
	}
}
