// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/devblok/glctx/device"
)

// parseRequest reads a pixel format request such as
// "color=24,depth=24,stencil=8,ms=4,db,srgb".
func parseRequest(text string) (*device.PixelFormat, error) {
	request := device.NewPixelFormat(24)
	if strings.TrimSpace(text) == "" {
		return request, nil
	}

	for _, field := range strings.Split(text, ",") {
		key, value, hasValue := strings.Cut(strings.TrimSpace(field), "=")
		if !hasValue {
			switch key {
			case "db":
				request.DoubleBuffer = true
			case "srgb":
				request.SRGBCapable = true
			case "float":
				request.RGBAUnsigned = false
				request.RGBAFloat = true
			case "pbuffer":
				request.RenderWindow = false
				request.RenderPBuffer = true
			default:
				return nil, fmt.Errorf("unknown flag %q", key)
			}
			continue
		}

		bits, err := strconv.Atoi(value)
		if err != nil || bits < 0 {
			return nil, fmt.Errorf("%s: bad bit count %q", key, value)
		}
		switch key {
		case "color":
			channels := device.NewPixelFormat(bits)
			request.ColorBits = bits
			request.RedBits, request.GreenBits = channels.RedBits, channels.GreenBits
			request.BlueBits, request.AlphaBits = channels.BlueBits, channels.AlphaBits
		case "depth":
			request.DepthBits = bits
		case "stencil":
			request.StencilBits = bits
		case "ms":
			request.MultisampleBits = bits
		default:
			return nil, fmt.Errorf("unknown field %q", key)
		}
	}
	return request, nil
}
