// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/gobuffalo/envy"

	"github.com/devblok/glctx/device"
	"github.com/devblok/glctx/version"
)

func TestConfigFromEnv(t *testing.T) {
	c := qt.New(t)

	envy.Temp(func() {
		envy.Set(device.EnvBackend, device.BackendEGL)
		envy.Set(device.EnvRequireEGL, "true")
		envy.Set(device.EnvDefaultAPI, version.APIGLES2)
		envy.Set(device.EnvOffscreenSize, "640x480")

		cfg, err := device.ConfigFromEnv()
		c.Assert(err, qt.IsNil)
		c.Assert(cfg.Backend, qt.Equals, device.BackendEGL)
		c.Assert(cfg.RequireEGL, qt.IsTrue)
		c.Assert(cfg.DefaultAPI, qt.Equals, version.APIGLES2)
		c.Assert([]int{cfg.OffscreenWidth, cfg.OffscreenHeight}, qt.DeepEquals, []int{640, 480})
	})
}

func TestConfigFromEnvRejectsBadValues(t *testing.T) {
	c := qt.New(t)

	tests := []struct {
		key, value string
	}{
		{device.EnvRequireEGL, "maybe"},
		{device.EnvDefaultAPI, "glide"},
		{device.EnvOffscreenSize, "wide"},
		{device.EnvOffscreenSize, "0x10"},
	}
	for _, test := range tests {
		envy.Temp(func() {
			envy.Set(test.key, test.value)
			_, err := device.ConfigFromEnv()
			c.Check(err, qt.ErrorIs, device.ErrInvalidOperation, qt.Commentf("%s=%s", test.key, test.value))
		})
	}
}

func TestConfigValidate(t *testing.T) {
	c := qt.New(t)

	var cfg device.Config
	c.Assert(cfg.Validate(), qt.IsNil)
	c.Assert(cfg.DefaultAPI, qt.Equals, version.APIGL)
	c.Assert(cfg.OffscreenFormat.RenderPBuffer, qt.IsTrue)
	c.Assert([]int{cfg.OffscreenWidth, cfg.OffscreenHeight}, qt.DeepEquals, []int{1, 1})

	cfg.OffscreenWidth = -2
	c.Assert(cfg.Validate(), qt.ErrorIs, device.ErrArgumentOutOfRange)

	cfg = device.Config{DefaultAPI: "d3d"}
	c.Assert(cfg.Validate(), qt.ErrorIs, device.ErrInvalidOperation)

	cfg = device.Config{Backend: device.BackendGLX, RequireEGL: true}
	c.Assert(cfg.Validate(), qt.ErrorIs, device.ErrInvalidOperation)

	cfg = device.Config{Backend: device.BackendEGL, RequireEGL: true}
	c.Assert(cfg.Validate(), qt.IsNil)
}
