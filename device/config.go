// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gobuffalo/envy"
	"github.com/sirupsen/logrus"

	"github.com/devblok/glctx/version"
)

// Environment variables read by ConfigFromEnv. envy also loads them from
// a .env file in the working directory.
const (
	EnvBackend       = "GLCTX_BACKEND"
	EnvRequireEGL    = "GLCTX_EGL"
	EnvDefaultAPI    = "GLCTX_API"
	EnvOffscreenSize = "GLCTX_OFFSCREEN_SIZE"
)

// Config defines how device contexts are created
type Config struct {
	// Backend forces a registered backend by name. Empty selects
	// the best available one.
	Backend string

	// RequireEGL restricts selection to the EGL backend.
	RequireEGL bool

	// DefaultAPI is the API of contexts created by CreateContext.
	DefaultAPI string

	// OffscreenFormat is requested when Create makes a P-Buffer.
	OffscreenFormat *PixelFormat

	// OffscreenWidth and OffscreenHeight size the P-Buffer made by Create.
	OffscreenWidth  int
	OffscreenHeight int

	// Logger receives lifecycle logs; nil uses the logrus standard logger.
	Logger logrus.FieldLogger
}

// DefaultOffscreenFormat is the P-Buffer format used when Config leaves it unset.
func DefaultOffscreenFormat() *PixelFormat {
	pf := NewPixelFormat(24)
	pf.RenderWindow = false
	pf.RenderPBuffer = true
	return pf
}

// DefaultConfig returns a configuration creating "gl" contexts on the best
// available backend.
func DefaultConfig() Config {
	return Config{
		DefaultAPI:      version.APIGL,
		OffscreenFormat: DefaultOffscreenFormat(),
		OffscreenWidth:  1,
		OffscreenHeight: 1,
	}
}

// ConfigFromEnv starts from DefaultConfig and applies GLCTX_* variables.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	cfg.Backend = envy.Get(EnvBackend, "")

	if v := envy.Get(EnvRequireEGL, ""); v != "" {
		required, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, &InvalidOperationError{Op: EnvRequireEGL, Value: v, Reason: "not a boolean"}
		}
		cfg.RequireEGL = required
	}

	if err := cfg.SetDefaultAPI(envy.Get(EnvDefaultAPI, version.APIGL)); err != nil {
		return cfg, err
	}

	if v := envy.Get(EnvOffscreenSize, ""); v != "" {
		var w, h int
		if _, err := fmt.Sscanf(strings.ToLower(v), "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
			return cfg, &InvalidOperationError{Op: EnvOffscreenSize, Value: v, Reason: "expected <width>x<height>"}
		}
		cfg.OffscreenWidth, cfg.OffscreenHeight = w, h
	}
	return cfg, nil
}

// SetDefaultAPI validates api and makes it the API of new contexts.
func (c *Config) SetDefaultAPI(api string) error {
	if err := validateAPI(api); err != nil {
		return err
	}
	c.DefaultAPI = api
	return nil
}

func validateAPI(api string) error {
	if !version.IsContextAPI(api) {
		return &InvalidOperationError{
			Op:     "SetDefaultAPI",
			Value:  api,
			Reason: "not one of " + strings.Join(version.ContextAPIs(), ", "),
		}
	}
	return nil
}

// forcedBackend returns the backend selection is restricted to, empty when
// any available backend will do. RequireEGL conflicts with any other name.
func (c *Config) forcedBackend() (string, error) {
	if !c.RequireEGL {
		return c.Backend, nil
	}
	if c.Backend != "" && c.Backend != BackendEGL {
		return "", &InvalidOperationError{
			Op:     EnvRequireEGL,
			Value:  c.Backend,
			Reason: "EGL is required but another backend is forced",
		}
	}
	return BackendEGL, nil
}

// Validate checks the configuration and fills zero values with defaults.
func (c *Config) Validate() error {
	if c.DefaultAPI == "" {
		c.DefaultAPI = version.APIGL
	}
	if err := c.SetDefaultAPI(c.DefaultAPI); err != nil {
		return err
	}
	if _, err := c.forcedBackend(); err != nil {
		return err
	}
	if c.OffscreenFormat == nil {
		c.OffscreenFormat = DefaultOffscreenFormat()
	}
	if c.OffscreenWidth == 0 && c.OffscreenHeight == 0 {
		c.OffscreenWidth, c.OffscreenHeight = 1, 1
	}
	if c.OffscreenWidth <= 0 || c.OffscreenHeight <= 0 {
		return fmt.Errorf("%w: offscreen size %dx%d", ErrArgumentOutOfRange, c.OffscreenWidth, c.OffscreenHeight)
	}
	return nil
}

// Log returns the configured logger, or the logrus standard logger.
func (c *Config) Log() logrus.FieldLogger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}
