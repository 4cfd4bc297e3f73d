// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command glinfo creates a device context on the best available backend
// and prints what it found as JSON.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"runtime"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/glctx/device"
	_ "github.com/devblok/glctx/device/egl"
	_ "github.com/devblok/glctx/device/glx"
	_ "github.com/devblok/glctx/device/sdl"
	_ "github.com/devblok/glctx/device/wgl"
	"github.com/devblok/glctx/version"
)

var (
	backend   = flag.String("backend", "", "force a backend: wgl, glx, egl or sdl")
	egl       = flag.Bool("egl", false, "require the EGL backend")
	api       = flag.String("api", "", "API of created contexts")
	glVersion = flag.String("version", "", "context version, e.g. 3.3")
	profile   = flag.String("profile", "", "context profile: core or compatibility")
	envFile   = flag.String("env", "", "load environment from this file")
	choose    = flag.String("choose", "color=24,depth=24,stencil=8,db", "pixel format request")
	create    = flag.Bool("create", false, "create a context and make it current once")
	verbose   = flag.Bool("v", false, "debug logging")
)

func init() {
	runtime.LockOSThread()
}

type report struct {
	Backend      string                `json:"backend"`
	PlatformAPIs []string              `json:"platformApis"`
	Surface      device.SurfaceKind    `json:"surface"`
	APIs         []string              `json:"apis"`
	DefaultAPI   string                `json:"defaultApi"`
	PixelFormats []*device.PixelFormat `json:"pixelFormats"`
	Chosen       *device.PixelFormat   `json:"chosen,omitempty"`
	Diagnostic   string                `json:"diagnostic,omitempty"`
	Context      string                `json:"context,omitempty"`
}

func main() {
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatalf("Failed to load %s: %s", *envFile, err)
		}
	}

	cfg, err := device.ConfigFromEnv()
	if err != nil {
		log.Fatal(err)
	}
	cfg.Logger = log.StandardLogger()
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *egl {
		cfg.RequireEGL = true
	}
	if *api != "" {
		if err := cfg.SetDefaultAPI(*api); err != nil {
			log.Fatal(err)
		}
	}

	request, err := parseRequest(*choose)
	if err != nil {
		log.Fatalf("Bad -choose: %s", err)
	}

	dc, err := device.Create(cfg)
	if err != nil {
		log.Fatal(err)
	}

	out := report{
		Backend:      dc.Backend().Name(),
		PlatformAPIs: dc.Backend().APIs(),
		Surface:      dc.Surface().Kind(),
		APIs:         dc.AvailableAPIs(),
		DefaultAPI:   dc.DefaultAPI(),
		PixelFormats: dc.PixelFormats().Formats(),
	}

	if !dc.IsPixelFormatSet() {
		err := dc.ChoosePixelFormat(request)
		var chooseErr *device.ChooseError
		switch {
		case errors.As(err, &chooseErr):
			out.Diagnostic = chooseErr.Reason
		case err != nil:
			out.Diagnostic = err.Error()
		}
	}
	out.Chosen = dc.PixelFormat()

	if *create && dc.IsPixelFormatSet() {
		out.Context = tryContext(dc)
	}

	if err := dc.Dispose(); err != nil {
		log.WithError(err).Warn("Device context released with errors")
	}

	bytes, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		panic(err)
	}
	fmt.Printf("%s\n", bytes)
}

// tryContext creates a context of the default API, makes it current once
// and deletes it. It returns "ok" or the failure.
func tryContext(dc *device.DeviceContext) string {
	attribs := device.ContextAttributes{
		Profile: *profile,
	}
	if *glVersion != "" {
		v, err := version.ParseAPI(*glVersion, dc.DefaultAPI())
		if err != nil {
			return err.Error()
		}
		attribs.Version = &v
	}

	ctx, err := dc.CreateContextAttrib(device.NullHandle, attribs)
	if err != nil {
		return err.Error()
	}
	defer func() {
		if err := dc.DeleteContext(ctx); err != nil {
			log.WithError(err).Warn("Failed to delete context")
		}
	}()

	if err := dc.MakeCurrent(ctx); err != nil {
		return err.Error()
	}
	if err := dc.MakeCurrent(device.NullHandle); err != nil {
		return err.Error()
	}
	return "ok"
}
