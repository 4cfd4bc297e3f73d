// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package version

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	directivePrefix = "#version"
	esslPrefix      = "OpenGL ES GLSL ES "
)

// ParseGLSL reads a shading language version. Both the driver string
// ("4.50 NVIDIA", "OpenGL ES GLSL ES 3.20") and the source directive
// ("#version 330 core", "#version 300 es") are understood.
func ParseGLSL(text string) (Version, error) {
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, directivePrefix) {
		return parseDirective(text, strings.Fields(strings.TrimPrefix(trimmed, directivePrefix)))
	}
	if strings.HasPrefix(trimmed, esslPrefix) {
		return ParseAPI(strings.TrimPrefix(trimmed, esslPrefix), APIESSL)
	}
	return ParseAPI(trimmed, APIGLSL)
}

func parseDirective(text string, fields []string) (Version, error) {
	if len(fields) == 0 || len(fields) > 2 {
		return Version{}, &FormatError{Text: text, Reason: "expected #version <number> [profile]"}
	}
	number, err := strconv.Atoi(fields[0])
	if err != nil || number < 100 {
		return Version{}, &FormatError{Text: text, Reason: "bad version number"}
	}

	api, profile := APIGLSL, ""
	if len(fields) == 2 {
		switch strings.ToLower(fields[1]) {
		case "es":
			api = APIESSL
		case ProfileCore:
			profile = ProfileCore
		case ProfileCompatibility:
			profile = ProfileCompatibility
		default:
			return Version{}, &FormatError{Text: text, Reason: "unknown profile " + fields[1]}
		}
	}
	// "#version 100" is the ES 1.00 shading language.
	if number == 100 {
		api = APIESSL
	}
	return NewWithProfile(number/100, (number/10)%10, 0, api, profile), nil
}

// Directive renders a shading language version as a source directive.
func (v Version) Directive() string {
	d := fmt.Sprintf("%s %d", directivePrefix, v.VersionID())
	switch {
	case v.API == APIESSL && v.VersionID() != 100:
		d += " es"
	case v.Profile != "":
		d += " " + v.Profile
	}
	return d
}
