// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package version

import (
	"regexp"
	"strconv"
	"strings"
)

// The minor component keeps only its first digit: drivers report "4.50".
var versionPattern = regexp.MustCompile(`^(\d+)\.(\d)\d*(?:\.(\d+))?(\s.*)?$`)

var esTokenPattern = regexp.MustCompile(`^ES\d?$`)

// Parse reads an OpenGL version string as returned by the driver,
// e.g. "4.50 NVIDIA 390.77" or "2.0.17 ES".
func Parse(text string) (Version, error) {
	return ParseAPI(text, APIGL)
}

// ParseAPI reads a version string of api. An "ES" token moves the result to the
// embedded-systems sibling of api.
func ParseAPI(text, api string) (Version, error) {
	if !IsKnownAPI(api) {
		return Version{}, &UnsupportedAPIError{API: api}
	}

	m := versionPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Version{}, &FormatError{Text: text, Reason: "expected <major>.<minor>"}
	}

	major, err := strconv.Atoi(m[1])
	if err != nil {
		return Version{}, &FormatError{Text: text, Reason: err.Error()}
	}
	minor, _ := strconv.Atoi(m[2])
	var revision int
	if m[3] != "" {
		if revision, err = strconv.Atoi(m[3]); err != nil {
			return Version{}, &FormatError{Text: text, Reason: err.Error()}
		}
	}

	var profile string
	for _, token := range strings.Fields(m[4]) {
		switch {
		case esTokenPattern.MatchString(token):
			api = esSibling(api, major)
		case strings.EqualFold(token, ProfileCore):
			profile = ProfileCore
		case strings.EqualFold(token, ProfileCompatibility):
			profile = ProfileCompatibility
		}
	}

	return NewWithProfile(major, minor, revision, api, profile), nil
}

// featurePrefixes is ordered so that longer prefixes win over GL_VERSION_.
var featurePrefixes = []struct {
	prefix string
	api    string
}{
	{"GL_VERSION_ES_CM_", APIGLES1},
	{"GL_ES_VERSION_", APIGLES2},
	{"GL_SC_VERSION_", APIGLSC2},
	{"GL_VERSION_", APIGL},
	{"EGL_VERSION_", APIEGL},
	{"WGL_VERSION_", APIWGL},
	{"GLX_VERSION_", APIGLX},
	{"VG_VERSION_", APIVG},
}

// ParseFeature reads a feature token as found in the registry,
// e.g. "GL_VERSION_4_3" or "GL_ES_VERSION_3_2".
func ParseFeature(token string) (Version, error) {
	for _, fp := range featurePrefixes {
		if !strings.HasPrefix(token, fp.prefix) {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(token, fp.prefix), "_")
		if len(parts) != 2 {
			return Version{}, &FormatError{Text: token, Reason: "expected <major>_<minor> suffix"}
		}
		major, err := strconv.Atoi(parts[0])
		if err != nil || major < 0 {
			return Version{}, &FormatError{Text: token, Reason: "bad major number"}
		}
		minor, err := strconv.Atoi(parts[1])
		if err != nil || minor < 0 || minor > 9 {
			return Version{}, &FormatError{Text: token, Reason: "bad minor number"}
		}
		return New(major, minor, 0, fp.api), nil
	}
	return Version{}, &FormatError{Text: token, Reason: "unknown feature prefix"}
}
