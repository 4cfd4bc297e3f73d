// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package version

import "golang.org/x/exp/slices"

// Khronos API identifiers used by Version and by context creation.
const (
	APIGL    = "gl"
	APIGLES1 = "gles1"
	APIGLES2 = "gles2"
	APIGLSC2 = "glsc2"
	APIVG    = "vg"
	APIEGL   = "egl"
	APIWGL   = "wgl"
	APIGLX   = "glx"
	APIGLSL  = "glsl"
	APIESSL  = "essl"
)

var knownAPIs = []string{
	APIGL, APIGLES1, APIGLES2, APIGLSC2, APIVG,
	APIEGL, APIWGL, APIGLX, APIGLSL, APIESSL,
}

// contextAPIs are the APIs a rendering context can be created for.
var contextAPIs = []string{APIGL, APIGLES1, APIGLES2, APIGLSC2, APIVG}

// KnownAPIs returns every API string Parse accepts.
func KnownAPIs() []string {
	return slices.Clone(knownAPIs)
}

// ContextAPIs returns the API strings a rendering context can be created for.
func ContextAPIs() []string {
	return slices.Clone(contextAPIs)
}

// IsKnownAPI reports whether api is a recognized API string.
func IsKnownAPI(api string) bool {
	return slices.Contains(knownAPIs, api)
}

// IsContextAPI reports whether a rendering context can be created for api.
func IsContextAPI(api string) bool {
	return slices.Contains(contextAPIs, api)
}

// esSibling maps an API to the one selected by an "ES" suffix in a version string.
func esSibling(api string, major int) string {
	switch api {
	case APIGL, APIGLES1, APIGLES2:
		if major == 1 {
			return APIGLES1
		}
		return APIGLES2
	case APIGLSL, APIGLSC2, APIESSL:
		return APIESSL
	default:
		return api
	}
}

// isES reports whether api is an embedded-systems API whose version strings
// carry the "ES" suffix.
func isES(api string) bool {
	return api == APIGLES1 || api == APIGLES2 || api == APIESSL
}
