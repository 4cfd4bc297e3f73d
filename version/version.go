// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package version describes Khronos API versions: the (major, minor, revision)
// triple a driver reports for OpenGL, OpenGL ES, EGL, WGL, GLX, OpenVG and the
// shading languages, together with the API it belongs to and an optional profile.
//
// Versions of different APIs are not ordered. Compare returns an
// *IncompatibleAPIError when asked to do so, while Equal and IsCompatible
// simply report false.
package version

import (
	"fmt"
	"strings"

	"github.com/blang/semver/v4"
)

// Well known profiles.
const (
	ProfileCore          = "core"
	ProfileCompatibility = "compatibility"
)

// Version is an immutable Khronos API version.
type Version struct {
	Major    int
	Minor    int
	Revision int

	// API is one of the API identifiers, e.g. APIGL.
	API string

	// Profile narrows the version; empty matches any profile.
	Profile string
}

// New creates a version of api without a profile.
// Negative components and a minor above 9 are a programming error and
// panic, Khronos minors are a single digit.
func New(major, minor, revision int, api string) Version {
	return NewWithProfile(major, minor, revision, api, "")
}

// NewWithProfile creates a version of api bound to profile.
func NewWithProfile(major, minor, revision int, api, profile string) Version {
	if major < 0 || minor < 0 || revision < 0 {
		panic(fmt.Sprintf("version: negative component in %d.%d.%d", major, minor, revision))
	}
	if minor > 9 {
		panic(fmt.Sprintf("version: minor %d has more than one digit", minor))
	}
	if api == "" {
		panic("version: empty api")
	}
	return Version{
		Major:    major,
		Minor:    minor,
		Revision: revision,
		API:      api,
		Profile:  profile,
	}
}

// VersionID returns the compact numeric form, e.g. 450 for 4.5.
func (v Version) VersionID() int {
	return v.Major*100 + v.Minor*10
}

// WithProfile returns a copy of v bound to profile.
func (v Version) WithProfile(profile string) Version {
	v.Profile = profile
	return v
}

// String renders v so that ParseAPI can read it back. Only the core and
// compatibility profiles survive the round trip, ParseAPI drops others.
func (v Version) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d.%d", v.Major, v.Minor)
	if v.Revision != 0 {
		fmt.Fprintf(&sb, ".%d", v.Revision)
	}
	if v.Profile != "" {
		sb.WriteString(" ")
		sb.WriteString(v.Profile)
	}
	if isES(v.API) {
		sb.WriteString(" ES")
	}
	return sb.String()
}

// Equal reports whether v and other are the same version of the same API.
// An empty profile on either side matches any profile.
func (v Version) Equal(other Version) bool {
	if !v.IsCompatible(other) {
		return false
	}
	return v.Profile == "" || other.Profile == "" || v.Profile == other.Profile
}

// IsCompatible reports whether v and other share API and version triple,
// regardless of profile.
func (v Version) IsCompatible(other Version) bool {
	return v.API == other.API &&
		v.Major == other.Major &&
		v.Minor == other.Minor &&
		v.Revision == other.Revision
}

func (v Version) semver() semver.Version {
	return semver.Version{
		Major: uint64(v.Major),
		Minor: uint64(v.Minor),
		Patch: uint64(v.Revision),
	}
}

// Compare orders a and b by (major, minor, revision). A nil version is lower
// than any other; two nil versions are equal. Versions of different APIs
// cannot be ordered.
func Compare(a, b *Version) (int, error) {
	switch {
	case a == nil && b == nil:
		return 0, nil
	case a == nil:
		return -1, nil
	case b == nil:
		return 1, nil
	}
	if a.API != b.API {
		return 0, &IncompatibleAPIError{Left: a.API, Right: b.API}
	}
	return a.semver().Compare(b.semver()), nil
}

// Less reports whether a < b.
func Less(a, b *Version) (bool, error) {
	c, err := Compare(a, b)
	return c < 0, err
}

// Greater reports whether a > b.
func Greater(a, b *Version) (bool, error) {
	c, err := Compare(a, b)
	return c > 0, err
}

// LessOrEqual reports whether a <= b.
func LessOrEqual(a, b *Version) (bool, error) {
	c, err := Compare(a, b)
	if err != nil {
		return false, err
	}
	return c <= 0, nil
}

// GreaterOrEqual reports whether a >= b.
func GreaterOrEqual(a, b *Version) (bool, error) {
	c, err := Compare(a, b)
	if err != nil {
		return false, err
	}
	return c >= 0, nil
}
