// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package egl implements the EGL device backend on the default display.
// EGL has no hidden windows: device contexts are backed by P-Buffers.
//
// On unix the package links libEGL through cgo, on Windows it loads
// libEGL.dll (ANGLE) at runtime. Importing the package registers the
// backend as "egl".
package egl
