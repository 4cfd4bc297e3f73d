// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package egl

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	syscall "golang.org/x/sys/windows"
)

type (
	_EGLint           int32
	_EGLDisplay       uintptr
	_EGLConfig        uintptr
	_EGLContext       uintptr
	_EGLSurface       uintptr
	NativeDisplayType uintptr
)

var (
	nilEGLDisplay       _EGLDisplay
	nilEGLSurface       _EGLSurface
	nilEGLContext       _EGLContext
	EGL_DEFAULT_DISPLAY NativeDisplayType
)

var (
	libEGL                   = syscall.NewLazyDLL("libEGL.dll")
	_eglBindAPI              = libEGL.NewProc("eglBindAPI")
	_eglCreateContext        = libEGL.NewProc("eglCreateContext")
	_eglCreatePbufferSurface = libEGL.NewProc("eglCreatePbufferSurface")
	_eglDestroyContext       = libEGL.NewProc("eglDestroyContext")
	_eglDestroySurface       = libEGL.NewProc("eglDestroySurface")
	_eglGetConfigAttrib      = libEGL.NewProc("eglGetConfigAttrib")
	_eglGetConfigs           = libEGL.NewProc("eglGetConfigs")
	_eglGetDisplay           = libEGL.NewProc("eglGetDisplay")
	_eglGetError             = libEGL.NewProc("eglGetError")
	_eglInitialize           = libEGL.NewProc("eglInitialize")
	_eglMakeCurrent          = libEGL.NewProc("eglMakeCurrent")
	_eglQueryString          = libEGL.NewProc("eglQueryString")
	_eglReleaseThread        = libEGL.NewProc("eglReleaseThread")
	_eglTerminate            = libEGL.NewProc("eglTerminate")
)

var (
	loadOnce sync.Once
	loadErr  error
)

func loadEGL() error {
	loadOnce.Do(func() {
		if err := libEGL.Load(); err != nil {
			loadErr = fmt.Errorf("egl: failed to load libEGL.dll: %v", err)
		}
	})
	return loadErr
}

func eglGetDisplay(disp NativeDisplayType) _EGLDisplay {
	d, _, _ := _eglGetDisplay.Call(uintptr(disp))
	return _EGLDisplay(d)
}

func eglInitialize(disp _EGLDisplay) (_EGLint, _EGLint, bool) {
	var maj, min _EGLint
	r, _, _ := _eglInitialize.Call(uintptr(disp), uintptr(unsafe.Pointer(&maj)), uintptr(unsafe.Pointer(&min)))
	return maj, min, r != 0
}

func eglTerminate(disp _EGLDisplay) bool {
	r, _, _ := _eglTerminate.Call(uintptr(disp))
	return r != 0
}

func eglReleaseThread() bool {
	r, _, _ := _eglReleaseThread.Call()
	return r != 0
}

func eglQueryString(disp _EGLDisplay, name _EGLint) string {
	r, _, _ := _eglQueryString.Call(uintptr(disp), uintptr(name))
	return syscall.BytePtrToString((*byte)(unsafe.Pointer(r)))
}

func eglGetError() _EGLint {
	e, _, _ := _eglGetError.Call()
	return _EGLint(e)
}

func eglGetConfigs(disp _EGLDisplay) ([]_EGLConfig, bool) {
	var n _EGLint
	r, _, _ := _eglGetConfigs.Call(uintptr(disp), 0, 0, uintptr(unsafe.Pointer(&n)))
	if r == 0 {
		return nil, false
	}
	if n == 0 {
		return nil, true
	}
	configs := make([]_EGLConfig, n)
	r, _, _ = _eglGetConfigs.Call(uintptr(disp), uintptr(unsafe.Pointer(&configs[0])), uintptr(n), uintptr(unsafe.Pointer(&n)))
	runtime.KeepAlive(configs)
	if r == 0 {
		return nil, false
	}
	return configs[:n], true
}

func eglGetConfigAttrib(disp _EGLDisplay, cfg _EGLConfig, attr _EGLint) (_EGLint, bool) {
	var val _EGLint
	r, _, _ := _eglGetConfigAttrib.Call(uintptr(disp), uintptr(cfg), uintptr(attr), uintptr(unsafe.Pointer(&val)))
	return val, r != 0
}

func eglBindAPI(api int) bool {
	r, _, _ := _eglBindAPI.Call(uintptr(api))
	return r != 0
}

func eglCreatePbufferSurface(disp _EGLDisplay, cfg _EGLConfig, attribs []_EGLint) _EGLSurface {
	a := &attribs[0]
	s, _, _ := _eglCreatePbufferSurface.Call(uintptr(disp), uintptr(cfg), uintptr(unsafe.Pointer(a)))
	runtime.KeepAlive(a)
	return _EGLSurface(s)
}

func eglCreateContext(disp _EGLDisplay, cfg _EGLConfig, shareCtx _EGLContext, attribs []_EGLint) _EGLContext {
	a := &attribs[0]
	c, _, _ := _eglCreateContext.Call(uintptr(disp), uintptr(cfg), uintptr(shareCtx), uintptr(unsafe.Pointer(a)))
	runtime.KeepAlive(a)
	return _EGLContext(c)
}

func eglDestroyContext(disp _EGLDisplay, ctx _EGLContext) bool {
	r, _, _ := _eglDestroyContext.Call(uintptr(disp), uintptr(ctx))
	return r != 0
}

func eglDestroySurface(disp _EGLDisplay, surf _EGLSurface) bool {
	r, _, _ := _eglDestroySurface.Call(uintptr(disp), uintptr(surf))
	return r != 0
}

func eglMakeCurrent(disp _EGLDisplay, draw, read _EGLSurface, ctx _EGLContext) bool {
	r, _, _ := _eglMakeCurrent.Call(uintptr(disp), uintptr(draw), uintptr(read), uintptr(ctx))
	return r != 0
}
