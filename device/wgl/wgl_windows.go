// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package wgl

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"unsafe"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
	"golang.org/x/sys/windows"

	"github.com/devblok/glctx/device"
)

var (
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")
	user32   = windows.NewLazySystemDLL("user32.dll")
	gdi32    = windows.NewLazySystemDLL("gdi32.dll")
	opengl32 = windows.NewLazySystemDLL("opengl32.dll")

	procGetModuleHandleW    = kernel32.NewProc("GetModuleHandleW")
	procRegisterClassExW    = user32.NewProc("RegisterClassExW")
	procCreateWindowExW     = user32.NewProc("CreateWindowExW")
	procDestroyWindow       = user32.NewProc("DestroyWindow")
	procDefWindowProcW      = user32.NewProc("DefWindowProcW")
	procGetDC               = user32.NewProc("GetDC")
	procReleaseDC           = user32.NewProc("ReleaseDC")
	procDescribePixelFormat = gdi32.NewProc("DescribePixelFormat")
	procSetPixelFormat      = gdi32.NewProc("SetPixelFormat")
	procwglCreateContext    = opengl32.NewProc("wglCreateContext")
	procwglDeleteContext    = opengl32.NewProc("wglDeleteContext")
	procwglGetProcAddress   = opengl32.NewProc("wglGetProcAddress")
	procwglMakeCurrent      = opengl32.NewProc("wglMakeCurrent")
	procwglShareLists       = opengl32.NewProc("wglShareLists")
)

const (
	csOwnDC         = 0x20
	wsClipSiblings  = 0x04000000
	wsClipChildren  = 0x02000000
	wsOverlappedWin = 0x00CF0000
	cwUseDefault    = 0x80000000
)

const className = "glctx hidden window"

var (
	registerOnce sync.Once
	registerErr  error
)

func init() {
	device.Register(device.BackendWGL, device.PriorityNative, Open, available)
}

func available() bool {
	return opengl32.Load() == nil
}

type wndClassEx struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   windows.Handle
	Icon       windows.Handle
	Cursor     windows.Handle
	Background windows.Handle
	MenuName   *uint16
	ClassName  *uint16
	IconSm     windows.Handle
}

func registerClass() error {
	registerOnce.Do(func() {
		inst, _, _ := procGetModuleHandleW.Call(0)
		name, err := windows.UTF16PtrFromString(className)
		if err != nil {
			registerErr = err
			return
		}
		wc := wndClassEx{
			Style:     csOwnDC,
			WndProc:   procDefWindowProcW.Addr(),
			Instance:  windows.Handle(inst),
			ClassName: name,
		}
		wc.Size = uint32(unsafe.Sizeof(wc))
		if r, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); r == 0 {
			registerErr = device.NewNativeError("RegisterClassExW", "%s", err)
		}
	})
	return registerErr
}

// window is a never shown window and its device context.
type window struct {
	hwnd windows.HWND
	hdc  uintptr
}

func createWindow() (*window, error) {
	if err := registerClass(); err != nil {
		return nil, err
	}
	name, _ := windows.UTF16PtrFromString(className)
	inst, _, _ := procGetModuleHandleW.Call(0)

	// No WS_VISIBLE and never shown.
	hwnd, _, err := procCreateWindowExW.Call(0,
		uintptr(unsafe.Pointer(name)), uintptr(unsafe.Pointer(name)),
		wsOverlappedWin|wsClipSiblings|wsClipChildren,
		cwUseDefault, cwUseDefault, cwUseDefault, cwUseDefault,
		0, 0, inst, 0)
	if hwnd == 0 {
		return nil, device.NewNativeError("CreateWindowExW", "%s", err)
	}
	hdc, _, err := procGetDC.Call(hwnd)
	if hdc == 0 {
		procDestroyWindow.Call(hwnd)
		return nil, device.NewNativeError("GetDC", "%s", err)
	}
	return &window{hwnd: windows.HWND(hwnd), hdc: hdc}, nil
}

func (w *window) destroy() {
	procReleaseDC.Call(uintptr(w.hwnd), w.hdc)
	procDestroyWindow.Call(uintptr(w.hwnd))
}

func describePixelFormat(hdc uintptr, index int) (*pixelFormatDescriptor, int) {
	var pfd pixelFormatDescriptor
	n, _, _ := procDescribePixelFormat.Call(hdc, uintptr(index), unsafe.Sizeof(pfd), uintptr(unsafe.Pointer(&pfd)))
	return &pfd, int(n)
}

func setPixelFormat(hdc uintptr, index int) error {
	pfd, n := describePixelFormat(hdc, index)
	if n == 0 {
		return device.NewNativeError("DescribePixelFormat", "format %d", index)
	}
	if r, _, err := procSetPixelFormat.Call(hdc, uintptr(index), uintptr(unsafe.Pointer(pfd))); r == 0 {
		return device.NewNativeError("SetPixelFormat", "%s", err)
	}
	return nil
}

// Backend is the WGL implementation found in opengl32.dll.
type Backend struct {
	Extensions string

	formats []*device.PixelFormat
	apis    []string

	// wglCreateContextAttribsARB, zero when unavailable.
	createContextAttribs uintptr

	log logrus.FieldLogger
}

// Open enumerates the pixel formats of the display and probes WGL
// extensions through a temporary legacy context.
func Open(cfg device.Config) (device.Backend, error) {
	if err := opengl32.Load(); err != nil {
		return nil, &device.NativeError{Call: "LoadLibrary", Err: err}
	}

	// WGL calls are bound to the thread that owns the window.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	w, err := createWindow()
	if err != nil {
		return nil, err
	}
	defer w.destroy()

	b := &Backend{log: cfg.Log().WithField("backend", device.BackendWGL)}

	_, count := describePixelFormat(w.hdc, 1)
	for i := 1; i <= count; i++ {
		pfd, _ := describePixelFormat(w.hdc, i)
		if pf := formatOf(i, pfd); pf != nil {
			b.formats = append(b.formats, pf)
		}
	}
	if len(b.formats) == 0 {
		return nil, device.NewNativeError("DescribePixelFormat", "no OpenGL pixel formats")
	}

	if err := b.probe(w); err != nil {
		return nil, err
	}
	b.apis = apisOf(b.Extensions)

	b.log.WithField("formats", len(b.formats)).Debug("WGL initialized")
	return b, nil
}

// probe loads the extension string and wglCreateContextAttribsARB.
func (b *Backend) probe(w *window) error {
	candidates := device.NewPixelFormatCollection(b.formats...)
	chosen, _ := candidates.Choose(device.NewPixelFormat(24))
	if len(chosen) == 0 {
		chosen = candidates.Formats()
	}
	if err := setPixelFormat(w.hdc, chosen[0].Index); err != nil {
		return err
	}

	ctx, _, err := procwglCreateContext.Call(w.hdc)
	if ctx == 0 {
		return device.NewNativeError("wglCreateContext", "%s", err)
	}
	defer procwglDeleteContext.Call(ctx)
	if r, _, err := procwglMakeCurrent.Call(w.hdc, ctx); r == 0 {
		return device.NewNativeError("wglMakeCurrent", "%s", err)
	}
	defer procwglMakeCurrent.Call(0, 0)

	if getExtensions := getProcAddress("wglGetExtensionsStringARB"); getExtensions != 0 {
		r, _, _ := syscall.SyscallN(getExtensions, w.hdc)
		b.Extensions = windows.BytePtrToString((*byte)(unsafe.Pointer(r)))
	}
	if slices.Contains(strings.Fields(b.Extensions), extCreateContext) {
		b.createContextAttribs = getProcAddress("wglCreateContextAttribsARB")
	}
	return nil
}

func getProcAddress(name string) uintptr {
	cname, err := windows.BytePtrFromString(name)
	if err != nil {
		return 0
	}
	r, _, _ := procwglGetProcAddress.Call(uintptr(unsafe.Pointer(cname)))
	// Some drivers return small sentinels instead of NULL.
	switch r {
	case 1, 2, 3, ^uintptr(0):
		return 0
	}
	return r
}

// Name implements device.Backend.
func (b *Backend) Name() string { return device.BackendWGL }

// APIs implements device.Backend.
func (b *Backend) APIs() []string { return slices.Clone(b.apis) }

// CreateHiddenWindow implements device.Backend.
func (b *Backend) CreateHiddenWindow() (device.Surface, error) {
	w, err := createWindow()
	if err != nil {
		return nil, err
	}
	return &surface{
		b:        b,
		w:        w,
		contexts: make(map[device.Handle]struct{}),
	}, nil
}

// Close implements device.Backend. Windows are owned by surfaces.
func (b *Backend) Close() error { return nil }

func (b *Backend) String() string {
	return fmt.Sprintf("wgl (%d formats)", len(b.formats))
}
