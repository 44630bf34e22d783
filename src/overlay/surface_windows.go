//go:build windows

package overlay

import (
	"fmt"
	"image"
	"log"
	"os"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"screen-fixed-crop/src/screenshot"
)

var (
	user32DLL                    = windows.NewLazySystemDLL("user32.dll")
	procAllowSetForegroundWindow = user32DLL.NewProc("AllowSetForegroundWindow")
)

// The window procedure is a process-wide callback, so the overlay it serves
// is kept here. Only one native overlay is open at a time.
var (
	nativeMu       sync.Mutex
	nativeActive   *Overlay
	nativeProc     uintptr
	nativeProcOnce sync.Once
)

// NativeSurface shows an overlay in a topmost Win32 popup covering the
// primary display. Each Open runs its own message loop on a locked OS thread.
type NativeSurface struct{}

// NewNativeSurface returns the Win32 surface.
func NewNativeSurface() *NativeSurface { return &NativeSurface{} }

// Open creates the window and returns once it is visible. Input is handled on
// the surface's own thread until the overlay finishes.
func (s *NativeSurface) Open(o *Overlay) error {
	nativeProcOnce.Do(func() {
		nativeProc = windows.NewCallback(nativeWndProc)
	})

	ready := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		runNative(o, ready)
	}()
	return <-ready
}

func runNative(o *Overlay, ready chan<- error) {
	bounds, err := screenshot.GetDisplayBounds()
	if err != nil {
		ready <- err
		return
	}
	size := o.Bounds().Size()

	className, err := windows.UTF16PtrFromString(fmt.Sprintf("FixedCropOverlay_%d", time.Now().UnixNano()))
	if err != nil {
		ready <- err
		return
	}
	title, _ := windows.UTF16PtrFromString("Select Screenshot Area - click or Enter captures, ESC cancels")

	wndClass := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		Style:         win.CS_HREDRAW | win.CS_VREDRAW,
		LpfnWndProc:   nativeProc,
		HInstance:     win.GetModuleHandle(nil),
		HbrBackground: 0,
		LpszClassName: className,
	}
	if atom := win.RegisterClassEx(&wndClass); atom == 0 {
		ready <- fmt.Errorf("failed to register overlay window class")
		return
	}
	defer win.UnregisterClass(className)

	nativeMu.Lock()
	nativeActive = o
	nativeMu.Unlock()
	defer func() {
		nativeMu.Lock()
		nativeActive = nil
		nativeMu.Unlock()
	}()

	hwnd := win.CreateWindowEx(
		win.WS_EX_TOPMOST|win.WS_EX_TOOLWINDOW,
		className,
		title,
		win.WS_POPUP|win.WS_VISIBLE,
		int32(bounds.Min.X), int32(bounds.Min.Y), int32(size.X), int32(size.Y),
		0, 0, win.GetModuleHandle(nil), nil,
	)
	if hwnd == 0 {
		ready <- fmt.Errorf("failed to create overlay window")
		return
	}
	log.Printf("OVERLAY: native window created, hwnd: %v, position: %v size: %v", hwnd, bounds.Min, size)

	o.OnClose(func() {
		win.PostMessage(hwnd, win.WM_CLOSE, 0, 0)
	})

	win.ShowWindow(hwnd, win.SW_SHOW)
	procAllowSetForegroundWindow.Call(uintptr(os.Getpid()))
	win.SetForegroundWindow(hwnd)
	win.BringWindowToTop(hwnd)
	win.SetFocus(hwnd)

	var pt win.POINT
	if win.GetCursorPos(&pt) && win.ScreenToClient(hwnd, &pt) {
		o.Move(image.Pt(int(pt.X), int(pt.Y)))
	}
	win.InvalidateRect(hwnd, nil, false)
	win.UpdateWindow(hwnd)
	ready <- nil

	var msg win.MSG
	for {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 || ret == -1 {
			break
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
	// The loop only ends through WM_DESTROY; make sure the session never hangs.
	o.Cancel()
	log.Printf("OVERLAY: native message loop finished")
}

// screenCursor returns the pointer position relative to the primary
// display's top-left corner.
func screenCursor() (image.Point, bool) {
	var pt win.POINT
	if !win.GetCursorPos(&pt) {
		return image.Point{}, false
	}
	bounds, err := screenshot.GetDisplayBounds()
	if err != nil {
		return image.Point{}, false
	}
	return image.Pt(int(pt.X), int(pt.Y)).Sub(bounds.Min), true
}

func activeOverlay() *Overlay {
	nativeMu.Lock()
	defer nativeMu.Unlock()
	return nativeActive
}

func pointFromLParam(lParam uintptr) image.Point {
	x := int16(win.LOWORD(uint32(lParam)))
	y := int16(win.HIWORD(uint32(lParam)))
	return image.Pt(int(x), int(y))
}

func nativeWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	o := activeOverlay()
	if o == nil {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}

	switch msg {
	case win.WM_MOUSEMOVE:
		if o.Move(pointFromLParam(lParam)) {
			win.InvalidateRect(hwnd, nil, false)
		}
		return 0

	case win.WM_LBUTTONDOWN:
		o.Move(pointFromLParam(lParam))
		o.Commit()
		return 0

	case win.WM_KEYDOWN:
		switch wParam {
		case win.VK_RETURN:
			o.Commit()
		case win.VK_ESCAPE:
			o.Cancel()
		}
		return 0

	case win.WM_PAINT:
		var ps win.PAINTSTRUCT
		hdc := win.BeginPaint(hwnd, &ps)
		if frame := o.Frame(); frame != nil {
			blitFrame(hdc, frame)
		}
		win.EndPaint(hwnd, &ps)
		return 0

	case win.WM_ERASEBKGND:
		return 1

	case win.WM_SETCURSOR:
		win.SetCursor(0)
		return 1

	case win.WM_NCHITTEST:
		return uintptr(win.HTCLIENT)

	case win.WM_CLOSE:
		win.DestroyWindow(hwnd)
		return 0

	case win.WM_DESTROY:
		win.PostQuitMessage(0)
		return 0
	}

	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

// blitFrame copies an RGBA frame into a top-down 32bpp DIB and BitBlts it.
func blitFrame(hdc win.HDC, frame *image.RGBA) {
	memDC := win.CreateCompatibleDC(hdc)
	defer win.DeleteDC(memDC)

	width := frame.Bounds().Dx()
	height := frame.Bounds().Dy()
	header := win.BITMAPINFOHEADER{
		BiSize:        uint32(unsafe.Sizeof(win.BITMAPINFOHEADER{})),
		BiWidth:       int32(width),
		BiHeight:      -int32(height),
		BiPlanes:      1,
		BiBitCount:    32,
		BiCompression: win.BI_RGB,
	}

	var bits unsafe.Pointer
	hBitmap := win.CreateDIBSection(memDC, &header, win.DIB_RGB_COLORS, &bits, 0, 0)
	if hBitmap == 0 || bits == nil {
		log.Printf("OVERLAY: CreateDIBSection failed")
		return
	}
	defer win.DeleteObject(win.HGDIOBJ(hBitmap))

	oldBitmap := win.SelectObject(memDC, win.HGDIOBJ(hBitmap))
	defer win.SelectObject(memDC, oldBitmap)

	// 32bpp rows are always DWORD aligned, so the DIB stride is width*4.
	dst := unsafe.Slice((*byte)(bits), width*height*4)
	rowBytes := width * 4
	for y := 0; y < height; y++ {
		src := frame.Pix[y*frame.Stride : y*frame.Stride+rowBytes]
		row := dst[y*rowBytes : (y+1)*rowBytes]
		for i := 0; i < rowBytes; i += 4 {
			row[i] = src[i+2]
			row[i+1] = src[i+1]
			row[i+2] = src[i]
			row[i+3] = src[i+3]
		}
	}

	win.BitBlt(hdc, 0, 0, int32(width), int32(height), memDC, 0, 0, win.SRCCOPY)
}
