//go:build darwin

package cgdisplay

import (
	"fmt"
	"sync"
	"time"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/hoppxi/displayconfig/pkg/objcrt"
	"github.com/sirupsen/logrus"
)

const (
	coreGraphicsPath   = "/System/Library/Frameworks/CoreGraphics.framework/CoreGraphics"
	coreFoundationPath = "/System/Library/Frameworks/CoreFoundation.framework/CoreFoundation"
	coreDisplayPath    = "/System/Library/Frameworks/CoreDisplay.framework/CoreDisplay"
	appKitPath         = "/System/Library/Frameworks/AppKit.framework/AppKit"

	kCGErrorSuccess       = 0
	kCFRunLoopRunFinished = 1
)

var (
	cgGetActiveDisplayList func(maxDisplays uint32, displays *uint32, count *uint32) int32
	cgDisplayIsBuiltin     func(display uint32) int32
	cgDisplayIsMain        func(display uint32) int32
	cgDisplayModelNumber   func(display uint32) uint32
	cgDisplayVendorNumber  func(display uint32) uint32
	cgDisplayPixelsWide    func(display uint32) uintptr
	cgDisplayPixelsHigh    func(display uint32) uintptr

	cgDisplayCopyDisplayMode    func(display uint32) uintptr
	cgDisplayModeGetWidth       func(mode uintptr) uintptr
	cgDisplayModeGetHeight      func(mode uintptr) uintptr
	cgDisplayModeGetPixelWidth  func(mode uintptr) uintptr
	cgDisplayModeGetPixelHeight func(mode uintptr) uintptr
	cgDisplayModeGetRefreshRate func(mode uintptr) float64
	cgDisplayModeRelease        func(mode uintptr)

	cgDisplayRegisterReconfigurationCallback func(callback uintptr, userInfo uintptr) int32
	cgDisplayRemoveReconfigurationCallback   func(callback uintptr, userInfo uintptr) int32

	cfRunLoopRunInMode    func(mode uintptr, seconds float64, returnAfterSourceHandled uint8) int32
	kCFRunLoopDefaultMode uintptr

	// CoreDisplay is optional; nil when the symbols are missing.
	coreDisplayGetUserBrightness func(display uint32) float64
	coreDisplaySetUserBrightness func(display uint32, brightness float64)

	loadOnce sync.Once
	loadErr  error
)

// Native talks to the frameworks of the running system.
type Native struct{}

var _ System = (*Native)(nil)

// Open loads CoreGraphics, CoreFoundation and (optionally) CoreDisplay.
func Open() (System, error) {
	loadOnce.Do(func() { loadErr = load() })
	if loadErr != nil {
		return nil, loadErr
	}
	return &Native{}, nil
}

func load() error {
	cg, err := purego.Dlopen(coreGraphicsPath, purego.RTLD_LAZY|purego.RTLD_GLOBAL)
	if err != nil {
		return fmt.Errorf("load CoreGraphics: %w", err)
	}
	purego.RegisterLibFunc(&cgGetActiveDisplayList, cg, "CGGetActiveDisplayList")
	purego.RegisterLibFunc(&cgDisplayIsBuiltin, cg, "CGDisplayIsBuiltin")
	purego.RegisterLibFunc(&cgDisplayIsMain, cg, "CGDisplayIsMain")
	purego.RegisterLibFunc(&cgDisplayModelNumber, cg, "CGDisplayModelNumber")
	purego.RegisterLibFunc(&cgDisplayVendorNumber, cg, "CGDisplayVendorNumber")
	purego.RegisterLibFunc(&cgDisplayPixelsWide, cg, "CGDisplayPixelsWide")
	purego.RegisterLibFunc(&cgDisplayPixelsHigh, cg, "CGDisplayPixelsHigh")
	purego.RegisterLibFunc(&cgDisplayCopyDisplayMode, cg, "CGDisplayCopyDisplayMode")
	purego.RegisterLibFunc(&cgDisplayModeGetWidth, cg, "CGDisplayModeGetWidth")
	purego.RegisterLibFunc(&cgDisplayModeGetHeight, cg, "CGDisplayModeGetHeight")
	purego.RegisterLibFunc(&cgDisplayModeGetPixelWidth, cg, "CGDisplayModeGetPixelWidth")
	purego.RegisterLibFunc(&cgDisplayModeGetPixelHeight, cg, "CGDisplayModeGetPixelHeight")
	purego.RegisterLibFunc(&cgDisplayModeGetRefreshRate, cg, "CGDisplayModeGetRefreshRate")
	purego.RegisterLibFunc(&cgDisplayModeRelease, cg, "CGDisplayModeRelease")
	purego.RegisterLibFunc(&cgDisplayRegisterReconfigurationCallback, cg, "CGDisplayRegisterReconfigurationCallback")
	purego.RegisterLibFunc(&cgDisplayRemoveReconfigurationCallback, cg, "CGDisplayRemoveReconfigurationCallback")

	cf, err := purego.Dlopen(coreFoundationPath, purego.RTLD_LAZY|purego.RTLD_GLOBAL)
	if err != nil {
		return fmt.Errorf("load CoreFoundation: %w", err)
	}
	purego.RegisterLibFunc(&cfRunLoopRunInMode, cf, "CFRunLoopRunInMode")
	sym, err := purego.Dlsym(cf, "kCFRunLoopDefaultMode")
	if err != nil {
		return fmt.Errorf("resolve kCFRunLoopDefaultMode: %w", err)
	}
	kCFRunLoopDefaultMode = **(**uintptr)(unsafe.Pointer(&sym))

	loadCoreDisplay()
	return nil
}

func loadCoreDisplay() {
	cd, err := purego.Dlopen(coreDisplayPath, purego.RTLD_LAZY|purego.RTLD_GLOBAL)
	if err != nil {
		logrus.WithError(err).Debugln("cgdisplay: CoreDisplay not loaded, brightness unsupported")
		return
	}
	if sym, err := purego.Dlsym(cd, "CoreDisplay_Display_GetUserBrightness"); err == nil {
		purego.RegisterFunc(&coreDisplayGetUserBrightness, sym)
	} else {
		logrus.WithError(err).Debugln("cgdisplay: brightness read symbol missing")
	}
	if sym, err := purego.Dlsym(cd, "CoreDisplay_Display_SetUserBrightness"); err == nil {
		purego.RegisterFunc(&coreDisplaySetUserBrightness, sym)
	} else {
		logrus.WithError(err).Debugln("cgdisplay: brightness write symbol missing")
	}
}

func (*Native) ActiveDisplays() ([]uint32, error) {
	ids := make([]uint32, maxDisplays)
	var count uint32
	if rc := cgGetActiveDisplayList(maxDisplays, &ids[0], &count); rc != kCGErrorSuccess {
		return nil, fmt.Errorf("CGGetActiveDisplayList failed: CGError %d", rc)
	}
	return ids[:count], nil
}

func (*Native) Describe(id uint32) Info {
	return Info{
		ID:         id,
		Model:      cgDisplayModelNumber(id),
		Vendor:     cgDisplayVendorNumber(id),
		PixelsWide: int(cgDisplayPixelsWide(id)),
		PixelsHigh: int(cgDisplayPixelsHigh(id)),
		IsMain:     cgDisplayIsMain(id) != 0,
		IsBuiltin:  cgDisplayIsBuiltin(id) != 0,
	}
}

func (*Native) CurrentMode(id uint32) (Mode, bool) {
	mode := cgDisplayCopyDisplayMode(id)
	if mode == 0 {
		return Mode{}, false
	}
	defer cgDisplayModeRelease(mode)

	return Mode{
		Width:       int(cgDisplayModeGetWidth(mode)),
		Height:      int(cgDisplayModeGetHeight(mode)),
		PixelWidth:  int(cgDisplayModeGetPixelWidth(mode)),
		PixelHeight: int(cgDisplayModeGetPixelHeight(mode)),
		RefreshRate: cgDisplayModeGetRefreshRate(mode),
	}, true
}

func (*Native) UserBrightness(id uint32) float64 {
	if coreDisplayGetUserBrightness == nil {
		return -1
	}
	return coreDisplayGetUserBrightness(id)
}

func (*Native) SetUserBrightness(id uint32, value float64) error {
	if coreDisplaySetUserBrightness == nil {
		return fmt.Errorf("CoreDisplay brightness control is not available")
	}
	coreDisplaySetUserBrightness(id, value)
	return nil
}

var (
	callbackOnce sync.Once
	callbackPtr  uintptr

	handlersMu  sync.Mutex
	handlers    = map[uintptr]func(id, flags uint32){}
	nextHandler uintptr

	appOnce sync.Once
)

// reconfigured is the single C callback; userInfo selects the Go handler.
func reconfigured(display, flags, userInfo uintptr) {
	handlersMu.Lock()
	fn := handlers[userInfo]
	handlersMu.Unlock()
	if fn != nil {
		fn(uint32(display), uint32(flags))
	}
}

func (*Native) RegisterReconfiguration(fn func(id, flags uint32)) (func(), error) {
	callbackOnce.Do(func() {
		callbackPtr = purego.NewCallback(reconfigured)
	})
	appOnce.Do(attachApplication)

	handlersMu.Lock()
	nextHandler++
	token := nextHandler
	handlers[token] = fn
	handlersMu.Unlock()

	if rc := cgDisplayRegisterReconfigurationCallback(callbackPtr, token); rc != kCGErrorSuccess {
		handlersMu.Lock()
		delete(handlers, token)
		handlersMu.Unlock()
		return nil, fmt.Errorf("CGDisplayRegisterReconfigurationCallback failed: CGError %d", rc)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			cgDisplayRemoveReconfigurationCallback(callbackPtr, token)
			handlersMu.Lock()
			delete(handlers, token)
			handlersMu.Unlock()
		})
	}, nil
}

// attachApplication connects the process to the window server so the main
// run loop receives display notifications.
func attachApplication() {
	if err := objcrt.LoadFramework(appKitPath); err != nil {
		logrus.WithError(err).Debugln("cgdisplay: AppKit not loaded")
		return
	}
	cls, ok := objcrt.GetClass("NSApplication")
	if !ok {
		return
	}
	if _, ok := objcrt.SharedInstance(cls, "sharedApplication"); !ok {
		logrus.Debugln("cgdisplay: NSApplication sharedApplication returned nil")
	}
}

func (*Native) RunLoopOnce(d time.Duration) {
	if cfRunLoopRunInMode(kCFRunLoopDefaultMode, d.Seconds(), 0) == kCFRunLoopRunFinished {
		// no sources attached yet; avoid spinning
		time.Sleep(d)
	}
}
