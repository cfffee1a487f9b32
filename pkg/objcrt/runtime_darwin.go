//go:build darwin

package objcrt

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/ebitengine/purego/objc"
	"github.com/sirupsen/logrus"
)

const foundationPath = "/System/Library/Frameworks/Foundation.framework/Foundation"

var (
	frameworksMu sync.Mutex
	frameworks   = map[string]uintptr{}

	foundationOnce sync.Once

	selAlloc              = objc.RegisterName("alloc")
	selInit               = objc.RegisterName("init")
	selDrain              = objc.RegisterName("drain")
	selCount              = objc.RegisterName("count")
	selObjectAtIndex      = objc.RegisterName("objectAtIndex:")
	selUTF8String         = objc.RegisterName("UTF8String")
	selRespondsToSelector = objc.RegisterName("respondsToSelector:")
)

// LoadFramework dlopens a framework binary so its classes register with the
// runtime. Loading the same path twice is a no-op.
func LoadFramework(path string) error {
	frameworksMu.Lock()
	defer frameworksMu.Unlock()

	if _, ok := frameworks[path]; ok {
		return nil
	}
	handle, err := purego.Dlopen(path, purego.RTLD_LAZY|purego.RTLD_GLOBAL)
	if err != nil {
		return fmt.Errorf("dlopen %s: %w", path, err)
	}
	frameworks[path] = handle
	logrus.WithField("path", path).Debugln("objcrt: framework loaded")
	return nil
}

func ensureFoundation() {
	foundationOnce.Do(func() {
		if err := LoadFramework(foundationPath); err != nil {
			logrus.WithError(err).Warnln("objcrt: Foundation unavailable")
		}
	})
}

// GetClass looks up a runtime class by name.
func GetClass(name string) (Object, bool) {
	ensureFoundation()
	cls := objc.GetClass(name)
	if cls == 0 {
		return Nil, false
	}
	return Object(cls), true
}

// NewInstance allocates and initializes a fresh instance of cls.
func NewInstance(cls Object) (Object, bool) {
	if cls.IsNil() {
		return Nil, false
	}
	obj := objc.ID(cls).Send(selAlloc)
	if obj == 0 {
		return Nil, false
	}
	obj = obj.Send(selInit)
	if obj == 0 {
		return Nil, false
	}
	return Object(obj), true
}

// SharedInstance calls a class-level accessor such as sharedMgr.
func SharedInstance(cls Object, selector string) (Object, bool) {
	obj := cls.Send(selector)
	return obj, !obj.IsNil()
}

// RespondsTo reports whether the receiver implements selector.
func (o Object) RespondsTo(selector string) bool {
	if o.IsNil() {
		return false
	}
	return objc.Send[bool](objc.ID(o), selRespondsToSelector, objc.RegisterName(selector))
}

// Send invokes selector and returns the resulting object handle.
func (o Object) Send(selector string, args ...any) Object {
	v, _ := send[objc.ID](o, selector, args...)
	return Object(v)
}

func (o Object) Int32(selector string, args ...any) (int32, bool) {
	return send[int32](o, selector, args...)
}

func (o Object) Float32(selector string, args ...any) (float32, bool) {
	return send[float32](o, selector, args...)
}

func (o Object) Float64(selector string, args ...any) (float64, bool) {
	return send[float64](o, selector, args...)
}

// Bool returns false both for a NO result and for a missing selector.
func (o Object) Bool(selector string, args ...any) bool {
	v, _ := send[bool](o, selector, args...)
	return v
}

// StringValue sends selector and converts the returned NSString to UTF-8.
func (o Object) StringValue(selector string, args ...any) (string, bool) {
	s := o.Send(selector, args...)
	if s.IsNil() {
		return "", false
	}
	p := objc.Send[*byte](objc.ID(s), selUTF8String)
	if p == nil {
		return "", false
	}
	return goString(p), true
}

// Array sends selector and unpacks the returned NSArray. Nil elements are
// skipped.
func (o Object) Array(selector string) ([]Object, bool) {
	arr := o.Send(selector)
	if arr.IsNil() {
		return nil, false
	}
	n := objc.Send[uint](objc.ID(arr), selCount)
	items := make([]Object, 0, n)
	for i := uint(0); i < n; i++ {
		item := objc.Send[objc.ID](objc.ID(arr), selObjectAtIndex, i)
		if item != 0 {
			items = append(items, Object(item))
		}
	}
	return items, true
}

// WithAutoreleasePool runs fn on a pinned OS thread inside an
// NSAutoreleasePool, so autoreleased results are freed when fn returns.
func WithAutoreleasePool(fn func()) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	cls, ok := GetClass("NSAutoreleasePool")
	if !ok {
		fn()
		return
	}
	if pool, ok := NewInstance(cls); ok {
		defer objc.ID(pool).Send(selDrain)
	}
	fn()
}

func send[T any](o Object, selector string, args ...any) (T, bool) {
	var zero T
	if !o.RespondsTo(selector) {
		logrus.WithField("selector", selector).Debugln("objcrt: selector not implemented")
		return zero, false
	}
	return objc.Send[T](objc.ID(o), objc.RegisterName(selector), args...), true
}

func goString(p *byte) string {
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}
