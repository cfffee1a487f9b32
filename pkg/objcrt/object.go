// Package objcrt is a thin typed layer over the Objective-C runtime.
//
// Every call crosses an untyped boundary: nothing verifies at compile time
// that a selector exists or that its argument and return types match. The
// accessors here check respondsToSelector: first and report a zero handle
// or a false ok value instead of raising, so callers can treat anything
// missing as "unavailable".
package objcrt

import "errors"

// Object is an opaque handle to an Objective-C object or class.
type Object uintptr

// Nil is the zero handle.
const Nil Object = 0

// ErrUnsupported is returned on platforms without an Objective-C runtime.
var ErrUnsupported = errors.New("objective-c runtime is only available on darwin")

func (o Object) IsNil() bool {
	return o == Nil
}
