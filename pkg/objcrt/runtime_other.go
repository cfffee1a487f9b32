//go:build !darwin

package objcrt

func LoadFramework(path string) error {
	return ErrUnsupported
}

func GetClass(name string) (Object, bool) {
	return Nil, false
}

func NewInstance(cls Object) (Object, bool) {
	return Nil, false
}

func SharedInstance(cls Object, selector string) (Object, bool) {
	return Nil, false
}

func (o Object) RespondsTo(selector string) bool {
	return false
}

func (o Object) Send(selector string, args ...any) Object {
	return Nil
}

func (o Object) Int32(selector string, args ...any) (int32, bool) {
	return 0, false
}

func (o Object) Float32(selector string, args ...any) (float32, bool) {
	return 0, false
}

func (o Object) Float64(selector string, args ...any) (float64, bool) {
	return 0, false
}

func (o Object) Bool(selector string, args ...any) bool {
	return false
}

func (o Object) StringValue(selector string, args ...any) (string, bool) {
	return "", false
}

func (o Object) Array(selector string) ([]Object, bool) {
	return nil, false
}

func WithAutoreleasePool(fn func()) {
	fn()
}
