//go:build !darwin

package cgdisplay

// Open fails off macOS.
func Open() (System, error) {
	return nil, ErrUnsupported
}
