//go:build !darwin

package monitorpanel

// Open always reports the manager as unavailable off darwin.
func Open() Provider {
	return Unavailable{}
}
