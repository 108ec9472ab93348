package spatial

var platformFactory func() Displays

// RegisterPlatform installs the display enumerator factory. Platform
// bridge packages call this from init.
func RegisterPlatform(fn func() Displays) {
	platformFactory = fn
}

// NewPlatform returns the registered display enumerator, or nil when
// no bridge is compiled in.
func NewPlatform() Displays {
	if platformFactory == nil {
		return nil
	}
	return platformFactory()
}
