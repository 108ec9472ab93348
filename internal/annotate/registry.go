package annotate

var platformFactory func() Renderer

// RegisterPlatform installs the overlay renderer factory. Platform
// bridge packages call this from init.
func RegisterPlatform(fn func() Renderer) {
	platformFactory = fn
}

// NewPlatform returns the registered overlay renderer, or nil when no
// bridge is compiled in.
func NewPlatform() Renderer {
	if platformFactory == nil {
		return nil
	}
	return platformFactory()
}
