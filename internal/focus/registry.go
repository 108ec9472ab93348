package focus

var platformFactory func() Provider

// RegisterPlatform installs the platform provider factory. Platform
// bridge packages call this from init; the daemon picks it up at
// startup.
func RegisterPlatform(fn func() Provider) {
	platformFactory = fn
}

// NewPlatform returns the registered platform provider, or nil when no
// bridge is compiled in.
func NewPlatform() Provider {
	if platformFactory == nil {
		return nil
	}
	return platformFactory()
}
