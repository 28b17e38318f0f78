package registry

import "io"

// The transports register their handles with a shared process-wide registry
// so that re-running a control script reclaims ports cleanly.
var defRegistry = New()

// Default returns the process-wide registry.
func Default() *Registry {
	return defRegistry
}

// Acquire acquires addr in the process-wide registry.
func Acquire(addr string, open OpenFunc) (io.Closer, error) {
	return defRegistry.Acquire(addr, open)
}

// Release releases addr in the process-wide registry.
func Release(addr string) error {
	return defRegistry.Release(addr)
}

// Get returns the live handle for addr in the process-wide registry.
func Get(addr string) (io.Closer, bool) {
	return defRegistry.Get(addr)
}

// CloseAll releases every address in the process-wide registry.
func CloseAll() error {
	return defRegistry.CloseAll()
}
