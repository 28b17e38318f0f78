// Package registry tracks which physical resource address (serial device
// node, instrument socket, GPIB adapter) is currently held by a live handle.
//
// Lab scripts get restarted mid-session all the time, and a stale handle on
// a serial port blocks the next open. The registry enforces the rule "at
// most one live handle per address" inside the process: acquiring an
// address that is already held closes the prior handle before the new one
// is opened.
package registry

import (
	"errors"
	"fmt"
	"io"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/scottschoenjr/hardware/logger"
)

// OpenFunc opens the underlying resource and returns its handle.
type OpenFunc func() (io.Closer, error)

// Registry maps resource addresses to their single live handle.
// All methods are safe for concurrent use.
type Registry struct {
	handles *xsync.MapOf[string, io.Closer]
	logger  logger.Logger
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		handles: xsync.NewMapOf[string, io.Closer](),
		logger:  logger.GetLogger(),
	}
}

// Acquire opens the resource at addr via open and records the handle.
//
// If addr is already held, the prior handle is closed first; its close
// error is logged, not returned, so a wedged old handle cannot block a
// fresh open. If open fails, no entry remains for addr and the error is
// returned wrapped.
//
// Acquire serializes per address: concurrent acquires of the same addr run
// their open callbacks one at a time.
func (r *Registry) Acquire(addr string, open OpenFunc) (io.Closer, error) {
	if addr == "" {
		return nil, fmt.Errorf("registry: address cannot be empty")
	}
	if open == nil {
		return nil, fmt.Errorf("registry: open function cannot be nil")
	}

	var openErr error
	handle, _ := r.handles.Compute(addr, func(old io.Closer, loaded bool) (io.Closer, bool) {
		if loaded && old != nil {
			if err := old.Close(); err != nil {
				r.logger.Warn("closing prior handle failed", "addr", addr, "error", err)
			} else {
				r.logger.Debug("closed prior handle", "addr", addr)
			}
		}

		h, err := open()
		if err != nil {
			openErr = err
			return nil, true // drop the entry, the address is free again
		}

		return h, false
	})
	if openErr != nil {
		return nil, fmt.Errorf("registry: open %q: %w", addr, openErr)
	}

	return handle, nil
}

// Release closes and forgets the handle held for addr. Releasing an
// address that is not held is a no-op.
func (r *Registry) Release(addr string) error {
	handle, ok := r.handles.LoadAndDelete(addr)
	if !ok || handle == nil {
		return nil
	}

	return handle.Close()
}

// Get returns the live handle for addr, if any.
func (r *Registry) Get(addr string) (io.Closer, bool) {
	return r.handles.Load(addr)
}

// Size returns the number of addresses currently held.
func (r *Registry) Size() int {
	return r.handles.Size()
}

// CloseAll releases every held address, joining any close errors.
// Intended for program shutdown.
func (r *Registry) CloseAll() error {
	var errs []error
	r.handles.Range(func(addr string, _ io.Closer) bool {
		if err := r.Release(addr); err != nil {
			errs = append(errs, fmt.Errorf("registry: close %q: %w", addr, err))
		}
		return true
	})

	return errors.Join(errs...)
}
