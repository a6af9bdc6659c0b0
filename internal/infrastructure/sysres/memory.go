// Package sysres probes host resources before expensive local work.
package sysres

import "errors"

// ErrUnsupported means the platform cannot report available memory.
var ErrUnsupported = errors.New("memory probe unsupported on this platform")

// MemoryProbe reports bytes of memory available to new allocations.
type MemoryProbe func() (uint64, error)

// AvailableMemory is the probe for the current platform.
func AvailableMemory() (uint64, error) {
	return availableMemory()
}
