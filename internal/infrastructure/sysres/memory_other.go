//go:build !linux

package sysres

func availableMemory() (uint64, error) {
	return 0, ErrUnsupported
}
