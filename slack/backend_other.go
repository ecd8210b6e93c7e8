//go:build !linux

package slack

import "github.com/slackvfs/svfs/vfserrors"

// RawDeviceBackend is unavailable on this platform; construct one only to
// observe ErrUnsupported from every method, matching the platform backend
// contract's "fall back to append" guidance.
type RawDeviceBackend struct{}

// NewRawDeviceBackend returns a backend whose every method fails with
// vfserrors.ErrUnsupported on this platform.
func NewRawDeviceBackend(devicePath string) *RawDeviceBackend {
	return &RawDeviceBackend{}
}

func (b *RawDeviceBackend) Region(hostPath string, blockSize uint64) (Region, error) {
	return Region{}, vfserrors.ErrUnsupported
}

func (b *RawDeviceBackend) Read(region Region, offset uint64, length int) ([]byte, error) {
	return nil, vfserrors.ErrUnsupported
}

func (b *RawDeviceBackend) Write(region Region, offset uint64, data []byte) error {
	return vfserrors.ErrUnsupported
}

func (b *RawDeviceBackend) Wipe(region Region) error {
	return vfserrors.ErrUnsupported
}
