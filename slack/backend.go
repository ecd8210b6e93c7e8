package slack

import (
	"fmt"
	"os"

	"github.com/slackvfs/svfs/config"
)

// Region identifies a host's slack-writable window, wherever the active
// Backend chooses to place it: past the host's visible end-of-file, or
// past its logical size inside the underlying block device.
type Region struct {
	HostPath    string
	DevicePath  string
	AbsOffset   uint64
	Available   uint64
	LogicalSize uint64
	BlockSize   uint64
}

// Backend is the capability the engine consumes to read, write, and wipe
// a host's slack region without caring whether the bytes land past the
// file's own EOF or past its logical size on the raw block device.
type Backend interface {
	// Region computes the Region for hostPath under the given block size.
	Region(hostPath string, blockSize uint64) (Region, error)
	// Read reads up to length bytes starting at offset within the region.
	Read(region Region, offset uint64, length int) ([]byte, error)
	// Write writes data at offset within the region.
	Write(region Region, offset uint64, data []byte) error
	// Wipe securely erases the entire region and restores the host to its
	// logical size.
	Wipe(region Region) error
}

// AppendBackend is the default, portable Backend: it treats the bytes
// past a host's logical end-of-file as the slack region, growing the
// file's on-disk size. It works on every filesystem but does not keep
// the host byte-identical to an observer who checks file size.
type AppendBackend struct{}

// NewAppendBackend constructs the default slack backend.
func NewAppendBackend() *AppendBackend {
	return &AppendBackend{}
}

func (b *AppendBackend) Region(hostPath string, blockSize uint64) (Region, error) {
	cap, err := Capacity(hostPath, blockSize)
	if err != nil {
		return Region{}, err
	}
	info, err := os.Stat(hostPath)
	if err != nil {
		return Region{}, fmt.Errorf("stat %s: %w", hostPath, err)
	}
	size := uint64(info.Size())
	return Region{
		HostPath:    hostPath,
		DevicePath:  hostPath,
		AbsOffset:   size,
		Available:   cap,
		LogicalSize: size,
		BlockSize:   blockSize,
	}, nil
}

func (b *AppendBackend) Read(region Region, offset uint64, length int) ([]byte, error) {
	return Read(region.HostPath, region.LogicalSize+offset, length)
}

func (b *AppendBackend) Write(region Region, offset uint64, data []byte) error {
	return Write(region.HostPath, data, region.LogicalSize+offset)
}

func (b *AppendBackend) Wipe(region Region) error {
	return Wipe(region.HostPath, region.LogicalSize, config.WipeParams.RandomPasses)
}
