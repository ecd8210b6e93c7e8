//go:build linux

package slack

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// RawDeviceBackend targets the underlying block device directly so that a
// host file's logical size and bytes on inspection never change. It
// requires FIBMAP/FIEMAP-style extent resolution, mirrored here on the
// same ioctl family the teacher's sector-size probing uses.
type RawDeviceBackend struct {
	devicePath string
}

// NewRawDeviceBackend opens devicePath for raw slack access. Callers
// typically resolve devicePath via the filesystem housing hostDir ahead
// of time (e.g. from /proc/mounts), which this package does not do.
func NewRawDeviceBackend(devicePath string) *RawDeviceBackend {
	return &RawDeviceBackend{devicePath: devicePath}
}

func (b *RawDeviceBackend) Region(hostPath string, blockSize uint64) (Region, error) {
	cap, err := Capacity(hostPath, blockSize)
	if err != nil {
		return Region{}, err
	}
	info, err := os.Stat(hostPath)
	if err != nil {
		return Region{}, fmt.Errorf("stat %s: %w", hostPath, err)
	}
	size := uint64(info.Size())

	absOffset, err := b.resolvePhysicalOffset(hostPath, size)
	if err != nil {
		return Region{}, err
	}

	return Region{
		HostPath:    hostPath,
		DevicePath:  b.devicePath,
		AbsOffset:   absOffset,
		Available:   cap,
		LogicalSize: size,
		BlockSize:   blockSize,
	}, nil
}

// resolvePhysicalOffset maps the host file's logical end-of-file to an
// absolute byte offset on the underlying block device via FIBMAP. This
// only works for filesystems that expose contiguous extent mapping for
// a file's last block (ext2/3/4, XFS); callers must fall back to
// AppendBackend otherwise, per the platform backend contract.
func (b *RawDeviceBackend) resolvePhysicalOffset(hostPath string, logicalSize uint64) (uint64, error) {
	f, err := os.Open(hostPath)
	if err != nil {
		return 0, fmt.Errorf("open %s for extent resolution: %w", hostPath, err)
	}
	defer f.Close()

	blockSizeBytes, err := unix.IoctlGetInt(int(f.Fd()), unix.FIGETBSZ)
	if err != nil {
		return 0, fmt.Errorf("FIGETBSZ %s: %w", hostPath, err)
	}
	lastBlock := uint32(logicalSize / uint64(blockSizeBytes))

	physical := lastBlock
	if err := ioctlFibmap(int(f.Fd()), &physical); err != nil {
		return 0, fmt.Errorf("FIBMAP %s: %w", hostPath, err)
	}
	return uint64(physical)*uint64(blockSizeBytes) + (logicalSize % uint64(blockSizeBytes)), nil
}

// ioctlFibmap passes block by pointer; FIBMAP replaces the logical block
// number in place with the physical one.
func ioctlFibmap(fd int, block *uint32) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), unix.FIBMAP, uintptr(unsafe.Pointer(block)))
	if errno != 0 {
		return errno
	}
	return nil
}

func (b *RawDeviceBackend) Read(region Region, offset uint64, length int) ([]byte, error) {
	dev, err := os.Open(region.DevicePath)
	if err != nil {
		return nil, fmt.Errorf("open device %s: %w", region.DevicePath, err)
	}
	defer dev.Close()

	buf := make([]byte, length)
	n, err := dev.ReadAt(buf, int64(region.AbsOffset+offset))
	if err != nil && n == 0 {
		return nil, fmt.Errorf("read device %s at %d: %w", region.DevicePath, region.AbsOffset+offset, err)
	}
	return buf[:n], nil
}

func (b *RawDeviceBackend) Write(region Region, offset uint64, data []byte) error {
	dev, err := os.OpenFile(region.DevicePath, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open device %s: %w", region.DevicePath, err)
	}
	defer dev.Close()

	if _, err := dev.WriteAt(data, int64(region.AbsOffset+offset)); err != nil {
		return fmt.Errorf("write device %s at %d: %w", region.DevicePath, region.AbsOffset+offset, err)
	}
	return dev.Sync()
}

func (b *RawDeviceBackend) Wipe(region Region) error {
	dev, err := os.OpenFile(region.DevicePath, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open device %s: %w", region.DevicePath, err)
	}
	defer dev.Close()

	zero := make([]byte, region.Available)
	if _, err := dev.WriteAt(zero, int64(region.AbsOffset)); err != nil {
		return fmt.Errorf("wipe device %s at %d: %w", region.DevicePath, region.AbsOffset, err)
	}
	return dev.Sync()
}
