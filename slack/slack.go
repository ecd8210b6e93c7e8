// Package slack implements the lowest layer of the hidden store: computing
// how much slack space a host file has past its logical end-of-file, and
// reading, writing, and securely wiping that region.
//
// Slack space is the unused tail of a host file's last allocated block:
// block_size - (logical_size mod block_size), or zero when the file is
// already block-aligned.
package slack

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/slackvfs/svfs/config"
)

var log = logrus.WithField("component", "slack")

// Capacity returns the number of slack bytes available past path's current
// end-of-file for the given block size. An empty or block-aligned file has
// zero slack capacity.
func Capacity(path string, blockSize uint64) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	size := uint64(info.Size())
	if size == 0 {
		return 0, nil
	}
	remainder := size % blockSize
	if remainder == 0 {
		return 0, nil
	}
	return blockSize - remainder, nil
}

// Write writes data into path's slack space starting at logicalSize. It is
// the caller's duty to ensure logicalSize+len(data) does not exceed
// logicalSize+capacity; Write does not re-derive capacity itself.
func Write(path string, data []byte, logicalSize uint64) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open %s for slack write: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteAt(data, int64(logicalSize)); err != nil {
		return fmt.Errorf("write slack %s at %d: %w", path, logicalSize, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("fsync %s: %w", path, err)
	}
	return nil
}

// Read reads up to length bytes of path's slack space starting at
// logicalSize. The returned slice may be shorter than length at EOF.
func Read(path string, logicalSize uint64, length int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s for slack read: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, length)
	n, err := f.ReadAt(buf, int64(logicalSize))
	if err != nil && n == 0 {
		return nil, fmt.Errorf("read slack %s at %d: %w", path, logicalSize, err)
	}
	return buf[:n], nil
}

// Wipe performs config.WipeParams.RandomPasses random overwrite passes
// followed by config.WipeParams.ZeroPasses zero passes over path's slack
// region, fsyncing after each pass, then truncates path back to
// logicalSize. passes overrides the random-pass count when non-zero.
func Wipe(path string, logicalSize uint64, passes uint8) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	currentSize := uint64(info.Size())
	if currentSize <= logicalSize {
		return nil
	}
	slackSize := int(currentSize - logicalSize)

	randomPasses := passes
	if randomPasses == 0 {
		randomPasses = config.WipeParams.RandomPasses
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open %s for wipe: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, slackSize)
	for i := uint8(0); i < randomPasses; i++ {
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("generate random wipe pass: %w", err)
		}
		if err := writePass(f, buf, logicalSize); err != nil {
			return err
		}
	}

	zero := make([]byte, slackSize)
	for i := uint8(0); i < config.WipeParams.ZeroPasses; i++ {
		if err := writePass(f, zero, logicalSize); err != nil {
			return err
		}
	}

	if err := f.Truncate(int64(logicalSize)); err != nil {
		return fmt.Errorf("truncate %s to %d: %w", path, logicalSize, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("fsync %s after truncate: %w", path, err)
	}
	log.WithField("path", path).Debug("wiped slack region")
	return nil
}

func writePass(f *os.File, data []byte, offset uint64) error {
	if _, err := f.WriteAt(data, int64(offset)); err != nil {
		return fmt.Errorf("wipe pass write: %w", err)
	}
	return f.Sync()
}
