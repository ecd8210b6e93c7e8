// Package config holds the tunable parameters for a slack VFS instance and
// the fixed cryptographic/erasure-coding constants derived from the teacher
// repo's own constant blocks (see filesystem/ext4's sized constants).
package config

import (
	"fmt"

	"github.com/slackvfs/svfs/vfserrors"
)

// Defaults for a freshly initialized VFS.
const (
	DefaultBlockSize       uint64  = 4096
	DefaultSymbolSize      uint16  = 1024
	DefaultRedundancyRatio float32 = 0.5

	MinRedundancyRatio float32 = 0.1
	MaxRedundancyRatio float32 = 2.0
)

// VFSMagic identifies a superblock's plaintext payload.
var VFSMagic = [4]byte{'S', 'V', 'F', 'S'}

// VFSVersion is the current superblock format version.
const VFSVersion uint32 = 1

// BootstrapFilename is the well-known, visible name of the bootstrap
// artifact dropped into every host directory.
const BootstrapFilename = ".svfs-bootstrap"

// Argon2Params are the fixed Argon2id parameters used for every password
// derivation in this system; they are not configurable per-instance so
// that any bootstrap artifact can be mounted by any build of this engine.
var Argon2Params = struct {
	MemoryKiB   uint32
	Time        uint32
	Parallelism uint8
	KeyLen      uint32
	SaltLen     int
}{
	MemoryKiB:   65536,
	Time:        3,
	Parallelism: 4,
	KeyLen:      32,
	SaltLen:     32,
}

// WipeParams controls the secure-wipe pass counts used by slack.Wipe.
var WipeParams = struct {
	RandomPasses uint8
	ZeroPasses   uint8
}{
	RandomPasses: 3,
	ZeroPasses:   1,
}

// Config is the caller-supplied configuration for Create.
type Config struct {
	// BlockSize is the filesystem block size used to compute slack
	// capacity. Must be a power of two, > 0.
	BlockSize uint64
	// SymbolSize is the fixed payload size of each erasure-coded symbol.
	SymbolSize uint16
	// RedundancyRatio is R/K, clamped to [MinRedundancyRatio, MaxRedundancyRatio].
	RedundancyRatio float32
}

// Default returns the default configuration (4096/1024/0.5).
func Default() Config {
	return Config{
		BlockSize:       DefaultBlockSize,
		SymbolSize:      DefaultSymbolSize,
		RedundancyRatio: DefaultRedundancyRatio,
	}
}

// New builds a Config, clamping the redundancy ratio into range.
func New(blockSize uint64, symbolSize uint16, redundancyRatio float32) Config {
	if redundancyRatio < MinRedundancyRatio {
		redundancyRatio = MinRedundancyRatio
	}
	if redundancyRatio > MaxRedundancyRatio {
		redundancyRatio = MaxRedundancyRatio
	}
	return Config{
		BlockSize:       blockSize,
		SymbolSize:      symbolSize,
		RedundancyRatio: redundancyRatio,
	}
}

// Validate checks the configuration limits from spec §6.
func (c Config) Validate() error {
	if c.BlockSize == 0 || c.BlockSize&(c.BlockSize-1) != 0 {
		return fmt.Errorf("%w: block size must be a power of two greater than zero", vfserrors.ErrInvalidPath)
	}
	if c.SymbolSize == 0 {
		return fmt.Errorf("%w: symbol size must be greater than zero", vfserrors.ErrInvalidPath)
	}
	if c.RedundancyRatio < MinRedundancyRatio || c.RedundancyRatio > MaxRedundancyRatio {
		return fmt.Errorf("%w: redundancy ratio must be between %v and %v", vfserrors.ErrInvalidPath, MinRedundancyRatio, MaxRedundancyRatio)
	}
	return nil
}

// EncodingParams is the subset of Config the erasure codec consumes,
// projected the way EncodingConfig is derived from VfsConfig in the
// original source.
type EncodingParams struct {
	SymbolSize      uint16
	RedundancyRatio float32
}

// EncodingParams projects the codec-relevant fields out of Config.
func (c Config) EncodingParams() EncodingParams {
	return EncodingParams{SymbolSize: c.SymbolSize, RedundancyRatio: c.RedundancyRatio}
}
