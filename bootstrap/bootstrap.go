// Package bootstrap implements the single visible on-disk hint: a small,
// plaintext, declarative file naming just enough to locate and decrypt
// the superblock given the password. Encryption begins at the
// superblock; the bootstrap artifact itself is never encrypted.
package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/slackvfs/svfs/config"
	"github.com/slackvfs/svfs/vfserrors"
	"gopkg.in/yaml.v3"
)

// SymbolLocation is one absolute pointer into a host's slack region,
// naming where one superblock symbol's bytes live.
type SymbolLocation struct {
	HostPath string `yaml:"host_path"`
	Offset   uint64 `yaml:"offset"`
	Length   uint32 `yaml:"length"`
	SymbolID uint32 `yaml:"symbol_id"`
}

// SuperblockEncoding records the codec parameters the superblock's own
// symbols were produced with.
type SuperblockEncoding struct {
	OriginalLength uint64 `yaml:"original_length"`
	SourceSymbols  int    `yaml:"source_symbols"`
	RepairSymbols  int    `yaml:"repair_symbols"`
	SymbolSize     uint16 `yaml:"symbol_size"`
}

// Artifact is the full contents of the bootstrap file.
type Artifact struct {
	Version            uint32             `yaml:"version"`
	BlockSize          uint64             `yaml:"block_size"`
	Salt               []byte             `yaml:"salt"`
	SuperblockEncoding SuperblockEncoding `yaml:"superblock_encoding"`
	SuperblockSymbols  []SymbolLocation   `yaml:"superblock_symbols"`
}

// Path returns the well-known bootstrap artifact path under hostDir.
func Path(hostDir string) string {
	return filepath.Join(hostDir, config.BootstrapFilename)
}

// Exists reports whether a bootstrap artifact is present under hostDir.
func Exists(hostDir string) bool {
	_, err := os.Stat(Path(hostDir))
	return err == nil
}

// Load reads and parses the bootstrap artifact under hostDir, failing
// with ErrNotInitialized if it is missing.
func Load(hostDir string) (*Artifact, error) {
	data, err := os.ReadFile(Path(hostDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, vfserrors.ErrNotInitialized
		}
		return nil, fmt.Errorf("read bootstrap artifact: %w", err)
	}

	var art Artifact
	if err := yaml.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("%w: parse bootstrap artifact: %v", vfserrors.ErrSerialization, err)
	}
	if art.Version == 0 || len(art.Salt) == 0 || len(art.SuperblockSymbols) == 0 {
		return nil, vfserrors.ErrNotInitialized
	}
	return &art, nil
}

// Write atomically replaces the bootstrap artifact under hostDir with
// art's contents, via write-temp-then-rename so a crash mid-write never
// leaves a torn file visible at the well-known name.
func Write(hostDir string, art *Artifact) error {
	data, err := yaml.Marshal(art)
	if err != nil {
		return fmt.Errorf("%w: marshal bootstrap artifact: %v", vfserrors.ErrSerialization, err)
	}

	finalPath := Path(hostDir)
	tmpPath := finalPath + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("write bootstrap temp file: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("rename bootstrap temp file into place: %w", err)
	}
	return nil
}

// Remove deletes the bootstrap artifact under hostDir, part of wipe().
func Remove(hostDir string) error {
	err := os.Remove(Path(hostDir))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove bootstrap artifact: %w", err)
	}
	return nil
}
