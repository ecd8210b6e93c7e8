package superblock

import "time"

// InodeType distinguishes a file inode from a directory inode.
type InodeType uint8

const (
	// TypeFile marks an inode holding erasure-coded hidden-file data.
	TypeFile InodeType = iota
	// TypeDir marks an inode holding an ordered list of child inode ids.
	TypeDir
)

// EncodingInfo records the codec parameters a file's symbols were
// produced with, needed to collect and decode them again on read.
type EncodingInfo struct {
	OriginalLength uint64
	K              int
	R              int
	SymbolSize     uint16
	// Compressed marks that the encrypted envelope wraps LZ4-compressed
	// plaintext rather than raw plaintext; read_file must invert it
	// after decryption. Not present in the distilled design; additive.
	Compressed bool
}

// SymbolAlloc is one record of the symbol-allocation table: where one
// symbol's bytes live, and which inode owns it.
type SymbolAlloc struct {
	SymbolID uint32
	HostPath string
	Offset   uint64
	Length   uint32
	InodeID  uint64
}

// HostUsage is the per-host accounting the superblock persists so a
// remount can reconstruct used-slack without re-deriving it from the
// allocation table alone.
type HostUsage struct {
	LogicalSize uint64
	UsedSlack   uint64
}

// Inode is a file- or directory-metadata record.
type Inode struct {
	ID       uint64
	Name     string
	Type     InodeType
	Size     uint64
	Created  time.Time
	Modified time.Time

	// File fields, valid iff Type == TypeFile and Size > 0.
	Encoding  *EncodingInfo
	SymbolIDs []uint32

	// Directory fields, valid iff Type == TypeDir.
	Children []uint64
}

// DirEntry is one listed child, the shape list_dir returns.
type DirEntry struct {
	Name    string
	InodeID uint64
	IsDir   bool
	Size    uint64
}

// IsDir reports whether this inode is a directory.
func (i *Inode) IsDir() bool {
	return i.Type == TypeDir
}
