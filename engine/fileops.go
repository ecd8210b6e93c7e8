package engine

import (
	"fmt"
	"time"

	"github.com/pierrec/lz4/v4"
	"github.com/slackvfs/svfs/codec"
	"github.com/slackvfs/svfs/cryptoutil"
	"github.com/slackvfs/svfs/slack"
	"github.com/slackvfs/svfs/superblock"
	"github.com/slackvfs/svfs/vfserrors"
	"github.com/slackvfs/svfs/vfspath"
)

// CreateFile writes a new hidden file at path with the given plaintext
// bytes, returning its inode id.
func (e *Engine) CreateFile(path vfspath.Path, plaintext []byte) (uint64, error) {
	parent, name, err := e.resolveParent(path)
	if err != nil {
		return 0, err
	}
	if _, exists := e.childByName(parent, name); exists {
		return 0, vfserrors.ErrPathExists
	}

	envelope, compressed := maybeCompress(plaintext)
	ciphertext, err := cryptoutil.EncryptWithKey(envelope, e.sessionKey)
	if err != nil {
		return 0, err
	}

	encoded, err := codec.Encode(ciphertext, e.sb.EncodingConfig())
	if err != nil {
		return 0, err
	}

	fileID := e.sb.AllocInodeID()

	symbolIDs := make([]uint32, 0, len(encoded.Symbols))
	if len(encoded.Symbols) > 0 {
		startID := e.reserveSymbolIDs(len(encoded.Symbols))
		locs, err := e.hm.Allocate(len(encoded.Symbols), encoded.SymbolSize, startID)
		if err != nil {
			return 0, err
		}
		for i, loc := range locs {
			host, ok := e.hm.HostByPath(loc.HostPath)
			if !ok {
				return 0, fmt.Errorf("%w: allocation referenced unknown host %s", vfserrors.ErrDataCorruption, loc.HostPath)
			}
			if err := slack.Write(loc.HostPath, encoded.Symbols[i].Payload, host.LogicalSize+loc.Offset); err != nil {
				return 0, err
			}
			e.sb.AddSymbol(superblock.SymbolAlloc{
				SymbolID: loc.SymbolID,
				HostPath: loc.HostPath,
				Offset:   loc.Offset,
				Length:   loc.Length,
				InodeID:  fileID,
			})
			e.sb.EnsureHostLogicalSize(loc.HostPath, host.LogicalSize)
			symbolIDs = append(symbolIDs, loc.SymbolID)
		}
	}

	now := time.Now().UTC()
	fileInode := &superblock.Inode{
		ID:       fileID,
		Name:     name,
		Type:     superblock.TypeFile,
		Size:     uint64(len(plaintext)),
		Created:  now,
		Modified: now,
		SymbolIDs: symbolIDs,
	}
	if len(plaintext) > 0 {
		fileInode.Encoding = &superblock.EncodingInfo{
			OriginalLength: encoded.OriginalLength,
			K:              encoded.K,
			R:              encoded.R,
			SymbolSize:     encoded.SymbolSize,
			Compressed:     compressed,
		}
	}

	parent.Children = append(parent.Children, fileID)
	e.sb.InsertInode(parent)
	e.sb.InsertInode(fileInode)
	e.markDirty()

	if err := e.Sync(); err != nil {
		return 0, err
	}
	return fileID, nil
}

// ReadFile returns the plaintext bytes stored at path.
func (e *Engine) ReadFile(path vfspath.Path) ([]byte, error) {
	inode, err := e.resolve(path)
	if err != nil {
		return nil, err
	}
	if inode.IsDir() {
		return nil, vfserrors.ErrNotAFile
	}
	if inode.Size == 0 {
		return []byte{}, nil
	}
	if inode.Encoding == nil {
		return nil, fmt.Errorf("%w: file inode missing encoding info", vfserrors.ErrDataCorruption)
	}

	symbols := make([]codec.Symbol, 0, len(inode.SymbolIDs))
	for i, id := range inode.SymbolIDs {
		alloc, ok := e.sb.SymbolByID(id)
		if !ok {
			continue
		}
		host, ok := e.hm.HostByPath(alloc.HostPath)
		if !ok || e.driftedHosts[alloc.HostPath] {
			continue
		}
		data, err := slack.Read(alloc.HostPath, host.LogicalSize+alloc.Offset, int(alloc.Length))
		if err != nil || uint32(len(data)) != alloc.Length {
			continue
		}
		symbols = append(symbols, codec.Symbol{ID: uint32(i), Payload: data})
	}

	encoded := codec.EncodedData{
		OriginalLength: inode.Encoding.OriginalLength,
		K:              inode.Encoding.K,
		R:              inode.Encoding.R,
		SymbolSize:     inode.Encoding.SymbolSize,
		Symbols:        symbols,
	}
	ciphertext, err := codec.Decode(encoded)
	if err != nil {
		return nil, err
	}

	envelope, err := cryptoutil.DecryptWithKey(ciphertext, e.sessionKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vfserrors.ErrDataCorruption, err)
	}

	if inode.Encoding.Compressed {
		return decompress(envelope, inode.Size)
	}
	return envelope, nil
}

// DeleteFile removes the file inode at path and frees its symbols.
func (e *Engine) DeleteFile(path vfspath.Path) error {
	if path.IsRoot() {
		return vfserrors.ErrNotAFile
	}
	inode, err := e.resolve(path)
	if err != nil {
		return err
	}
	if inode.IsDir() {
		return vfserrors.ErrNotAFile
	}
	parent, _, err := e.resolveParent(path)
	if err != nil {
		return err
	}

	unlinkChild(parent, inode.ID)
	e.sb.InsertInode(parent)
	e.sb.RemoveSymbolsForFile(inode.ID)
	e.sb.RemoveInode(inode.ID)
	e.markDirty()

	return e.Sync()
}

func unlinkChild(dir *superblock.Inode, id uint64) {
	out := dir.Children[:0]
	for _, c := range dir.Children {
		if c != id {
			out = append(out, c)
		}
	}
	dir.Children = out
}

// reserveSymbolIDs bumps the superblock's symbol-id counter by count and
// returns the first id in the contiguous block handed out.
func (e *Engine) reserveSymbolIDs(count int) uint32 {
	start := e.sb.AllocSymbolID()
	for i := 1; i < count; i++ {
		e.sb.AllocSymbolID()
	}
	return start
}

func maybeCompress(plaintext []byte) ([]byte, bool) {
	if len(plaintext) == 0 {
		return plaintext, false
	}
	dst := make([]byte, lz4.CompressBlockBound(len(plaintext)))
	var compressor lz4.Compressor
	n, err := compressor.CompressBlock(plaintext, dst)
	if err != nil || n == 0 || n >= len(plaintext) {
		return plaintext, false
	}
	return dst[:n], true
}

func decompress(compressed []byte, originalSize uint64) ([]byte, error) {
	dst := make([]byte, originalSize)
	n, err := lz4.UncompressBlock(compressed, dst)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4 decompress: %v", vfserrors.ErrDataCorruption, err)
	}
	return dst[:n], nil
}
