// Package superblock implements the single authoritative metadata record
// for a hidden tree: the inode map, the symbol-allocation table,
// configuration, and the counters needed to keep both growing without
// collision.
package superblock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/slackvfs/svfs/config"
	"github.com/slackvfs/svfs/vfserrors"
)

// RootInodeID is the fixed id of the root directory inode.
const RootInodeID uint64 = 0

// Superblock is the complete mutable state of one VFS instance.
type Superblock struct {
	Config          config.Config
	Salt            []byte
	SequenceNumber  uint64
	InstanceUUID    uuid.UUID

	inodes       map[uint64]*Inode
	nextInodeID  uint64
	nextSymbolID uint32

	hosts   map[string]*HostUsage
	symbols []SymbolAlloc
}

// New creates a fresh superblock: an empty root directory, sequence 0,
// a random instance UUID, and the given config/salt.
func New(cfg config.Config, salt []byte) *Superblock {
	now := time.Now().UTC()
	sb := &Superblock{
		Config:       cfg,
		Salt:         append([]byte(nil), salt...),
		InstanceUUID: uuid.New(),
		inodes:       make(map[uint64]*Inode),
		hosts:        make(map[string]*HostUsage),
		nextInodeID:  1,
		nextSymbolID: 0,
	}
	sb.inodes[RootInodeID] = &Inode{
		ID:       RootInodeID,
		Name:     "",
		Type:     TypeDir,
		Created:  now,
		Modified: now,
		Children: nil,
	}
	return sb
}

// AllocInodeID returns the next unused inode id.
func (sb *Superblock) AllocInodeID() uint64 {
	id := sb.nextInodeID
	sb.nextInodeID++
	return id
}

// AllocSymbolID returns the next unused symbol id.
func (sb *Superblock) AllocSymbolID() uint32 {
	id := sb.nextSymbolID
	sb.nextSymbolID++
	return id
}

// InsertInode adds or replaces an inode.
func (sb *Superblock) InsertInode(inode *Inode) {
	sb.inodes[inode.ID] = inode
}

// RemoveInode deletes an inode by id.
func (sb *Superblock) RemoveInode(id uint64) {
	delete(sb.inodes, id)
}

// GetInode looks up an inode by id.
func (sb *Superblock) GetInode(id uint64) (*Inode, bool) {
	inode, ok := sb.inodes[id]
	return inode, ok
}

// Inodes returns every inode, for iteration (health checks, info).
func (sb *Superblock) Inodes() map[uint64]*Inode {
	return sb.inodes
}

// HostUsageMap returns the per-host {logical_size, used_slack} map.
func (sb *Superblock) HostUsageMap() map[string]*HostUsage {
	return sb.hosts
}

// SetHostUsage records or updates a host's logical size and used slack.
func (sb *Superblock) SetHostUsage(path string, logicalSize, usedSlack uint64) {
	sb.hosts[path] = &HostUsage{LogicalSize: logicalSize, UsedSlack: usedSlack}
}

// EnsureHostLogicalSize records path's current logical size without
// disturbing its tracked used-slack high-water mark.
func (sb *Superblock) EnsureHostLogicalSize(path string, logicalSize uint64) {
	host, ok := sb.hosts[path]
	if !ok {
		sb.hosts[path] = &HostUsage{LogicalSize: logicalSize}
		return
	}
	host.LogicalSize = logicalSize
}

// SymbolByID looks up an allocation record by its symbol id.
func (sb *Superblock) SymbolByID(id uint32) (SymbolAlloc, bool) {
	for _, s := range sb.symbols {
		if s.SymbolID == id {
			return s, true
		}
	}
	return SymbolAlloc{}, false
}

// AddSymbol appends an allocation record and grows the owning host's
// used-slack high-water mark if this allocation extends past it.
func (sb *Superblock) AddSymbol(alloc SymbolAlloc) {
	sb.symbols = append(sb.symbols, alloc)
	highWater := alloc.Offset + uint64(alloc.Length)
	host, ok := sb.hosts[alloc.HostPath]
	if !ok {
		sb.hosts[alloc.HostPath] = &HostUsage{UsedSlack: highWater}
		return
	}
	if highWater > host.UsedSlack {
		host.UsedSlack = highWater
	}
}

// Symbols returns the full allocation table.
func (sb *Superblock) Symbols() []SymbolAlloc {
	return sb.symbols
}

// SymbolsForInode returns the allocation records owned by inodeID.
func (sb *Superblock) SymbolsForInode(inodeID uint64) []SymbolAlloc {
	var out []SymbolAlloc
	for _, s := range sb.symbols {
		if s.InodeID == inodeID {
			out = append(out, s)
		}
	}
	return out
}

// RemoveSymbolsForFile deletes every allocation record owned by
// inodeID, recomputing each affected host's used-slack as the
// high-water mark of its surviving allocations, and prunes hosts left
// at zero usage with zero recorded logical size.
func (sb *Superblock) RemoveSymbolsForFile(inodeID uint64) {
	kept := sb.symbols[:0:0]
	affected := make(map[string]bool)
	for _, s := range sb.symbols {
		if s.InodeID == inodeID {
			affected[s.HostPath] = true
			continue
		}
		kept = append(kept, s)
	}
	sb.symbols = kept

	for path := range affected {
		var highWater uint64
		for _, s := range sb.symbols {
			if s.HostPath != path {
				continue
			}
			end := s.Offset + uint64(s.Length)
			if end > highWater {
				highWater = end
			}
		}
		if host, ok := sb.hosts[path]; ok {
			host.UsedSlack = highWater
			if host.UsedSlack == 0 && host.LogicalSize == 0 {
				delete(sb.hosts, path)
			}
		}
	}
}

// EncodingConfig projects the codec-relevant fields stored in the
// superblock's Config into the codec's parameter shape.
func (sb *Superblock) EncodingConfig() config.EncodingParams {
	return sb.Config.EncodingParams()
}

// ToBytes serializes the superblock into its stable binary plaintext
// form: magic, version, config, salt, sequence number, UUID, counters,
// inode map, host map, symbol table.
func (sb *Superblock) ToBytes() []byte {
	w := newWriter()
	w.bytes(config.VFSMagic[:])
	w.u32(config.VFSVersion)

	w.u64(sb.Config.BlockSize)
	w.u16(sb.Config.SymbolSize)
	w.f32(sb.Config.RedundancyRatio)

	w.bytes(sb.Salt)
	w.u64(sb.SequenceNumber)
	uuidBytes := sb.InstanceUUID
	w.bytes(uuidBytes[:])

	w.u64(sb.nextInodeID)
	w.u32(sb.nextSymbolID)

	w.u32(uint32(len(sb.inodes)))
	for _, inode := range sb.inodes {
		writeInode(w, inode)
	}

	w.u32(uint32(len(sb.hosts)))
	for path, usage := range sb.hosts {
		w.str(path)
		w.u64(usage.LogicalSize)
		w.u64(usage.UsedSlack)
	}

	w.u32(uint32(len(sb.symbols)))
	for _, s := range sb.symbols {
		w.u32(s.SymbolID)
		w.str(s.HostPath)
		w.u64(s.Offset)
		w.u32(s.Length)
		w.u64(s.InodeID)
	}

	return w.bytesOut()
}

// FromBytes deserializes a superblock's binary plaintext form, failing
// with ErrInvalidMagic or VersionMismatchError if the header does not
// match.
func FromBytes(data []byte) (*Superblock, error) {
	r := newReader(data)

	magic, err := r.bytes()
	if err != nil {
		return nil, err
	}
	if string(magic) != string(config.VFSMagic[:]) {
		return nil, vfserrors.ErrInvalidMagic
	}
	version, err := r.u32()
	if err != nil {
		return nil, err
	}
	if version != config.VFSVersion {
		return nil, vfserrors.NewVersionMismatch(config.VFSVersion, version)
	}

	blockSize, err := r.u64()
	if err != nil {
		return nil, err
	}
	symbolSize, err := r.u16()
	if err != nil {
		return nil, err
	}
	redundancy, err := r.f32()
	if err != nil {
		return nil, err
	}

	salt, err := r.bytes()
	if err != nil {
		return nil, err
	}
	seq, err := r.u64()
	if err != nil {
		return nil, err
	}
	uuidRaw, err := r.bytes()
	if err != nil {
		return nil, err
	}
	instanceUUID, err := uuid.FromBytes(uuidRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: parse instance uuid: %v", vfserrors.ErrSerialization, err)
	}

	nextInodeID, err := r.u64()
	if err != nil {
		return nil, err
	}
	nextSymbolID, err := r.u32()
	if err != nil {
		return nil, err
	}

	inodeCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	inodes := make(map[uint64]*Inode, inodeCount)
	for i := uint32(0); i < inodeCount; i++ {
		inode, err := readInode(r)
		if err != nil {
			return nil, err
		}
		inodes[inode.ID] = inode
	}

	hostCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	hosts := make(map[string]*HostUsage, hostCount)
	for i := uint32(0); i < hostCount; i++ {
		path, err := r.str()
		if err != nil {
			return nil, err
		}
		logicalSize, err := r.u64()
		if err != nil {
			return nil, err
		}
		usedSlack, err := r.u64()
		if err != nil {
			return nil, err
		}
		hosts[path] = &HostUsage{LogicalSize: logicalSize, UsedSlack: usedSlack}
	}

	symbolCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	symbols := make([]SymbolAlloc, 0, symbolCount)
	for i := uint32(0); i < symbolCount; i++ {
		symbolID, err := r.u32()
		if err != nil {
			return nil, err
		}
		hostPath, err := r.str()
		if err != nil {
			return nil, err
		}
		offset, err := r.u64()
		if err != nil {
			return nil, err
		}
		length, err := r.u32()
		if err != nil {
			return nil, err
		}
		inodeID, err := r.u64()
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, SymbolAlloc{
			SymbolID: symbolID,
			HostPath: hostPath,
			Offset:   offset,
			Length:   length,
			InodeID:  inodeID,
		})
	}

	return &Superblock{
		Config: config.Config{
			BlockSize:       blockSize,
			SymbolSize:      symbolSize,
			RedundancyRatio: redundancy,
		},
		Salt:           salt,
		SequenceNumber: seq,
		InstanceUUID:   instanceUUID,
		inodes:         inodes,
		nextInodeID:    nextInodeID,
		nextSymbolID:   nextSymbolID,
		hosts:          hosts,
		symbols:        symbols,
	}, nil
}

func writeInode(w *writer, inode *Inode) {
	w.u64(inode.ID)
	w.str(inode.Name)
	w.u8(uint8(inode.Type))
	w.u64(inode.Size)
	w.time(inode.Created)
	w.time(inode.Modified)

	if inode.Type == TypeFile {
		hasEncoding := inode.Encoding != nil
		w.u8(boolByte(hasEncoding))
		if hasEncoding {
			w.u64(inode.Encoding.OriginalLength)
			w.u32(uint32(inode.Encoding.K))
			w.u32(uint32(inode.Encoding.R))
			w.u16(inode.Encoding.SymbolSize)
			w.u8(boolByte(inode.Encoding.Compressed))
		}
		w.u32(uint32(len(inode.SymbolIDs)))
		for _, id := range inode.SymbolIDs {
			w.u32(id)
		}
	} else {
		w.u32(uint32(len(inode.Children)))
		for _, id := range inode.Children {
			w.u64(id)
		}
	}
}

func readInode(r *reader) (*Inode, error) {
	id, err := r.u64()
	if err != nil {
		return nil, err
	}
	name, err := r.str()
	if err != nil {
		return nil, err
	}
	typeByte, err := r.u8()
	if err != nil {
		return nil, err
	}
	size, err := r.u64()
	if err != nil {
		return nil, err
	}
	created, err := r.time()
	if err != nil {
		return nil, err
	}
	modified, err := r.time()
	if err != nil {
		return nil, err
	}

	inode := &Inode{
		ID:       id,
		Name:     name,
		Type:     InodeType(typeByte),
		Size:     size,
		Created:  created,
		Modified: modified,
	}

	if inode.Type == TypeFile {
		hasEncoding, err := r.u8()
		if err != nil {
			return nil, err
		}
		if hasEncoding != 0 {
			originalLength, err := r.u64()
			if err != nil {
				return nil, err
			}
			k, err := r.u32()
			if err != nil {
				return nil, err
			}
			rr, err := r.u32()
			if err != nil {
				return nil, err
			}
			symbolSize, err := r.u16()
			if err != nil {
				return nil, err
			}
			compressed, err := r.u8()
			if err != nil {
				return nil, err
			}
			inode.Encoding = &EncodingInfo{
				OriginalLength: originalLength,
				K:              int(k),
				R:              int(rr),
				SymbolSize:     symbolSize,
				Compressed:     compressed != 0,
			}
		}
		count, err := r.u32()
		if err != nil {
			return nil, err
		}
		inode.SymbolIDs = make([]uint32, count)
		for i := uint32(0); i < count; i++ {
			v, err := r.u32()
			if err != nil {
				return nil, err
			}
			inode.SymbolIDs[i] = v
		}
	} else {
		count, err := r.u32()
		if err != nil {
			return nil, err
		}
		inode.Children = make([]uint64, count)
		for i := uint32(0); i < count; i++ {
			v, err := r.u64()
			if err != nil {
				return nil, err
			}
			inode.Children[i] = v
		}
	}

	return inode, nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
