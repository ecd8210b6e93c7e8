package superblock

import (
	"reflect"
	"testing"

	"github.com/slackvfs/svfs/config"
)

func newTestSuperblock() *Superblock {
	return New(config.Default(), []byte("0123456789abcdef0123456789abcdef"))
}

func TestNewHasSingleRootInode(t *testing.T) {
	sb := newTestSuperblock()
	root, ok := sb.GetInode(RootInodeID)
	if !ok {
		t.Fatalf("expected root inode to exist")
	}
	if !root.IsDir() {
		t.Errorf("root inode must be a directory")
	}
	if len(sb.Inodes()) != 1 {
		t.Errorf("expected exactly one inode, got %d", len(sb.Inodes()))
	}
}

func TestAllocInodeAndSymbolIDsAreMonotonic(t *testing.T) {
	sb := newTestSuperblock()
	a := sb.AllocInodeID()
	b := sb.AllocInodeID()
	if b <= a {
		t.Errorf("expected monotonically increasing inode ids, got %d then %d", a, b)
	}

	s1 := sb.AllocSymbolID()
	s2 := sb.AllocSymbolID()
	if s2 <= s1 {
		t.Errorf("expected monotonically increasing symbol ids, got %d then %d", s1, s2)
	}
}

func TestAddSymbolTracksHighWaterMark(t *testing.T) {
	sb := newTestSuperblock()
	sb.AddSymbol(SymbolAlloc{SymbolID: 0, HostPath: "/hosts/a", Offset: 0, Length: 100, InodeID: 5})
	sb.AddSymbol(SymbolAlloc{SymbolID: 1, HostPath: "/hosts/a", Offset: 100, Length: 50, InodeID: 5})

	usage := sb.HostUsageMap()["/hosts/a"]
	if usage == nil || usage.UsedSlack != 150 {
		t.Fatalf("expected used slack 150, got %+v", usage)
	}
}

func TestRemoveSymbolsForFileRecomputesHighWaterMark(t *testing.T) {
	sb := newTestSuperblock()
	sb.AddSymbol(SymbolAlloc{SymbolID: 0, HostPath: "/hosts/a", Offset: 0, Length: 100, InodeID: 5})
	sb.AddSymbol(SymbolAlloc{SymbolID: 1, HostPath: "/hosts/a", Offset: 100, Length: 50, InodeID: 6})

	sb.RemoveSymbolsForFile(6)

	usage := sb.HostUsageMap()["/hosts/a"]
	if usage == nil || usage.UsedSlack != 100 {
		t.Fatalf("expected used slack to shrink back to 100, got %+v", usage)
	}
	if len(sb.SymbolsForInode(6)) != 0 {
		t.Errorf("expected no surviving symbols for removed inode")
	}
	if len(sb.SymbolsForInode(5)) != 1 {
		t.Errorf("expected surviving symbol for inode 5 to remain")
	}
}

func TestRemoveSymbolsForFilePrunesEmptyHost(t *testing.T) {
	sb := newTestSuperblock()
	sb.AddSymbol(SymbolAlloc{SymbolID: 0, HostPath: "/hosts/a", Offset: 0, Length: 100, InodeID: 5})
	sb.RemoveSymbolsForFile(5)

	if _, ok := sb.HostUsageMap()["/hosts/a"]; ok {
		t.Errorf("expected host with zero usage and zero logical size to be pruned")
	}
}

func TestToBytesFromBytesRoundTrip(t *testing.T) {
	sb := newTestSuperblock()
	sb.SequenceNumber = 7
	dirID := sb.AllocInodeID()
	sb.InsertInode(&Inode{ID: dirID, Name: "docs", Type: TypeDir})
	root, _ := sb.GetInode(RootInodeID)
	root.Children = append(root.Children, dirID)
	sb.InsertInode(root)

	fileID := sb.AllocInodeID()
	sb.InsertInode(&Inode{
		ID:   fileID,
		Name: "readme.txt",
		Type: TypeFile,
		Size: 11,
		Encoding: &EncodingInfo{
			OriginalLength: 11,
			K:              2,
			R:              1,
			SymbolSize:     8,
		},
		SymbolIDs: []uint32{0, 1, 2},
	})
	sb.AddSymbol(SymbolAlloc{SymbolID: 0, HostPath: "/hosts/a", Offset: 0, Length: 8, InodeID: fileID})

	data := sb.ToBytes()
	restored, err := FromBytes(data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}

	if restored.SequenceNumber != sb.SequenceNumber {
		t.Errorf("sequence number mismatch: got %d, want %d", restored.SequenceNumber, sb.SequenceNumber)
	}
	if restored.InstanceUUID != sb.InstanceUUID {
		t.Errorf("uuid mismatch")
	}

	restoredFile, ok := restored.GetInode(fileID)
	if !ok {
		t.Fatalf("expected restored file inode")
	}
	if !reflect.DeepEqual(restoredFile.SymbolIDs, []uint32{0, 1, 2}) {
		t.Errorf("symbol ids mismatch: got %v", restoredFile.SymbolIDs)
	}
	if restoredFile.Encoding == nil || restoredFile.Encoding.K != 2 || restoredFile.Encoding.R != 1 {
		t.Errorf("encoding info mismatch: %+v", restoredFile.Encoding)
	}

	restoredDir, ok := restored.GetInode(RootInodeID)
	if !ok || len(restoredDir.Children) != 1 || restoredDir.Children[0] != dirID {
		t.Errorf("root children mismatch: %+v", restoredDir)
	}
}

func TestFromBytesRejectsBadMagic(t *testing.T) {
	sb := newTestSuperblock()
	data := sb.ToBytes()
	// Corrupt the magic length-prefix's first payload byte.
	data[4] ^= 0xFF

	if _, err := FromBytes(data); err == nil {
		t.Fatalf("expected invalid magic error")
	}
}
