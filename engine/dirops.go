package engine

import (
	"sort"
	"time"

	"github.com/slackvfs/svfs/superblock"
	"github.com/slackvfs/svfs/vfserrors"
	"github.com/slackvfs/svfs/vfspath"
)

// DirEntry is one listed child of a directory.
type DirEntry struct {
	Name    string
	InodeID uint64
	IsDir   bool
	Size    uint64
}

// CreateDir creates an empty directory inode at path.
func (e *Engine) CreateDir(path vfspath.Path) (uint64, error) {
	parent, name, err := e.resolveParent(path)
	if err != nil {
		return 0, err
	}
	if _, exists := e.childByName(parent, name); exists {
		return 0, vfserrors.ErrPathExists
	}

	now := time.Now().UTC()
	dirID := e.sb.AllocInodeID()
	dirInode := &superblock.Inode{
		ID:       dirID,
		Name:     name,
		Type:     superblock.TypeDir,
		Created:  now,
		Modified: now,
	}

	parent.Children = append(parent.Children, dirID)
	e.sb.InsertInode(parent)
	e.sb.InsertInode(dirInode)
	e.markDirty()

	if err := e.Sync(); err != nil {
		return 0, err
	}
	return dirID, nil
}

// ListDir returns path's children, sorted by name.
func (e *Engine) ListDir(path vfspath.Path) ([]DirEntry, error) {
	inode, err := e.resolve(path)
	if err != nil {
		return nil, err
	}
	if !inode.IsDir() {
		return nil, vfserrors.ErrNotADirectory
	}

	entries := make([]DirEntry, 0, len(inode.Children))
	for _, id := range inode.Children {
		child, ok := e.sb.GetInode(id)
		if !ok {
			continue
		}
		entries = append(entries, DirEntry{
			Name:    child.Name,
			InodeID: child.ID,
			IsDir:   child.IsDir(),
			Size:    child.Size,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Stat returns the inode at path.
func (e *Engine) Stat(path vfspath.Path) (*superblock.Inode, error) {
	return e.resolve(path)
}
