package engine

import (
	"github.com/slackvfs/svfs/superblock"
	"github.com/slackvfs/svfs/vfserrors"
	"github.com/slackvfs/svfs/vfspath"
)

// resolve walks the inode tree from root following path's components,
// returning the inode it names.
func (e *Engine) resolve(path vfspath.Path) (*superblock.Inode, error) {
	current := e.rootInode()
	if path.IsRoot() {
		return current, nil
	}
	for _, name := range path.Components() {
		if !current.IsDir() {
			return nil, vfserrors.ErrNotADirectory
		}
		child, ok := e.childByName(current, name)
		if !ok {
			return nil, vfserrors.ErrFileNotFound
		}
		current = child
	}
	return current, nil
}

// resolveParent resolves path's parent directory and returns it along
// with path's leaf name. Fails if path is root or the parent does not
// exist or is not a directory.
func (e *Engine) resolveParent(path vfspath.Path) (*superblock.Inode, string, error) {
	parentPath, ok := path.Parent()
	if !ok {
		return nil, "", vfserrors.ErrInvalidPath
	}
	parent, err := e.resolve(parentPath)
	if err != nil {
		return nil, "", err
	}
	if !parent.IsDir() {
		return nil, "", vfserrors.ErrNotADirectory
	}
	return parent, path.Name(), nil
}

func (e *Engine) childByName(dir *superblock.Inode, name string) (*superblock.Inode, bool) {
	for _, id := range dir.Children {
		child, ok := e.sb.GetInode(id)
		if ok && child.Name == name {
			return child, true
		}
	}
	return nil, false
}
