// Package svfs implements a steganographic virtual file system: an
// encrypted, erasure-coded directory tree hidden inside the slack space
// of ordinary host files.
//
// To an observer without the passphrase, host files look unchanged; only
// a small bootstrap artifact in the host directory hints at the
// presence of hidden data.
//
// Some examples:
//
// 1. Initialize a hidden tree over a directory of host files.
//
//     import "github.com/slackvfs/svfs"
//     import "github.com/slackvfs/svfs/config"
//
//     vfs, err := svfs.Create("/path/to/hosts", "a strong passphrase", config.Default())
//
// 2. Reopen it later and read a file back.
//
//     vfs, err := svfs.Mount("/path/to/hosts", "a strong passphrase")
//     data, err := vfs.ReadFile("/notes.txt")
//
// This package is a thin front over engine, the package that holds the
// actual create/mount/read/write/delete/stat/ls/mkdir/wipe/passwd/health
// logic.
package svfs

import (
	"github.com/slackvfs/svfs/config"
	"github.com/slackvfs/svfs/engine"
	"github.com/slackvfs/svfs/superblock"
	"github.com/slackvfs/svfs/vfspath"
)

// VFS is one live mount of a hidden tree over one host directory.
type VFS struct {
	e *engine.Engine
}

// Create initializes a fresh hidden tree under hostDir.
func Create(hostDir, password string, cfg config.Config) (*VFS, error) {
	e, err := engine.Create(hostDir, password, cfg)
	if err != nil {
		return nil, err
	}
	return &VFS{e: e}, nil
}

// Mount opens an existing hidden tree under hostDir.
func Mount(hostDir, password string) (*VFS, error) {
	e, err := engine.Mount(hostDir, password)
	if err != nil {
		return nil, err
	}
	return &VFS{e: e}, nil
}

// CreateFile writes plaintext as a new hidden file at path.
func (v *VFS) CreateFile(path string, plaintext []byte) (uint64, error) {
	p, err := vfspath.Parse(path)
	if err != nil {
		return 0, err
	}
	return v.e.CreateFile(p, plaintext)
}

// ReadFile returns the plaintext bytes stored at path.
func (v *VFS) ReadFile(path string) ([]byte, error) {
	p, err := vfspath.Parse(path)
	if err != nil {
		return nil, err
	}
	return v.e.ReadFile(p)
}

// DeleteFile removes the hidden file at path.
func (v *VFS) DeleteFile(path string) error {
	p, err := vfspath.Parse(path)
	if err != nil {
		return err
	}
	return v.e.DeleteFile(p)
}

// CreateDir creates an empty directory at path.
func (v *VFS) CreateDir(path string) (uint64, error) {
	p, err := vfspath.Parse(path)
	if err != nil {
		return 0, err
	}
	return v.e.CreateDir(p)
}

// ListDir returns path's children, sorted by name.
func (v *VFS) ListDir(path string) ([]engine.DirEntry, error) {
	p, err := vfspath.Parse(path)
	if err != nil {
		return nil, err
	}
	return v.e.ListDir(p)
}

// Stat returns the inode at path.
func (v *VFS) Stat(path string) (*superblock.Inode, error) {
	p, err := vfspath.Parse(path)
	if err != nil {
		return nil, err
	}
	return v.e.Stat(p)
}

// ChangePassword re-keys the hidden tree under a new password.
func (v *VFS) ChangePassword(oldPassword, newPassword string) error {
	return v.e.ChangePassword(oldPassword, newPassword)
}

// Wipe securely erases every host's slack region and deletes the
// bootstrap artifact. The VFS is unusable after Wipe returns.
func (v *VFS) Wipe() error {
	return v.e.Wipe()
}

// Info reports aggregate capacity and counts.
func (v *VFS) Info() engine.Info {
	return v.e.GetInfo()
}

// HealthCheck reports which files remain recoverable from their
// currently-surviving symbols.
func (v *VFS) HealthCheck() engine.HealthReport {
	return v.e.HealthCheck()
}

// Sync flushes the in-memory superblock if it has changed. It runs
// automatically after every mutating call; exposed for callers that
// want an explicit checkpoint.
func (v *VFS) Sync() error {
	return v.e.Sync()
}
