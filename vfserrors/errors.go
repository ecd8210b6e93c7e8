// Package vfserrors collects the error taxonomy shared by every layer of
// the slack VFS: slack primitives, the erasure codec, the cipher, the host
// manager, the superblock, the bootstrap discovery, and the engine.
//
// Sentinel errors are used for conditions with no payload; callers compare
// with errors.Is. Conditions that carry data (how much space was needed,
// which version was found) are typed errors compared with errors.As.
package vfserrors

import (
	"errors"
	"fmt"
)

// Sentinel errors with no associated data. Wrap with fmt.Errorf("...: %w", ...)
// to attach context; callers unwrap with errors.Is.
var (
	ErrInvalidPath        = errors.New("invalid path")
	ErrFileNotFound       = errors.New("file not found")
	ErrPathExists         = errors.New("path already exists")
	ErrNotADirectory      = errors.New("not a directory")
	ErrNotAFile           = errors.New("not a file")
	ErrNoHostFiles        = errors.New("no host files found")
	ErrEncryption         = errors.New("encryption failed")
	ErrKeyDerivation      = errors.New("key derivation failed")
	ErrDecryption         = errors.New("decryption failed: wrong password or corrupted data")
	ErrDataCorruption     = errors.New("data corruption")
	ErrSerialization      = errors.New("serialization error")
	ErrNotInitialized     = errors.New("vfs not initialized")
	ErrAlreadyInitialized = errors.New("vfs already initialized")
	ErrInvalidMagic       = errors.New("invalid vfs magic")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrUnsupported        = errors.New("unsupported")
)

// InsufficientSpaceError reports that a slack allocation could not be
// satisfied: needed bytes exceed the available slack across all hosts.
type InsufficientSpaceError struct {
	Needed    uint64
	Available uint64
}

func (e *InsufficientSpaceError) Error() string {
	return fmt.Sprintf("not enough slack space: need %d bytes, have %d bytes", e.Needed, e.Available)
}

// InsufficientSymbolsError reports that an erasure decode could not
// reconstruct the original data from the surviving symbols.
type InsufficientSymbolsError struct {
	Required int
	Received int
}

func (e *InsufficientSymbolsError) Error() string {
	return fmt.Sprintf("decoding failed: need %d symbols, have %d", e.Required, e.Received)
}

// VersionMismatchError reports a superblock whose format version this
// build does not understand.
type VersionMismatchError struct {
	Expected uint32
	Found    uint32
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("vfs version mismatch: expected %d, found %d", e.Expected, e.Found)
}

// NewInsufficientSpace builds an InsufficientSpaceError.
func NewInsufficientSpace(needed, available uint64) error {
	return &InsufficientSpaceError{Needed: needed, Available: available}
}

// NewInsufficientSymbols builds an InsufficientSymbolsError.
func NewInsufficientSymbols(required, received int) error {
	return &InsufficientSymbolsError{Required: required, Received: received}
}

// NewVersionMismatch builds a VersionMismatchError.
func NewVersionMismatch(expected, found uint32) error {
	return &VersionMismatchError{Expected: expected, Found: found}
}
