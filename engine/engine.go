// Package engine implements the operations layer: create, mount, and the
// file/directory mutations and queries that make up the public contract
// of one hidden tree over one host directory.
package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/slackvfs/svfs/bootstrap"
	"github.com/slackvfs/svfs/config"
	"github.com/slackvfs/svfs/cryptoutil"
	"github.com/slackvfs/svfs/hostmanager"
	"github.com/slackvfs/svfs/superblock"
	"github.com/slackvfs/svfs/vfserrors"
)

var log = logrus.WithField("component", "engine")

// Engine is one live mount of a hidden tree over one host directory.
// One live Engine per host directory is the only supported
// configuration; it holds no locking against concurrent mounts.
type Engine struct {
	hostDir      string
	sessionKey   []byte
	sb           *superblock.Superblock
	hm           *hostmanager.Manager
	driftedHosts map[string]bool
	dirty        bool
}

// Create initializes a fresh hidden tree under hostDir. Fails with
// ErrAlreadyInitialized if a bootstrap artifact is already present, or
// ErrNoHostFiles if no host file has usable slack under cfg.BlockSize.
func Create(hostDir string, password string, cfg config.Config) (*Engine, error) {
	if bootstrap.Exists(hostDir) {
		return nil, vfserrors.ErrAlreadyInitialized
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hm, err := hostmanager.Scan(hostDir, cfg.BlockSize)
	if err != nil {
		return nil, err
	}
	if len(hm.Hosts()) == 0 {
		return nil, vfserrors.ErrNoHostFiles
	}

	salt, err := cryptoutil.NewSalt()
	if err != nil {
		return nil, err
	}
	key := cryptoutil.DeriveKey(password, salt)

	sb := superblock.New(cfg, salt)
	for _, h := range hm.Hosts() {
		sb.EnsureHostLogicalSize(h.Path, h.LogicalSize)
	}

	e := &Engine{
		hostDir:      hostDir,
		sessionKey:   key,
		sb:           sb,
		hm:           hm,
		driftedHosts: make(map[string]bool),
		dirty:        true,
	}
	if err := e.Sync(); err != nil {
		return nil, err
	}

	log.WithField("host_dir", hostDir).WithField("host_count", len(hm.Hosts())).Info("initialized hidden tree")
	return e, nil
}

// Mount opens an existing hidden tree under hostDir with password.
// Fails with ErrNotInitialized if no bootstrap artifact is present,
// ErrDecryption if replicas decode but none decrypts under password, or
// ErrDataCorruption if no superblock replica can be recovered.
func Mount(hostDir string, password string) (*Engine, error) {
	art, err := bootstrap.Load(hostDir)
	if err != nil {
		return nil, err
	}

	hm, err := hostmanager.Scan(hostDir, art.BlockSize)
	if err != nil {
		return nil, err
	}

	key := cryptoutil.DeriveKey(password, art.Salt)

	sb, superblockSymbolLengths, err := recoverSuperblock(art, key)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		hostDir:      hostDir,
		sessionKey:   key,
		sb:           sb,
		hm:           hm,
		driftedHosts: make(map[string]bool),
	}

	for _, h := range hm.Hosts() {
		usage, ok := sb.HostUsageMap()[h.Path]
		used := uint64(0)
		if ok {
			used = usage.UsedSlack
			// Slack writes grow a host's on-disk size up to the end of its
			// recorded logical size's last block; only a size outside that
			// window counts as drift.
			blockEnd := (usage.LogicalSize + art.BlockSize - 1) / art.BlockSize * art.BlockSize
			if h.LogicalSize >= usage.LogicalSize && h.LogicalSize <= blockEnd {
				h.LogicalSize = usage.LogicalSize
				h.Capacity = blockEnd - usage.LogicalSize
			} else {
				e.driftedHosts[h.Path] = true
				log.WithField("path", h.Path).
					WithField("recorded_logical_size", usage.LogicalSize).
					WithField("current_logical_size", h.LogicalSize).
					Warn("host logical size drifted since last sync")
			}
		}
		used += superblockSymbolLengths[h.Path]
		hm.ApplyUsedSlack(h.Path, used)
	}

	log.WithField("host_dir", hostDir).Info("mounted hidden tree")
	return e, nil
}

func (e *Engine) rootInode() *superblock.Inode {
	inode, _ := e.sb.GetInode(superblock.RootInodeID)
	return inode
}

func (e *Engine) markDirty() {
	e.dirty = true
}

func wrapIO(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}
