package engine

import (
	"bytes"

	"github.com/slackvfs/svfs/bootstrap"
	"github.com/slackvfs/svfs/config"
	"github.com/slackvfs/svfs/cryptoutil"
	"github.com/slackvfs/svfs/slack"
	"github.com/slackvfs/svfs/vfserrors"
)

// Info summarizes the current state of the hidden tree.
type Info struct {
	HostCount        int
	TotalCapacity    uint64
	UsedCapacity     uint64
	AvailableCapacity uint64
	FileCount        int
	DirCount         int
	BlockSize        uint64
	RedundancyRatio  float32
}

// DamagedFile reports a file whose surviving symbol count fell below
// its source-symbol count K.
type DamagedFile struct {
	Name        string
	LossPercent float64
}

// HealthReport is the result of HealthCheck.
type HealthReport struct {
	TotalFiles       int
	RecoverableFiles int
	Damaged          []DamagedFile
}

// ChangePassword verifies old against the superblock's current salt,
// then re-keys the session under a fresh salt and syncs.
func (e *Engine) ChangePassword(oldPassword, newPassword string) error {
	oldKey := cryptoutil.DeriveKey(oldPassword, e.sb.Salt)
	if !bytes.Equal(oldKey, e.sessionKey) {
		return vfserrors.ErrDecryption
	}

	newSalt, err := cryptoutil.NewSalt()
	if err != nil {
		return err
	}
	newKey := cryptoutil.DeriveKey(newPassword, newSalt)

	e.sb.Salt = newSalt
	e.sessionKey = newKey
	e.markDirty()

	return e.Sync()
}

// Wipe securely erases every host's slack region, deletes the bootstrap
// artifact, and clears in-memory state. The engine is unusable after
// Wipe returns.
func (e *Engine) Wipe() error {
	for _, h := range e.hm.Hosts() {
		if err := slack.Wipe(h.Path, h.LogicalSize, config.WipeParams.RandomPasses); err != nil {
			return err
		}
	}
	if err := bootstrap.Remove(e.hostDir); err != nil {
		return err
	}

	for i := range e.sessionKey {
		e.sessionKey[i] = 0
	}
	e.sessionKey = nil
	e.sb = nil
	e.hm = nil
	return nil
}

// GetInfo reports aggregate capacity and counts.
func (e *Engine) GetInfo() Info {
	var fileCount, dirCount int
	for _, inode := range e.sb.Inodes() {
		if inode.ID == 0 {
			continue
		}
		if inode.IsDir() {
			dirCount++
		} else {
			fileCount++
		}
	}
	return Info{
		HostCount:         len(e.hm.Hosts()),
		TotalCapacity:     e.hm.TotalCapacity(),
		UsedCapacity:      e.hm.TotalUsed(),
		AvailableCapacity: e.hm.TotalAvailable(),
		FileCount:         fileCount,
		DirCount:          dirCount,
		BlockSize:         e.sb.Config.BlockSize,
		RedundancyRatio:   e.sb.Config.RedundancyRatio,
	}
}

// HealthCheck reads back every file's currently-recorded symbols and
// reports which files remain recoverable (surviving count >= K).
func (e *Engine) HealthCheck() HealthReport {
	var report HealthReport

	for _, inode := range e.sb.Inodes() {
		if inode.IsDir() {
			continue
		}
		report.TotalFiles++
		if inode.Encoding == nil {
			continue
		}

		available := 0
		for _, id := range inode.SymbolIDs {
			alloc, ok := e.sb.SymbolByID(id)
			if !ok || e.driftedHosts[alloc.HostPath] {
				continue
			}
			host, ok := e.hm.HostByPath(alloc.HostPath)
			if !ok {
				continue
			}
			data, err := slack.Read(alloc.HostPath, host.LogicalSize+alloc.Offset, int(alloc.Length))
			if err == nil && uint32(len(data)) == alloc.Length {
				available++
			}
		}

		recoverable := available >= inode.Encoding.K
		if recoverable {
			report.RecoverableFiles++
		} else {
			lossPercent := (1 - float64(available)/float64(inode.Encoding.K)) * 100
			if lossPercent < 0 {
				lossPercent = 0
			}
			report.Damaged = append(report.Damaged, DamagedFile{
				Name:        inode.Name,
				LossPercent: lossPercent,
			})
		}
	}

	return report
}
