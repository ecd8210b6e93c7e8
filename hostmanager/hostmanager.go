// Package hostmanager scans a host directory for ordinary files with
// usable slack space, tracks each host's capacity and usage, and
// allocates symbol placements across them in scan order.
package hostmanager

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/slackvfs/svfs/config"
	"github.com/slackvfs/svfs/slack"
	"github.com/slackvfs/svfs/vfserrors"
	times "gopkg.in/djherbis/times.v1"
)

var log = logrus.WithField("component", "hostmanager")

// Host describes one host file's slack accounting.
type Host struct {
	Path        string
	LogicalSize uint64
	Capacity    uint64
	UsedSlack   uint64
}

// Remaining returns the unused slack bytes still available on this host.
func (h Host) Remaining() uint64 {
	if h.UsedSlack >= h.Capacity {
		return 0
	}
	return h.Capacity - h.UsedSlack
}

// SymbolLocation names where one symbol's bytes live: a host path and an
// offset relative to that host's logical size.
type SymbolLocation struct {
	HostPath string
	Offset   uint64
	SymbolID uint32
	Length   uint32
}

// Manager holds the scanned host set for one host directory.
type Manager struct {
	hostDir   string
	blockSize uint64
	hosts     []*Host
	byPath    map[string]*Host
}

// Scan walks hostDir (non-recursively, matching a single flat directory
// of candidate host files) and builds the host set: every regular file
// not starting with "." (which also excludes the bootstrap artifact),
// with nonzero slack capacity under blockSize.
func Scan(hostDir string, blockSize uint64) (*Manager, error) {
	entries, err := os.ReadDir(hostDir)
	if err != nil {
		return nil, fmt.Errorf("read host directory %s: %w", hostDir, err)
	}

	// Sort by name for a deterministic scan order, the basis of the
	// first-fit allocation policy.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	m := &Manager{hostDir: hostDir, blockSize: blockSize, byPath: make(map[string]*Host)}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if len(name) > 0 && name[0] == '.' {
			continue
		}
		path := filepath.Join(hostDir, name)

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		cap, err := slack.Capacity(path, blockSize)
		if err != nil {
			return nil, err
		}
		if cap == 0 {
			continue
		}

		host := &Host{Path: path, LogicalSize: uint64(info.Size()), Capacity: cap}
		m.hosts = append(m.hosts, host)
		m.byPath[path] = host

		logDiscovery(path, cap)
	}

	return m, nil
}

func logDiscovery(path string, capacity uint64) {
	entry := log.WithField("path", path).WithField("capacity", capacity)
	if t, err := times.Stat(path); err == nil && t.HasBirthTime() {
		entry = entry.WithField("birth_time", t.BirthTime())
	}
	entry.Debug("discovered host file")
}

// Hosts returns the scanned hosts in scan order.
func (m *Manager) Hosts() []*Host {
	return m.hosts
}

// HostDir returns the directory this manager was scanned from.
func (m *Manager) HostDir() string {
	return m.hostDir
}

// TotalCapacity is the sum of every host's slack capacity.
func (m *Manager) TotalCapacity() uint64 {
	var total uint64
	for _, h := range m.hosts {
		total += h.Capacity
	}
	return total
}

// TotalUsed is the sum of every host's used-slack high-water mark.
func (m *Manager) TotalUsed() uint64 {
	var total uint64
	for _, h := range m.hosts {
		total += h.UsedSlack
	}
	return total
}

// TotalAvailable is TotalCapacity - TotalUsed.
func (m *Manager) TotalAvailable() uint64 {
	return m.TotalCapacity() - m.TotalUsed()
}

// HostByPath looks up a scanned host by its path.
func (m *Manager) HostByPath(path string) (*Host, bool) {
	h, ok := m.byPath[path]
	return h, ok
}

// ApplyUsedSlack sets a host's used-slack counter, e.g. after loading a
// superblock's per-host map at mount.
func (m *Manager) ApplyUsedSlack(path string, used uint64) {
	if h, ok := m.byPath[path]; ok {
		h.UsedSlack = used
	}
}

// Allocate distributes count symbols of symbolSize bytes across hosts in
// scan order, filling each host's remaining slack before moving to the
// next, assigning sequential symbol ids starting at startID. It fails
// with InsufficientSpaceError if total remaining slack is too small.
func (m *Manager) Allocate(count int, symbolSize uint16, startID uint32) ([]SymbolLocation, error) {
	if count == 0 {
		return nil, nil
	}
	needed := uint64(count) * uint64(symbolSize)
	if m.TotalAvailable() < needed {
		return nil, vfserrors.NewInsufficientSpace(needed, m.TotalAvailable())
	}

	locations := make([]SymbolLocation, 0, count)
	nextID := startID
	remaining := count

	for _, h := range m.hosts {
		for remaining > 0 && h.Remaining() >= uint64(symbolSize) {
			loc := SymbolLocation{
				HostPath: h.Path,
				Offset:   h.UsedSlack,
				SymbolID: nextID,
				Length:   uint32(symbolSize),
			}
			locations = append(locations, loc)
			h.UsedSlack += uint64(symbolSize)
			nextID++
			remaining--
		}
		if remaining == 0 {
			break
		}
	}

	if remaining > 0 {
		// The total check above does not see per-host remainders smaller
		// than symbolSize, so the fill loop can still come up short.
		return nil, vfserrors.NewInsufficientSpace(needed, m.TotalAvailable())
	}

	return locations, nil
}

// Default builds a Manager from config defaults, a thin convenience used
// by callers that only need the default block size.
func Default(hostDir string) (*Manager, error) {
	return Scan(hostDir, config.DefaultBlockSize)
}
