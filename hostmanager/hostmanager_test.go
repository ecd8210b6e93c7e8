package hostmanager

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

func TestScanExcludesDotfilesAndAlignedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.txt", 100)
	writeFixture(t, dir, "aligned.bin", 4096)
	writeFixture(t, dir, ".svfs-bootstrap", 50)

	m, err := Scan(dir, 4096)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(m.Hosts()) != 1 {
		t.Fatalf("expected 1 host, got %d", len(m.Hosts()))
	}
	if m.Hosts()[0].Path != filepath.Join(dir, "a.txt") {
		t.Errorf("unexpected host: %s", m.Hosts()[0].Path)
	}
}

func TestScanEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	m, err := Scan(dir, 4096)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(m.Hosts()) != 0 {
		t.Fatalf("expected no hosts, got %d", len(m.Hosts()))
	}
	if m.TotalCapacity() != 0 {
		t.Errorf("expected zero capacity")
	}
}

func TestAllocateFirstFit(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.txt", 4096-100) // 100 bytes slack
	writeFixture(t, dir, "b.txt", 4096-300) // 300 bytes slack

	m, err := Scan(dir, 4096)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	locs, err := m.Allocate(3, 100, 0)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(locs) != 3 {
		t.Fatalf("expected 3 locations, got %d", len(locs))
	}
	if locs[0].HostPath != filepath.Join(dir, "a.txt") {
		t.Errorf("first symbol should fill host a.txt first-fit, got %s", locs[0].HostPath)
	}
	if locs[1].HostPath != filepath.Join(dir, "b.txt") || locs[2].HostPath != filepath.Join(dir, "b.txt") {
		t.Errorf("remaining symbols should spill into host b.txt")
	}
	for i, loc := range locs {
		if loc.SymbolID != uint32(i) {
			t.Errorf("symbol %d has id %d, want %d", i, loc.SymbolID, i)
		}
	}
}

func TestAllocateInsufficientSpace(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.txt", 4096-100)

	m, err := Scan(dir, 4096)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if _, err := m.Allocate(10, 100, 0); err == nil {
		t.Fatalf("expected InsufficientSpace error")
	}
}

func TestApplyUsedSlackThenAllocateRecognizesLowerRemaining(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.txt", 4096-1000) // 1000 bytes slack

	m, err := Scan(dir, 4096)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	hostPath := filepath.Join(dir, "a.txt")
	m.ApplyUsedSlack(hostPath, 900)

	if m.TotalAvailable() != 100 {
		t.Fatalf("expected 100 bytes available, got %d", m.TotalAvailable())
	}

	if _, err := m.Allocate(1, 200, 0); err == nil {
		t.Fatalf("expected InsufficientSpace after applying used slack")
	}
}
