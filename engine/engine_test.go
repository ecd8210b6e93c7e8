package engine

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/slackvfs/svfs/config"
	"github.com/slackvfs/svfs/vfserrors"
	"github.com/slackvfs/svfs/vfspath"
)

func writeHostFixture(t *testing.T, dir, name string, size int) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
}

func setupHosts(t *testing.T, n, sizeEach int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < n; i++ {
		writeHostFixture(t, dir, filepathName(i), sizeEach)
	}
	return dir
}

func filepathName(i int) string {
	return "host" + string(rune('a'+i)) + ".bin"
}

func mustParse(t *testing.T, s string) vfspath.Path {
	t.Helper()
	p, err := vfspath.Parse(s)
	if err != nil {
		t.Fatalf("parse path %q: %v", s, err)
	}
	return p
}

func TestCreateEmptyDirectoryFailsNoHostFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := Create(dir, "password", config.Default())
	if !errors.Is(err, vfserrors.ErrNoHostFiles) {
		t.Fatalf("expected NoHostFiles error, got %v", err)
	}
}

func TestCreateAndInfo(t *testing.T) {
	dir := setupHosts(t, 5, 100)
	e, err := Create(dir, "password", config.New(4096, 64, 0.5))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	info := e.GetInfo()
	if info.HostCount != 5 {
		t.Errorf("HostCount = %d, want 5", info.HostCount)
	}
	if info.FileCount != 0 {
		t.Errorf("FileCount = %d, want 0", info.FileCount)
	}
}

func TestCreateFileReadFileRoundTrip(t *testing.T) {
	dir := setupHosts(t, 6, 200)
	e, err := Create(dir, "correct horse battery staple", config.New(4096, 32, 0.5))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	path := mustParse(t, "/a.txt")
	if _, err := e.CreateFile(path, []byte("hello")); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	got, err := e.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, []byte("hello")) {
		t.Errorf("ReadFile = %q, want %q", got, "hello")
	}
}

func TestMountWrongPasswordFailsDecryption(t *testing.T) {
	dir := setupHosts(t, 6, 200)
	_, err := Create(dir, "right password", config.New(4096, 32, 0.5))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := Mount(dir, "wrong password"); !errors.Is(err, vfserrors.ErrDecryption) {
		t.Fatalf("expected decryption failure with wrong password, got %v", err)
	}
}

func TestSyncThenMountPreservesTree(t *testing.T) {
	dir := setupHosts(t, 8, 300)
	e, err := Create(dir, "s3cret", config.New(4096, 32, 0.5))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := e.CreateDir(mustParse(t, "/docs")); err != nil {
		t.Fatalf("CreateDir: %v", err)
	}
	if _, err := e.CreateFile(mustParse(t, "/docs/readme.txt"), []byte("hello world")); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	e2, err := Mount(dir, "s3cret")
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	entries, err := e2.ListDir(mustParse(t, "/docs"))
	if err != nil {
		t.Fatalf("ListDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "readme.txt" {
		t.Fatalf("unexpected listing: %+v", entries)
	}

	got, err := e2.ReadFile(mustParse(t, "/docs/readme.txt"))
	if err != nil {
		t.Fatalf("ReadFile after remount: %v", err)
	}
	if !bytes.Equal(got, []byte("hello world")) {
		t.Errorf("ReadFile after remount = %q, want %q", got, "hello world")
	}
}

func TestDeleteThenCreateReusesFreedSlack(t *testing.T) {
	dir := setupHosts(t, 4, 400)
	e, err := Create(dir, "pw", config.New(4096, 64, 0.5))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	payload := bytes.Repeat([]byte("x"), 200)
	if _, err := e.CreateFile(mustParse(t, "/x"), payload); err != nil {
		t.Fatalf("CreateFile /x: %v", err)
	}
	if err := e.DeleteFile(mustParse(t, "/x")); err != nil {
		t.Fatalf("DeleteFile /x: %v", err)
	}
	if _, err := e.CreateFile(mustParse(t, "/y"), payload); err != nil {
		t.Fatalf("CreateFile /y after delete: %v", err)
	}
}

func TestChangePasswordThenMount(t *testing.T) {
	dir := setupHosts(t, 5, 300)
	e, err := Create(dir, "old-pass", config.New(4096, 32, 0.5))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := e.ChangePassword("old-pass", "new-pass"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if _, err := Mount(dir, "new-pass"); err != nil {
		t.Fatalf("Mount with new password: %v", err)
	}
	if _, err := Mount(dir, "old-pass"); err == nil {
		t.Fatalf("expected mount with old password to fail")
	}
}

func TestWipeRemovesBootstrapAndRestoresHostSizes(t *testing.T) {
	dir := setupHosts(t, 4, 300)
	e, err := Create(dir, "pw", config.New(4096, 32, 0.5))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := e.CreateFile(mustParse(t, "/a"), []byte("payload")); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	if err := e.Wipe(); err != nil {
		t.Fatalf("Wipe: %v", err)
	}

	if _, err := Mount(dir, "pw"); err == nil {
		t.Fatalf("expected mount to fail with NotInitialized after wipe")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			t.Fatalf("Info: %v", err)
		}
		if info.Size() != 300 {
			t.Errorf("host %s size = %d, want 300 after wipe", entry.Name(), info.Size())
		}
	}
}

func TestHealthCheckReportsRecoverableFile(t *testing.T) {
	dir := setupHosts(t, 10, 400)
	e, err := Create(dir, "pw", config.New(4096, 32, 0.5))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := e.CreateFile(mustParse(t, "/a"), bytes.Repeat([]byte("z"), 100)); err != nil {
		t.Fatalf("CreateFile: %v", err)
	}

	report := e.HealthCheck()
	if report.TotalFiles != 1 || report.RecoverableFiles != 1 {
		t.Errorf("unexpected health report: %+v", report)
	}
}
