package vfspath

import (
	"errors"
	"reflect"
	"testing"

	"github.com/slackvfs/svfs/vfserrors"
)

func TestParseStringRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"root", "/"},
		{"single component", "/notes.txt"},
		{"nested", "/a/b/c"},
		{"deeply nested", "/one/two/three/four/five"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.path)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.path, err)
			}
			if got := p.String(); got != tt.path {
				t.Errorf("round trip: Parse(%q).String() = %q, want %q", tt.path, got, tt.path)
			}
		})
	}
}

func TestParseRejectsRelativeAndInvalidPaths(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"relative", "a/b"},
		{"empty string", ""},
		{"dot component", "/a/./b"},
		{"dotdot component", "/a/../b"},
		{"bare dot", "/."},
		{"bare dotdot", "/.."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.path); !errors.Is(err, vfserrors.ErrInvalidPath) {
				t.Errorf("Parse(%q) error = %v, want vfserrors.ErrInvalidPath", tt.path, err)
			}
		})
	}
}

func TestParseIsRoot(t *testing.T) {
	root, err := Parse("/")
	if err != nil {
		t.Fatalf("Parse(\"/\"): %v", err)
	}
	if !root.IsRoot() {
		t.Errorf("Parse(\"/\").IsRoot() = false, want true")
	}

	child, err := Parse("/a")
	if err != nil {
		t.Fatalf("Parse(\"/a\"): %v", err)
	}
	if child.IsRoot() {
		t.Errorf("Parse(\"/a\").IsRoot() = true, want false")
	}
}

func TestComponents(t *testing.T) {
	p, err := Parse("/a/b/c")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"a", "b", "c"}
	if got := p.Components(); !reflect.DeepEqual(got, want) {
		t.Errorf("Components() = %v, want %v", got, want)
	}

	root, err := Parse("/")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := root.Components(); len(got) != 0 {
		t.Errorf("root Components() = %v, want empty", got)
	}
}

func TestParent(t *testing.T) {
	p, err := Parse("/a/b/c")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	parent, ok := p.Parent()
	if !ok {
		t.Fatalf("Parent() ok = false, want true")
	}
	if got, want := parent.String(), "/a/b"; got != want {
		t.Errorf("Parent().String() = %q, want %q", got, want)
	}

	root, err := Parse("/")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := root.Parent(); ok {
		t.Errorf("root Parent() ok = true, want false")
	}
}

func TestName(t *testing.T) {
	p, err := Parse("/a/b/c")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got, want := p.Name(), "c"; got != want {
		t.Errorf("Name() = %q, want %q", got, want)
	}

	root, err := Parse("/")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := root.Name(); got != "" {
		t.Errorf("root Name() = %q, want empty", got)
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		child string
		want  string
	}{
		{"root plus child", "/", "notes.txt", "/notes.txt"},
		{"nested plus child", "/a/b", "c", "/a/b/c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, err := Parse(tt.base)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.base, err)
			}
			joined, err := base.Join(tt.child)
			if err != nil {
				t.Fatalf("Join(%q): %v", tt.child, err)
			}
			if got := joined.String(); got != tt.want {
				t.Errorf("Join(%q) = %q, want %q", tt.child, got, tt.want)
			}
		})
	}
}

func TestJoinRejectsInvalidComponents(t *testing.T) {
	base, err := Parse("/a")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		name  string
		child string
	}{
		{"empty", ""},
		{"dot", "."},
		{"dotdot", ".."},
		{"contains slash", "b/c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := base.Join(tt.child); !errors.Is(err, vfserrors.ErrInvalidPath) {
				t.Errorf("Join(%q) error = %v, want vfserrors.ErrInvalidPath", tt.child, err)
			}
		})
	}
}

func TestDepth(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"/", 0},
		{"/a", 1},
		{"/a/b/c", 3},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p, err := Parse(tt.path)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.path, err)
			}
			if got := p.Depth(); got != tt.want {
				t.Errorf("Depth() = %d, want %d", got, tt.want)
			}
		})
	}
}
