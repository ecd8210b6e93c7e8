// Package vfspath implements the absolute-path parser and joiner used to
// address files and directories inside the hidden tree. Paths are always
// "/"-separated, always absolute, and never contain "." or ".." segments.
package vfspath

import (
	"fmt"
	"strings"

	"github.com/slackvfs/svfs/vfserrors"
)

// Path is a validated, absolute VFS path.
type Path struct {
	components []string
}

// Parse validates and parses an absolute path string. The root path is "/".
func Parse(s string) (Path, error) {
	if !strings.HasPrefix(s, "/") {
		return Path{}, fmt.Errorf("%w: path must be absolute (start with /): %q", vfserrors.ErrInvalidPath, s)
	}

	raw := strings.Split(s, "/")
	components := make([]string, 0, len(raw))
	for _, c := range raw {
		if c == "" {
			continue
		}
		if err := validateComponent(c); err != nil {
			return Path{}, err
		}
		components = append(components, c)
	}
	return Path{components: components}, nil
}

func validateComponent(c string) error {
	if c == "." || c == ".." || strings.Contains(c, "/") {
		return fmt.Errorf("%w: invalid path component %q", vfserrors.ErrInvalidPath, c)
	}
	return nil
}

// IsRoot reports whether this path is the root.
func (p Path) IsRoot() bool {
	return len(p.components) == 0
}

// Components returns the path's components, root-to-leaf.
func (p Path) Components() []string {
	return p.components
}

// Parent returns the parent path, or false if p is root.
func (p Path) Parent() (Path, bool) {
	if p.IsRoot() {
		return Path{}, false
	}
	parent := make([]string, len(p.components)-1)
	copy(parent, p.components[:len(p.components)-1])
	return Path{components: parent}, true
}

// Name returns the last component, or "" for root.
func (p Path) Name() string {
	if p.IsRoot() {
		return ""
	}
	return p.components[len(p.components)-1]
}

// Join appends a single child name, returning the resulting path.
func (p Path) Join(name string) (Path, error) {
	if name == "" {
		return Path{}, fmt.Errorf("%w: invalid path component %q", vfserrors.ErrInvalidPath, name)
	}
	if err := validateComponent(name); err != nil {
		return Path{}, err
	}
	joined := make([]string, len(p.components), len(p.components)+1)
	copy(joined, p.components)
	joined = append(joined, name)
	return Path{components: joined}, nil
}

// String renders the canonical form of the path.
func (p Path) String() string {
	if p.IsRoot() {
		return "/"
	}
	return "/" + strings.Join(p.components, "/")
}

// Depth returns the number of components (0 for root).
func (p Path) Depth() int {
	return len(p.components)
}
