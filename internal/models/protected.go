package models

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// ProtectedPaths is the set of repository-relative paths whose current-branch
// content must survive every merge. It is built once and never mutated.
type ProtectedPaths struct {
	paths []string
	set   map[string]struct{}
}

// NewProtectedPaths validates and normalizes the given paths.
// Paths are slash-separated and relative to the repository root.
func NewProtectedPaths(paths ...string) (ProtectedPaths, error) {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		clean, err := normalizeProtectedPath(p)
		if err != nil {
			return ProtectedPaths{}, err
		}
		set[clean] = struct{}{}
	}

	list := make([]string, 0, len(set))
	for p := range set {
		list = append(list, p)
	}
	sort.Strings(list)

	return ProtectedPaths{paths: list, set: set}, nil
}

func normalizeProtectedPath(p string) (string, error) {
	raw := strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if raw == "" {
		return "", fmt.Errorf("protected path is empty")
	}
	if strings.HasPrefix(raw, "/") {
		return "", fmt.Errorf("protected path %q must be relative to the repository root", p)
	}
	clean := path.Clean(raw)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("protected path %q escapes the repository root", p)
	}
	return clean, nil
}

// Contains reports whether p is protected (exact match after normalization)
func (pp ProtectedPaths) Contains(p string) bool {
	clean, err := normalizeProtectedPath(p)
	if err != nil {
		return false
	}
	_, ok := pp.set[clean]
	return ok
}

// List returns the protected paths in sorted order
func (pp ProtectedPaths) List() []string {
	out := make([]string, len(pp.paths))
	copy(out, pp.paths)
	return out
}

// Len returns the number of protected paths
func (pp ProtectedPaths) Len() int {
	return len(pp.paths)
}
