// Package blobpath models the repository root inside a bucket as an ordered
// list of path segments.
package blobpath

import "strings"

// Separator delimits segments in settings and object keys.
const Separator = "/"

// Path is an immutable sequence of non-empty segments. The zero value is
// the bucket root.
type Path struct {
	segments []string
}

// Root returns the empty path.
func Root() Path {
	return Path{}
}

// Parse splits a base_path setting on "/" and drops empty segments, so
// "a/b", "/a/b/" and "a//b" are the same path.
func Parse(setting string) Path {
	p := Root()
	if setting == "" {
		return p
	}
	for _, seg := range strings.Split(setting, Separator) {
		if seg == "" {
			continue
		}
		p = p.Add(seg)
	}
	return p
}

// Add returns a new path with seg appended. p is unchanged.
func (p Path) Add(seg string) Path {
	segments := make([]string, len(p.segments), len(p.segments)+1)
	copy(segments, p.segments)
	return Path{segments: append(segments, seg)}
}

// Segments returns a copy of the segments.
func (p Path) Segments() []string {
	return append([]string(nil), p.segments...)
}

// IsRoot reports whether p has no segments.
func (p Path) IsRoot() bool {
	return len(p.segments) == 0
}

// String joins the segments with "/". The root is "".
func (p Path) String() string {
	return strings.Join(p.segments, Separator)
}

// Prefix is the object-key prefix for blobs under p: "a/b/" or "" for root.
func (p Path) Prefix() string {
	if p.IsRoot() {
		return ""
	}
	return p.String() + Separator
}

// Key returns the object key for name under p.
func (p Path) Key(name string) string {
	return p.Prefix() + name
}
