// Package boxpath implements the immutable path type used to address entries
// inside a container.
package boxpath

import (
	"fmt"
	"strings"
)

const (
	// Separator is the separator used when formatting a [Path].
	Separator = "/"

	separators = "/\\"
)

// Path is an immutable, ordered list of path segments. The zero value is the
// root path.
type Path struct {
	segments []string
}

// Root returns the root path, which has no segments.
func Root() Path {
	return Path{}
}

// Parse splits s on "/" and "\" and returns the resulting [Path]. Leading,
// trailing and repeated separators are dropped. Parsing fails with
// [ErrInvalidPath] on "." and ".." segments.
func Parse(s string) (Path, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return strings.ContainsRune(separators, r)
	})

	for _, f := range fields {
		if err := validateSegment(f); err != nil {
			return Path{}, fmt.Errorf("(boxpath) %q: %w", s, err)
		}
	}

	return Path{segments: fields}, nil
}

// MustParse is like [Parse] but panics on an invalid path. It is meant for
// constant paths.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return p
}

// New returns a [Path] made of the given segments, validating each of them.
func New(segments ...string) (Path, error) {
	for _, seg := range segments {
		if err := validateSegment(seg); err != nil {
			return Path{}, fmt.Errorf("(boxpath) %w", err)
		}
	}

	return Path{segments: append([]string(nil), segments...)}, nil
}

// Segments returns a copy of the path's segments.
func (p Path) Segments() []string {
	return append([]string(nil), p.segments...)
}

// Depth returns the number of segments.
func (p Path) Depth() int {
	return len(p.segments)
}

// IsEmpty reports whether p is the root path.
func (p Path) IsEmpty() bool {
	return len(p.segments) == 0
}

// Last returns the final segment.
func (p Path) Last() (string, error) {
	if p.IsEmpty() {
		return "", ErrEmptyPath
	}

	return p.segments[len(p.segments)-1], nil
}

// WithoutLast returns the parent path.
func (p Path) WithoutLast() (Path, error) {
	if p.IsEmpty() {
		return Path{}, ErrEmptyPath
	}

	return Path{segments: p.segments[:len(p.segments)-1:len(p.segments)-1]}, nil
}

// With returns p extended by a single segment.
func (p Path) With(segment string) (Path, error) {
	if err := validateSegment(segment); err != nil {
		return Path{}, fmt.Errorf("(boxpath) %w", err)
	}

	return Path{segments: p.concat([]string{segment})}, nil
}

// WithPath returns p extended by all segments of other.
func (p Path) WithPath(other Path) Path {
	return Path{segments: p.concat(other.segments)}
}

// RemovePrefix compares p and prefix segment by segment from the start and
// returns the rest of p beginning at the first position where they differ.
// A prefix that is not actually a prefix of p still removes the leading run
// that both have in common.
func (p Path) RemovePrefix(prefix Path) Path {
	i := 0
	for i < len(p.segments) && i < len(prefix.segments) && p.segments[i] == prefix.segments[i] {
		i++
	}

	return Path{segments: p.segments[i:len(p.segments):len(p.segments)]}
}

// HasPrefix reports whether all segments of prefix lead p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.segments) > len(p.segments) {
		return false
	}

	for i, seg := range prefix.segments {
		if p.segments[i] != seg {
			return false
		}
	}

	return true
}

// Equal reports whether p and other have the same segments.
func (p Path) Equal(other Path) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}

	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}

	return true
}

// String formats the path with a leading separator, "/" for the root path.
// Since segments cannot contain separators, it is also usable as a map key.
func (p Path) String() string {
	return Separator + strings.Join(p.segments, Separator)
}

// concat always allocates, so that paths never share a backing array.
func (p Path) concat(tail []string) []string {
	segments := make([]string, 0, len(p.segments)+len(tail))
	segments = append(segments, p.segments...)

	return append(segments, tail...)
}

func validateSegment(segment string) error {
	switch {
	case segment == "":
		return fmt.Errorf("%w: empty segment", ErrInvalidPath)
	case segment == "." || segment == "..":
		return fmt.Errorf("%w: segment %q", ErrInvalidPath, segment)
	case strings.ContainsAny(segment, separators):
		return fmt.Errorf("%w: separator in segment %q", ErrInvalidPath, segment)
	}

	return nil
}
