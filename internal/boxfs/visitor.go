package boxfs

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/desertwitch/boxfs/internal/block"
	"github.com/desertwitch/boxfs/internal/boxpath"
	"github.com/zeebo/blake3"
)

// VisitResult tells [FS.VisitFileTree] how to go on after a callback.
type VisitResult int

const (
	// Continue goes on with the walk.
	Continue VisitResult = iota

	// Terminate ends the whole walk.
	Terminate

	// SkipSubtree does not descend into the directory just pre-visited. Its
	// post-visit callback is still called.
	SkipSubtree

	// SkipSiblings currently ends the whole walk, same as [Terminate].
	SkipSiblings
)

// String returns the human-readable name of a [VisitResult].
func (r VisitResult) String() string {
	switch r {
	case Continue:
		return "continue"
	case Terminate:
		return "terminate"
	case SkipSubtree:
		return "skip-subtree"
	case SkipSiblings:
		return "skip-siblings"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

func (r VisitResult) ends() bool {
	return r == Terminate || r == SkipSiblings
}

// Visitor receives the entries of a tree walk. All paths are full paths
// inside the container. A returned error ends the walk and is passed on to
// the caller of [FS.VisitFileTree].
type Visitor interface {
	PreVisitDirectory(dir boxpath.Path) (VisitResult, error)
	VisitFile(file boxpath.Path) (VisitResult, error)
	PostVisitDirectory(dir boxpath.Path) (VisitResult, error)
}

// VisitorFuncs is a [Visitor] built from plain functions. Nil functions
// return [Continue].
type VisitorFuncs struct {
	PreVisitDirectoryFunc  func(dir boxpath.Path) (VisitResult, error)
	VisitFileFunc          func(file boxpath.Path) (VisitResult, error)
	PostVisitDirectoryFunc func(dir boxpath.Path) (VisitResult, error)
}

// PreVisitDirectory calls PreVisitDirectoryFunc if set.
func (v VisitorFuncs) PreVisitDirectory(dir boxpath.Path) (VisitResult, error) {
	if v.PreVisitDirectoryFunc == nil {
		return Continue, nil
	}

	return v.PreVisitDirectoryFunc(dir)
}

// VisitFile calls VisitFileFunc if set.
func (v VisitorFuncs) VisitFile(file boxpath.Path) (VisitResult, error) {
	if v.VisitFileFunc == nil {
		return Continue, nil
	}

	return v.VisitFileFunc(file)
}

// PostVisitDirectory calls PostVisitDirectoryFunc if set.
func (v VisitorFuncs) PostVisitDirectory(dir boxpath.Path) (VisitResult, error) {
	if v.PostVisitDirectoryFunc == nil {
		return Continue, nil
	}

	return v.PostVisitDirectoryFunc(dir)
}

// VisitFileTree walks the entries below the directory at p depth-first, in
// storage order, calling v for each of them. The directory at p itself is not
// visited. It returns false when p is not a directory.
func (f *FS) VisitFileTree(p boxpath.Path, v Visitor) (bool, error) {
	dir, ok, err := f.resolveDirectory(p)
	if err != nil || !ok {
		return false, err
	}

	if _, err := f.walk(dir, p, v); err != nil {
		return false, err
	}

	return true, nil
}

// walk returns false once the walk has ended early.
func (f *FS) walk(dir int64, p boxpath.Path, v Visitor) (bool, error) {
	children, err := f.children(dir)
	if err != nil {
		return false, err
	}

	for _, c := range children {
		cp, err := p.With(c.name)
		if err != nil {
			return false, fmt.Errorf("(boxfs) stored name in %s: %w", p, err)
		}

		switch c.kind {
		case block.TypeDirectory:
			result, err := v.PreVisitDirectory(cp)
			if err != nil || result.ends() {
				return false, err
			}

			if result != SkipSubtree {
				more, err := f.walk(c.entry.ChildOffset, cp, v)
				if err != nil || !more {
					return false, err
				}
			}

			result, err = v.PostVisitDirectory(cp)
			if err != nil || result.ends() {
				return false, err
			}

		case block.TypeFile:
			result, err := v.VisitFile(cp)
			if err != nil || result != Continue {
				return false, err
			}
		}
	}

	return true, nil
}

// VisualTree returns an indented listing of everything below the directory
// at p. Every entry is on its own line, indented by two spaces per level,
// with directories suffixed by a separator.
func (f *FS) VisualTree(p boxpath.Path) (string, bool, error) {
	v := &visualTreeVisitor{}

	ok, err := f.VisitFileTree(p, v)
	if err != nil || !ok {
		return "", false, err
	}

	return v.tree.String(), true, nil
}

type visualTreeVisitor struct {
	tree  strings.Builder
	level int
}

func (v *visualTreeVisitor) PreVisitDirectory(dir boxpath.Path) (VisitResult, error) {
	if err := v.writeEntry(dir, true); err != nil {
		return Terminate, err
	}
	v.level++

	return Continue, nil
}

func (v *visualTreeVisitor) VisitFile(file boxpath.Path) (VisitResult, error) {
	if err := v.writeEntry(file, false); err != nil {
		return Terminate, err
	}

	return Continue, nil
}

func (v *visualTreeVisitor) PostVisitDirectory(_ boxpath.Path) (VisitResult, error) {
	v.level--

	return Continue, nil
}

func (v *visualTreeVisitor) writeEntry(p boxpath.Path, isDirectory bool) error {
	name, err := p.Last()
	if err != nil {
		return err
	}

	v.tree.WriteString(strings.Repeat("  ", v.level))
	v.tree.WriteString(name)

	if isDirectory {
		v.tree.WriteString(boxpath.Separator)
	}
	v.tree.WriteString("\n")

	return nil
}

// copyVisitor recreates every visited entry below from in dst below to,
// reading file content from src. With verify set, every copied file is read
// back and compared by its blake3 checksum.
type copyVisitor struct {
	src    *FS
	dst    *FS
	from   boxpath.Path
	to     boxpath.Path
	verify bool

	directories int
	files       int
	bytes       int64
}

func newCopyVisitor(src *FS, dst *FS, from, to boxpath.Path, verify bool) *copyVisitor {
	return &copyVisitor{
		src:    src,
		dst:    dst,
		from:   from,
		to:     to,
		verify: verify,
	}
}

func (v *copyVisitor) target(p boxpath.Path) boxpath.Path {
	return v.to.WithPath(p.RemovePrefix(v.from))
}

func (v *copyVisitor) PreVisitDirectory(dir boxpath.Path) (VisitResult, error) {
	target := v.target(dir)

	created, err := v.dst.CreateDirectory(target)
	if err != nil {
		return Terminate, err
	}

	if !created {
		return Terminate, fmt.Errorf("(boxfs) %w: directory %s", ErrCopyFailed, target)
	}
	v.directories++

	return Continue, nil
}

func (v *copyVisitor) VisitFile(file boxpath.Path) (VisitResult, error) {
	target := v.target(file)

	content, ok, err := v.src.ReadFile(file)
	if err != nil {
		return Terminate, err
	}

	if !ok {
		return Terminate, fmt.Errorf("(boxfs) %w: %s", ErrSourceVanished, file)
	}

	created, err := v.dst.CreateFile(target, len(content))
	if err != nil {
		return Terminate, err
	}

	if !created {
		return Terminate, fmt.Errorf("(boxfs) %w: file %s", ErrCopyFailed, target)
	}

	if _, err := v.dst.WriteFile(target, content); err != nil {
		return Terminate, err
	}

	if v.verify {
		if err := v.verifyFile(target, content); err != nil {
			return Terminate, err
		}
	}

	v.files++
	v.bytes += int64(len(content))

	return Continue, nil
}

func (v *copyVisitor) PostVisitDirectory(_ boxpath.Path) (VisitResult, error) {
	return Continue, nil
}

func (v *copyVisitor) verifyFile(target boxpath.Path, content []byte) error {
	written, ok, err := v.dst.ReadFile(target)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("(boxfs) %w: %s", ErrCopyFailed, target)
	}

	srcSum := blake3.Sum256(content)
	dstSum := blake3.Sum256(written)

	srcChecksum := hex.EncodeToString(srcSum[:])
	dstChecksum := hex.EncodeToString(dstSum[:])

	if srcChecksum != dstChecksum {
		return fmt.Errorf("(boxfs) %w: %s: %s (src) != %s (dst)", ErrHashMismatch, target, srcChecksum, dstChecksum)
	}

	return nil
}
