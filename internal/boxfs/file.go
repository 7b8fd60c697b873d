package boxfs

import (
	"fmt"

	"github.com/desertwitch/boxfs/internal/block"
	"github.com/desertwitch/boxfs/internal/boxpath"
)

func (f *FS) fileChain(offset int64) ([]*block.FileBlock, error) {
	var chain []*block.FileBlock

	for offset != 0 {
		fb, err := f.catalog.FileBlock(offset)
		if err != nil {
			return nil, err
		}
		chain = append(chain, fb)

		offset, err = fb.NextOffset()
		if err != nil {
			return nil, err
		}
	}

	return chain, nil
}

// resolveFile returns the block chain of the file at p.
func (f *FS) resolveFile(p boxpath.Path) ([]*block.FileBlock, bool, error) {
	parent, name, ok, err := f.resolveParent(p)
	if err != nil || !ok {
		return nil, false, err
	}

	c, ok, err := f.lookup(parent, name, block.TypeFile)
	if err != nil || !ok {
		return nil, false, err
	}

	chain, err := f.fileChain(c.entry.ChildOffset)
	if err != nil {
		return nil, false, err
	}

	return chain, true, nil
}

// WriteFile replaces the content of the file at p with data. Blocks that are
// not needed anymore stay in the chain with no content. It returns false when
// p is not a file.
func (f *FS) WriteFile(p boxpath.Path, data []byte) (bool, error) {
	chain, ok, err := f.resolveFile(p)
	if err != nil || !ok {
		return false, err
	}

	rest := data
	for _, fb := range chain {
		n := min(fb.MaxContentSize(), len(rest))
		if err := fb.SetContent(rest[:n]); err != nil {
			return false, fmt.Errorf("(boxfs) failed to write %s: %w", p, err)
		}
		rest = rest[n:]
	}

	if err := f.extendFile(chain[len(chain)-1], rest); err != nil {
		return false, fmt.Errorf("(boxfs) failed to write %s: %w", p, err)
	}

	return true, nil
}

// AppendFile adds data to the end of the file at p. It returns false when p
// is not a file.
func (f *FS) AppendFile(p boxpath.Path, data []byte) (bool, error) {
	chain, ok, err := f.resolveFile(p)
	if err != nil || !ok {
		return false, err
	}

	// Content always fills the chain from the front, so the first blocks with
	// room left are the ones at its logical end.
	rest := data
	for _, fb := range chain {
		if len(rest) == 0 {
			break
		}

		free, err := fb.AppendContentSize()
		if err != nil {
			return false, err
		}

		n := min(free, len(rest))
		if n == 0 {
			continue
		}

		if err := fb.AppendContent(rest[:n]); err != nil {
			return false, fmt.Errorf("(boxfs) failed to append to %s: %w", p, err)
		}
		rest = rest[n:]
	}

	if err := f.extendFile(chain[len(chain)-1], rest); err != nil {
		return false, fmt.Errorf("(boxfs) failed to append to %s: %w", p, err)
	}

	return true, nil
}

// extendFile links continuation blocks after tail until all of data is
// stored.
func (f *FS) extendFile(tail *block.FileBlock, data []byte) error {
	for len(data) > 0 {
		size := min(block.NextFilePayloadSize(len(data), tail.PayloadSize()), block.MaxPayloadSize)

		next, err := f.catalog.CreateFileBlock(size)
		if err != nil {
			return fmt.Errorf("failed to grow file: %w", err)
		}

		n := min(next.MaxContentSize(), len(data))
		if err := next.SetContent(data[:n]); err != nil {
			return err
		}

		if err := tail.SetNextOffset(next.Offset()); err != nil {
			return err
		}

		tail = next
		data = data[n:]
	}

	return nil
}

// ReadFile returns the content of the file at p.
func (f *FS) ReadFile(p boxpath.Path) ([]byte, bool, error) {
	chain, ok, err := f.resolveFile(p)
	if err != nil || !ok {
		return nil, false, err
	}

	content := []byte{}

	for _, fb := range chain {
		part, err := fb.Content()
		if err != nil {
			return nil, false, fmt.Errorf("(boxfs) failed to read %s: %w", p, err)
		}
		content = append(content, part...)
	}

	return content, true, nil
}

// FileSize returns the content length of the file at p.
func (f *FS) FileSize(p boxpath.Path) (int64, bool, error) {
	chain, ok, err := f.resolveFile(p)
	if err != nil || !ok {
		return 0, false, err
	}

	var size int64

	for _, fb := range chain {
		n, err := fb.ContentSize()
		if err != nil {
			return 0, false, err
		}
		size += int64(n)
	}

	return size, true, nil
}
