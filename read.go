package parzip

import (
	"fmt"
	"io"
	"strconv"

	"github.com/VivekPanyam/parzip/internal/sizing"
)

// ReadEntry decodes the entire payload of the entry at index.
//
// With an entry cache configured (WithEntryCache), repeated reads of the
// same index are served from memory and concurrent reads of a missing
// index are collapsed into a single acquisition. Cached content is shared
// across calls and must be treated as immutable.
func (r *Reader) ReadEntry(index int) ([]byte, error) {
	if index < 0 || index >= len(r.entries) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfBounds, index)
	}

	if r.cache == nil {
		return r.readEntry(index)
	}

	if content, ok := r.cache.Get(index); ok {
		return content, nil
	}

	v, err, _ := r.fetchGroup.Do(strconv.Itoa(index), func() (any, error) {
		content, err := r.readEntry(index)
		if err != nil {
			return nil, err
		}
		r.cache.Add(index, content)
		return content, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (r *Reader) readEntry(index int) ([]byte, error) {
	er, err := r.EntryReader(index)
	if err != nil {
		return nil, err
	}
	defer er.Close()

	size, known := er.entry.UncompressedSize()
	if !known {
		return nil, fmt.Errorf("read %s: %w", er.entry.Name, ErrMissingSize)
	}
	n, err := sizing.ToInt(size, ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", er.entry.Name, err)
	}

	content := make([]byte, n)
	if _, err := io.ReadFull(er, content); err != nil {
		return nil, err
	}
	// Drain drives the post-decode length validation in Read.
	var scratch [1]byte
	for {
		_, err := er.Read(scratch[:])
		if err == io.EOF {
			return content, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
