package parzip

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/afero"

	"github.com/VivekPanyam/parzip/internal/sizing"
)

// EntryReader streams one entry's decoded payload. It exclusively owns one
// archive handle, a forward-only bounded cursor over it, and the active
// decode state; Close releases all three. An exhausted or closed reader is
// not reusable — acquire a fresh one for another pass over the same entry.
type EntryReader struct {
	entry Entry
	file  afero.File
	rc    io.ReadCloser

	remaining uint64
	closed    bool
}

// Entry returns the descriptor of the entry being read.
func (er *EntryReader) Entry() Entry {
	return er.entry
}

// Read decodes the next chunk of the entry's payload. Reads are strictly
// sequential and never cross into adjacent archive data. The decoded
// stream's length is validated against the entry's declared uncompressed
// size: a short stream fails with ErrDecompression, a long one with
// ErrSizeOverflow.
func (er *EntryReader) Read(p []byte) (int, error) {
	if er.closed {
		return 0, fs.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	if er.remaining == 0 {
		return er.readExtra()
	}
	if uint64(len(p)) > er.remaining {
		p = p[:er.remaining]
	}

	n, err := er.rc.Read(p)
	if n > 0 {
		er.remaining -= uint64(n)
	}

	if err == io.EOF {
		if er.remaining != 0 {
			return n, fmt.Errorf("read %s: %w: unexpected EOF", er.entry.Name, ErrDecompression)
		}
		return n, io.EOF
	}
	return n, err
}

// readExtra confirms the decode stream is exhausted once the declared size
// has been delivered.
func (er *EntryReader) readExtra() (int, error) {
	var scratch [1]byte
	n, err := er.rc.Read(scratch[:])
	if n > 0 {
		return 0, fmt.Errorf("read %s: %w", er.entry.Name, ErrSizeOverflow)
	}
	if err == io.EOF {
		return 0, io.EOF
	}
	return 0, err
}

// Close releases the decode state and the reader's archive handle. It is
// idempotent and safe to call on a partially consumed reader.
func (er *EntryReader) Close() error {
	if er.closed {
		return nil
	}
	er.closed = true

	err := er.rc.Close()
	if cerr := er.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// boundedSection validates the entry's payload extent against the
// archive's current length and returns a view limited to it, so downstream
// reads cannot run past the entry into adjacent data or the trailing
// index. The raw window is the compressed payload's extent; the
// uncompressed size is validated after decoding, in Read.
func boundedSection(f afero.File, entry *Entry, compressedSize uint64) (*io.SectionReader, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	end, ok := sizing.AddUint64(entry.DataOffset, compressedSize)
	if !ok {
		return nil, fmt.Errorf("read %s: %w", entry.Name, ErrSizeOverflow)
	}
	if info.Size() < 0 || end > uint64(info.Size()) {
		return nil, fmt.Errorf("read %s: %w", entry.Name, ErrTruncated)
	}

	offset, err := sizing.ToInt64(entry.DataOffset, ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Name, err)
	}
	length, err := sizing.ToInt64(compressedSize, ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Name, err)
	}

	return io.NewSectionReader(f, offset, length), nil
}
