package zipfmt

import (
	"encoding/binary"
	"fmt"
	"io"
)

// directory locates the central directory within the archive.
type directory struct {
	entries uint64
	offset  uint64
	size    uint64
}

// findDirectory locates the end-of-central-directory record, following the
// zip64 locator when present, and returns the central directory's extent.
func findDirectory(r io.ReaderAt, size int64) (directory, error) {
	if size < eocdLen {
		return directory{}, fmt.Errorf("%w: no end of central directory", ErrFormat)
	}

	// The EOCD sits at the very end of the archive, possibly followed by a
	// comment of up to 64 KiB. Read the tail and scan backward.
	tailLen := int64(eocdLen + maxCommentLen)
	if tailLen > size {
		tailLen = size
	}
	tail := make([]byte, tailLen)
	if _, err := r.ReadAt(tail, size-tailLen); err != nil {
		return directory{}, fmt.Errorf("read archive tail: %w", err)
	}

	pos := -1
	for i := len(tail) - eocdLen; i >= 0; i-- {
		if binary.LittleEndian.Uint32(tail[i:]) != sigEOCD {
			continue
		}
		commentLen := int(binary.LittleEndian.Uint16(tail[i+20:]))
		if i+eocdLen+commentLen <= len(tail) {
			pos = i
			break
		}
	}
	if pos < 0 {
		return directory{}, fmt.Errorf("%w: no end of central directory", ErrFormat)
	}

	eocd := tail[pos:]
	dir := directory{
		entries: uint64(binary.LittleEndian.Uint16(eocd[10:])),
		size:    uint64(binary.LittleEndian.Uint32(eocd[12:])),
		offset:  uint64(binary.LittleEndian.Uint32(eocd[16:])),
	}

	eocdOffset := size - tailLen + int64(pos)
	dir64, found, err := findDirectory64(r, eocdOffset)
	if err != nil {
		return directory{}, err
	}
	if found {
		dir = dir64
	}

	end := dir.offset + dir.size
	if end < dir.offset || end > uint64(eocdOffset) {
		return directory{}, fmt.Errorf("%w: central directory out of bounds", ErrFormat)
	}
	// A central directory record is at least 46 bytes, so the claimed entry
	// count cannot exceed size/46. Catches corrupt counts before allocation.
	if dir.entries > dir.size/centralHeaderLen {
		return directory{}, fmt.Errorf("%w: entry count exceeds directory size", ErrFormat)
	}

	return dir, nil
}

// findDirectory64 checks for a zip64 EOCD locator immediately before the
// EOCD record and, if present, reads the zip64 EOCD record it points at.
func findDirectory64(r io.ReaderAt, eocdOffset int64) (directory, bool, error) {
	if eocdOffset < locator64Len {
		return directory{}, false, nil
	}

	var loc [locator64Len]byte
	if _, err := r.ReadAt(loc[:], eocdOffset-locator64Len); err != nil {
		return directory{}, false, fmt.Errorf("read zip64 locator: %w", err)
	}
	if binary.LittleEndian.Uint32(loc[:]) != sigLocator64 {
		return directory{}, false, nil
	}

	recOffset := binary.LittleEndian.Uint64(loc[8:])
	avail := eocdOffset - locator64Len
	if avail < eocd64Len || recOffset > uint64(avail-eocd64Len) {
		return directory{}, false, fmt.Errorf("%w: zip64 directory record out of bounds", ErrFormat)
	}

	var rec [eocd64Len]byte
	if _, err := r.ReadAt(rec[:], int64(recOffset)); err != nil {
		return directory{}, false, fmt.Errorf("read zip64 directory record: %w", err)
	}
	if binary.LittleEndian.Uint32(rec[:]) != sigEOCD64 {
		return directory{}, false, fmt.Errorf("%w: bad zip64 directory record signature", ErrFormat)
	}

	return directory{
		entries: binary.LittleEndian.Uint64(rec[32:]),
		size:    binary.LittleEndian.Uint64(rec[40:]),
		offset:  binary.LittleEndian.Uint64(rec[48:]),
	}, true, nil
}
