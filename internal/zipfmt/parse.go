package zipfmt

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/VivekPanyam/parzip/internal/sizing"
)

// Parse reads the archive's trailing index and returns one record per entry
// in central directory order. It is invoked exactly once per archive, during
// reader construction; the source is not retained.
func Parse(r io.ReaderAt, size int64) ([]Record, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: negative archive size", ErrFormat)
	}

	dir, err := findDirectory(r, size)
	if err != nil {
		return nil, err
	}

	dirOffset, err := sizing.ToInt64(dir.offset, ErrFormat)
	if err != nil {
		return nil, err
	}
	dirSize, err := sizing.ToInt(dir.size, ErrFormat)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, dirSize)
	if _, err := io.ReadFull(io.NewSectionReader(r, dirOffset, int64(dirSize)), buf); err != nil {
		return nil, fmt.Errorf("read central directory: %w", err)
	}

	records := make([]Record, 0, dir.entries)
	for i := uint64(0); i < dir.entries; i++ {
		rec, rest, err := parseCentralHeader(buf)
		if err != nil {
			return nil, err
		}
		if err := resolveDataOffset(r, size, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
		buf = rest
	}

	return records, nil
}

// parseCentralHeader decodes one central directory record from the front of
// buf and returns the remainder.
func parseCentralHeader(buf []byte) (Record, []byte, error) {
	if len(buf) < centralHeaderLen {
		return Record{}, nil, fmt.Errorf("%w: truncated central directory", ErrFormat)
	}
	if binary.LittleEndian.Uint32(buf) != sigCentralHeader {
		return Record{}, nil, fmt.Errorf("%w: bad central directory signature", ErrFormat)
	}

	nameLen := int(binary.LittleEndian.Uint16(buf[28:]))
	extraLen := int(binary.LittleEndian.Uint16(buf[30:]))
	commentLen := int(binary.LittleEndian.Uint16(buf[32:]))
	total := centralHeaderLen + nameLen + extraLen + commentLen
	if len(buf) < total {
		return Record{}, nil, fmt.Errorf("%w: truncated central directory", ErrFormat)
	}

	rec := Record{
		Name:             string(buf[centralHeaderLen : centralHeaderLen+nameLen]),
		Method:           binary.LittleEndian.Uint16(buf[10:]),
		CRC32:            binary.LittleEndian.Uint32(buf[16:]),
		CompressedSize:   uint64(binary.LittleEndian.Uint32(buf[20:])),
		UncompressedSize: uint64(binary.LittleEndian.Uint32(buf[24:])),
		SizesKnown:       true,
		HeaderOffset:     uint64(binary.LittleEndian.Uint32(buf[42:])),
		Modified: msdosTime(
			binary.LittleEndian.Uint16(buf[14:]),
			binary.LittleEndian.Uint16(buf[12:]),
		),
	}

	extra := buf[centralHeaderLen+nameLen : centralHeaderLen+nameLen+extraLen]
	if err := applyZip64Extra(&rec, extra); err != nil {
		return Record{}, nil, err
	}

	return rec, buf[total:], nil
}

// applyZip64Extra resolves the 0xFFFFFFFF size and offset markers from the
// zip64 extended information field. Missing size data leaves SizesKnown
// false rather than failing: the entry can still be listed, and the read
// path reports the absence as a recoverable error. A missing header offset
// is fatal since the entry's payload cannot be located at all.
func applyZip64Extra(rec *Record, extra []byte) error {
	needCSize := rec.CompressedSize == 0xFFFFFFFF
	needUSize := rec.UncompressedSize == 0xFFFFFFFF
	needOffset := rec.HeaderOffset == 0xFFFFFFFF

	for len(extra) >= 4 {
		id := binary.LittleEndian.Uint16(extra)
		fieldLen := int(binary.LittleEndian.Uint16(extra[2:]))
		if len(extra) < 4+fieldLen {
			return fmt.Errorf("%w: truncated extra field", ErrFormat)
		}
		field := extra[4 : 4+fieldLen]
		extra = extra[4+fieldLen:]

		if id != zip64ExtraID {
			continue
		}

		// Fields appear in fixed order, present only for set markers.
		if needUSize {
			if len(field) < 8 {
				break
			}
			rec.UncompressedSize = binary.LittleEndian.Uint64(field)
			field = field[8:]
			needUSize = false
		}
		if needCSize {
			if len(field) < 8 {
				break
			}
			rec.CompressedSize = binary.LittleEndian.Uint64(field)
			field = field[8:]
			needCSize = false
		}
		if needOffset {
			if len(field) < 8 {
				break
			}
			rec.HeaderOffset = binary.LittleEndian.Uint64(field)
			needOffset = false
		}
		break
	}

	if needOffset {
		return fmt.Errorf("%w: entry %q has unresolved header offset", ErrFormat, rec.Name)
	}
	rec.SizesKnown = !needCSize && !needUSize
	return nil
}

// resolveDataOffset reads the entry's local file header to compute the
// absolute position of its payload. The local header repeats the name and
// carries its own extra field, so the payload does not start at a fixed
// distance from the header offset.
func resolveDataOffset(r io.ReaderAt, size int64, rec *Record) error {
	headerOffset, err := sizing.ToInt64(rec.HeaderOffset, ErrFormat)
	if err != nil {
		return err
	}
	if headerOffset+localHeaderLen > size {
		return fmt.Errorf("%w: entry %q local header out of bounds", ErrFormat, rec.Name)
	}

	var hdr [localHeaderLen]byte
	if _, err := r.ReadAt(hdr[:], headerOffset); err != nil {
		return fmt.Errorf("read local header for %q: %w", rec.Name, err)
	}
	if binary.LittleEndian.Uint32(hdr[:]) != sigLocalHeader {
		return fmt.Errorf("%w: bad local header signature for entry %q", ErrFormat, rec.Name)
	}

	nameLen := uint64(binary.LittleEndian.Uint16(hdr[26:]))
	extraLen := uint64(binary.LittleEndian.Uint16(hdr[28:]))
	dataOffset, ok := sizing.AddUint64(rec.HeaderOffset, localHeaderLen+nameLen+extraLen)
	if !ok || dataOffset > uint64(size) {
		return fmt.Errorf("%w: entry %q data offset out of bounds", ErrFormat, rec.Name)
	}

	rec.DataOffset = dataOffset
	return nil
}
