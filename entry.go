package parzip

import (
	"time"

	"github.com/VivekPanyam/parzip/internal/zipfmt"
)

// Entry describes one archive entry. Entries are created once during reader
// construction, in central directory order, and never mutated; the entry's
// index in that order is its public identity and stays valid for the
// reader's lifetime.
type Entry struct {
	// Name is the entry's path as stored in the archive. Names are not
	// guaranteed unique; Lookup resolves duplicates to the lowest index.
	Name string

	// Method is the compression algorithm used for the payload.
	Method Method

	// DataOffset is the absolute byte position of the payload within the
	// archive.
	DataOffset uint64

	// CRC32 is the checksum recorded in the central directory. It is
	// carried for callers; this package never verifies it.
	CRC32 uint32

	// Modified is the entry's modification time (two-second resolution).
	Modified time.Time

	compressedSize   uint64
	uncompressedSize uint64
	sizesKnown       bool
}

// CompressedSize returns the payload's on-disk byte count. The second
// return is false when the central directory left the size unresolved;
// such entries cannot be read.
func (e Entry) CompressedSize() (uint64, bool) {
	return e.compressedSize, e.sizesKnown
}

// UncompressedSize returns the payload's decoded byte count, or false when
// unresolved.
func (e Entry) UncompressedSize() (uint64, bool) {
	return e.uncompressedSize, e.sizesKnown
}

// IsDir reports whether the entry records a directory.
func (e Entry) IsDir() bool {
	return len(e.Name) > 0 && e.Name[len(e.Name)-1] == '/'
}

func entryFromRecord(rec *zipfmt.Record) Entry {
	return Entry{
		Name:             rec.Name,
		Method:           Method(rec.Method),
		DataOffset:       rec.DataOffset,
		CRC32:            rec.CRC32,
		Modified:         rec.Modified,
		compressedSize:   rec.CompressedSize,
		uncompressedSize: rec.UncompressedSize,
		sizesKnown:       rec.SizesKnown,
	}
}
