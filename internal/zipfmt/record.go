package zipfmt

import "time"

// Record describes one archive entry as recorded in the central directory.
//
// DataOffset is the absolute position of the entry's payload, resolved by
// reading the entry's local file header. SizesKnown is false when the
// central directory carries the zip64 size markers but no zip64 extra
// field to resolve them; such entries can be listed but not read.
type Record struct {
	Name             string
	Method           uint16
	CRC32            uint32
	CompressedSize   uint64
	UncompressedSize uint64
	SizesKnown       bool
	HeaderOffset     uint64
	DataOffset       uint64
	Modified         time.Time
}

// msdosTime converts an MS-DOS date/time pair to a UTC time.Time.
// The encoding has two-second resolution and no epoch before 1980.
func msdosTime(dosDate, dosTime uint16) time.Time {
	return time.Date(
		int(dosDate>>9)+1980,
		time.Month(dosDate>>5&0x0f),
		int(dosDate&0x1f),
		int(dosTime>>11),
		int(dosTime>>5&0x3f),
		int(dosTime&0x1f)*2,
		0,
		time.UTC,
	)
}
