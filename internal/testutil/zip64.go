package testutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
)

// BuildZip64 hand-assembles a single-entry archive whose central directory
// record carries the zip64 size markers. With withSizes the record includes
// a zip64 extended information field resolving them; without it the sizes
// are left unresolved, which readers must surface as missing metadata
// rather than a crash. The entry is stored (method 0) under name.
func BuildZip64(name string, data []byte) []byte {
	return buildZip64(name, data, true)
}

// BuildZip64MissingSizes is BuildZip64 without the zip64 extra field.
func BuildZip64MissingSizes(name string, data []byte) []byte {
	return buildZip64(name, data, false)
}

func buildZip64(name string, data []byte, withSizes bool) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	u16 := func(v uint16) { _ = binary.Write(&buf, le, v) }
	u32 := func(v uint32) { _ = binary.Write(&buf, le, v) }
	u64 := func(v uint64) { _ = binary.Write(&buf, le, v) }

	crc := crc32.ChecksumIEEE(data)
	size := uint64(len(data))

	// Local file header + payload.
	u32(0x04034b50)
	u16(45) // version needed
	u16(0)  // flags
	u16(0)  // method: store
	u16(0)  // mod time
	u16(0)  // mod date
	u32(crc)
	u32(uint32(size))
	u32(uint32(size))
	u16(uint16(len(name)))
	u16(0) // extra length
	buf.WriteString(name)
	buf.Write(data)

	// Central directory record with zip64 size markers.
	cdOffset := uint64(buf.Len())
	extraLen := uint16(0)
	if withSizes {
		extraLen = 4 + 16
	}
	u32(0x02014b50)
	u16(45) // version made by
	u16(45) // version needed
	u16(0)  // flags
	u16(0)  // method: store
	u16(0)  // mod time
	u16(0)  // mod date
	u32(crc)
	u32(0xFFFFFFFF) // compressed size: in zip64 extra
	u32(0xFFFFFFFF) // uncompressed size: in zip64 extra
	u16(uint16(len(name)))
	u16(extraLen)
	u16(0) // comment length
	u16(0) // disk number start
	u16(0) // internal attributes
	u32(0) // external attributes
	u32(0) // local header offset
	buf.WriteString(name)
	if withSizes {
		u16(0x0001) // zip64 extended information
		u16(16)
		u64(size) // uncompressed
		u64(size) // compressed
	}
	cdSize := uint64(buf.Len()) - cdOffset

	// Zip64 end of central directory record.
	eocd64Offset := uint64(buf.Len())
	u32(0x06064b50)
	u64(44) // size of remaining record
	u16(45) // version made by
	u16(45) // version needed
	u32(0)  // disk number
	u32(0)  // central directory disk
	u64(1)  // entries on this disk
	u64(1)  // entries total
	u64(cdSize)
	u64(cdOffset)

	// Zip64 locator.
	u32(0x07064b50)
	u32(0) // disk with zip64 EOCD
	u64(eocd64Offset)
	u32(1) // total disks

	// End of central directory with zip64 markers.
	u32(0x06054b50)
	u16(0)
	u16(0)
	u16(0xFFFF)
	u16(0xFFFF)
	u32(0xFFFFFFFF)
	u32(0xFFFFFFFF)
	u16(0)

	return buf.Bytes()
}
