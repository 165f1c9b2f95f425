package parzip

import (
	"errors"

	"github.com/VivekPanyam/parzip/internal/zipfmt"
)

// Sentinel errors for archive operations.
var (
	// ErrIndexOutOfBounds is returned when an entry index is outside the
	// archive's entry sequence. Detected before any file is opened.
	ErrIndexOutOfBounds = errors.New("parzip: entry index out of bounds")

	// ErrMissingSize is returned when an entry's central directory record
	// does not resolve its size fields, leaving the payload unboundable.
	ErrMissingSize = errors.New("parzip: entry size metadata missing")

	// ErrUnsupportedMethod is returned when no decompressor is registered
	// for an entry's compression method.
	ErrUnsupportedMethod = errors.New("parzip: unsupported compression method")

	// ErrDecompression is returned when a decode stream fails or ends
	// before the entry's declared uncompressed size.
	ErrDecompression = errors.New("parzip: decompression failed")

	// ErrSizeOverflow is returned when byte counts exceed supported limits
	// or a decode stream yields more than the declared uncompressed size.
	ErrSizeOverflow = errors.New("parzip: size overflow")

	// ErrTruncated is returned when an entry's payload extent lies beyond
	// the archive's current length.
	ErrTruncated = errors.New("parzip: entry data beyond archive bounds")
)

// ErrFormat is returned by OpenReader when the archive's index structure is
// malformed. Re-exported from the format parser.
var ErrFormat = zipfmt.ErrFormat
