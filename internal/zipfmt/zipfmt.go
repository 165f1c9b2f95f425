// Package zipfmt parses the trailing index of a zip archive into entry
// records. This avoids circular imports between parzip and its internal
// packages and keeps the on-disk byte layout out of the acquisition core.
//
// The parser walks the end-of-central-directory record (scanning backward
// past an archive comment), follows the zip64 locator when present, and
// resolves each entry's payload offset by reading its local file header.
package zipfmt

import "errors"

// ErrFormat is returned when the archive's index structure is malformed.
var ErrFormat = errors.New("parzip: malformed zip archive")

// Signatures and fixed record lengths from the zip APPNOTE.
const (
	sigCentralHeader = 0x02014b50
	sigLocalHeader   = 0x04034b50
	sigEOCD          = 0x06054b50
	sigEOCD64        = 0x06064b50
	sigLocator64     = 0x07064b50

	centralHeaderLen = 46
	localHeaderLen   = 30
	eocdLen          = 22
	eocd64Len        = 56
	locator64Len     = 20

	maxCommentLen = 0xffff

	// zip64ExtraID identifies the extended information extra field.
	zip64ExtraID = 0x0001
)
