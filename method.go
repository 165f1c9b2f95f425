package parzip

// Method identifies the compression algorithm used for an entry's payload.
// The values are zip APPNOTE method ids.
type Method uint16

const (
	Store     Method = 0
	Deflate   Method = 8
	Zstandard Method = 93
)

func (m Method) String() string {
	switch m {
	case Store:
		return "store"
	case Deflate:
		return "deflate"
	case Zstandard:
		return "zstd"
	default:
		return "unknown"
	}
}
