package parzip

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"

	"github.com/VivekPanyam/parzip/internal/zipfmt"
)

// Reader provides concurrent random access to the entries of a zip archive.
//
// A Reader holds the archive's name and its indexed entry sequence, never
// an open file handle: each EntryReader call re-opens the archive on its
// own handle, so readers for different entries share no mutable state and
// need no locking. The cost is one open and seek per acquisition, which is
// the right trade for small-to-moderate entry counts.
type Reader struct {
	fsys    afero.Fs
	name    string
	entries []Entry

	decompressors    map[Method]Decompressor
	zstdPool         *decompressPool
	maxDecoderMemory uint64

	cacheSize  int
	cache      *lru.Cache[int, []byte]
	fetchGroup singleflight.Group
}

// OpenReader indexes the archive at name and returns a Reader.
//
// The archive is opened once, handed to the central directory parser, and
// closed again; construction either fully succeeds or fails with nothing
// retained. Open and read failures propagate from the filesystem; a
// malformed index fails with an error wrapping ErrFormat.
func OpenReader(name string, opts ...ReaderOption) (*Reader, error) {
	r := &Reader{
		fsys: afero.NewOsFs(),
		name: name,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(r)
	}
	r.zstdPool = newDecompressPool(r.maxDecoderMemory)

	if r.cacheSize > 0 {
		cache, err := lru.New[int, []byte](r.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("parzip: entry cache: %w", err)
		}
		r.cache = cache
	}

	f, err := r.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	records, err := zipfmt.Parse(f, info.Size())
	if err != nil {
		return nil, err
	}

	r.entries = make([]Entry, len(records))
	for i := range records {
		r.entries[i] = entryFromRecord(&records[i])
	}

	return r, nil
}

// Len returns the number of entries in the archive.
func (r *Reader) Len() int {
	return len(r.entries)
}

// Entries returns the entry sequence in central directory order. The
// returned slice is shared and must be treated as immutable.
func (r *Reader) Entries() []Entry {
	return r.entries
}

// Lookup returns the index and descriptor of the first entry whose name
// exactly equals name. The comparison is case-sensitive and performs no
// path normalization; duplicate names resolve to the lowest index.
func (r *Reader) Lookup(name string) (int, Entry, bool) {
	for i := range r.entries {
		if r.entries[i].Name == name {
			return i, r.entries[i], true
		}
	}
	return 0, Entry{}, false
}

// EntryReader opens the entry at index for reading.
//
// Each call opens a fresh handle to the archive, bounds it to the entry's
// compressed payload, and wraps it in the entry's decompressor. The
// returned reader is independent of the Reader and of every other entry
// reader; closing it releases exactly its own handle. Callers reading many
// entries at once should bound in-flight acquisitions against the OS file
// descriptor budget.
func (r *Reader) EntryReader(index int) (*EntryReader, error) {
	if index < 0 || index >= len(r.entries) {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfBounds, index)
	}
	entry := &r.entries[index]

	compressedSize, ok := entry.CompressedSize()
	if !ok {
		return nil, fmt.Errorf("read %s: %w", entry.Name, ErrMissingSize)
	}
	uncompressedSize, _ := entry.UncompressedSize()

	decompress, err := r.decompressor(entry.Method)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Name, err)
	}

	f, err := r.fsys.Open(r.name)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	section, err := boundedSection(f, entry, compressedSize)
	if err != nil {
		f.Close()
		return nil, err
	}

	rc, err := decompress(section)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read %s: %w: %v", entry.Name, ErrDecompression, err)
	}

	return &EntryReader{
		entry:     *entry,
		file:      f,
		rc:        rc,
		remaining: uncompressedSize,
	}, nil
}

// decompressor resolves the decode transform for a method, preferring
// caller registrations over the built-in set.
func (r *Reader) decompressor(m Method) (Decompressor, error) {
	if d, ok := r.decompressors[m]; ok {
		return d, nil
	}
	switch m {
	case Store:
		return storeReader, nil
	case Deflate:
		return deflateReader, nil
	case Zstandard:
		return r.zstdPool.Get, nil
	default:
		return nil, fmt.Errorf("%w: %s (%d)", ErrUnsupportedMethod, m, uint16(m))
	}
}
