package parzip

import "github.com/spf13/afero"

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithFS resolves the archive name against the given filesystem instead of
// the OS filesystem. The Reader re-opens the archive through this
// filesystem on every acquisition.
func WithFS(fsys afero.Fs) ReaderOption {
	return func(r *Reader) {
		r.fsys = fsys
	}
}

// WithDecompressor registers a decompressor for a compression method,
// overriding the built-in one if present. Decompressors must be safe for
// concurrent use; each acquisition calls the factory with its own bounded
// source.
func WithDecompressor(m Method, d Decompressor) ReaderOption {
	return func(r *Reader) {
		if r.decompressors == nil {
			r.decompressors = make(map[Method]Decompressor)
		}
		r.decompressors[m] = d
	}
}

// WithMaxDecoderMemory caps the memory a single zstd decoder may use.
// Zero (the default) applies no limit.
func WithMaxDecoderMemory(limit uint64) ReaderOption {
	return func(r *Reader) {
		r.maxDecoderMemory = limit
	}
}

// WithEntryCache keeps up to n decoded entries in a fixed-size LRU cache,
// serving repeated ReadEntry calls without re-opening the archive.
// Zero (the default) disables caching.
func WithEntryCache(n int) ReaderOption {
	return func(r *Reader) {
		r.cacheSize = n
	}
}
