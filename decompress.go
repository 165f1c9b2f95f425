package parzip

import (
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
)

// Decompressor returns a decode stream over a bounded compressed source.
// The returned stream must be closed by the caller; Close releases any
// decode state but must not close the underlying source.
type Decompressor func(r io.Reader) (io.ReadCloser, error)

// storeReader is the passthrough decompressor for stored entries.
func storeReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

// deflateReader decodes raw deflate streams.
func deflateReader(r io.Reader) (io.ReadCloser, error) {
	return flate.NewReader(r), nil
}

// decompressPool manages reusable zstd decoders to reduce allocation
// overhead. Decoders are reset onto the next source rather than rebuilt per
// acquisition; a decoder is owned by exactly one entry reader between Get
// and release.
type decompressPool struct {
	pool             sync.Pool
	maxDecoderMemory uint64
}

func newDecompressPool(maxMemory uint64) *decompressPool {
	p := &decompressPool{maxDecoderMemory: maxMemory}
	p.pool.New = func() any {
		dec, err := p.newDecoder(nil)
		if err != nil {
			return nil
		}
		return dec
	}
	return p
}

// Get returns a decode stream over r. Closing the stream returns the
// decoder to the pool.
func (p *decompressPool) Get(r io.Reader) (io.ReadCloser, error) {
	dec, ok := p.pool.Get().(*zstd.Decoder)
	if !ok {
		var err error
		dec, err = p.newDecoder(r)
		if err != nil {
			return nil, err
		}
		return &pooledDecoder{pool: p, dec: dec}, nil
	}

	if err := dec.Reset(r); err != nil {
		dec.Close()
		dec, err = p.newDecoder(r)
		if err != nil {
			return nil, err
		}
	}
	return &pooledDecoder{pool: p, dec: dec}, nil
}

func (p *decompressPool) newDecoder(r io.Reader) (*zstd.Decoder, error) {
	if p.maxDecoderMemory == 0 {
		return zstd.NewReader(r)
	}
	return zstd.NewReader(r, zstd.WithDecoderMaxMemory(p.maxDecoderMemory))
}

// pooledDecoder adapts a pooled zstd decoder to io.ReadCloser. Close is
// idempotent and detaches the decoder from the source before pool return.
type pooledDecoder struct {
	pool *decompressPool
	dec  *zstd.Decoder
}

func (d *pooledDecoder) Read(p []byte) (int, error) {
	return d.dec.Read(p)
}

func (d *pooledDecoder) Close() error {
	if d.dec == nil {
		return nil
	}
	dec := d.dec
	d.dec = nil
	if err := dec.Reset(nil); err != nil {
		dec.Close()
		return nil
	}
	d.pool.pool.Put(dec)
	return nil
}
