// Package parzip provides concurrent, random-access reading of individually
// compressed entries inside a single seekable zip archive.
//
// A Reader indexes the archive's central directory once at construction and
// holds no open file handle afterward. Each call to EntryReader opens a
// fresh, exclusively-owned handle, bounds it to the entry's payload, and
// wraps it in the entry's decompressor, so any number of entries can be
// read at the same time without a shared lock:
//
//	r, err := parzip.OpenReader("archive.zip")
//	if err != nil {
//	    return err
//	}
//
//	var g errgroup.Group
//	for i := range r.Len() {
//	    g.Go(func() error {
//	        er, err := r.EntryReader(i)
//	        if err != nil {
//	            return err
//	        }
//	        defer er.Close()
//	        _, err = io.Copy(dst[i], er)
//	        return err
//	    })
//	}
//	err = g.Wait()
//
// Every open entry consumes a file descriptor, so callers reading archives
// with many entries should bound how many acquisitions are in flight (for
// example with errgroup's SetLimit); descriptor exhaustion surfaces as an
// ordinary I/O error from the acquisition call.
//
// Store (passthrough), deflate, and zstd entries are supported out of the
// box; other methods can be added with WithDecompressor.
package parzip
