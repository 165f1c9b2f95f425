// Package testutil builds zip archive fixtures for tests.
package testutil

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// Compression method ids from the zip APPNOTE.
const (
	MethodStore     = 0
	MethodDeflate   = 8
	MethodZstandard = 93
)

// TestEntry describes one entry to place in a fixture archive.
type TestEntry struct {
	Name   string
	Data   []byte
	Method uint16
}

// BuildZip writes a zip archive containing the given entries and returns
// its raw bytes. Method 93 entries are compressed with zstd.
func BuildZip(t testing.TB, entries []TestEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(MethodZstandard, func(w io.Writer) (io.WriteCloser, error) {
		return zstd.NewWriter(w)
	})

	for _, entry := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   entry.Name,
			Method: entry.Method,
		})
		require.NoError(t, err)
		_, err = w.Write(entry.Data)
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// WriteArchive builds a fixture archive and places it on an in-memory
// filesystem under the given name.
func WriteArchive(t testing.TB, name string, entries []TestEntry) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, name, BuildZip(t, entries), 0o644))
	return fsys
}
