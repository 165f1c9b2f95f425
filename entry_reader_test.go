package parzip

import (
	"bytes"
	"encoding/binary"
	"io"
	"io/fs"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/VivekPanyam/parzip/internal/testutil"
)

func TestEntryReader_ConcurrentMatchesSequential(t *testing.T) {
	t.Parallel()

	entries := testEntries()
	r := openTestReader(t, entries)

	sequential := make([][]byte, len(entries))
	for i := range entries {
		er, err := r.EntryReader(i)
		require.NoError(t, err)
		sequential[i], err = io.ReadAll(er)
		require.NoError(t, err)
		require.NoError(t, er.Close())
	}

	concurrent := make([][]byte, len(entries))
	var g errgroup.Group
	for i := range entries {
		i := i
		g.Go(func() error {
			er, err := r.EntryReader(i)
			if err != nil {
				return err
			}
			defer er.Close()
			concurrent[i], err = io.ReadAll(er)
			return err
		})
	}
	require.NoError(t, g.Wait())

	for i := range entries {
		assert.Equal(t, sequential[i], concurrent[i])
	}
}

func TestEntryReader_ConcurrentSameEntry(t *testing.T) {
	t.Parallel()

	entries := testEntries()
	r := openTestReader(t, entries)

	const readers = 8
	results := make([][]byte, readers)
	var g errgroup.Group
	for i := 0; i < readers; i++ {
		i := i
		g.Go(func() error {
			er, err := r.EntryReader(2)
			if err != nil {
				return err
			}
			defer er.Close()
			results[i], err = io.ReadAll(er)
			return err
		})
	}
	require.NoError(t, g.Wait())

	for i := 0; i < readers; i++ {
		assert.Equal(t, entries[2].Data, results[i])
	}
}

func TestEntryReader_RepeatedAcquisitionIsIdempotent(t *testing.T) {
	t.Parallel()

	entries := testEntries()
	r := openTestReader(t, entries)

	for i := 0; i < 3; i++ {
		er, err := r.EntryReader(1)
		require.NoError(t, err)
		got, err := io.ReadAll(er)
		require.NoError(t, err)
		assert.Equal(t, entries[1].Data, got)
		require.NoError(t, er.Close())
	}
}

func TestEntryReader_InterleavedReads(t *testing.T) {
	t.Parallel()

	entries := testEntries()
	r := openTestReader(t, entries)

	// Two in-flight readers over distinct entries, reads interleaved one
	// chunk at a time; each cursor advances independently.
	er1, err := r.EntryReader(0)
	require.NoError(t, err)
	defer er1.Close()
	er2, err := r.EntryReader(1)
	require.NoError(t, err)
	defer er2.Close()

	var buf1, buf2 bytes.Buffer
	chunk := make([]byte, 7)
	done1, done2 := false, false
	for !done1 || !done2 {
		if !done1 {
			n, err := er1.Read(chunk)
			buf1.Write(chunk[:n])
			if err == io.EOF {
				done1 = true
			} else {
				require.NoError(t, err)
			}
		}
		if !done2 {
			n, err := er2.Read(chunk)
			buf2.Write(chunk[:n])
			if err == io.EOF {
				done2 = true
			} else {
				require.NoError(t, err)
			}
		}
	}

	assert.Equal(t, entries[0].Data, buf1.Bytes())
	assert.Equal(t, entries[1].Data, buf2.Bytes())
}

func TestEntryReader_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	r := openTestReader(t, testEntries())

	er, err := r.EntryReader(0)
	require.NoError(t, err)
	require.NoError(t, er.Close())
	require.NoError(t, er.Close())

	_, err = er.Read(make([]byte, 1))
	require.ErrorIs(t, err, fs.ErrClosed)
}

func TestEntryReader_AbandonedMidStream(t *testing.T) {
	t.Parallel()

	entries := testEntries()
	r := openTestReader(t, entries)

	er, err := r.EntryReader(1)
	require.NoError(t, err)
	_, err = er.Read(make([]byte, 16))
	require.NoError(t, err)
	require.NoError(t, er.Close())

	// Dropping one reader releases only its own channel; a fresh
	// acquisition starts over from the beginning of the entry.
	er2, err := r.EntryReader(1)
	require.NoError(t, err)
	defer er2.Close()
	got, err := io.ReadAll(er2)
	require.NoError(t, err)
	assert.Equal(t, entries[1].Data, got)
}

// patchUncompressedSize rewrites the uncompressed size field of the first
// central directory record in a raw archive, leaving the payload intact.
func patchUncompressedSize(t *testing.T, data []byte, size uint32) []byte {
	t.Helper()
	pos := bytes.Index(data, []byte("PK\x01\x02"))
	require.GreaterOrEqual(t, pos, 0)
	patched := bytes.Clone(data)
	binary.LittleEndian.PutUint32(patched[pos+24:], size)
	return patched
}

func TestEntryReader_ShortDecodeStream(t *testing.T) {
	t.Parallel()

	// The directory claims more decoded bytes than the payload yields.
	data := testutil.BuildZip(t, []testutil.TestEntry{
		{Name: "short.txt", Data: []byte("0123456789"), Method: testutil.MethodStore},
	})
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "a.zip", patchUncompressedSize(t, data, 20), 0o644))

	r, err := OpenReader("a.zip", WithFS(fsys))
	require.NoError(t, err)

	er, err := r.EntryReader(0)
	require.NoError(t, err)
	defer er.Close()

	_, err = io.ReadAll(er)
	require.ErrorIs(t, err, ErrDecompression)
}

func TestEntryReader_ExcessDecodeStream(t *testing.T) {
	t.Parallel()

	// The directory claims fewer decoded bytes than the payload yields.
	data := testutil.BuildZip(t, []testutil.TestEntry{
		{Name: "long.txt", Data: []byte("0123456789"), Method: testutil.MethodStore},
	})
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "a.zip", patchUncompressedSize(t, data, 5), 0o644))

	r, err := OpenReader("a.zip", WithFS(fsys))
	require.NoError(t, err)

	er, err := r.EntryReader(0)
	require.NoError(t, err)
	defer er.Close()

	_, err = io.ReadAll(er)
	require.ErrorIs(t, err, ErrSizeOverflow)
}

func TestEntryReader_BoundedAgainstAdjacentData(t *testing.T) {
	t.Parallel()

	// Two adjacent stored entries: reading the first must stop exactly at
	// its payload boundary rather than running into the second.
	first := []byte("first entry payload")
	r := openTestReader(t, []testutil.TestEntry{
		{Name: "one", Data: first, Method: testutil.MethodStore},
		{Name: "two", Data: []byte("second entry payload"), Method: testutil.MethodStore},
	})

	er, err := r.EntryReader(0)
	require.NoError(t, err)
	defer er.Close()

	// Ask for far more than the entry holds.
	buf := make([]byte, 4096)
	total := 0
	for {
		n, err := er.Read(buf[total:])
		total += n
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, first, buf[:total])
}
