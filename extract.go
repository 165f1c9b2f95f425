package parzip

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// ExtractStats reports the outcome of an Extract call.
type ExtractStats struct {
	// Files is the number of entries written.
	Files int
	// Bytes is the total decoded byte count written.
	Bytes uint64
	// Skipped is the number of entries left untouched because the
	// destination already existed.
	Skipped int
}

// Extract decodes every entry into dest, acquiring entries concurrently.
//
// Each in-flight entry owns its own archive handle, so extraction
// parallelism is bounded only by the configured concurrency and the OS
// descriptor budget. Entry names are interpreted as slash-separated paths
// relative to dest; names that escape dest fail with fs.ErrInvalid.
//
// Without WithContinueOnError the first failure cancels outstanding work
// and is returned. With it, extraction continues past per-entry failures
// and the accumulated errors are returned alongside the stats.
func (r *Reader) Extract(ctx context.Context, dest string, opts ...ExtractOption) (ExtractStats, error) {
	options := extractOptions{
		fsys:        afero.NewOsFs(),
		concurrency: defaultExtractConcurrency,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&options)
	}

	var (
		mu    sync.Mutex
		stats ExtractStats
		errs  *multierror.Error
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(options.concurrency)

	for i := range r.entries {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			written, skipped, err := r.extractEntry(&options, dest, i)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if options.continueOnError {
					errs = multierror.Append(errs, err)
					return nil
				}
				return err
			}
			if skipped {
				stats.Skipped++
			} else if !r.entries[i].IsDir() {
				stats.Files++
				stats.Bytes += written
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return stats, err
	}
	return stats, errs.ErrorOrNil()
}

func (r *Reader) extractEntry(options *extractOptions, dest string, index int) (written uint64, skipped bool, err error) {
	entry := &r.entries[index]

	rel, err := destPath(entry.Name)
	if err != nil {
		return 0, false, err
	}
	target := filepath.Join(dest, filepath.FromSlash(rel))

	if entry.IsDir() {
		return 0, false, options.fsys.MkdirAll(target, 0o755)
	}
	if err := options.fsys.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, false, err
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !options.overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	out, err := options.fsys.OpenFile(target, flags, 0o644)
	if err != nil {
		if !options.overwrite && os.IsExist(err) {
			return 0, true, nil
		}
		return 0, false, fmt.Errorf("create %s: %w", target, err)
	}

	er, err := r.EntryReader(index)
	if err != nil {
		out.Close()
		return 0, false, err
	}
	defer er.Close()

	n, err := io.Copy(out, er)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, false, fmt.Errorf("extract %s: %w", entry.Name, err)
	}

	if !entry.Modified.IsZero() {
		// Best effort; not every filesystem supports it.
		_ = options.fsys.Chtimes(target, entry.Modified, entry.Modified)
	}

	return uint64(n), false, nil
}

// destPath normalizes an entry name to a relative slash path and rejects
// names that would escape the destination. Backslashes are rejected
// outright: slash paths treat them as ordinary name bytes, but
// filepath.Join would resolve them as separators on Windows.
func destPath(name string) (string, error) {
	p := strings.Trim(name, "/")
	if p != "" {
		p = path.Clean(p)
	}
	if p == "" || !fs.ValidPath(p) || strings.ContainsRune(p, '\\') {
		return "", &fs.PathError{Op: "extract", Path: name, Err: fs.ErrInvalid}
	}
	return p, nil
}
