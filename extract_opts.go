package parzip

import (
	"runtime"

	"github.com/spf13/afero"
)

// defaultExtractConcurrency bounds in-flight acquisitions when the caller
// does not choose a limit. Each in-flight entry holds one file descriptor.
var defaultExtractConcurrency = runtime.GOMAXPROCS(0)

type extractOptions struct {
	fsys            afero.Fs
	concurrency     int
	overwrite       bool
	continueOnError bool
}

// ExtractOption configures an Extract call.
type ExtractOption func(*extractOptions)

// ExtractWithFS writes extracted entries to the given filesystem instead
// of the OS filesystem.
func ExtractWithFS(fsys afero.Fs) ExtractOption {
	return func(o *extractOptions) {
		o.fsys = fsys
	}
}

// ExtractWithConcurrency sets how many entries may be in flight at once.
// Values < 1 force serial extraction.
func ExtractWithConcurrency(n int) ExtractOption {
	return func(o *extractOptions) {
		if n < 1 {
			n = 1
		}
		o.concurrency = n
	}
}

// ExtractWithOverwrite replaces existing destination files instead of
// skipping them.
func ExtractWithOverwrite(overwrite bool) ExtractOption {
	return func(o *extractOptions) {
		o.overwrite = overwrite
	}
}

// ExtractWithContinueOnError keeps extracting past per-entry failures and
// returns the accumulated errors after all entries have been attempted.
func ExtractWithContinueOnError(continueOnError bool) ExtractOption {
	return func(o *extractOptions) {
		o.continueOnError = continueOnError
	}
}
