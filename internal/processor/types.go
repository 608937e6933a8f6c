package processor

import (
	"github.com/charmbracelet/log"

	"squeeze/internal/backend"
	"squeeze/pkg/imgutil"
)

// Backend is the imaging capability the optimizer drives. Transforms
// rewrite the file at path in place.
type Backend interface {
	Info(path string) (imgutil.Info, error)
	OptimizeJPEG(path string, quality int) error
	OptimizePNG(path string, opts backend.PNGOptions) error
}

// DefaultJPEGQuality is the quality JPEGs are re-encoded at.
const DefaultJPEGQuality = 85

type Options struct {
	To8Bits      bool
	PNGMode      backend.PNGMode
	ReduceColors int
	JPEGQuality  int
	// WorkDir holds the temporary working copies. Empty means the
	// current directory.
	WorkDir string
	Workers int
	Logger  *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

func (o Options) jpegQuality() int {
	if o.JPEGQuality > 0 {
		return o.JPEGQuality
	}
	return DefaultJPEGQuality
}

type Status int

const (
	// StatusFailed means the optimization did not complete; the original
	// file is untouched.
	StatusFailed Status = iota
	// StatusKept means the result was not smaller and was discarded.
	StatusKept
	// StatusReplaced means the original now holds the smaller result.
	StatusReplaced
)

func (s Status) String() string {
	switch s {
	case StatusKept:
		return "kept"
	case StatusReplaced:
		return "replaced"
	default:
		return "failed"
	}
}

type Result struct {
	Path       string
	Display    string
	Status     Status
	SizeBefore int64
	SizeAfter  int64
	Err        error
}

// Sizes returns the before/after pair, or (0, 0) for a failed run.
func (r Result) Sizes() (int64, int64) {
	if r.Status == StatusFailed {
		return 0, 0
	}
	return r.SizeBefore, r.SizeAfter
}

// Saved is the number of bytes removed from the original file.
func (r Result) Saved() int64 {
	if r.Status != StatusReplaced {
		return 0
	}
	return r.SizeBefore - r.SizeAfter
}

type Job struct {
	Path    string
	Display string
	// Explicit jobs were named directly by the caller and skip the
	// signature filter.
	Explicit bool
}

type Summary struct {
	Total      int
	Processed  int
	Replaced   int
	Errors     int
	BytesSaved int64
}

type ProgressUpdate struct {
	TotalDelta      int
	ProcessedDelta  int
	ReplacedDelta   int
	ErrorDelta      int
	BytesSavedDelta int64
}
