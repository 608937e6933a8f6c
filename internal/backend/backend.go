// Package backend wraps the third-party imaging libraries behind the
// capabilities the optimizer needs: metadata probing, unique color
// enumeration, and format-specific recompression.
package backend

import (
	"errors"
	"fmt"
	_ "image/gif"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	// Extra decoders for metadata probing.
	_ "github.com/xfmoulet/qoi"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"squeeze/internal/grayscale"
)

// Encoder selects the JPEG encoder.
type Encoder string

const (
	EncoderStd    Encoder = "std"
	EncoderJPEGLI Encoder = "jpegli"
)

var (
	ErrShutdown           = errors.New("backend: shut down")
	ErrAlreadyInitialized = errors.New("backend: already initialized")
)

type Config struct {
	Encoder    Encoder
	Classifier grayscale.Classifier
	Logger     *log.Logger
}

// Imaging is the process-wide backend handle returned by Init.
type Imaging struct {
	cfg    Config
	logger *log.Logger
	closed atomic.Bool
}

var (
	activeMu sync.Mutex
	active   *Imaging
)

// Init acquires the backend. It must be paired with Shutdown, and only one
// backend may be live at a time.
func Init(cfg Config) (*Imaging, error) {
	switch cfg.Encoder {
	case "":
		cfg.Encoder = EncoderStd
	case EncoderStd, EncoderJPEGLI:
	default:
		return nil, fmt.Errorf("unknown JPEG encoder %q (use %s or %s)", cfg.Encoder, EncoderStd, EncoderJPEGLI)
	}
	if cfg.Classifier == (grayscale.Classifier{}) {
		cfg.Classifier = grayscale.Default()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	activeMu.Lock()
	defer activeMu.Unlock()
	if active != nil {
		return nil, ErrAlreadyInitialized
	}
	active = &Imaging{cfg: cfg, logger: logger}
	logger.Debug("backend ready", "encoder", cfg.Encoder)
	return active, nil
}

// Shutdown releases the backend. Later calls on b fail with ErrShutdown.
func (b *Imaging) Shutdown() {
	if b == nil || b.closed.Swap(true) {
		return
	}
	activeMu.Lock()
	if active == b {
		active = nil
	}
	activeMu.Unlock()
}

func (b *Imaging) check() error {
	if b.closed.Load() {
		return ErrShutdown
	}
	return nil
}
