package processor

import (
	"errors"
	"fmt"

	"squeeze/internal/backend"
)

// IoError reports a filesystem failure while optimizing a file.
type IoError struct {
	Op   string
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}

func ioErr(op, path string, err error) error {
	return &IoError{Op: op, Path: path, Err: err}
}

// backendErr passes codec errors through and files everything else as I/O.
func backendErr(op, path string, err error) error {
	var codec *backend.CodecError
	if errors.As(err, &codec) {
		return err
	}
	return ioErr(op, path, err)
}
