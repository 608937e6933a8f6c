package backend

import "fmt"

// CodecError reports that an image could not be decoded or encoded.
type CodecError struct {
	Op   string
	Path string
	Err  error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

func codecErr(op, path string, err error) error {
	return &CodecError{Op: op, Path: path, Err: err}
}
