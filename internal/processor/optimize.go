package processor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"

	"squeeze/internal/backend"
)

const tempPrefix = "tmp_workfile"

// workPaths derives the working copy inside workDir and the sibling of path
// used for the two-step replacement.
func workPaths(path, workDir string) (tmpPath, siblingPath string) {
	suffix := FingerprintPath(path)
	if fileType := backend.FileType(path); fileType != "" {
		suffix += "." + fileType
	}
	return filepath.Join(workDir, tempPrefix+suffix), path + suffix
}

// OptimizeFile recompresses a copy of path and replaces path with it only
// if the copy came out strictly smaller. Errors never escape: they are
// reported through Result with StatusFailed, and the original is left as
// it was. Two calls on the same path must not overlap.
func OptimizeFile(b Backend, path string, opts Options) (res Result) {
	logger := opts.logger()
	res = Result{Path: path, Display: path}

	fail := func(err error) Result {
		logger.Error("Error processing file", "path", path, "err", err)
		return Result{Path: path, Display: path, Status: StatusFailed, Err: err}
	}

	logger.Info("Processing", "path", path)

	if _, err := b.Info(path); err != nil {
		return fail(backendErr("probe", path, err))
	}

	tmpPath, siblingPath := workPaths(path, opts.WorkDir)
	siblingCreated := false
	defer func() {
		if r := recover(); r != nil {
			res = fail(fmt.Errorf("panic: %v", r))
		}
		removeQuietly(tmpPath)
		if siblingCreated {
			removeQuietly(siblingPath)
		}
	}()

	if err := copyFile(path, tmpPath); err != nil {
		return fail(ioErr("copy", path, err))
	}

	before, err := fileSize(tmpPath)
	if err != nil {
		return fail(ioErr("stat", tmpPath, err))
	}

	switch strings.ToLower(backend.FileType(path)) {
	case "jpg", "jpeg":
		err = b.OptimizeJPEG(tmpPath, opts.jpegQuality())
	case "png":
		err = b.OptimizePNG(tmpPath, backend.PNGOptions{
			To8Bits:      opts.To8Bits,
			ReduceColors: opts.ReduceColors,
			Mode:         opts.PNGMode,
		})
	}
	if err != nil {
		return fail(backendErr("optimize", path, err))
	}

	after, err := fileSize(tmpPath)
	if err != nil {
		return fail(ioErr("stat", tmpPath, err))
	}
	logSizes(logger, path, before, after)

	if after >= before {
		if err := os.Remove(tmpPath); err != nil {
			return fail(ioErr("remove", tmpPath, err))
		}
		res.Status, res.SizeBefore, res.SizeAfter = StatusKept, before, after
		return res
	}

	if err := moveFile(tmpPath, siblingPath); err != nil {
		return fail(ioErr("rename", tmpPath, err))
	}
	siblingCreated = true
	if err := os.Rename(siblingPath, path); err != nil {
		return fail(ioErr("rename", siblingPath, err))
	}
	siblingCreated = false

	res.Status, res.SizeBefore, res.SizeAfter = StatusReplaced, before, after
	return res
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// moveFile renames src to dst, copying when they sit on different devices.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := copyFile(src, dst); err != nil {
		removeQuietly(dst)
		return err
	}
	if err := os.Remove(src); err != nil {
		removeQuietly(dst)
		return err
	}
	return nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func removeQuietly(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Debug("cleanup failed", "path", path, "err", err)
	}
}

func logSizes(logger *log.Logger, path string, before, after int64) {
	percent := 0.0
	if before > 0 {
		percent = 100 - float64(after)*100/float64(before)
	}
	logger.Info("Size",
		"path", path,
		"before", megabytes(before),
		"after", megabytes(after),
		"saved", fmt.Sprintf("%.2f%% (%s)", percent, megabytes(before-after)),
	)
}

func megabytes(n int64) string {
	return fmt.Sprintf("%.2fMB", float64(n)/1024/1024)
}
