package processor

import (
	"context"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"squeeze/pkg/imgutil"
)

// Run optimizes root, which may be a single file or a directory walked
// recursively. During a walk, files that are not JPEG or PNG are skipped; a
// single file root is always handed to OptimizeFile. Per-file failures land
// in the results, not in the returned error.
//
// Sends on updates give up once ctx is done, so a reader that stops
// listening must cancel ctx.
func Run(ctx context.Context, b Backend, root string, opts Options, updates chan<- ProgressUpdate) (Summary, []Result, error) {
	summary := Summary{}
	var results []Result

	info, err := os.Stat(root)
	if err != nil {
		return summary, nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return summary, nil, err
	}

	jobs := make(chan Job)
	out := make(chan Result)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			worker(ctx, b, jobs, out, opts, updates)
		}()
	}

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for res := range out {
			summary.Processed++
			update := ProgressUpdate{ProcessedDelta: 1}
			switch res.Status {
			case StatusFailed:
				summary.Errors++
				update.ErrorDelta = 1
			case StatusReplaced:
				summary.Replaced++
				summary.BytesSaved += res.Saved()
				update.ReplacedDelta = 1
				update.BytesSavedDelta = res.Saved()
			}
			notify(ctx, updates, update)
			results = append(results, res)
		}
	}()

	producerErr := make(chan error, 1)
	go func() {
		defer close(jobs)

		sendJob := func(job Job) error {
			select {
			case jobs <- job:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if !info.IsDir() {
			producerErr <- sendJob(Job{Path: absRoot, Display: filepath.Base(absRoot), Explicit: true})
			return
		}

		fsys := os.DirFS(absRoot)
		err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}

			fullPath := filepath.Join(absRoot, path)
			if isWorkArtifact(fullPath) {
				return nil
			}
			return sendJob(Job{Path: fullPath, Display: path})
		})
		producerErr <- err
	}()

	wg.Wait()
	close(out)
	<-collectorDone

	summary.Total = len(results)
	slices.SortFunc(results, func(a, b Result) int {
		return strings.Compare(a.Display, b.Display)
	})

	if err := <-producerErr; err != nil {
		return summary, results, err
	}
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return summary, results, err
	}

	return summary, results, nil
}

func worker(ctx context.Context, b Backend, jobs <-chan Job, out chan<- Result, opts Options, updates chan<- ProgressUpdate) {
	for job := range jobs {
		if err := ctx.Err(); err != nil {
			return
		}

		if !job.Explicit {
			kind, err := imgutil.SniffFile(job.Path)
			if errors.Is(err, imgutil.ErrShortHeader) || err == nil && !kind.Optimizable() {
				continue
			}
			if err != nil {
				notify(ctx, updates, ProgressUpdate{TotalDelta: 1})
				out <- Result{Path: job.Path, Display: job.Display, Status: StatusFailed, Err: ioErr("sniff", job.Path, err)}
				continue
			}
		}

		if !notify(ctx, updates, ProgressUpdate{TotalDelta: 1}) {
			return
		}

		res := OptimizeFile(b, job.Path, opts)
		res.Display = job.Display
		out <- res
	}
}

// notify delivers u unless ctx is done first. A nil channel always
// succeeds.
func notify(ctx context.Context, updates chan<- ProgressUpdate, u ProgressUpdate) bool {
	if updates == nil {
		return true
	}
	select {
	case updates <- u:
		return true
	case <-ctx.Done():
		return false
	}
}

// isWorkArtifact reports whether path is a temporary or sibling file left
// by OptimizeFile, so a walk never optimizes its own intermediates.
func isWorkArtifact(path string) bool {
	const fpLen = 32

	name := filepath.Base(path)
	if rest, ok := strings.CutPrefix(name, tempPrefix); ok && len(rest) >= fpLen && isHex(rest[:fpLen]) {
		return true
	}

	stem := strings.TrimSuffix(path, filepath.Ext(path))
	if len(stem) <= fpLen {
		return false
	}
	orig, fp := stem[:len(stem)-fpLen], stem[len(stem)-fpLen:]
	return isHex(fp) && FingerprintPath(orig) == fp
}

func isHex(s string) bool {
	_, err := hex.DecodeString(s)
	return err == nil
}
