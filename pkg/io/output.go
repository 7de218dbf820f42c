package io

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/alitto/pond"
)

// OutputTo writes the files under `dest`, replacing existing files, using a bounded pool of writers.
func OutputTo(ctx context.Context, files []File, dest string) error {
	if len(files) == 0 {
		return nil
	}
	workers := min(len(files), runtime.NumCPU())
	pool := pond.New(workers, len(files))
	defer pool.StopAndWait()

	group, _ := pool.GroupContext(ctx)
	for _, f := range files {
		f := f
		group.Submit(func() error {
			return writeFile(f, dest)
		})
	}
	return group.Wait()
}

func writeFile(f File, dest string) (err error) {
	if filepath.IsAbs(f.Path()) {
		return fmt.Errorf("output file %s must be relative to the output directory", f.Path())
	}
	path := filepath.Join(dest, f.Path())
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, out.Close())
	}()
	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	return nil
}
