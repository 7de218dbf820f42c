package io

import (
	"io"
	"os"
)

type (
	// File is an output of synthesis, written relative to the output directory.
	File interface {
		Path() string
		WriteTo(io.Writer) (int64, error)
	}

	// RawFile is a file held in memory, such as a rendered template.
	RawFile struct {
		FPath   string
		Content []byte
	}

	// FileRef copies an existing file into the output, deferring the read until it is written.
	FileRef struct {
		FPath      string
		SourcePath string
	}
)

func (r *RawFile) Path() string {
	return r.FPath
}

func (r *RawFile) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Content)
	return int64(n), err
}

func (r *FileRef) Path() string {
	return r.FPath
}

func (r *FileRef) WriteTo(w io.Writer) (int64, error) {
	f, err := os.Open(r.SourcePath)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return io.Copy(w, f)
}
