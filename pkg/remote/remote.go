// Copyright © 2018 One Concern

// Package remote defines the contract of the object stores chunks are
// synchronized with. Objects on a remote are named by chunk address.
package remote

import (
	"context"
	"fmt"
	"io"

	"github.com/oneconcern/gitbin/pkg/chunk"
	"github.com/oneconcern/gitbin/pkg/transfer"
)

// ProgressFunc receives the progress of a single upload or download, in percent
type ProgressFunc = transfer.ProgressFunc

// Remote object store holding chunks
type Remote interface {
	fmt.Stringer

	// List all chunks known to the remote
	List(context.Context) (chunk.Records, error)

	// Upload the content of a chunk, named by its address
	Upload(ctx context.Context, addr chunk.Address, content []byte, progress ProgressFunc) error

	// Download the content of a chunk. Implementations return an error matching
	// status.ErrNotFound when the chunk is absent.
	Download(ctx context.Context, addr chunk.Address, progress ProgressFunc) ([]byte, error)
}

// NopProgress discards progress reports
func NopProgress(int) {}

// ProgressReader reports the share of an expected number of bytes read so far
type ProgressReader struct {
	r        io.Reader
	total    int64
	read     int64
	reported int
	progress ProgressFunc
}

// NewProgressReader wraps a reader expected to deliver total bytes
func NewProgressReader(r io.Reader, total int64, progress ProgressFunc) *ProgressReader {
	if progress == nil {
		progress = NopProgress
	}
	return &ProgressReader{r: r, total: total, reported: -1, progress: progress}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if n > 0 {
		p.Report(p.read)
	}
	if err == io.EOF {
		p.Report(p.total)
	}
	return n, err
}

// Report that done bytes out of the total have been transferred
func (p *ProgressReader) Report(done int64) {
	pct := Percent(done, p.total)
	if pct == p.reported {
		return
	}
	p.reported = pct
	p.progress(pct)
}

// Percent of done over total, as an integer in [0, 100]. An empty total is complete.
func Percent(done, total int64) int {
	if total <= 0 {
		return 100
	}
	pct := int(done * 100 / total)
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}

// ReadAll reads an object body of a known size while reporting progress
func ReadAll(r io.Reader, size int64, progress ProgressFunc) ([]byte, error) {
	return io.ReadAll(NewProgressReader(r, size, progress))
}

// Unavailable stands for a remote which could not be set up: every call returns err.
//
// It lets operations which may not need a remote proceed, and report why the remote is missing when they do.
func Unavailable(err error) Remote {
	return unavailable{err: err}
}

type unavailable struct {
	err error
}

func (u unavailable) String() string {
	return "unavailable remote"
}

func (u unavailable) List(context.Context) (chunk.Records, error) {
	return nil, u.err
}

func (u unavailable) Upload(context.Context, chunk.Address, []byte, ProgressFunc) error {
	return u.err
}

func (u unavailable) Download(context.Context, chunk.Address, ProgressFunc) ([]byte, error) {
	return nil, u.err
}
