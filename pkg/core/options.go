package core

import (
	"github.com/oneconcern/gitbin/pkg/transfer"
	"go.uber.org/zap"
)

const (
	// DefaultChunkSize is the size of chunks produced by Clean (1 MiB)
	DefaultChunkSize = 1024 * 1024

	// DefaultUploadConcurrency is the number of uploads in flight during a push
	DefaultUploadConcurrency = 1

	// DefaultDownloadConcurrency is the number of downloads in flight during a fetch
	DefaultDownloadConcurrency = transfer.DefaultConcurrency

	// DefaultDownloadAttempts is how many times a chunk which fails verification is downloaded
	DefaultDownloadAttempts = 5
)

// Direction of a transfer
type Direction string

const (
	// Upload from the cache to the remote
	Upload Direction = "upload"

	// Download from the remote to the cache
	Download Direction = "download"
)

// Option is a functor to build an engine with some options
type Option func(*Engine)

// ChunkSize sets the size of chunks produced by Clean. Non-positive values are ignored.
func ChunkSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.chunkSize = size
		}
	}
}

// UploadConcurrency sets the number of uploads in flight during a push
func UploadConcurrency(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.uploadConcurrency = k
		}
	}
}

// DownloadConcurrency sets the number of downloads in flight
func DownloadConcurrency(k int) Option {
	return func(e *Engine) {
		if k > 0 {
			e.downloadConcurrency = k
		}
	}
}

// DownloadAttempts sets how many times a chunk is downloaded before giving up on corrupted content
func DownloadAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.downloadAttempts = n
		}
	}
}

// OnStart registers a callback invoked before a batch of chunks is transferred
func OnStart(fn func(Direction, int)) Option {
	return func(e *Engine) {
		if fn != nil {
			e.onStart = fn
		}
	}
}

// OnProgress registers a callback receiving the overall progress of a batch
func OnProgress(fn func(Direction, transfer.Event)) Option {
	return func(e *Engine) {
		if fn != nil {
			e.onProgress = fn
		}
	}
}

// Logger specifies a logger for the engine
func Logger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.l = logger
		}
	}
}
