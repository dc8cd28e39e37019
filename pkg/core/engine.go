// Copyright © 2018 One Concern

// Package core implements the git-bin operations: clean, smudge, push,
// status and clear, over a local chunk cache and an optional remote.
package core

import (
	"fmt"

	"github.com/oneconcern/gitbin/pkg/cache"
	"github.com/oneconcern/gitbin/pkg/remote"
	"github.com/oneconcern/gitbin/pkg/status"
	"github.com/oneconcern/gitbin/pkg/transfer"
	"go.uber.org/zap"
)

// Engine drives the cache and the remote
type Engine struct {
	cache  *cache.Cache
	remote remote.Remote

	chunkSize           int
	uploadConcurrency   int
	downloadConcurrency int
	downloadAttempts    int

	onStart    func(Direction, int)
	onProgress func(Direction, transfer.Event)
	l          *zap.Logger
}

// New engine. The remote may be nil for operations working on the cache only.
func New(c *cache.Cache, r remote.Remote, opts ...Option) (*Engine, error) {
	if c == nil {
		return nil, status.ErrConfiguration.Wrap(fmt.Errorf("a chunk cache is required"))
	}
	e := &Engine{
		cache:               c,
		remote:              r,
		chunkSize:           DefaultChunkSize,
		uploadConcurrency:   DefaultUploadConcurrency,
		downloadConcurrency: DefaultDownloadConcurrency,
		downloadAttempts:    DefaultDownloadAttempts,
		onStart:             func(Direction, int) {},
		onProgress:          func(Direction, transfer.Event) {},
		l:                   zap.NewNop(),
	}
	for _, apply := range opts {
		apply(e)
	}
	return e, nil
}

// Cache used by the engine
func (e *Engine) Cache() *cache.Cache {
	return e.cache
}

func (e *Engine) requireRemote() error {
	if e.remote == nil {
		return status.ErrNoRemote
	}
	return nil
}

func (e *Engine) transferOptions(dir Direction, k int) []transfer.Option {
	return []transfer.Option{
		transfer.Concurrency(k),
		transfer.Logger(e.l),
		transfer.OnProgress(func(ev transfer.Event) {
			e.onProgress(dir, ev)
		}),
	}
}

// ChunkCount renders a number of chunks for messages
func ChunkCount(n int) string {
	if n == 1 {
		return "1 chunk"
	}
	return fmt.Sprintf("%d chunks", n)
}
