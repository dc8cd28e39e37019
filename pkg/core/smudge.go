package core

import (
	"context"
	"fmt"
	"io"

	"github.com/oneconcern/gitbin/pkg/chunk"
	"github.com/oneconcern/gitbin/pkg/errors"
	"github.com/oneconcern/gitbin/pkg/manifest"
	"github.com/oneconcern/gitbin/pkg/status"
	"github.com/oneconcern/gitbin/pkg/transfer"
	"go.uber.org/zap"
)

// Smudge writes the content described by a manifest, fetching the chunks missing from the cache first.
//
// Chunks are written strictly in manifest order. On failure, bytes already
// written to dst are not rolled back.
func (e *Engine) Smudge(ctx context.Context, m *manifest.Manifest, dst io.Writer) error {
	missing, err := e.cache.Missing(ctx, m.Chunks)
	if err != nil {
		return err
	}
	if err = e.Fetch(ctx, missing); err != nil {
		return err
	}

	for _, addr := range m.Chunks {
		content, err := e.cache.Read(ctx, addr)
		if err != nil {
			return err
		}
		if _, err = dst.Write(content); err != nil {
			return fmt.Errorf("writing %q: %w", m.Filename, err)
		}
	}
	return nil
}

// Fetch downloads chunks into the cache.
//
// The start callback is invoked even when there is nothing to fetch.
func (e *Engine) Fetch(ctx context.Context, addrs []chunk.Address) error {
	if len(addrs) == 0 {
		e.onStart(Download, 0)
		return nil
	}
	if err := e.requireRemote(); err != nil {
		return err
	}
	e.onStart(Download, len(addrs))
	return transfer.Run(ctx, addrs, e.download, e.transferOptions(Download, e.downloadConcurrency)...)
}

// download a single chunk, retrying when the received content does not hash to its address
func (e *Engine) download(ctx context.Context, addr chunk.Address, progress transfer.ProgressFunc) error {
	for attempt := 1; attempt <= e.downloadAttempts; attempt++ {
		content, err := e.remote.Download(ctx, addr, progress)
		if err != nil {
			return e.abandon(ctx, addr, err)
		}

		err = e.cache.WriteVerified(ctx, addr, content)
		if err == nil {
			return nil
		}
		if !errors.Is(err, status.ErrCorrupted) {
			return e.abandon(ctx, addr, err)
		}
		e.l.Warn("downloaded chunk is corrupted",
			zap.Stringer("address", addr),
			zap.Int("attempt", attempt),
			zap.Int("attempts", e.downloadAttempts),
		)
	}
	return e.abandon(ctx, addr,
		status.ErrCorrupted.Wrapf("chunk %s from %v after %d attempts", addr, e.remote, e.downloadAttempts))
}

// abandon removes anything left in the cache for a chunk which could not be fetched
func (e *Engine) abandon(ctx context.Context, addr chunk.Address, err error) error {
	if derr := e.cache.Delete(ctx, addr); derr != nil {
		e.l.Warn("could not remove chunk", zap.Stringer("address", addr), zap.Error(derr))
	}
	return err
}
