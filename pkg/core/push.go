package core

import (
	"context"

	"github.com/oneconcern/gitbin/pkg/chunk"
	"github.com/oneconcern/gitbin/pkg/transfer"
	"go.uber.org/zap"
)

// PushResult tells what a push had to upload and how much of it succeeded
type PushResult struct {
	Pending  chunk.Records
	Uploaded int
}

// Push uploads the chunks of the cache which are not on the remote.
//
// The start callback receives the number of chunks to upload, possibly zero.
// Each chunk is verified before it is uploaded. The first failure stops the
// batch. Chunks uploaded before the failure stay on the remote.
func (e *Engine) Push(ctx context.Context) (PushResult, error) {
	if err := e.requireRemote(); err != nil {
		return PushResult{}, err
	}

	local, err := e.cache.List(ctx)
	if err != nil {
		return PushResult{}, err
	}
	onRemote, err := e.remote.List(ctx)
	if err != nil {
		return PushResult{}, err
	}

	res := PushResult{Pending: local.Missing(onRemote)}
	e.onStart(Upload, len(res.Pending))
	if len(res.Pending) == 0 {
		e.l.Info("all chunks already present on remote", zap.Stringer("remote", e.remote))
		return res, nil
	}

	stats, err := transfer.RunWithStats(ctx, res.Pending, e.upload, e.transferOptions(Upload, e.uploadConcurrency)...)
	res.Uploaded = stats.Completed - stats.Failed
	e.l.Info("push done", zap.Int("pending", len(res.Pending)), zap.Int("uploaded", res.Uploaded), zap.Error(err))
	return res, err
}

func (e *Engine) upload(ctx context.Context, rec chunk.Record, progress transfer.ProgressFunc) error {
	content, err := e.cache.Read(ctx, rec.Address)
	if err != nil {
		return err
	}
	return e.remote.Upload(ctx, rec.Address, content, progress)
}
