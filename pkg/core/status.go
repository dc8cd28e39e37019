package core

import (
	"context"

	"github.com/oneconcern/gitbin/pkg/chunk"
)

// StatusReport summarizes the cache and, when requested, the remote
type StatusReport struct {
	Local      chunk.Summary
	WithRemote bool
	Remote     chunk.Summary
	ToPush     chunk.Summary
}

// Status of the cache, and of the remote if withRemote is set
func (e *Engine) Status(ctx context.Context, withRemote bool) (StatusReport, error) {
	local, err := e.cache.List(ctx)
	if err != nil {
		return StatusReport{}, err
	}
	report := StatusReport{Local: local.Summary()}
	if !withRemote {
		return report, nil
	}

	if err = e.requireRemote(); err != nil {
		return StatusReport{}, err
	}
	onRemote, err := e.remote.List(ctx)
	if err != nil {
		return StatusReport{}, err
	}
	report.WithRemote = true
	report.Remote = onRemote.Summary()
	report.ToPush = local.Missing(onRemote).Summary()
	return report, nil
}

// Clear the cache. With dryRun, only report what would be removed.
func (e *Engine) Clear(ctx context.Context, dryRun bool) (chunk.Summary, error) {
	if dryRun {
		records, err := e.cache.List(ctx)
		if err != nil {
			return chunk.Summary{}, err
		}
		return records.Summary(), nil
	}
	return e.cache.Clear(ctx)
}
