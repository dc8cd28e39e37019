// Copyright © 2018 One Concern

// Package transfer runs an operation over a list of items with bounded concurrency.
//
// At most K operations are in flight. The first failure stops the dispatch of
// further items, but items already in flight are always waited for: Run never
// returns while one of its operations may still be running.
package transfer

import (
	"context"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Op transfers a single item
type Op[T any] func(ctx context.Context, item T, progress ProgressFunc) error

// Stats about a completed run
type Stats struct {
	Dispatched int
	Completed  int
	Failed     int
}

// Run op over all items and return the first error encountered
func Run[T any](ctx context.Context, items []T, op Op[T], opts ...Option) error {
	_, err := RunWithStats(ctx, items, op, opts...)
	return err
}

// RunWithStats is like Run and also reports how many items were dispatched and completed
func RunWithStats[T any](ctx context.Context, items []T, op Op[T], opts ...Option) (Stats, error) {
	o := defaultOptions()
	for _, apply := range opts {
		apply(o)
	}
	if len(items) == 0 {
		return Stats{}, nil
	}

	var (
		sem        = make(chan struct{}, o.concurrency)
		failure    = newFirstError()
		agg        = newAggregator(len(items), o.onProgress)
		wg         conc.WaitGroup
		dispatched atomic.Int64
		completed  atomic.Int64
		failed     atomic.Int64
	)

	o.l.Debug("start transfer", zap.Int("items", len(items)), zap.Int("concurrency", o.concurrency))

dispatch:
	for i := range items {
		select {
		case sem <- struct{}{}:
		case <-failure.done:
			break dispatch
		case <-ctx.Done():
			failure.set(ctx.Err())
			break dispatch
		}
		// a failure may have been captured while waiting for a slot
		if failure.captured() {
			<-sem
			break
		}
		if err := ctx.Err(); err != nil {
			<-sem
			failure.set(err)
			break
		}

		idx, item := i, items[i]
		dispatched.Inc()
		wg.Go(func() {
			defer func() { <-sem }()

			err := safely(func() error {
				return op(ctx, item, agg.reporter(idx))
			})
			completed.Inc()
			if err != nil {
				failed.Inc()
				if !failure.set(err) {
					o.l.Debug("transfer error dropped", zap.Int("item", idx), zap.Error(err))
				}
				return
			}
			agg.done(idx)
		})
	}

	wg.Wait()

	stats := Stats{
		Dispatched: int(dispatched.Load()),
		Completed:  int(completed.Load()),
		Failed:     int(failed.Load()),
	}
	o.l.Debug("end transfer",
		zap.Int("dispatched", stats.Dispatched),
		zap.Int("completed", stats.Completed),
		zap.Int("failed", stats.Failed),
	)
	return stats, failure.err()
}

func safely(fn func() error) (err error) {
	var pc panics.Catcher
	pc.Try(func() {
		err = fn()
	})
	if r := pc.Recovered(); r != nil {
		return fmt.Errorf("transfer operation panicked: %w", r.AsError())
	}
	return err
}

// firstError retains the first error it is set with
type firstError struct {
	once  sync.Once
	done  chan struct{}
	value error
	isSet atomic.Bool
}

func newFirstError() *firstError {
	return &firstError{done: make(chan struct{})}
}

// set records err if no error was captured yet and tells if it was retained
func (f *firstError) set(err error) bool {
	retained := false
	f.once.Do(func() {
		f.value = err
		f.isSet.Store(true)
		close(f.done)
		retained = true
	})
	return retained
}

func (f *firstError) captured() bool {
	return f.isSet.Load()
}

func (f *firstError) err() error {
	if !f.captured() {
		return nil
	}
	return f.value
}
