package transfer

import "go.uber.org/zap"

// DefaultConcurrency is the number of items transferred in parallel unless specified otherwise
const DefaultConcurrency = 10

// Option is a functor to pass optional parameters to a transfer
type Option func(*options)

type options struct {
	concurrency int
	onProgress  func(Event)
	l           *zap.Logger
}

func defaultOptions() *options {
	return &options{
		concurrency: DefaultConcurrency,
		onProgress:  func(Event) {},
		l:           zap.NewNop(),
	}
}

// Concurrency sets the maximum number of items in flight. Values below 1 mean 1.
func Concurrency(k int) Option {
	return func(o *options) {
		if k < 1 {
			k = 1
		}
		o.concurrency = k
	}
}

// OnProgress registers a callback invoked whenever the overall progress changes.
//
// Calls are serialized.
func OnProgress(fn func(Event)) Option {
	return func(o *options) {
		if fn != nil {
			o.onProgress = fn
		}
	}
}

// Logger specifies a logger for the transfer
func Logger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.l = logger
		}
	}
}
