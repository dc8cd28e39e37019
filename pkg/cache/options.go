package cache

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Option is a functor to pass optional parameters to the cache
type Option func(*Cache)

// Fs specifies the file system holding the cache entries.
//
// The file system is expected to be rooted at the cache directory.
// Defaults to the OS file system under the root passed to New.
func Fs(fs afero.Fs) Option {
	return func(c *Cache) {
		if fs != nil {
			c.fs = fs
		}
	}
}

// Logger specifies a logger for this cache
func Logger(logger *zap.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.l = logger
		}
	}
}
