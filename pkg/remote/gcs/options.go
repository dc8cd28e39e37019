package gcs

import (
	gcsStorage "cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// Option is a functor to pass optional parameters to the gcs remote
type Option func(*gcs)

// Logger specifies a logger for this remote
func Logger(logger *zap.Logger) Option {
	return func(g *gcs) {
		if logger != nil {
			g.l = logger
		}
	}
}

// Prefix for object names
func Prefix(prefix string) Option {
	return func(g *gcs) {
		g.prefix = prefix
	}
}

// CredentialsFile to authenticate with, instead of the application default credentials
func CredentialsFile(path string) Option {
	return func(g *gcs) {
		g.credentials = path
	}
}

// Client specifies a preconfigured storage client
func Client(client *gcsStorage.Client) Option {
	return func(g *gcs) {
		g.client = client
	}
}
