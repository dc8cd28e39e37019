// Copyright © 2018 One Concern

// Package status declares the error constants shared by the cache,
// the remote backends and the sync engine.
//
// NOTE: such constants are located in a separate package to avoid
// creating undue cyclical dependencies between pkg/core and the
// packages it drives.
package status

import "github.com/oneconcern/gitbin/pkg/errors"

var (
	// ErrNotFound indicates that a chunk is absent from the cache or from the remote
	ErrNotFound = errors.New("not found")

	// ErrCorrupted indicates that stored bytes no longer hash to their address
	ErrCorrupted = errors.New("chunk corrupted")

	// ErrConfiguration indicates a missing or malformed setting
	ErrConfiguration = errors.New("configuration error")

	// ErrArgument indicates invalid input such as a malformed manifest
	ErrArgument = errors.New("invalid argument")

	// ErrBackend indicates a failure reported by the remote storage API
	ErrBackend = errors.New("remote error")

	// ErrNoRemote is returned by operations that need a remote when none is configured
	ErrNoRemote = errors.New("no remote configured")
)

// Known tells if an error belongs to the taxonomy above.
func Known(err error) bool {
	for _, sentinel := range []error{ErrNotFound, ErrCorrupted, ErrConfiguration, ErrArgument, ErrBackend, ErrNoRemote} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
