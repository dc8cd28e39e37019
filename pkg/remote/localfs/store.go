// Copyright © 2018 One Concern

// Package localfs implements a remote over a directory, such as a mounted network share.
package localfs

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/oneconcern/gitbin/pkg/chunk"
	"github.com/oneconcern/gitbin/pkg/remote"
	"github.com/oneconcern/gitbin/pkg/status"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	nestedPutStageName = ".put-stage"
	rootDir            = "/"
)

var _ remote.Remote = &Store{}

// Option is a functor to pass optional parameters to the directory remote
type Option func(*Store)

// Logger specifies a logger for this remote
func Logger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.l = logger
		}
	}
}

// Store keeps chunks as files in a directory
type Store struct {
	fs afero.Fs
	l  *zap.Logger
}

// New remote over a file system, typically an afero.BasePathFs rooted at the target directory
func New(fs afero.Fs, opts ...Option) (*Store, error) {
	if fs == nil {
		return nil, status.ErrConfiguration.Wrap(fmt.Errorf("a file system is required for a directory remote"))
	}
	s := &Store{fs: fs, l: zap.NewNop()}
	for _, apply := range opts {
		apply(s)
	}
	// the staging area exists within the afero.Fs itself
	if err := fs.MkdirAll(path.Join(rootDir, nestedPutStageName), 0700); err != nil {
		return nil, status.ErrBackend.Wrapf("ensuring put staging directory for %q: %w", nestedPutStageName, err)
	}
	return s, nil
}

// NewDir remote over a directory of the OS file system
func NewDir(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, status.ErrConfiguration.Wrap(fmt.Errorf("a directory is required for a directory remote"))
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, status.ErrBackend.Wrapf("ensuring remote directory %q: %w", dir, err)
	}
	return New(afero.NewBasePathFs(afero.NewOsFs(), dir), opts...)
}

func (s *Store) String() string {
	const localfs = "localfs"
	switch fs := s.fs.(type) {
	case *afero.BasePathFs:
		pp, err := fs.RealPath(rootDir)
		if err != nil {
			return localfs
		}
		return localfs + "@" + pp
	default:
		return localfs
	}
}

// List chunks stored in the directory
func (s *Store) List(_ context.Context) (chunk.Records, error) {
	infos, err := afero.ReadDir(s.fs, rootDir)
	if err != nil {
		return nil, status.ErrBackend.Wrapf("listing %v: %w", s, err)
	}
	res := make(chunk.Records, 0, len(infos))
	for _, fi := range infos {
		addr := chunk.Address(fi.Name())
		if !fi.Mode().IsRegular() || !addr.Valid() {
			continue
		}
		res = append(res, chunk.Record{Address: addr, Size: fi.Size()})
	}
	return res, nil
}

// Upload a chunk. An existing object is left in place.
func (s *Store) Upload(_ context.Context, addr chunk.Address, content []byte, progress remote.ProgressFunc) error {
	if progress == nil {
		progress = remote.NopProgress
	}
	key := path.Join(rootDir, string(addr))
	if fi, err := s.fs.Stat(key); err == nil && fi.Mode().IsRegular() {
		progress(100)
		return nil
	}

	staged, err := afero.TempFile(s.fs, path.Join(rootDir, nestedPutStageName), string(addr)+"-")
	if err != nil {
		return status.ErrBackend.Wrapf("create record for %q: %w", addr, err)
	}
	name := staged.Name()
	if _, err = staged.Write(content); err != nil {
		_ = staged.Close()
		_ = s.fs.Remove(name)
		return status.ErrBackend.Wrapf("write record for %q: %w", addr, err)
	}
	if err = staged.Close(); err != nil {
		_ = s.fs.Remove(name)
		return status.ErrBackend.Wrapf("close record for %q: %w", addr, err)
	}
	if err = s.fs.Rename(name, key); err != nil {
		_ = s.fs.Remove(name)
		return status.ErrBackend.Wrapf("publish record for %q: %w", addr, err)
	}
	progress(100)
	s.l.Debug("uploaded chunk", zap.Stringer("address", addr), zap.Int("size", len(content)))
	return nil
}

// Download a chunk
func (s *Store) Download(_ context.Context, addr chunk.Address, progress remote.ProgressFunc) ([]byte, error) {
	key := path.Join(rootDir, string(addr))
	f, err := s.fs.Open(key)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, status.ErrNotFound.Wrapf("chunk %s on %v", addr, s)
		}
		return nil, status.ErrBackend.Wrapf("open record for %q: %w", addr, err)
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return nil, status.ErrBackend.Wrapf("stat record for %q: %w", addr, err)
	}
	content, err := remote.ReadAll(f, fi.Size(), progress)
	if err != nil {
		return nil, status.ErrBackend.Wrapf("read record for %q: %w", addr, err)
	}
	return content, nil
}
