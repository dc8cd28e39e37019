// Copyright © 2018 One Concern

// Package cache implements the local chunk cache.
//
// Entries are files named by the address of their content, laid out
// flat under the cache root. Writes are staged in a separate area then
// renamed into place, so readers never observe a partial entry.
package cache

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/oneconcern/gitbin/pkg/chunk"
	"github.com/oneconcern/gitbin/pkg/status"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// StagingDir is the name of the staging area for writes in progress
	StagingDir = ".staging"

	rootDir = "/"
)

// Cache of chunks on the local file system
type Cache struct {
	root string
	fs   afero.Fs
	l    *zap.Logger
}

// New cache rooted at some directory
func New(root string, opts ...Option) (*Cache, error) {
	c := &Cache{
		root: root,
		l:    zap.NewNop(),
	}
	for _, apply := range opts {
		apply(c)
	}
	if c.fs == nil {
		if root == "" {
			return nil, status.ErrConfiguration.Wrap(fmt.Errorf("a cache directory is required"))
		}
		if err := os.MkdirAll(root, 0700); err != nil {
			return nil, fmt.Errorf("ensuring cache directory %q: %w", root, err)
		}
		c.fs = afero.NewBasePathFs(afero.NewOsFs(), root)
	}

	// the staging area exists within the afero.Fs itself
	if err := c.fs.MkdirAll(stagingPath(), 0700); err != nil {
		return nil, fmt.Errorf("ensuring staging directory for %q: %w", StagingDir, err)
	}
	return c, nil
}

func stagingPath() string {
	return path.Join(rootDir, StagingDir)
}

func entryPath(addr chunk.Address) string {
	return path.Join(rootDir, string(addr))
}

// Root directory of the cache
func (c *Cache) Root() string {
	return c.root
}

// PathFor returns where the entry for an address lives on disk
func (c *Cache) PathFor(addr chunk.Address) string {
	return filepath.Join(c.root, string(addr))
}

func (c *Cache) String() string {
	return "cache@" + c.root
}

// Has tells if an entry exists for this address
func (c *Cache) Has(_ context.Context, addr chunk.Address) (bool, error) {
	fi, err := c.fs.Stat(entryPath(addr))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return fi.Mode().IsRegular(), nil
}

// Read the content of a chunk and check that it still hashes to its address
func (c *Cache) Read(ctx context.Context, addr chunk.Address) ([]byte, error) {
	if !addr.Valid() {
		return nil, status.ErrArgument.Wrap(&chunk.BadAddress{Value: string(addr)})
	}
	has, err := c.Has(ctx, addr)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, status.ErrNotFound.Wrapf("chunk %s is not in the cache", addr)
	}
	content, err := afero.ReadFile(c.fs, entryPath(addr))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, status.ErrNotFound.Wrapf("chunk %s is not in the cache", addr)
		}
		return nil, fmt.Errorf("reading chunk %s: %w", addr, err)
	}
	if !addr.Matches(content) {
		return nil, status.ErrCorrupted.Wrapf("cached chunk %s", addr)
	}
	return content, nil
}

// Write a chunk and return its address.
//
// A chunk which is already present is left untouched.
func (c *Cache) Write(ctx context.Context, content []byte) (chunk.Address, error) {
	addr := chunk.Hash(content)
	if err := c.write(ctx, addr, content); err != nil {
		return "", err
	}
	return addr, nil
}

// WriteVerified stores content expected to hash to addr, as when receiving bytes from a remote.
func (c *Cache) WriteVerified(ctx context.Context, addr chunk.Address, content []byte) error {
	if !addr.Matches(content) {
		return status.ErrCorrupted.Wrapf("received content for chunk %s hashes to %s", addr, chunk.Hash(content))
	}
	return c.write(ctx, addr, content)
}

func (c *Cache) write(ctx context.Context, addr chunk.Address, content []byte) error {
	has, err := c.Has(ctx, addr)
	if err != nil {
		return err
	}
	if has {
		c.l.Debug("chunk already cached", zap.Stringer("address", addr))
		return nil
	}

	staged, err := afero.TempFile(c.fs, stagingPath(), string(addr)+"-")
	if err != nil {
		return fmt.Errorf("staging chunk %s: %w", addr, err)
	}
	stagedName := staged.Name()
	discard := func(e error) error {
		_ = staged.Close()
		_ = c.fs.Remove(stagedName)
		return e
	}

	if _, err = staged.Write(content); err != nil {
		return discard(fmt.Errorf("writing chunk %s: %w", addr, err))
	}
	if err = staged.Sync(); err != nil {
		return discard(fmt.Errorf("syncing chunk %s: %w", addr, err))
	}
	if err = staged.Close(); err != nil {
		_ = c.fs.Remove(stagedName)
		return fmt.Errorf("closing chunk %s: %w", addr, err)
	}

	if err = c.fs.Rename(stagedName, entryPath(addr)); err != nil {
		_ = c.fs.Remove(stagedName)
		return fmt.Errorf("publishing chunk %s: %w", addr, err)
	}
	c.l.Debug("chunk cached", zap.Stringer("address", addr), zap.Int("size", len(content)))
	return nil
}

// List the chunks present in the cache.
//
// Files which are not named after a valid address are ignored.
func (c *Cache) List(_ context.Context) (chunk.Records, error) {
	infos, err := afero.ReadDir(c.fs, rootDir)
	if err != nil {
		return nil, fmt.Errorf("listing cache %q: %w", c.root, err)
	}
	res := make(chunk.Records, 0, len(infos))
	for _, fi := range infos {
		if !fi.Mode().IsRegular() {
			continue
		}
		addr := chunk.Address(fi.Name())
		if !addr.Valid() {
			continue
		}
		res = append(res, chunk.Record{Address: addr, Size: fi.Size()})
	}
	return res, nil
}

// Missing returns the candidates absent from the cache, without duplicates and in candidate order
func (c *Cache) Missing(ctx context.Context, candidates []chunk.Address) ([]chunk.Address, error) {
	present, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	return chunk.Difference(candidates, present.Addresses()), nil
}

// Delete an entry. Deleting an absent entry is not an error.
func (c *Cache) Delete(_ context.Context, addr chunk.Address) error {
	if err := c.fs.Remove(entryPath(addr)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing chunk %s: %w", addr, err)
	}
	return nil
}

// Clear removes all entries and leftovers from interrupted writes.
//
// It returns what was removed. Failures on individual entries do not stop
// the removal of the others and are reported together.
func (c *Cache) Clear(ctx context.Context) (chunk.Summary, error) {
	records, err := c.List(ctx)
	if err != nil {
		return chunk.Summary{}, err
	}

	var (
		removed chunk.Records
		errs    error
	)
	for _, rec := range records {
		if e := c.Delete(ctx, rec.Address); e != nil {
			errs = multierr.Append(errs, e)
			continue
		}
		removed = append(removed, rec)
	}

	stale, err := afero.ReadDir(c.fs, stagingPath())
	if err != nil && !os.IsNotExist(err) {
		errs = multierr.Append(errs, err)
	}
	for _, fi := range stale {
		if e := c.fs.Remove(path.Join(stagingPath(), fi.Name())); e != nil && !os.IsNotExist(e) {
			errs = multierr.Append(errs, e)
		}
	}

	c.l.Info("cache cleared", zap.Int("count", len(removed)), zap.Int64("size", removed.Size()))
	return removed.Summary(), errs
}
