package core

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/oneconcern/gitbin/pkg/cache"
	"github.com/oneconcern/gitbin/pkg/chunk"
	"github.com/oneconcern/gitbin/pkg/remote"
	"github.com/oneconcern/gitbin/pkg/remote/localfs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testChunkSize = 1024

// faultyRemote decorates a remote with injected failures and records calls
type faultyRemote struct {
	remote.Remote

	mu         sync.Mutex
	corrupt    map[chunk.Address]int // remaining corrupted downloads, negative for always
	failUpload map[chunk.Address]error
	downloads  map[chunk.Address]int
	uploads    []chunk.Address
}

func newFaultyRemote(t testing.TB) *faultyRemote {
	t.Helper()
	r, err := localfs.New(afero.NewMemMapFs())
	require.NoError(t, err)
	return &faultyRemote{
		Remote:     r,
		corrupt:    make(map[chunk.Address]int),
		failUpload: make(map[chunk.Address]error),
		downloads:  make(map[chunk.Address]int),
	}
}

func (f *faultyRemote) Upload(ctx context.Context, addr chunk.Address, content []byte, progress remote.ProgressFunc) error {
	f.mu.Lock()
	err := f.failUpload[addr]
	f.uploads = append(f.uploads, addr)
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Remote.Upload(ctx, addr, content, progress)
}

func (f *faultyRemote) Download(ctx context.Context, addr chunk.Address, progress remote.ProgressFunc) ([]byte, error) {
	f.mu.Lock()
	f.downloads[addr]++
	remaining := f.corrupt[addr]
	if remaining > 0 {
		f.corrupt[addr] = remaining - 1
	}
	f.mu.Unlock()

	content, err := f.Remote.Download(ctx, addr, progress)
	if err != nil {
		return nil, err
	}
	if remaining != 0 {
		tampered := append([]byte("garbage"), content...)
		return tampered, nil
	}
	return content, nil
}

func (f *faultyRemote) downloadCount(addr chunk.Address) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.downloads[addr]
}

func (f *faultyRemote) uploaded() []chunk.Address {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chunk.Address(nil), f.uploads...)
}

func newTestCache(t testing.TB) *cache.Cache {
	t.Helper()
	c, err := cache.New(filepath.Join(t.TempDir(), "git-bin"))
	require.NoError(t, err)
	return c
}

func newTestEngine(t testing.TB, r remote.Remote, opts ...Option) *Engine {
	t.Helper()
	e, err := New(newTestCache(t), r, append([]Option{ChunkSize(testChunkSize)}, opts...)...)
	require.NoError(t, err)
	return e
}
