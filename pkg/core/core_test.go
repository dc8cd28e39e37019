package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"testing"

	"github.com/oneconcern/gitbin/internal/rand"
	"github.com/oneconcern/gitbin/pkg/chunk"
	gerrors "github.com/oneconcern/gitbin/pkg/errors"
	"github.com/oneconcern/gitbin/pkg/manifest"
	"github.com/oneconcern/gitbin/pkg/status"
	"github.com/oneconcern/gitbin/pkg/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSizes = []struct {
	name   string
	size   int
	chunks int
}{
	{name: "empty", size: 0, chunks: 0},
	{name: "under chunk size", size: testChunkSize - 1, chunks: 1},
	{name: "chunk size", size: testChunkSize, chunks: 1},
	{name: "over chunk size", size: testChunkSize + 1, chunks: 2},
	{name: "multiple chunk size", size: 3 * testChunkSize, chunks: 3},
	{name: "multiple chunk size and a tail", size: 3*testChunkSize + 17, chunks: 4},
}

func TestCleanSmudgeRoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, tc := range testSizes {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t, nil)
			content := rand.Seeded(int64(tc.size), tc.size)

			m, err := e.Clean(ctx, "file.bin", bytes.NewReader(content))
			require.NoError(t, err)
			assert.Equal(t, "file.bin", m.Filename)
			require.Len(t, m.Chunks, tc.chunks)

			for i, addr := range m.Chunks {
				end := (i + 1) * testChunkSize
				if end > len(content) {
					end = len(content)
				}
				assert.Equal(t, chunk.Hash(content[i*testChunkSize:end]), addr, "chunk #%d", i)
			}

			// the manifest survives serialization, as it does when stored in git
			text, err := m.Marshal()
			require.NoError(t, err)
			parsed, err := manifest.Parse(text)
			require.NoError(t, err)

			var out bytes.Buffer
			require.NoError(t, e.Smudge(ctx, parsed, &out))
			assert.Equal(t, len(content), out.Len())
			assert.True(t, bytes.Equal(content, out.Bytes()), "smudge must reproduce the cleaned bytes")
		})
	}
}

func TestCleanDeterministic(t *testing.T) {
	ctx := context.Background()
	content := rand.Seeded(7, 5*testChunkSize+3)

	m1, err := newTestEngine(t, nil).Clean(ctx, "a", bytes.NewReader(content))
	require.NoError(t, err)
	m2, err := newTestEngine(t, nil).Clean(ctx, "a", bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, m1, m2)
}

func TestCleanDeduplicates(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil)
	block := rand.Seeded(1, testChunkSize)
	content := bytes.Repeat(block, 4)

	m, err := e.Clean(ctx, "repeated", bytes.NewReader(content))
	require.NoError(t, err)
	require.Len(t, m.Chunks, 4)
	for _, addr := range m.Chunks {
		assert.Equal(t, chunk.Hash(block), addr)
	}
	records, err := e.Cache().List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCleanReadError(t *testing.T) {
	e := newTestEngine(t, nil)
	boom := errors.New("disk on fire")
	_, err := e.Clean(context.Background(), "broken", &failingReader{after: 2 * testChunkSize, err: boom})
	require.ErrorIs(t, err, boom)
}

type failingReader struct {
	after int
	read  int
	err   error
}

func (f *failingReader) Read(p []byte) (int, error) {
	if f.read >= f.after {
		return 0, f.err
	}
	n := len(p)
	if n > f.after-f.read {
		n = f.after - f.read
	}
	f.read += n
	return n, nil
}

func TestPushThenSmudgeFromEmptyCache(t *testing.T) {
	ctx := context.Background()
	r := newFaultyRemote(t)
	content := rand.Seeded(3, 4*testChunkSize+100)

	writer := newTestEngine(t, r)
	m, err := writer.Clean(ctx, "big.psd", bytes.NewReader(content))
	require.NoError(t, err)

	res, err := writer.Push(ctx)
	require.NoError(t, err)
	assert.Len(t, res.Pending, 5)
	assert.Equal(t, 5, res.Uploaded)

	var (
		started  []int
		progress []transfer.Event
	)
	reader := newTestEngine(t, r,
		OnStart(func(dir Direction, n int) {
			assert.Equal(t, Download, dir)
			started = append(started, n)
		}),
		OnProgress(func(_ Direction, ev transfer.Event) { progress = append(progress, ev) }),
	)
	var out bytes.Buffer
	require.NoError(t, reader.Smudge(ctx, m, &out))
	assert.Equal(t, content, out.Bytes())
	assert.Equal(t, []int{5}, started)
	require.NotEmpty(t, progress)
	assert.Equal(t, 100.0, progress[len(progress)-1].Percent)

	// a second smudge needs no transfer
	started = nil
	out.Reset()
	require.NoError(t, reader.Smudge(ctx, m, &out))
	assert.Equal(t, content, out.Bytes())
	assert.Equal(t, []int{0}, started)
}

func TestPushOnlyMissing(t *testing.T) {
	ctx := context.Background()
	r := newFaultyRemote(t)
	e := newTestEngine(t, r)

	a := []byte("chunk A")
	require.NoError(t, r.Remote.Upload(ctx, chunk.Hash(a), a, nil))
	for _, content := range [][]byte{a, []byte("chunk B"), []byte("chunk C")} {
		_, err := e.Cache().Write(ctx, content)
		require.NoError(t, err)
	}

	res, err := e.Push(ctx)
	require.NoError(t, err)
	require.Len(t, res.Pending, 2)
	assert.Equal(t, "2 chunks", ChunkCount(len(res.Pending)))
	assert.Equal(t, 2, res.Uploaded)

	want := []chunk.Address{chunk.Hash([]byte("chunk B")), chunk.Hash([]byte("chunk C"))}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	assert.Equal(t, want, r.uploaded(), "uploads are sequential and sorted by address")

	records, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	res, err = e.Push(ctx)
	require.NoError(t, err)
	assert.Empty(t, res.Pending)
	assert.Equal(t, 0, res.Uploaded)
}

func TestPushCorruptedChunk(t *testing.T) {
	ctx := context.Background()
	r := newFaultyRemote(t)
	e := newTestEngine(t, r)

	addr, err := e.Cache().Write(ctx, []byte("will be tampered"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(e.Cache().PathFor(addr), []byte("tampered"), 0600))

	_, err = e.Push(ctx)
	require.Error(t, err)
	assert.True(t, gerrors.Is(err, status.ErrCorrupted))
	assert.Empty(t, r.uploaded(), "a corrupted chunk is never uploaded")
}

func TestPushStopsOnFirstFailure(t *testing.T) {
	ctx := context.Background()
	r := newFaultyRemote(t)
	e := newTestEngine(t, r)

	var addrs []chunk.Address
	for i := 0; i < 3; i++ {
		addr, err := e.Cache().Write(ctx, []byte(fmt.Sprintf("chunk %d", i)))
		require.NoError(t, err)
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	boom := errors.New("connection reset")
	r.failUpload[addrs[1]] = status.ErrBackend.Wrap(boom)

	res, err := e.Push(ctx)
	require.Error(t, err)
	assert.True(t, gerrors.Is(err, status.ErrBackend))
	assert.True(t, gerrors.Is(err, boom))
	assert.Equal(t, 1, res.Uploaded)
	assert.Equal(t, addrs[:2], r.uploaded(), "the batch stops after the failure")

	records, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []chunk.Address{addrs[0]}, records.Addresses(), "completed uploads are kept")
}

func TestFetchRetriesCorruptedDownloads(t *testing.T) {
	ctx := context.Background()
	r := newFaultyRemote(t)
	content := []byte("flaky network")
	addr := chunk.Hash(content)
	require.NoError(t, r.Remote.Upload(ctx, addr, content, nil))
	r.corrupt[addr] = 2

	e := newTestEngine(t, r)
	require.NoError(t, e.Fetch(ctx, []chunk.Address{addr}))
	assert.Equal(t, 3, r.downloadCount(addr))

	b, err := e.Cache().Read(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, content, b)
}

func TestFetchGivesUpOnPersistentCorruption(t *testing.T) {
	ctx := context.Background()
	r := newFaultyRemote(t)
	content := []byte("rotten on the remote")
	addr := chunk.Hash(content)
	require.NoError(t, r.Remote.Upload(ctx, addr, content, nil))
	r.corrupt[addr] = -1

	e := newTestEngine(t, r)
	m := manifest.New("rotten")
	m.Append(addr)
	var out bytes.Buffer
	err := e.Smudge(ctx, m, &out)
	require.Error(t, err)
	assert.True(t, gerrors.Is(err, status.ErrCorrupted))
	assert.Equal(t, DefaultDownloadAttempts, r.downloadCount(addr))
	assert.Empty(t, out.Bytes())

	has, err := e.Cache().Has(ctx, addr)
	require.NoError(t, err)
	assert.False(t, has, "no corrupted entry is left in the cache")

	r2 := newFaultyRemote(t)
	require.NoError(t, r2.Remote.Upload(ctx, addr, content, nil))
	r2.corrupt[addr] = -1
	e2 := newTestEngine(t, r2, DownloadAttempts(2))
	require.Error(t, e2.Fetch(ctx, []chunk.Address{addr}))
	assert.Equal(t, 2, r2.downloadCount(addr))
}

func TestFetchNotFoundIsNotRetried(t *testing.T) {
	ctx := context.Background()
	r := newFaultyRemote(t)
	e := newTestEngine(t, r)
	addr := chunk.Hash([]byte("never pushed"))

	err := e.Fetch(ctx, []chunk.Address{addr})
	require.Error(t, err)
	assert.True(t, gerrors.Is(err, status.ErrNotFound))
	assert.Equal(t, 1, r.downloadCount(addr))
}

func TestSmudgeWithoutRemote(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil)

	m, err := e.Clean(ctx, "local", bytes.NewReader([]byte("only local")))
	require.NoError(t, err)
	var out bytes.Buffer
	require.NoError(t, e.Smudge(ctx, m, &out), "no remote is needed when every chunk is cached")
	assert.Equal(t, "only local", out.String())

	m.Append(chunk.Hash([]byte("absent")))
	err = e.Smudge(ctx, m, &out)
	require.Error(t, err)
	assert.True(t, gerrors.Is(err, status.ErrNoRemote))

	_, err = e.Push(ctx)
	assert.True(t, gerrors.Is(err, status.ErrNoRemote))
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	r := newFaultyRemote(t)
	e := newTestEngine(t, r)

	require.NoError(t, r.Remote.Upload(ctx, chunk.Hash([]byte("1234")), []byte("1234"), nil))
	for _, s := range []string{"1234", "567", "89"} {
		_, err := e.Cache().Write(ctx, []byte(s))
		require.NoError(t, err)
	}

	report, err := e.Status(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, StatusReport{Local: chunk.Summary{Count: 3, Size: 9}}, report)

	report, err = e.Status(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, StatusReport{
		Local:      chunk.Summary{Count: 3, Size: 9},
		WithRemote: true,
		Remote:     chunk.Summary{Count: 1, Size: 4},
		ToPush:     chunk.Summary{Count: 2, Size: 5},
	}, report)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil)
	_, err := e.Clean(ctx, "f", bytes.NewReader(rand.Seeded(9, 2*testChunkSize)))
	require.NoError(t, err)

	summary, err := e.Clear(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, chunk.Summary{Count: 2, Size: 2 * testChunkSize}, summary)
	records, err := e.Cache().List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2, "a dry run removes nothing")

	summary, err = e.Clear(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, chunk.Summary{Count: 2, Size: 2 * testChunkSize}, summary)
	records, err = e.Cache().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestChunkCount(t *testing.T) {
	assert.Equal(t, "0 chunks", ChunkCount(0))
	assert.Equal(t, "1 chunk", ChunkCount(1))
	assert.Equal(t, "12 chunks", ChunkCount(12))
}

func TestNewRequiresCache(t *testing.T) {
	_, err := New(nil, nil)
	require.Error(t, err)
	assert.True(t, gerrors.Is(err, status.ErrConfiguration))
}
