package core

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/oneconcern/gitbin/pkg/manifest"
	"go.uber.org/zap"
)

// Clean splits a stream in fixed size chunks, stores them in the cache and
// returns the manifest of the stream. The last chunk may be shorter.
func (e *Engine) Clean(ctx context.Context, filename string, src io.Reader) (*manifest.Manifest, error) {
	e.l.Debug("start clean", zap.String("filename", filename), zap.Int("chunkSize", e.chunkSize))

	m := manifest.New(filename)
	buf := make([]byte, e.chunkSize)
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := io.ReadFull(src, buf)
		if n > 0 {
			addr, werr := e.cache.Write(ctx, buf[:n])
			if werr != nil {
				return nil, werr
			}
			m.Append(addr)
			total += int64(n)
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", filename, err)
		}
	}

	e.l.Debug("end clean", zap.String("filename", filename), zap.Int("chunks", len(m.Chunks)), zap.Int64("size", total))
	return m, nil
}
