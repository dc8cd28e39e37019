package remote

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/oneconcern/gitbin/pkg/chunk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, 100, Percent(0, 0))
	assert.Equal(t, 0, Percent(0, 10))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 100, Percent(12, 10))
	assert.Equal(t, 0, Percent(-1, 10))
}

func TestReadAll(t *testing.T) {
	content := bytes.Repeat([]byte("x"), 1000)
	var reports []int
	b, err := ReadAll(io.LimitReader(bytes.NewReader(content), 1000), 1000, func(pct int) {
		reports = append(reports, pct)
	})
	require.NoError(t, err)
	assert.Equal(t, content, b)
	require.NotEmpty(t, reports)
	assert.Equal(t, 100, reports[len(reports)-1])
	for i := 1; i < len(reports); i++ {
		assert.NotEqual(t, reports[i-1], reports[i])
	}
}

func TestReadAllEmpty(t *testing.T) {
	var reports []int
	b, err := ReadAll(bytes.NewReader(nil), 0, func(pct int) {
		reports = append(reports, pct)
	})
	require.NoError(t, err)
	assert.Empty(t, b)
	assert.Equal(t, []int{100}, reports)

	_, err = NewProgressReader(bytes.NewReader([]byte("abc")), 3, nil).Read(make([]byte, 3))
	require.NoError(t, err)
}

func TestUnavailable(t *testing.T) {
	cause := errors.New("[s3bucket] must be set")
	r := Unavailable(cause)
	assert.Equal(t, "unavailable remote", r.String())

	_, err := r.List(context.Background())
	assert.Equal(t, cause, err)
	assert.Equal(t, cause, r.Upload(context.Background(), chunk.Hash(nil), nil, nil))
	_, err = r.Download(context.Background(), chunk.Hash(nil), nil)
	assert.Equal(t, cause, err)
}
