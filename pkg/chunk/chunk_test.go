package chunk

import (
	"strings"
	"testing"

	"github.com/oneconcern/gitbin/pkg/errors"
	"github.com/oneconcern/gitbin/pkg/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const emptyDigest = "E3B0C44298FC1C149AFBF4C8996FB92427AE41E4649B934CA495991B7852B855"

func TestHash(t *testing.T) {
	assert.Equal(t, Address(emptyDigest), Hash(nil))
	assert.Equal(t, Address(emptyDigest), Hash([]byte{}))

	a := Hash([]byte("hello world"))
	assert.Equal(t, a, Hash([]byte("hello world")))
	assert.NotEqual(t, a, Hash([]byte("hello world!")))
	assert.True(t, a.Valid())
	assert.True(t, a.Matches([]byte("hello world")))
	assert.False(t, a.Matches([]byte("hello")))
	assert.Len(t, a.String(), AddressSizeHex)
	assert.Equal(t, a.String()[:12], a.Short())
}

func TestParseAddress(t *testing.T) {
	a, err := ParseAddress(strings.ToLower(emptyDigest))
	require.NoError(t, err)
	assert.Equal(t, Address(emptyDigest), a)

	for _, bad := range []string{"", "ABC", emptyDigest + "0", strings.Replace(emptyDigest, "E", "G", 1)} {
		_, err = ParseAddress(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, status.ErrArgument))
		var typed *BadAddress
		assert.True(t, errors.As(err, &typed))
	}

	assert.Panics(t, func() { _ = MustParseAddress("nope") })
	assert.False(t, Address(strings.ToLower(emptyDigest)).Valid())
}

func TestRecords(t *testing.T) {
	a, b, c := Hash([]byte("a")), Hash([]byte("b")), Hash([]byte("c"))
	local := Records{{Address: c, Size: 3}, {Address: a, Size: 1}, {Address: b, Size: 2}}
	remote := Records{{Address: a, Size: 1}}

	assert.Equal(t, int64(6), local.Size())
	assert.Equal(t, Summary{Count: 3, Size: 6}, local.Summary())

	missing := local.Missing(remote)
	require.Len(t, missing, 2)
	assert.ElementsMatch(t, []Address{b, c}, missing.Addresses())
	assert.True(t, missing[0].Address < missing[1].Address)
	assert.Equal(t, int64(5), missing.Size())

	assert.Empty(t, remote.Missing(local))
	assert.Empty(t, Records{}.Missing(nil))
}

func TestDifference(t *testing.T) {
	a, b, c := Hash([]byte("a")), Hash([]byte("b")), Hash([]byte("c"))
	assert.Equal(t, []Address{c, b}, Difference([]Address{c, a, b, c, b}, []Address{a}))
	assert.Empty(t, Difference([]Address{a, a}, []Address{a}))
	assert.Empty(t, Difference(nil, nil))
}
