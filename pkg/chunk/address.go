// Package chunk defines chunk addresses and the record sets exchanged
// between the local cache and a remote.
package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/oneconcern/gitbin/pkg/status"
)

const (
	// AddressSize is the size in bytes of a sha256 digest
	AddressSize = sha256.Size

	// AddressSizeHex is the length of the hex representation of an address
	AddressSizeHex = 2 * AddressSize
)

// Address identifies a chunk by the upper case hex sha256 digest of its content
type Address string

// Hash computes the address of some content
func Hash(content []byte) Address {
	sum := sha256.Sum256(content)
	return Address(strings.ToUpper(hex.EncodeToString(sum[:])))
}

// ParseAddress accepts a hex digest in any case and returns its canonical form
func ParseAddress(s string) (Address, error) {
	a := Address(strings.ToUpper(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", status.ErrArgument.Wrap(&BadAddress{Value: s})
	}
	return a, nil
}

// MustParseAddress is like ParseAddress but panics on invalid input
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err.Error())
	}
	return a
}

// Valid tells if the address is in canonical form
func (a Address) Valid() bool {
	if len(a) != AddressSizeHex {
		return false
	}
	for i := 0; i < len(a); i++ {
		c := a[i]
		if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

// Matches tells if some content hashes to this address
func (a Address) Matches(content []byte) bool {
	return Hash(content) == a
}

func (a Address) String() string {
	return string(a)
}

// Short is an abbreviated form for messages
func (a Address) Short() string {
	if len(a) <= 12 {
		return string(a)
	}
	return string(a[:12])
}

// BadAddress is returned when a string is not a valid chunk address
type BadAddress struct {
	Value string
}

func (b *BadAddress) Error() string {
	return fmt.Sprintf("%q is not a valid chunk address, expected %d hex characters", b.Value, AddressSizeHex)
}
