// Package manifest holds the document which stands in for a large file
// inside git: the original filename and the ordered addresses of its chunks.
//
// Manifests serialize to YAML:
//
//	Filename: picture.psd
//	ChunkHashes:
//	- 9F86D081884C7D659A2FEAA0C55AD015A3BF4F1B2B0B822CD15D6C15B0F00A08
//	- 60303AE22B998861BCE3B28F33EEC1BE758A213C86C93C076DBE9F558C11C752
package manifest

import (
	"bytes"
	"fmt"
	"io"

	"github.com/oneconcern/gitbin/pkg/chunk"
	"github.com/oneconcern/gitbin/pkg/status"
	"gopkg.in/yaml.v2"
)

// Manifest of a file. The order of chunks is the order in which their
// content must be concatenated to reproduce the file.
type Manifest struct {
	Filename string          `yaml:"Filename"`
	Chunks   []chunk.Address `yaml:"ChunkHashes"`
}

// New empty manifest for a file
func New(filename string) *Manifest {
	return &Manifest{
		Filename: filename,
		Chunks:   []chunk.Address{},
	}
}

// Append a chunk address
func (m *Manifest) Append(addr chunk.Address) {
	m.Chunks = append(m.Chunks, addr)
}

// Marshal the manifest to its text form
func (m *Manifest) Marshal() ([]byte, error) {
	doc := *m
	if doc.Chunks == nil {
		doc.Chunks = []chunk.Address{}
	}
	return yaml.Marshal(doc)
}

// WriteTo writes the text form of the manifest
func (m *Manifest) WriteTo(w io.Writer) (int64, error) {
	b, err := m.Marshal()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// document is the wire form, with a pointer to tell a missing list from an empty one
type document struct {
	Filename    string    `yaml:"Filename"`
	ChunkHashes *[]string `yaml:"ChunkHashes"`
}

// Parse a manifest from its text form.
//
// Documents with CRLF line endings are accepted. Every chunk address is validated.
func Parse(b []byte) (*Manifest, error) {
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, status.ErrArgument.Wrap(fmt.Errorf("invalid manifest: empty document"))
	}

	var doc document
	if err := yaml.UnmarshalStrict(b, &doc); err != nil {
		return nil, status.ErrArgument.Wrapf("invalid manifest: %w", err)
	}
	if doc.ChunkHashes == nil {
		return nil, status.ErrArgument.Wrap(fmt.Errorf("invalid manifest: no ChunkHashes entry"))
	}

	m := New(doc.Filename)
	for i, h := range *doc.ChunkHashes {
		addr, err := chunk.ParseAddress(h)
		if err != nil {
			return nil, status.ErrArgument.Wrapf("invalid manifest: chunk #%d: %w", i, err)
		}
		m.Append(addr)
	}
	return m, nil
}

// Read and parse a manifest in full from a reader
func Read(r io.Reader) (*Manifest, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(b)
}
