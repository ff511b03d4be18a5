package modelio

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"structuralign/pkg/model"
)

// container is the gob-encoded payload. A version field lets a future
// format change refuse to misread an older file instead of decoding
// garbage.
type container struct {
	Version  int
	Elements []model.Element
}

const containerVersion = 1

// Write encodes elements as a gzip-compressed gob stream and writes it to
// w. This format can be re-read with [Read] for an identical round trip.
func Write(elements []model.Element, w io.Writer) error {
	gz := gzip.NewWriter(w)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(container{Version: containerVersion, Elements: elements}); err != nil {
		gz.Close()
		return fmt.Errorf("encode: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Export writes elements to a model file at path.
func Export(elements []model.Element, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(elements, f)
}

// Read decodes a model previously written by [Write].
func Read(r io.Reader) ([]model.Element, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer gz.Close()

	var c container
	if err := gob.NewDecoder(gz).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if c.Version != containerVersion {
		return nil, fmt.Errorf("unsupported model container version %d", c.Version)
	}
	return c.Elements, nil
}

// Import reads a model file at path.
func Import(path string) ([]model.Element, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Bytes encodes elements to an in-memory model container, for callers
// (the cache layer, the HTTP API) that need the serialized form without
// touching the filesystem.
func Bytes(elements []model.Element) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(elements, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromBytes decodes a model container produced by [Bytes].
func FromBytes(data []byte) ([]model.Element, error) {
	return Read(bytes.NewReader(data))
}
