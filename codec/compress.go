package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression compresses/decompresses snapshot payloads.
// Implementations must be safe for concurrent use.
type Compression interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	Name() string
}

// DefaultCompression is used when none is configured.
var DefaultCompression Compression = Zstd{}

// CompressionByName returns a built-in compression by its stable name.
func CompressionByName(name string) (Compression, bool) {
	switch name {
	case "none":
		return None{}, true
	case "zstd":
		return Zstd{}, true
	case "lz4":
		return LZ4{}, true
	default:
		return nil, false
	}
}

// None is the identity compression.
type None struct{}

// Compress returns the data unchanged.
func (None) Compress(data []byte) ([]byte, error) { return data, nil }

// Decompress returns the data unchanged.
func (None) Decompress(data []byte) ([]byte, error) { return data, nil }

// Name returns "none".
func (None) Name() string { return "none" }

// Zstd compresses with github.com/klauspost/compress/zstd at the default
// level.
type Zstd struct{}

// Compress encodes data as a zstd frame.
func (Zstd) Compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("codec: zstd writer: %w", err)
	}
	out := enc.EncodeAll(data, nil)
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

// Decompress decodes a zstd frame.
func (Zstd) Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("codec: zstd reader: %w", err)
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

// Name returns "zstd".
func (Zstd) Name() string { return "zstd" }

// LZ4 compresses with github.com/pierrec/lz4 framing.
type LZ4 struct{}

// Compress encodes data as an lz4 frame.
func (LZ4) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("codec: lz4 write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress decodes an lz4 frame.
func (LZ4) Decompress(data []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(data))
	return io.ReadAll(r)
}

// Name returns "lz4".
func (LZ4) Name() string { return "lz4" }
