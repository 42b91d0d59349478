// Package codec encodes cache blobs as zlib-compressed msgpack.
package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/vmihailenco/msgpack/v5"
)

// Extension is the file suffix of an encoded blob.
const Extension = ".msgpack.zlib"

// Encode serializes v with msgpack and compresses the result.
func Encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	enc := msgpack.NewEncoder(zw)
	if err := enc.Encode(v); err != nil {
		_ = zw.Close()
		return nil, fmt.Errorf("msgpack encode: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zlib close: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode decompresses data and unpacks it into dest.
func Decode(data []byte, dest interface{}) error {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("zlib reader: %w", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return fmt.Errorf("zlib read: %w", err)
	}
	if err := msgpack.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("msgpack decode: %w", err)
	}
	return nil
}
