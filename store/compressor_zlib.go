package store

import (
	"bytes"
	"compress/zlib"
	"io"
)

// ZLibCompressor compresses at zlib.BestSpeed.
type ZLibCompressor struct{}

func (ZLibCompressor) Compress(dec []byte) ([]byte, error) {
	buf := new(bytes.Buffer)

	zw, err := zlib.NewWriterLevel(buf, zlib.BestSpeed)
	if err != nil {
		return nil, err
	}

	if _, err := zw.Write(dec); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (ZLibCompressor) Decompress(cmp []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(cmp))
	if err != nil {
		return nil, err
	}

	defer func() { _ = zr.Close() }()

	return io.ReadAll(zr)
}
