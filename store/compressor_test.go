package store

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZLibCompressor(t *testing.T) {
	data := bytes.Repeat([]byte("draft body "), 1024)

	cmp, err := ZLibCompressor{}.Compress(data)
	require.NoError(t, err)
	require.Less(t, len(cmp), len(data))

	dec, err := ZLibCompressor{}.Decompress(cmp)
	require.NoError(t, err)
	require.Equal(t, data, dec)
}
