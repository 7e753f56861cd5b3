package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLZ4ShrinksRepetitiveData(t *testing.T) {
	c, err := Get("lz4")
	require.NoError(t, err)

	data := bytes.Repeat([]byte("FixedPriceMarket"), 64)
	packed, err := c.Compress(data)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(data))

	out, err := c.Decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestLZ4IncompressibleAndEmpty(t *testing.T) {
	c := LZ4Compressor{}
	for _, data := range [][]byte{{}, {0x01}, []byte("abc")} {
		packed, err := c.Compress(data)
		require.NoError(t, err)
		out, err := c.Decompress(packed)
		require.NoError(t, err)
		assert.Equal(t, data, out)
	}
}

func TestLZ4RejectsCorruptInput(t *testing.T) {
	c := LZ4Compressor{}
	_, err := c.Decompress(nil)
	require.ErrorIs(t, err, ErrCorrupt)

	packed, err := c.Compress([]byte("abc"))
	require.NoError(t, err)
	packed[1] = 7
	_, err = c.Decompress(packed)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestAvailable(t *testing.T) {
	assert.Equal(t, []string{"lz4", "none"}, Available())
	_, err := Get("zstd")
	require.Error(t, err)
}
