package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeName(t *testing.T) {
	got, err := EncodeName("example.com")
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0}, got)
}

func TestEncodeNameRoot(t *testing.T) {
	got, err := EncodeName("")
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, got)
}

func TestEncodeNameRejectsOversizedLabel(t *testing.T) {
	long := make([]byte, 64)
	for i := range long {
		long[i] = 'a'
	}
	_, err := EncodeName(string(long) + ".com")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeQuestionName(t *testing.T) {
	buf := append(make([]byte, HeaderSize), []byte{3, 'w', 'w', 'w', 7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0, 0, 1, 0, 1}...)

	name, pos, err := decodeQuestionName(buf, HeaderSize)
	require.NoError(t, err)
	assert.Equal(t, "www.example.com", name)
	assert.Equal(t, len(buf)-4, pos)
}

func TestDecodeQuestionNameRejectsCompressionPointer(t *testing.T) {
	buf := append(make([]byte, HeaderSize), 0xC0, 0x0C)

	_, _, err := decodeQuestionName(buf, HeaderSize)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeQuestionNameRejectsOversizedLabel(t *testing.T) {
	buf := append(make([]byte, HeaderSize), 64)
	buf = append(buf, make([]byte, 64)...)

	_, _, err := decodeQuestionName(buf, HeaderSize)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeQuestionNameRejectsTruncatedLabel(t *testing.T) {
	buf := append(make([]byte, HeaderSize), 5, 'a', 'b')

	_, _, err := decodeQuestionName(buf, HeaderSize)
	assert.ErrorIs(t, err, ErrMalformed)
}
