package response_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/servekit/core/response"
)

func TestBufferContent(t *testing.T) {
	t.Parallel()

	c := response.NewBuffer([]byte("hello"))

	n, ok := c.Length()
	require.True(t, ok)
	assert.Equal(t, int64(5), n)

	var buf bytes.Buffer
	written, err := c.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(5), written)
	assert.Equal(t, "hello", buf.String())
}

func TestStreamContentSeekableLength(t *testing.T) {
	t.Parallel()

	c := response.NewStream(strings.NewReader("streamed body"))

	n, ok := c.Length()
	require.True(t, ok, "strings.Reader is seekable")
	assert.Equal(t, int64(13), n)

	// Measuring the length must not consume the stream.
	data, err := response.Bytes(c)
	require.NoError(t, err)
	assert.Equal(t, "streamed body", string(data))
}

type unseekableReader struct{ r io.Reader }

func (u unseekableReader) Read(p []byte) (int, error) { return u.r.Read(p) }

func TestStreamContentUnseekableLength(t *testing.T) {
	t.Parallel()

	c := response.NewStream(unseekableReader{strings.NewReader("abc")})

	_, ok := c.Length()
	assert.False(t, ok, "length not determinable without a seeker")

	data, err := response.Bytes(c)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestBytesNilContent(t *testing.T) {
	t.Parallel()

	_, err := response.Bytes(nil)
	assert.ErrorIs(t, err, response.ErrNoContent)
}
