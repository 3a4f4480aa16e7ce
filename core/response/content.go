package response

import (
	"bytes"
	"io"
)

// Content produces a response body. Implementations are single-use: WriteTo
// may be called at most once per request.
type Content interface {
	// Length reports the definite byte length of the content when it can be
	// determined without consuming it. Stream-backed content without a
	// seekable source reports ok=false, which forces chunked framing.
	Length() (n int64, ok bool)

	// WriteTo copies the content into w and returns the bytes written.
	WriteTo(w io.Writer) (int64, error)
}

// bufferContent serves fully-buffered bodies with a single write.
type bufferContent struct {
	data []byte
}

// NewBuffer wraps an in-memory byte slice as response content.
func NewBuffer(data []byte) Content {
	return &bufferContent{data: data}
}

func (c *bufferContent) Length() (int64, bool) {
	return int64(len(c.data)), true
}

func (c *bufferContent) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c.data)
	return int64(n), err
}

// streamContent serves bodies backed by an arbitrary reader. When the reader
// is seekable the length is measured up front so the response can carry
// Content-Length instead of falling back to chunked framing.
type streamContent struct {
	r io.Reader
}

// NewStream wraps a reader as response content. The reader is consumed by the
// dispatcher during body streaming; if it implements io.Closer, closing it is
// the caller's responsibility.
func NewStream(r io.Reader) Content {
	return &streamContent{r: r}
}

func (c *streamContent) Length() (int64, bool) {
	s, ok := c.r.(io.Seeker)
	if !ok {
		return 0, false
	}
	cur, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, false
	}
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, false
	}
	if _, err := s.Seek(cur, io.SeekStart); err != nil {
		return 0, false
	}
	return end - cur, true
}

func (c *streamContent) WriteTo(w io.Writer) (int64, error) {
	return io.Copy(w, c.r)
}

// Bytes drains content into memory. Intended for tests and small bodies.
func Bytes(c Content) ([]byte, error) {
	if c == nil {
		return nil, ErrNoContent
	}
	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
