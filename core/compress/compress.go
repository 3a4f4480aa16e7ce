package compress

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"

	"github.com/dmitrymomot/servekit/core/response"
)

// Supported Content-Encoding values, in negotiation priority order.
const (
	EncodingBrotli  = "br"
	EncodingGzip    = "gzip"
	EncodingDeflate = "deflate"
)

// priority is fixed: brotli beats gzip beats deflate no matter how the
// client ordered its Accept-Encoding header.
var priority = []string{EncodingBrotli, EncodingGzip, EncodingDeflate}

// Negotiate picks the response encoding for the given Accept-Encoding header
// value. It returns false when the client accepts none of the supported
// encodings.
func Negotiate(acceptEncoding string) (string, bool) {
	if acceptEncoding == "" {
		return "", false
	}

	accepted := make(map[string]bool)
	for token := range strings.SplitSeq(acceptEncoding, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(token), ";")
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		accepted[name] = acceptableQuality(params)
	}

	for _, enc := range priority {
		if accepted[enc] || accepted["*"] && !rejected(accepted, enc) {
			return enc, true
		}
	}
	return "", false
}

func rejected(accepted map[string]bool, enc string) bool {
	ok, present := accepted[enc]
	return present && !ok
}

// acceptableQuality reports whether the ";q=..." parameters, if any, leave
// the encoding acceptable. Anything unparsable counts as acceptable.
func acceptableQuality(params string) bool {
	for param := range strings.SplitSeq(params, ";") {
		key, val, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "q") {
			continue
		}
		if q, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil && q <= 0 {
			return false
		}
	}
	return true
}

// Compressible reports whether a content type is worth compressing. Media
// that already carries its own compression is skipped.
func Compressible(contentType string) bool {
	ct, _, _ := strings.Cut(contentType, ";")
	ct = strings.ToLower(strings.TrimSpace(ct))
	if ct == "" {
		return true
	}
	if ct == "image/svg+xml" {
		return true
	}
	for _, prefix := range []string{"image/", "video/", "audio/", "font/"} {
		if strings.HasPrefix(ct, prefix) {
			return false
		}
	}
	switch ct {
	case "application/zip", "application/gzip", "application/x-gzip",
		"application/zstd", "application/x-brotli", "application/x-7z-compressed",
		"application/x-rar-compressed", "application/pdf":
		return false
	}
	return true
}

// Wrap returns content that compresses src with the given encoding as it
// streams. The wrapped content never reports a definite length, so the
// dispatcher falls back to chunked framing.
func Wrap(src response.Content, encoding string) response.Content {
	return &compressedContent{src: src, encoding: encoding}
}

type compressedContent struct {
	src      response.Content
	encoding string
}

func (c *compressedContent) Length() (int64, bool) {
	return 0, false
}

func (c *compressedContent) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{dst: w}

	var enc io.WriteCloser
	switch c.encoding {
	case EncodingBrotli:
		enc = brotli.NewWriter(cw)
	case EncodingGzip:
		enc = gzip.NewWriter(cw)
	case EncodingDeflate:
		fw, err := flate.NewWriter(cw, flate.DefaultCompression)
		if err != nil {
			return 0, fmt.Errorf("create deflate writer: %w", err)
		}
		enc = fw
	default:
		return c.src.WriteTo(w)
	}

	if _, err := c.src.WriteTo(enc); err != nil {
		enc.Close()
		return cw.n, err
	}
	if err := enc.Close(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

type countingWriter struct {
	dst io.Writer
	n   int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.dst.Write(p)
	w.n += int64(n)
	return n, err
}
