// Package compress negotiates response compression against the client's
// Accept-Encoding header and wraps content producers in compressing streams.
// Priority is fixed at brotli, then gzip, then deflate.
package compress
