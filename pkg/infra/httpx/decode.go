package httpx

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

var decoders = map[string]func(io.Reader) (io.ReadCloser, error){
	"gzip": func(r io.Reader) (io.ReadCloser, error) {
		return gzip.NewReader(r)
	},
	"deflate": func(r io.Reader) (io.ReadCloser, error) {
		return zlib.NewReader(r)
	},
	"br": func(r io.Reader) (io.ReadCloser, error) {
		return io.NopCloser(brotli.NewReader(r)), nil
	},
	"zstd": func(r io.Reader) (io.ReadCloser, error) {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	},
}

// Decode undoes a Content-Encoding chain such as "gzip, br", last encoding
// first. An empty header returns body unchanged.
func Decode(contentEncoding string, body []byte) ([]byte, error) {
	if contentEncoding == "" {
		return body, nil
	}
	encodings := strings.Split(contentEncoding, ",")
	for i := len(encodings) - 1; i >= 0; i-- {
		name := strings.ToLower(strings.TrimSpace(encodings[i]))
		if name == "" || name == "identity" {
			continue
		}
		newReader, ok := decoders[name]
		if !ok {
			return nil, fmt.Errorf("unsupported content-encoding: %q", name)
		}
		r, err := newReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		body, err = io.ReadAll(r)
		closeErr := r.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("%s: %w", name, closeErr)
		}
	}
	return body, nil
}
