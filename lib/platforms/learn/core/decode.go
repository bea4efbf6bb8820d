package core

import (
	"bytes"
	"io"
	"mime"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"golang.org/x/text/encoding"
)

// decompress inflates a body according to its Content-Encoding. resty
// already inflates the gzip bodies it recognizes, so a gzip body without
// the gzip magic is returned as is.
func decompress(contentEncoding string, body []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "gzip", "x-gzip":
		if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
			return body, nil
		}
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return io.ReadAll(reader)
	case "deflate":
		// servers disagree on whether deflate means zlib framing or raw deflate
		reader, err := zlib.NewReader(bytes.NewReader(body))
		if err == nil {
			defer reader.Close()
			return io.ReadAll(reader)
		}
		raw := flate.NewReader(bytes.NewReader(body))
		defer raw.Close()
		return io.ReadAll(raw)
	}
	return body, nil
}

// declaresUtf8 reports whether the server declared a utf-8 charset.
func declaresUtf8(contentType string) bool {
	charset := contentType
	_, params, err := mime.ParseMediaType(contentType)
	if err == nil {
		charset = params["charset"]
	}
	return strings.Contains(strings.ToLower(charset), "utf-8")
}

// decodeText decodes a body as utf-8 only when the server says so, the
// rest of the site is served in the legacy encoding.
func decodeText(contentType string, body []byte, legacy encoding.Encoding) (string, error) {
	if declaresUtf8(contentType) {
		return string(body), nil
	}
	decoded, err := legacy.NewDecoder().Bytes(body)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
