// Package encoder turns raw file bytes into self-contained data URIs and back.
package encoder

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

const (
	defaultMediaType = "application/octet-stream"
	// maxPrealloc bounds the buffer reserved up front from the declared size.
	maxPrealloc = 16 << 20
)

var (
	// ErrEncodingFailure means the bytes could not be read or encoded.
	ErrEncodingFailure = errors.New("encoding failure")
	// ErrMalformedContent means a string is not a base64 data URI.
	ErrMalformedContent = errors.New("malformed data uri")
)

type readResult struct {
	data []byte
	err  error
}

// Encode reads size bytes from r and returns them as "data:<mediaType>;base64,<payload>".
// The read runs on its own goroutine; Encode returns early with ErrEncodingFailure when ctx is done.
// A reader yielding more or fewer than size bytes is an encoding failure.
func Encode(ctx context.Context, r io.Reader, mediaType string, size int64) (string, error) {
	if r == nil {
		return "", fmt.Errorf("%w: reader is nil", ErrEncodingFailure)
	}
	if size < 0 {
		return "", fmt.Errorf("%w: negative size %d", ErrEncodingFailure, size)
	}

	done := make(chan readResult, 1)
	go func() {
		var buf bytes.Buffer
		buf.Grow(int(min(size, maxPrealloc)))
		// Read one byte past size to detect readers that are longer than declared.
		limit := size
		if limit < math.MaxInt64 {
			limit++
		}
		_, err := io.Copy(&buf, io.LimitReader(r, limit))
		done <- readResult{data: buf.Bytes(), err: err}
	}()

	var res readResult
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrEncodingFailure, ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return "", fmt.Errorf("%w: read: %w", ErrEncodingFailure, res.err)
	}
	if int64(len(res.data)) != size {
		return "", fmt.Errorf("%w: read %d bytes, expected %d", ErrEncodingFailure, len(res.data), size)
	}
	return EncodeBytes(res.data, mediaType), nil
}

// EncodeBytes builds a data URI from an in-memory buffer.
func EncodeBytes(data []byte, mediaType string) string {
	if mediaType == "" {
		mediaType = defaultMediaType
	}
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(mediaType) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(mediaType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// Decode splits a base64 data URI into its media type and the original bytes.
func Decode(content string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(content, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: prefix", ErrMalformedContent)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload separator", ErrMalformedContent)
	}
	mediaType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrMalformedContent)
	}
	if mediaType == "" {
		mediaType = defaultMediaType
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrMalformedContent, err)
	}
	return mediaType, data, nil
}
