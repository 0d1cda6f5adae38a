package encoder

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	ctx := context.Background()
	sizes := []int{0, 1, 2, 3, 4, 1023, 64 * 1024, 2*1024*1024 + 7}

	for _, n := range sizes {
		data := make([]byte, n)
		_, err := rand.Read(data)
		require.NoError(t, err)

		content, err := Encode(ctx, bytes.NewReader(data), "image/png", int64(n))
		require.NoError(t, err, "size %d", n)
		assert.True(t, strings.HasPrefix(content, "data:image/png;base64,"))

		mt, got, err := Decode(content)
		require.NoError(t, err)
		assert.Equal(t, "image/png", mt)
		assert.True(t, bytes.Equal(data, got), "round trip mismatch for size %d", n)
	}
}

func TestEncode_BrowserShape(t *testing.T) {
	content, err := Encode(context.Background(), strings.NewReader("hello"), "application/pdf", 5)
	require.NoError(t, err)
	assert.Equal(t, "data:application/pdf;base64,aGVsbG8=", content)
}

func TestEncode_SizeMismatch(t *testing.T) {
	ctx := context.Background()

	_, err := Encode(ctx, strings.NewReader("hello"), "image/png", 10)
	assert.ErrorIs(t, err, ErrEncodingFailure)

	_, err = Encode(ctx, strings.NewReader("hello world"), "image/png", 5)
	assert.ErrorIs(t, err, ErrEncodingFailure)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestEncode_HugeDeclaredSize(t *testing.T) {
	for _, size := range []int64{1 << 50, math.MaxInt64} {
		require.NotPanics(t, func() {
			_, err := Encode(context.Background(), strings.NewReader("abc"), "image/png", size)
			assert.ErrorIs(t, err, ErrEncodingFailure)
		})
	}
}

func TestEncode_ReadError(t *testing.T) {
	_, err := Encode(context.Background(), failingReader{}, "image/png", 4)
	assert.ErrorIs(t, err, ErrEncodingFailure)
	assert.Contains(t, err.Error(), "disk on fire")

	_, err = Encode(context.Background(), nil, "image/png", 4)
	assert.ErrorIs(t, err, ErrEncodingFailure)
}

func TestEncode_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Encode(ctx, pr, "image/png", 10)
	assert.ErrorIs(t, err, ErrEncodingFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDecode_Malformed(t *testing.T) {
	for _, s := range []string{
		"",
		"image/png;base64,AAAA",
		"data:image/png;base64",
		"data:image/png,plain",
		"data:image/png;base64,!!!",
	} {
		_, _, err := Decode(s)
		assert.ErrorIs(t, err, ErrMalformedContent, s)
	}
}

func TestEncodeBytes_DefaultMediaType(t *testing.T) {
	content := EncodeBytes([]byte{1, 2, 3}, "")
	assert.Equal(t, "data:application/octet-stream;base64,AQID", content)
}
