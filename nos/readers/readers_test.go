package readers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
)

func TestReadFill(t *testing.T) {
	buf := make([]byte, 5)
	n, err := ReadFill(iotest.OneByteReader(strings.NewReader("1234567")), buf)
	assert.Nil(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "12345", string(buf))

	n, err = ReadFill(strings.NewReader("12"), buf)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 2, n)
}

func TestForEachChunk(t *testing.T) {
	var sizes []int
	var out bytes.Buffer
	total, err := ForEachChunk(strings.NewReader("1234567"), 3, func(b []byte) {
		sizes = append(sizes, len(b))
		out.Write(b)
	})
	assert.Nil(t, err)
	assert.Equal(t, int64(7), total)
	assert.Equal(t, []int{3, 3, 1}, sizes)
	assert.Equal(t, "1234567", out.String())

	// empty input never calls fn
	called := false
	total, err = ForEachChunk(strings.NewReader(""), 0, func([]byte) { called = true })
	assert.Nil(t, err)
	assert.Equal(t, int64(0), total)
	assert.False(t, called)

	boom := errors.New("boom")
	_, err = ForEachChunk(iotest.ErrReader(boom), 3, func([]byte) {})
	assert.ErrorIs(t, err, boom)
}

func TestContextReader(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewContextReader(ctx, strings.NewReader("abc"))

	b := make([]byte, 1)
	n, err := r.Read(b)
	assert.Nil(t, err)
	assert.Equal(t, 1, n)

	cancel()
	n, err = r.Read(b)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, n)
}

func TestCountingReader(t *testing.T) {
	cr := NewCountingReader(strings.NewReader("hello world"))
	_, err := io.Copy(io.Discard, cr)
	assert.Nil(t, err)
	assert.Equal(t, int64(11), cr.BytesRead())
}
