package stream

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestGenerator_ExactTotals(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	for _, sizeMB := range []int{0, 1, 10, 100} {
		gen := NewGenerator(DescriptorForMegabytes(sizeMB))

		var total uint64
		var lastLen int

		for {
			chunk, err := gen.Next()
			if err == io.EOF {
				break
			}

			assert.Nil(err)
			// every chunk before the last must be full-size
			if lastLen != 0 {
				assert.Equal(ChunkSize, lastLen)
			}

			assert.LessOrEqual(len(chunk), ChunkSize)
			total += uint64(len(chunk))
			lastLen = len(chunk)
		}

		assert.Equal(uint64(sizeMB)*1024*1024, total, "size_mb=%d", sizeMB)
		assert.Equal(uint64(0), gen.Remaining())
	}
}

func TestGenerator_FinalChunkTruncated(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	gen := NewGenerator(Descriptor{TotalBytes: ChunkSize + 100, ChunkBytes: ChunkSize})

	first, err := gen.Next()
	assert.Nil(err)
	assert.Equal(ChunkSize, len(first))

	second, err := gen.Next()
	assert.Nil(err)
	assert.Equal(100, len(second))

	_, err = gen.Next()
	assert.Equal(io.EOF, err)
}

func TestGenerator_DataIsNotTrivial(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	gen := NewGenerator(Descriptor{TotalBytes: ChunkSize, ChunkBytes: ChunkSize})

	chunk, err := gen.Next()
	assert.Nil(err)
	assert.NotEqual(bytes.Repeat([]byte{0}, ChunkSize), chunk)
}

func TestPump_WritesEverything(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	var buf bytes.Buffer

	gen := NewGenerator(DescriptorForMegabytes(1))
	written, err := Pump(context.Background(), &buf, gen, nil)

	assert.Nil(err)
	assert.Equal(int64(1024*1024), written)
	assert.Equal(1024*1024, buf.Len())
}

func TestPump_StopsOnCancelledContext(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer

	gen := NewGenerator(DescriptorForMegabytes(10))
	written, err := Pump(ctx, &buf, gen, nil)

	assert.NotNil(err)
	assert.Equal(int64(0), written)
	assert.NotEqual(uint64(0), gen.Remaining())
}

type failingWriter struct {
	allowed int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.allowed <= 0 {
		return 0, errors.New("connection reset")
	}

	w.allowed--

	return len(p), nil
}

func TestPump_StopsOnWriteError(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	gen := NewGenerator(DescriptorForMegabytes(10))
	written, err := Pump(context.Background(), &failingWriter{allowed: 2}, gen, nil)

	assert.NotNil(err)
	assert.Equal(int64(2*ChunkSize), written)
	assert.NotEqual(uint64(0), gen.Remaining())
}
