package stream

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestReceive_CountsExactBytes(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	payload := bytes.Repeat([]byte{0xAB}, 5*1024*1024)

	summary, err := Receive(context.Background(), bytes.NewReader(payload))
	assert.Nil(err)
	assert.Equal(int64(5242880), summary.SizeBytes)
	assert.InDelta(5.0, summary.SizeMB(), 0.01)
	assert.Greater(summary.Duration.Nanoseconds(), int64(0))
}

func TestReceive_EmptyBody(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	summary, err := Receive(context.Background(), strings.NewReader(""))
	assert.Nil(err)
	assert.Equal(int64(0), summary.SizeBytes)
}

type brokenReader struct {
	remaining int
}

func (r *brokenReader) Read(p []byte) (int, error) {
	if r.remaining <= 0 {
		return 0, errors.New("unexpected EOF")
	}

	n := len(p)
	if n > r.remaining {
		n = r.remaining
	}

	r.remaining -= n

	return n, nil
}

func TestReceive_ReportsBytesReadBeforeFailure(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	summary, err := Receive(context.Background(), &brokenReader{remaining: 1000})
	assert.NotNil(err)
	assert.Equal(int64(1000), summary.SizeBytes)
}

func TestReceive_StopsOnCancelledContext(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Receive(ctx, io.LimitReader(neverEnding{}, 1<<40))
	assert.NotNil(err)
}

type neverEnding struct{}

func (neverEnding) Read(p []byte) (int, error) {
	return len(p), nil
}
