package stream

import (
	"context"
	"crypto/rand"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"
)

// ChunkSize is the size of each generated or consumed chunk. Bounding the
// in-flight buffer keeps memory flat regardless of transfer size.
const ChunkSize = 256 * 1024

const bytesPerMB = 1024 * 1024

// Descriptor governs how a synthetic payload is partitioned into chunks.
// The emitted chunk lengths always sum to exactly TotalBytes, with only the
// final chunk truncated to the remainder.
type Descriptor struct {
	TotalBytes uint64
	ChunkBytes int
}

func DescriptorForMegabytes(sizeMB int) Descriptor {
	if sizeMB < 0 {
		sizeMB = 0
	}

	return Descriptor{
		TotalBytes: uint64(sizeMB) * bytesPerMB,
		ChunkBytes: ChunkSize,
	}
}

// Generator produces a finite, single-pass sequence of random byte chunks.
// The returned slice is reused between calls, so a chunk is only valid
// until the next call to Next. Random data is not meaningfully
// compressible, so on-the-wire size matches generated size.
type Generator struct {
	remaining uint64
	buf       []byte
}

func NewGenerator(desc Descriptor) *Generator {
	chunk := desc.ChunkBytes
	if chunk <= 0 {
		chunk = ChunkSize
	}

	return &Generator{
		remaining: desc.TotalBytes,
		buf:       make([]byte, chunk),
	}
}

// Next returns the next chunk, or io.EOF once the descriptor's byte total
// has been emitted.
func (g *Generator) Next() ([]byte, error) {
	if g.remaining == 0 {
		return nil, io.EOF
	}

	size := uint64(len(g.buf))
	if g.remaining < size {
		size = g.remaining
	}

	chunk := g.buf[:size]
	if _, err := rand.Read(chunk); err != nil {
		return nil, errors.Wrap(err, "failed to generate random chunk")
	}

	g.remaining -= size

	return chunk, nil
}

func (g *Generator) Remaining() uint64 {
	return g.remaining
}

type flusher interface {
	Flush()
}

// Pump writes the generator's remaining chunks to w, flushing after each
// chunk so the client starts receiving bytes before generation finishes.
// It stops as soon as the context is cancelled or a write fails, which is
// how a client disconnect surfaces mid-stream. An optional limiter paces
// the writes; it is only used by the legacy simulated mode.
func Pump(ctx context.Context, w io.Writer, g *Generator, limiter *rate.Limiter) (int64, error) {
	var written int64

	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		chunk, err := g.Next()
		if err == io.EOF {
			return written, nil
		}

		if err != nil {
			return written, err
		}

		if limiter != nil {
			if err := limiter.WaitN(ctx, len(chunk)); err != nil {
				return written, errors.Wrap(err, "pacing wait interrupted")
			}
		}

		n, err := w.Write(chunk)
		written += int64(n)

		if err != nil {
			return written, errors.Wrap(err, "failed to write chunk")
		}

		if f, ok := w.(flusher); ok {
			f.Flush()
		}
	}
}
