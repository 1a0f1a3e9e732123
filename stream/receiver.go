package stream

import (
	"context"
	"io"
	"time"

	"github.com/VividCortex/ewma"
)

// ReceiveSummary reports what an upload produced. SizeBytes counts every
// byte read before the stream ended, even when the stream ended with an
// error. SmoothedMbps is an exponentially weighted moving average of the
// per-chunk throughput observed while draining the body; it reflects the
// server-side view only and is informational.
type ReceiveSummary struct {
	SizeBytes    int64
	Duration     time.Duration
	SmoothedMbps float64
}

func (s ReceiveSummary) SizeMB() float64 {
	return float64(s.SizeBytes) / bytesPerMB
}

// Receive drains r to exhaustion in bounded chunks, counting bytes and
// elapsed wall-clock time. The payload is never held in memory beyond the
// current chunk, so arbitrarily large uploads are fine. The content is not
// inspected; an empty or malformed body simply counts zero bytes.
func Receive(ctx context.Context, r io.Reader) (ReceiveSummary, error) {
	buf := make([]byte, ChunkSize)
	avg := ewma.NewMovingAverage()

	var total int64

	start := time.Now()
	last := start

	for {
		select {
		case <-ctx.Done():
			return ReceiveSummary{SizeBytes: total, Duration: time.Since(start), SmoothedMbps: avg.Value()}, ctx.Err()
		default:
		}

		n, err := r.Read(buf)
		if n > 0 {
			total += int64(n)

			now := time.Now()
			if elapsed := now.Sub(last).Seconds(); elapsed > 0 {
				avg.Add(float64(n) * 8 / bytesPerMB / elapsed)
			}

			last = now
		}

		if err == io.EOF {
			return ReceiveSummary{SizeBytes: total, Duration: time.Since(start), SmoothedMbps: avg.Value()}, nil
		}

		if err != nil {
			return ReceiveSummary{SizeBytes: total, Duration: time.Since(start), SmoothedMbps: avg.Value()}, err
		}
	}
}
