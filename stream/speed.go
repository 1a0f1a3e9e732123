package stream

import (
	"math"
	"math/rand"
	"time"
)

type Direction string

const (
	Download Direction = "download"
	Upload   Direction = "upload"
)

// TransferResult is the per-invocation outcome of a measured or simulated
// transfer. It is ephemeral and never persisted.
type TransferResult struct {
	SizeMB      float64 `json:"size_mb"`
	DurationSec float64 `json:"duration_sec"`
	SpeedMbps   float64 `json:"speed_mbps"`
}

// Mbps derives throughput from a transfer size in megabytes and a duration
// in seconds. A non-positive duration yields 0 rather than infinity.
func Mbps(sizeMB, durationSec float64) float64 {
	if durationSec <= 0 {
		return 0
	}

	return sizeMB * 8 / durationSec
}

// ClampPolicy caps reported speeds at artificial ceilings. It exists only
// for the legacy simulated mode; clamping a real measurement would falsify
// it, so the authoritative mode runs with Enabled false.
type ClampPolicy struct {
	Enabled         bool
	DownloadCapMbps float64
	UploadCapMbps   float64
}

// LegacyClamp mirrors the ceilings the earliest simulated deployments
// reported: 100 Mbps down, 20 Mbps up.
func LegacyClamp() ClampPolicy {
	return ClampPolicy{
		Enabled:         true,
		DownloadCapMbps: 100,
		UploadCapMbps:   20,
	}
}

func (p ClampPolicy) Apply(speedMbps float64, direction Direction) float64 {
	if !p.Enabled {
		return speedMbps
	}

	ceiling := p.DownloadCapMbps
	if direction == Upload {
		ceiling = p.UploadCapMbps
	}

	if ceiling > 0 && speedMbps > ceiling {
		return ceiling
	}

	return speedMbps
}

// NewTransferResult rounds the way the original service presented results:
// duration to milliseconds, speed to hundredths of a Mbps.
func NewTransferResult(sizeMB, durationSec float64, speedMbps float64) TransferResult {
	return TransferResult{
		SizeMB:      round(sizeMB, 2),
		DurationSec: round(durationSec, 3),
		SpeedMbps:   round(speedMbps, 2),
	}
}

func round(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

// Simulate models a transfer of sizeMB megabytes over a link capped at
// capMbps, with a fixed 50ms base latency and ±10% jitter, sleeping for the
// modeled duration. It is the deprecated simulated mode's stand-in for a
// real transfer.
func Simulate(sizeMB float64, direction Direction, clamp ClampPolicy) TransferResult {
	ceiling := clamp.DownloadCapMbps
	if direction == Upload {
		ceiling = clamp.UploadCapMbps
	}

	const baseLatency = 0.05

	bandwidthTime := 0.0
	if ceiling > 0 {
		bandwidthTime = sizeMB * 8 / ceiling
	}

	variation := 0.9 + rand.Float64()*0.2

	start := time.Now()
	time.Sleep(time.Duration((bandwidthTime + baseLatency) * variation * float64(time.Second)))
	duration := time.Since(start).Seconds()

	speed := clamp.Apply(Mbps(sizeMB, duration), direction)

	return NewTransferResult(sizeMB, duration, speed)
}

// BestOf runs a transfer test attempts times with a pause in between and
// keeps the fastest result, matching the legacy best-of-N presentation.
func BestOf(attempts int, pause time.Duration, run func() TransferResult) TransferResult {
	var best TransferResult

	for i := 0; i < attempts; i++ {
		result := run()
		if i == 0 || result.SpeedMbps > best.SpeedMbps {
			best = result
		}

		if i < attempts-1 {
			time.Sleep(pause)
		}
	}

	return best
}
