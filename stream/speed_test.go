package stream

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMbps(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	assert.Equal(10.0, Mbps(10, 8))
	assert.Equal(80.0, Mbps(10, 1))
	assert.Equal(0.0, Mbps(10, 0))
	assert.Equal(0.0, Mbps(10, -1))
}

func TestClampPolicy(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	clamp := LegacyClamp()
	assert.Equal(100.0, clamp.Apply(250, Download))
	assert.Equal(20.0, clamp.Apply(250, Upload))
	assert.Equal(42.0, clamp.Apply(42, Download))

	disabled := ClampPolicy{}
	assert.Equal(250.0, disabled.Apply(250, Download))
}

func TestNewTransferResult_Rounding(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	result := NewTransferResult(5.005, 1.23456, 32.4567)
	assert.Equal(5.01, result.SizeMB)
	assert.Equal(1.235, result.DurationSec)
	assert.Equal(32.46, result.SpeedMbps)
}

func TestSimulate_AppliesClampAndSleeps(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	start := time.Now()
	result := Simulate(1, Download, LegacyClamp())

	assert.GreaterOrEqual(time.Since(start), 40*time.Millisecond)
	assert.LessOrEqual(result.SpeedMbps, 100.0)
	assert.Equal(1.0, result.SizeMB)
	assert.Greater(result.DurationSec, 0.0)
}

func TestBestOf_KeepsFastest(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	speeds := []float64{10, 30, 20}
	i := 0

	best := BestOf(3, 0, func() TransferResult {
		result := TransferResult{SpeedMbps: speeds[i]}
		i++
		return result
	})

	assert.Equal(30.0, best.SpeedMbps)
}
