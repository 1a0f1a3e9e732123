package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/SumanReddy568/speedtest-api/netinfo"
	"github.com/SumanReddy568/speedtest-api/stream"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	log2 "github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	pingRoute     = "/api/speedtest/ping"
	downloadRoute = "/api/speedtest/download"
	uploadRoute   = "/api/speedtest/upload"
	networkRoute  = "/api/speedtest/network"
	fullTestRoute = "/api/speedtest/test"
	indexRoute    = "/"
	metricsRoute  = "/metrics"
)

type Config struct {
	// DefaultDownloadMB is used when the size_mb query parameter is absent
	// or unparsable; MaxDownloadMB bounds what a client may request.
	DefaultDownloadMB int
	MaxDownloadMB     int

	// Simulated switches the download and upload endpoints to the
	// deprecated legacy behavior: server-computed results with clamped
	// speeds instead of real streaming measurements.
	Simulated         bool
	SimulatedAttempts int
	SimulatedPause    time.Duration
	Clamp             stream.ClampPolicy

	// PaceMbps throttles download streaming to an artificial bandwidth.
	// Zero disables pacing; the authoritative mode runs unpaced.
	PaceMbps float64
}

// Handler carries every dependency the endpoints need. It is constructed
// explicitly and registered on a router passed in by the caller; there is
// no ambient global registration.
type Handler struct {
	config   Config
	enricher netinfo.Enricher
	metrics  *Metrics
	log      zerolog.Logger
}

func New(config Config, enricher netinfo.Enricher, metrics *Metrics) *Handler {
	if config.DefaultDownloadMB <= 0 {
		config.DefaultDownloadMB = 10
	}

	if config.SimulatedAttempts <= 0 {
		config.SimulatedAttempts = 3
	}

	return &Handler{
		config:   config,
		enricher: enricher,
		metrics:  metrics,
		log:      log2.With().Str("component", "api").Logger(),
	}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET(pingRoute, h.Ping)
	e.GET(downloadRoute, h.Download)
	e.POST(uploadRoute, h.Upload)
	e.GET(networkRoute, h.Network)
	e.GET(fullTestRoute, h.FullTest)
	e.GET(indexRoute, h.Index)

	if h.metrics != nil {
		e.GET(metricsRoute, echo.WrapHandler(promhttp.HandlerFor(h.metrics.gatherer, promhttp.HandlerOpts{})))
	}
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

func (h *Handler) count(endpoint string) {
	if h.metrics != nil {
		h.metrics.Requests.WithLabelValues(endpoint).Inc()
	}
}

// Ping is a bare timestamp echo; the client derives round-trip time from
// its own clock.
func (h *Handler) Ping(c echo.Context) error {
	h.count("ping")

	return c.JSON(http.StatusOK, map[string]float64{"timestamp": nowSeconds()})
}

func (h *Handler) downloadSize(c echo.Context) int {
	sizeMB := h.config.DefaultDownloadMB

	if raw := c.QueryParam("size_mb"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			sizeMB = parsed
		}
	}

	if h.config.MaxDownloadMB > 0 && sizeMB > h.config.MaxDownloadMB {
		sizeMB = h.config.MaxDownloadMB
	}

	return sizeMB
}

// Download streams exactly size_mb megabytes of random data with an exact
// Content-Length, so the client can compute a duration-to-bytes ratio. In
// simulated mode it instead returns a legacy server-computed result.
func (h *Handler) Download(c echo.Context) error {
	h.count("download")

	sizeMB := h.downloadSize(c)

	if h.config.Simulated {
		result := stream.BestOf(h.config.SimulatedAttempts, h.config.SimulatedPause, func() stream.TransferResult {
			return stream.Simulate(float64(sizeMB), stream.Download, h.config.Clamp)
		})

		return c.JSON(http.StatusOK, result)
	}

	desc := stream.DescriptorForMegabytes(sizeMB)

	response := c.Response()
	response.Header().Set(echo.HeaderContentType, "application/octet-stream")
	response.Header().Set(echo.HeaderContentLength, strconv.FormatUint(desc.TotalBytes, 10))
	response.Header().Set("Cache-Control", "no-cache")
	response.WriteHeader(http.StatusOK)

	var limiter *rate.Limiter
	if h.config.PaceMbps > 0 {
		limiter = rate.NewLimiter(rate.Limit(h.config.PaceMbps*1000*1000/8), stream.ChunkSize)
	}

	start := time.Now()

	written, err := stream.Pump(c.Request().Context(), response, stream.NewGenerator(desc), limiter)
	if h.metrics != nil {
		h.metrics.BytesStreamed.Add(float64(written))
	}

	if err != nil {
		// Streaming already started; the client going away is the usual
		// cause and there is nothing left to send.
		h.log.Debug().Err(err).Int64("written", written).Msg("download stream ended early")
		return nil
	}

	h.log.Info().
		Str("size", humanize.IBytes(desc.TotalBytes)).
		Dur("duration", time.Since(start)).
		Msg("download stream completed")

	return nil
}

// Upload drains the request body, counting bytes and elapsed time. The
// authoritative mode reports no server-side speed: the client measured the
// transfer and computes its own figure.
func (h *Handler) Upload(c echo.Context) error {
	h.count("upload")

	summary, err := stream.Receive(c.Request().Context(), c.Request().Body)
	if err != nil {
		h.log.Debug().Err(err).Int64("size_bytes", summary.SizeBytes).Msg("upload body ended early")
	}

	if h.metrics != nil {
		h.metrics.BytesReceived.Add(float64(summary.SizeBytes))
	}

	h.log.Info().
		Str("size", humanize.IBytes(uint64(summary.SizeBytes))).
		Dur("duration", summary.Duration).
		Msg("upload received")

	payload := map[string]interface{}{
		"size_bytes":       summary.SizeBytes,
		"size_mb":          math.Round(summary.SizeMB()*100) / 100,
		"server_timestamp": nowSeconds(),
		"note":             "Upload speed is computed client-side from its own transfer timing.",
	}

	if h.config.Simulated {
		duration := summary.Duration.Seconds()
		speed := h.config.Clamp.Apply(stream.Mbps(summary.SizeMB(), duration), stream.Upload)
		result := stream.NewTransferResult(summary.SizeMB(), duration, speed)
		payload["duration_sec"] = result.DurationSec
		payload["speed_mbps"] = result.SpeedMbps
	}

	return c.JSON(http.StatusOK, payload)
}

// Network reports server and client network metadata. Enrichment is
// best-effort, so this always answers 200 with at least the sentinel
// location.
func (h *Handler) Network(c echo.Context) error {
	h.count("network")

	info := h.enricher.NetworkInfo(c.Request().Context(), netinfo.ClientIP(c.Request()))

	return c.JSON(http.StatusOK, info)
}

// FullTest hands the client everything it needs to drive its own
// measurement: network metadata plus the endpoints to exercise.
func (h *Handler) FullTest(c echo.Context) error {
	h.count("test")

	info := h.enricher.NetworkInfo(c.Request().Context(), netinfo.ClientIP(c.Request()))

	return c.JSON(http.StatusOK, map[string]interface{}{
		"test_id": uuid.NewString(),
		"network": info,
		"instructions": map[string]string{
			"ping":     "GET " + pingRoute + " repeatedly and measure round-trip time against your own clock.",
			"download": "GET " + downloadRoute + "?size_mb=N and divide N*8 megabits by the seconds the body took to arrive.",
			"upload":   "POST random bytes to " + uploadRoute + " and divide the payload megabits by your send duration.",
		},
	})
}

func (h *Handler) Index(c echo.Context) error {
	h.count("index")

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Internet Speed Test API",
		"routes": map[string]string{
			"ping":     pingRoute,
			"download": downloadRoute,
			"upload":   uploadRoute,
			"network":  networkRoute,
			"test":     fullTestRoute,
			"metrics":  metricsRoute,
		},
	})
}
