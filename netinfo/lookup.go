package netinfo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	log2 "github.com/rs/zerolog/log"
)

const DefaultLookupTimeout = 2 * time.Second

// Lookup resolves external network facts about a client. Both calls are
// best-effort: the caller decides what a failure degrades to.
type Lookup interface {
	// PublicIP asks an external echo-my-IP service for the address this
	// host is seen as from the outside.
	PublicIP(ctx context.Context) (string, error)

	// Locate asks an external geolocation service for the location of a
	// public IP.
	Locate(ctx context.Context, ip string) (Location, error)
}

type LookupConfig struct {
	EchoIPURL string
	GeoURL    string
	Timeout   time.Duration
}

// HTTPLookup implements Lookup against ipify-style and ip-api-style HTTP
// services. Every request is bounded by the configured timeout and never
// retried, since a slow lookup must not delay the parent request.
type HTTPLookup struct {
	client    *resty.Client
	echoIPURL string
	geoURL    string
	log       zerolog.Logger
}

func NewHTTPLookup(config LookupConfig) *HTTPLookup {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultLookupTimeout
	}

	client := resty.New()
	client.SetTimeout(timeout)

	return &HTTPLookup{
		client:    client,
		echoIPURL: config.EchoIPURL,
		geoURL:    config.GeoURL,
		log:       log2.With().Str("component", "lookup").Caller().Logger(),
	}
}

type echoIPResponse struct {
	IP string `json:"ip"`
}

func (l *HTTPLookup) PublicIP(ctx context.Context) (string, error) {
	response, err := l.client.R().SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(l.echoIPURL)
	if err != nil {
		return "", errors.Wrap(err, "failed to call echo-ip service")
	}

	if response.StatusCode() != 200 {
		return "", errors.Errorf("echo-ip service returned status %d", response.StatusCode())
	}

	var payload echoIPResponse
	if err := json.Unmarshal(response.Body(), &payload); err != nil {
		return "", errors.Wrap(err, "failed to unmarshal echo-ip response")
	}

	if payload.IP == "" {
		return "", errors.New("echo-ip response does not contain an ip")
	}

	return payload.IP, nil
}

type geoResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Country    string `json:"country"`
	City       string `json:"city"`
	ISP        string `json:"isp"`
	RegionName string `json:"regionName"`
	Timezone   string `json:"timezone"`
}

func (l *HTTPLookup) Locate(ctx context.Context, ip string) (Location, error) {
	response, err := l.client.R().SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(l.geoURL + ip)
	if err != nil {
		return Location{}, errors.Wrap(err, "failed to call geolocation service")
	}

	var payload geoResponse
	if err := json.Unmarshal(response.Body(), &payload); err != nil {
		return Location{}, errors.Wrap(err, "failed to unmarshal geolocation response")
	}

	// ip-api reports failures with a 200 status code and a status field.
	if payload.Status != "success" {
		return Location{}, errors.Errorf("geolocation service reported %q: %s", payload.Status, payload.Message)
	}

	return Location{
		Country:  orUnknown(payload.Country),
		City:     orUnknown(payload.City),
		ISP:      orUnknown(payload.ISP),
		Region:   payload.RegionName,
		Timezone: payload.Timezone,
	}, nil
}

func orUnknown(value string) string {
	if value == "" {
		return "Unknown"
	}

	return value
}
