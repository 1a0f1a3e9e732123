package netinfo

import (
	"context"

	"github.com/rs/zerolog"
	log2 "github.com/rs/zerolog/log"
)

// Enricher turns a resolved client address into the full client-side
// network metadata. Lookup failures degrade to the sentinel locations and
// are only logged; Enrich never returns an error.
type Enricher struct {
	lookup Lookup
	log    zerolog.Logger
}

func NewEnricher(lookup Lookup) Enricher {
	return Enricher{
		lookup: lookup,
		log:    log2.With().Str("component", "enricher").Caller().Logger(),
	}
}

func (e Enricher) Enrich(ctx context.Context, clientIP string) Client {
	private := IsPrivate(clientIP)
	client := Client{
		IP:        clientIP,
		IsPrivate: private,
		Location:  LocalLocation(),
	}

	if private {
		publicIP, err := e.lookup.PublicIP(ctx)
		if err != nil {
			e.log.Debug().Err(err).Msg("public ip discovery failed, keeping local defaults")
			return client
		}

		client.PublicIP = &publicIP
	} else {
		client.PublicIP = &clientIP
	}

	if client.PublicIP == nil || IsPrivate(*client.PublicIP) {
		return client
	}

	location, err := e.lookup.Locate(ctx, *client.PublicIP)
	if err != nil {
		e.log.Debug().Err(err).Str("ip", *client.PublicIP).Msg("geolocation lookup failed, keeping defaults")
		client.Location = UnknownLocation()
		return client
	}

	client.Location = location

	return client
}

// NetworkInfo assembles the complete payload for a request whose client
// address has already been resolved.
func (e Enricher) NetworkInfo(ctx context.Context, clientIP string) NetworkInfo {
	return NetworkInfo{
		Server: ServerInfo(),
		Client: e.Enrich(ctx, clientIP),
	}
}
