package netinfo

// Location holds the geolocation metadata resolved for a public IP. When no
// lookup succeeded the sentinel values from LocalLocation or UnknownLocation
// are used instead.
type Location struct {
	Country  string `json:"country"`
	City     string `json:"city"`
	ISP      string `json:"isp"`
	Region   string `json:"region,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

type Server struct {
	Hostname  string `json:"hostname"`
	IP        string `json:"ip"`
	IsPrivate bool   `json:"is_private"`
}

type Client struct {
	IP        string   `json:"ip"`
	PublicIP  *string  `json:"public_ip"`
	IsPrivate bool     `json:"is_private"`
	Location  Location `json:"location"`
}

// NetworkInfo is the full network metadata payload for a single request.
// It is built fresh per request and never shared or persisted.
type NetworkInfo struct {
	Server Server `json:"server"`
	Client Client `json:"client"`
}

// LocalLocation is the default used when the client sits on a private
// network and no public IP could be discovered.
func LocalLocation() Location {
	return Location{
		Country: "Local Network",
		City:    "Local Network",
		ISP:     "Local Network",
	}
}

// UnknownLocation is the default used when a public IP is known but the
// geolocation lookup failed.
func UnknownLocation() Location {
	return Location{
		Country: "Unknown",
		City:    "Unknown",
		ISP:     "Unknown",
	}
}
