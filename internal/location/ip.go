package location

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// IPPositioner approximates the device position from its public IP address.
// The lookup service answers with {"status": "success", "lat": .., "lon": ..}.
type IPPositioner struct {
	client    *resty.Client
	lookupURL string
}

type ipLookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

func NewIPPositioner(lookupURL string, timeout time.Duration) *IPPositioner {
	return &IPPositioner{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "application/json").
			SetRetryCount(0),
		lookupURL: lookupURL,
	}
}

func (p *IPPositioner) CurrentPosition(ctx context.Context) (Coordinates, error) {
	resp, err := p.client.R().SetContext(ctx).Get(p.lookupURL)
	if err != nil {
		return Coordinates{}, fmt.Errorf("ip lookup: %w", err)
	}
	if !resp.IsSuccess() {
		return Coordinates{}, fmt.Errorf("ip lookup failed with status: %d", resp.StatusCode())
	}

	var out ipLookupResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return Coordinates{}, fmt.Errorf("decode ip lookup: %w", err)
	}
	if out.Status != "success" {
		return Coordinates{}, fmt.Errorf("ip lookup status %q: %s", out.Status, out.Message)
	}

	return Coordinates{Latitude: out.Lat, Longitude: out.Lon}, nil
}
