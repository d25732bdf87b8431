package livedns

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Zones lists every zone visible to the API key.
func (c *Client) Zones(ctx context.Context) ([]Zone, error) {
	body, _, err := c.Call(ctx, http.MethodGet, "/zones", nil)
	if err != nil {
		return nil, fmt.Errorf("listing zones: %w", err)
	}

	var zones []Zone
	if len(body) > 0 {
		if err := json.Unmarshal(body, &zones); err != nil {
			return nil, &DecodeError{Err: err, Body: string(body)}
		}
	}
	return zones, nil
}

// ResolveZoneID returns the UUID of the first zone named exactly name.
func (c *Client) ResolveZoneID(ctx context.Context, name string) (string, error) {
	zones, err := c.Zones(ctx)
	if err != nil {
		return "", err
	}
	for _, z := range zones {
		if z.Name == name {
			return z.UUID, nil
		}
	}
	return "", fmt.Errorf("no zone found with name %s: %w", name, ErrZoneNotFound)
}
