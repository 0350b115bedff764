// Package roster reads the dragon catalog from the content server.
package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/louisbranch/dragon.arena/internal/services/shared/loader"
)

const dragonsEndpoint = "/api/dragons"

// Dragon is one catalog entry. Fields keeps every property of the
// document, including id and name.
type Dragon struct {
	ID     string
	Name   string
	Fields map[string]any
}

// UnmarshalJSON accepts string and numeric ids.
func (d *Dragon) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("dragon must be a JSON object")
	}
	switch id := fields["id"].(type) {
	case string:
		d.ID = id
	case float64:
		d.ID = strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Errorf("dragon id must be a string or number, got %T", id)
	}
	d.Name, _ = fields["name"].(string)
	d.Fields = fields
	return nil
}

// MarshalJSON writes the original document fields.
func (d Dragon) MarshalJSON() ([]byte, error) {
	if d.Fields != nil {
		return json.Marshal(d.Fields)
	}
	return json.Marshal(map[string]string{"id": d.ID, "name": d.Name})
}

// Client reads dragons through a loader, so repeated reads are served from
// the loader cache.
type Client struct {
	loader *loader.Loader
}

// NewClient returns a roster client backed by l.
func NewClient(l *loader.Loader) *Client {
	return &Client{loader: l}
}

// List returns every dragon in catalog order.
func (c *Client) List(ctx context.Context) ([]Dragon, error) {
	return loader.LoadAs[[]Dragon](ctx, c.loader, dragonsEndpoint, loader.Options{})
}

// Get returns one dragon by id.
func (c *Client) Get(ctx context.Context, id string) (Dragon, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Dragon{}, errors.New("dragon id is required")
	}
	return loader.LoadAs[Dragon](ctx, c.loader, dragonsEndpoint+"/"+url.PathEscape(id), loader.Options{})
}
