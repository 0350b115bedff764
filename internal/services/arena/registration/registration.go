// Package registration fetches and redeems one-time registration tokens.
package registration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/louisbranch/dragon.arena/internal/platform/errors"
	"github.com/louisbranch/dragon.arena/internal/services/shared/loader"
)

const (
	generateEndpoint = "/api/uuid/generate"
	validateEndpoint = "/api/uuid/validate"
	consumeEndpoint  = "/api/uuid/consume"
)

type tokenResponse struct {
	UUID string `json:"uuid"`
}

type tokenRequest struct {
	UUID string `json:"uuid"`
}

// Validation is the server verdict on a token.
type Validation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Client talks to the token API and remembers the last token it fetched.
type Client struct {
	loader *loader.Loader
	now    func() time.Time
	seq    atomic.Uint64

	mu    sync.Mutex
	token string
}

// NewClient returns a registration client backed by l.
func NewClient(l *loader.Loader) *Client {
	return &Client{loader: l, now: time.Now}
}

// Fetch asks the server for a fresh token.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	// Generated tokens must never come from the loader cache.
	endpoint := fmt.Sprintf("%s?_=%d-%d", generateEndpoint, c.now().UnixMilli(), c.seq.Add(1))
	resp, err := loader.LoadAs[tokenResponse](ctx, c.loader, endpoint, loader.Options{})
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(resp.UUID)
	if err := uuid.Validate(token); err != nil {
		return "", apperrors.WrapWithMetadata(
			apperrors.CodeLoaderDecode,
			fmt.Sprintf("generated token %q is not a uuid", token),
			map[string]string{apperrors.MetadataEndpoint: generateEndpoint},
			err,
		)
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return token, nil
}

// Token returns the last fetched token, or "" before the first Fetch.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Validate asks the server whether token may still be consumed. An empty
// token means the last fetched one.
func (c *Client) Validate(ctx context.Context, token string) (Validation, error) {
	token, err := c.resolve(token)
	if err != nil {
		return Validation{}, err
	}
	return loader.LoadAs[Validation](ctx, c.loader, validateEndpoint, loader.Options{
		Method: http.MethodPost,
		JSON:   tokenRequest{UUID: token},
	})
}

// Consume redeems token. An empty token means the last fetched one, which is
// forgotten once consumed.
func (c *Client) Consume(ctx context.Context, token string) error {
	token, err := c.resolve(token)
	if err != nil {
		return err
	}
	if _, err := c.loader.Load(ctx, consumeEndpoint, loader.Options{
		Method: http.MethodPost,
		JSON:   tokenRequest{UUID: token},
	}); err != nil {
		return err
	}

	c.mu.Lock()
	if c.token == token {
		c.token = ""
	}
	c.mu.Unlock()
	return nil
}

func (c *Client) resolve(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		token = c.Token()
	}
	if token == "" {
		return "", errors.New("registration token is required")
	}
	return token, nil
}
