// Package battle is the arena client for the battle lobby API.
package battle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/louisbranch/dragon.arena/internal/services/shared/loader"
)

// PhaseLobby is the phase every new battle starts in.
const PhaseLobby = "lobby"

// Battle is the server view of one battle.
type Battle struct {
	ID           string   `json:"id"`
	PlayerIDs    []string `json:"playerIds"`
	SpectatorIDs []string `json:"spectatorIds"`
	Phase        string   `json:"phase"`
}

type createRequest struct {
	PlayerIDs    []string `json:"playerIds"`
	SpectatorIDs []string `json:"spectatorIds"`
	Phase        string   `json:"phase"`
}

type joinRequest struct {
	UserID string `json:"userId"`
	TeamID string `json:"teamId,omitempty"`
}

// Client talks to the battle API through a loader.
type Client struct {
	loader *loader.Loader
	now    func() time.Time
}

// NewClient returns a battle client backed by l.
func NewClient(l *loader.Loader) *Client {
	return &Client{loader: l, now: time.Now}
}

// CreateBattle opens an empty lobby.
func (c *Client) CreateBattle(ctx context.Context) (Battle, error) {
	return loader.LoadAs[Battle](ctx, c.loader, "/api/battle/create", loader.Options{
		Method: http.MethodPost,
		JSON: createRequest{
			PlayerIDs:    []string{},
			SpectatorIDs: []string{},
			Phase:        PhaseLobby,
		},
	})
}

// JoinBattle seats userID in battle id. An empty teamID lets the server pick.
func (c *Client) JoinBattle(ctx context.Context, id, userID, teamID string) (Battle, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Battle{}, errors.New("battle id is required")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Battle{}, errors.New("user id is required")
	}
	return loader.LoadAs[Battle](ctx, c.loader, "/api/battle/"+url.PathEscape(id)+"/join", loader.Options{
		Method: http.MethodPost,
		JSON:   joinRequest{UserID: userID, TeamID: strings.TrimSpace(teamID)},
	})
}

// GetBattle reads battle id. Each call carries a timestamp query so polls
// are never answered from the loader cache.
func (c *Client) GetBattle(ctx context.Context, id string) (Battle, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Battle{}, errors.New("battle id is required")
	}
	endpoint := fmt.Sprintf("/api/battle/%s?_=%d", url.PathEscape(id), c.now().UnixMilli())
	return loader.LoadAs[Battle](ctx, c.loader, endpoint, loader.Options{})
}
