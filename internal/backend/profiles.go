package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Profile is a row in the service's profiles table, keyed by the auth
// user id.
type Profile struct {
	UserID         string    `json:"user_id"`
	FullName       string    `json:"full_name"`
	MembershipTier string    `json:"membership_tier"`
	HomeGym        string    `json:"home_gym"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FetchProfile loads the signed-in member's profile row.
func (c *Client) FetchProfile(ctx context.Context, s Session) (Profile, error) {
	c.log.Debug("rest", "fetch profile "+s.User.ID)
	path := "/rest/v1/profiles?user_id=eq." + url.QueryEscape(s.User.ID) + "&limit=1"
	resp, err := c.do(ctx, http.MethodGet, path, nil, s.AccessToken)
	if err != nil {
		return Profile{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return Profile{}, c.apiError(resp)
	}

	var rows []Profile
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return Profile{}, fmt.Errorf("backend: decode profile: %w", err)
	}
	if len(rows) == 0 {
		return Profile{}, ErrNotFound
	}
	return rows[0], nil
}

// UpsertProfile writes the member's profile row.
func (c *Client) UpsertProfile(ctx context.Context, s Session, p Profile) error {
	c.log.Debug("rest", "upsert profile "+p.UserID)
	resp, err := c.do(ctx, http.MethodPost, "/rest/v1/profiles?on_conflict=user_id", p, s.AccessToken)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return c.apiError(resp)
	}
	return nil
}
