package upstream

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/sipas-id/sipas-portal/internal/app/models"
)

// Login authenticates against the backend. The returned user may be nil
// when the backend only hands back a token; the session then starts
// token-only and the bootstrap fills the profile in later.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	raw, err := c.do(ctx, nil, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, "", err
	}
	return ParseAuthResponse(raw)
}

// Register creates a new borrower account.
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	raw, err := c.do(ctx, nil, http.MethodPost, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, "", err
	}
	return ParseAuthResponse(raw)
}

// Logout tells the backend to invalidate the token. Best effort: the
// local session is already gone by the time this is called.
func (c *Client) Logout(ctx context.Context, src TokenSource) {
	if _, err := c.do(ctx, src, http.MethodPost, "/auth/logout", nil); err != nil {
		c.logger.Debug("Upstream logout failed, ignoring", zap.Error(err))
	}
}

// Profile fetches the caller's identity via the discovered endpoint. A
// nil user with a nil error is possible when the payload carried no
// resolvable identity.
func (c *Client) Profile(ctx context.Context, src TokenSource) (*models.User, error) {
	endpoint := c.ProfileEndpoint(ctx, src)
	raw, err := c.do(ctx, src, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	user, _, err := ParseAuthResponse(raw)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile pushes profile changes and returns the updated identity.
func (c *Client) UpdateProfile(ctx context.Context, src TokenSource, fields map[string]any) (*models.User, error) {
	raw, err := c.do(ctx, src, http.MethodPut, "/auth/profile", fields)
	if err != nil {
		return nil, err
	}
	user, _, err := ParseAuthResponse(raw)
	if err != nil {
		return nil, err
	}
	return user, nil
}
