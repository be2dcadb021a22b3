package upstream

import (
	"context"
	"net/http"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// The backend's profile route has moved between deployments. The probe
// tries the known patterns in order of preference and caches whichever
// answers; 200 and 401 both count as "the route exists".
var profileCandidates = []string{
	"/auth/me",
	"/auth/profile",
	"/auth/user",
	"/users/me",
	"/users/profile",
	"/user/me",
	"/user/profile",
	"/profile",
	"/me",
}

const defaultProfileEndpoint = "/auth/me"

const probeCacheKey = "profile-endpoint"

// discovery holds the memoized probe result.
var discovery = gocache.New(gocache.NoExpiration, 0)

// ProfileEndpoint returns the discovered profile route, probing once and
// caching the answer for the process lifetime.
func (c *Client) ProfileEndpoint(ctx context.Context, src TokenSource) string {
	if cached, ok := discovery.Get(probeCacheKey); ok {
		return cached.(string)
	}

	for _, candidate := range profileCandidates {
		status, err := c.statusOnly(ctx, src, http.MethodGet, candidate)
		if err != nil {
			// Transport failure; later candidates will fail the same way.
			break
		}
		if status == http.StatusOK || status == http.StatusUnauthorized {
			c.logger.Info("Discovered profile endpoint", zap.String("endpoint", candidate))
			discovery.Set(probeCacheKey, candidate, gocache.NoExpiration)
			return candidate
		}
	}

	c.logger.Warn("Could not discover profile endpoint, falling back",
		zap.String("endpoint", defaultProfileEndpoint))
	discovery.Set(probeCacheKey, defaultProfileEndpoint, gocache.NoExpiration)
	return defaultProfileEndpoint
}

// ResetDiscovery clears the memoized probe result. Test hook.
func ResetDiscovery() {
	discovery.Delete(probeCacheKey)
}
