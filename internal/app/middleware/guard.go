package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sipas-id/sipas-portal/internal/app/bootstrap"
	"github.com/sipas-id/sipas-portal/internal/app/models"
	"github.com/sipas-id/sipas-portal/internal/app/roles"
	"github.com/sipas-id/sipas-portal/internal/app/session"
)

// Guard wraps protected dashboard routes. Per request it walks the
// session through hydrating → unauthenticated | token-without-user →
// authenticated, redirecting rather than rendering a fallback so a half
// finished session never reaches a page handler.
type Guard struct {
	manager *session.Manager
	runner  *bootstrap.Runner
	logger  *zap.Logger
}

func NewGuard(manager *session.Manager, runner *bootstrap.Runner, logger *zap.Logger) *Guard {
	return &Guard{manager: manager, runner: runner, logger: logger}
}

// Require gates a route. An empty requiredRole means any authenticated
// user; otherwise a role mismatch redirects to the current user's own
// landing page instead of rendering anything.
func (g *Guard) Require(requiredRole roles.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		store := g.manager.Get(c)

		// Hydrating: load the durable mirror before deciding anything.
		if !store.IsHydrated() {
			if err := store.Hydrate(c.Request.Context()); err != nil {
				g.logger.Warn("Hydration failed, treating session as anonymous", zap.Error(err))
			}
		}

		if store.Token() == "" {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		// Token without a user: complete the session before the page runs.
		if store.User() == nil {
			res, err := g.runner.Run(c.Request.Context(), store)
			if err != nil {
				c.Redirect(http.StatusFound, "/login")
				c.Abort()
				return
			}
			switch res.Outcome {
			case bootstrap.OutcomeSessionInvalid:
				g.manager.ClearTokenCookie(c)
				AddFlash(c, "error", res.Notice)
				c.Redirect(http.StatusFound, "/login")
				c.Abort()
				return
			case bootstrap.OutcomeTokenOnly:
				// Transient failure: the session stays usable without a
				// profile, surfaced as a warning toast.
				if res.Notice != "" {
					AddFlash(c, "warning", res.Notice)
				}
			}
		}

		user := store.User()

		if requiredRole != "" {
			if user == nil || roles.Parse(user.Role) != requiredRole {
				c.Redirect(http.StatusFound, landingFor(user))
				c.Abort()
				return
			}
		}

		if user != nil {
			c.Set(string(UserContextKey), user)
		}
		c.Set(string(StoreContextKey), store)
		c.Next()
	}
}

// RequireAny gates a route for any authenticated user regardless of role.
func (g *Guard) RequireAny() gin.HandlerFunc {
	return g.Require("")
}

// StoreFromContext returns the session store the guard attached.
func StoreFromContext(c *gin.Context) *session.Store {
	v, exists := c.Get(string(StoreContextKey))
	if !exists {
		return nil
	}
	store, ok := v.(*session.Store)
	if !ok {
		return nil
	}
	return store
}

func landingFor(user *models.User) string {
	if user == nil {
		return "/login"
	}
	return roles.LandingPath(roles.Parse(user.Role))
}
