package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Paths reachable without any session at all.
var publicPaths = []string{
	"/login",
	"/register",
	"/forgot-password",
	"/healthz",
	"/assets",
	"/favicon.ico",
}

// protectedPrefixes are gated before any handler code runs.
var protectedPrefixes = []string{"/dashboard", "/api"}

// EdgeFilter is the coarse request-level gate. It runs before everything
// else and can only see the cookie-mirrored token, never the durable
// session mirror. Presence is all it checks: authenticity and expiry are
// the backend's problem.
func EdgeFilter(tokenCookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if path == "/" || isPublicPath(path) {
			c.Next()
			return
		}

		if !underProtectedPrefix(path) {
			c.Next()
			return
		}

		token, err := c.Cookie(tokenCookieName)
		if err != nil || token == "" {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Next()
	}
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func underProtectedPrefix(path string) bool {
	for _, p := range protectedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
