package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sipas-id/sipas-portal/internal/app/upstream"
)

// RespondError maps the upstream error taxonomy onto the portal's
// responses. Auth failures force the hard return to login (the client
// hook already evicted the session); everything else degrades to a JSON
// error the page surfaces inline.
func RespondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case upstream.IsAuthError(err):
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	case upstream.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, upstream.ErrMalformedResponse):
		logger.Warn("Malformed upstream response", zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unexpected backend response"})
	default:
		if code := upstream.StatusOf(err); code != 0 {
			// Business-rule errors pass through with their own status.
			c.JSON(code, gin.H{"error": err.Error()})
			return
		}
		logger.Warn("Upstream request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend unavailable"})
	}
}
