package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Flash notices survive the redirects the guard issues; the next page
// load drains them into its response. Backed by gin-contrib's cookie
// session store.

const flashKey = "notices"

// Notice is a toast-style message carried across a redirect.
type Notice struct {
	Kind    string `json:"kind"` // "error" or "warning"
	Message string `json:"message"`
}

// AddFlash queues a notice for the next request in this browser session.
func AddFlash(c *gin.Context, kind, message string) {
	s := sessions.Default(c)
	s.AddFlash(kind+"|"+message, flashKey)
	// Save failures just drop the toast; not worth failing the request.
	_ = s.Save()
}

// DrainFlashes returns and clears all queued notices.
func DrainFlashes(c *gin.Context) []Notice {
	s := sessions.Default(c)
	raw := s.Flashes(flashKey)
	if len(raw) == 0 {
		return nil
	}
	_ = s.Save()

	notices := make([]Notice, 0, len(raw))
	for _, f := range raw {
		msg, ok := f.(string)
		if !ok {
			continue
		}
		kind, text := "warning", msg
		if i := strings.IndexByte(msg, '|'); i >= 0 {
			kind, text = msg[:i], msg[i+1:]
		}
		notices = append(notices, Notice{Kind: kind, Message: text})
	}
	return notices
}
