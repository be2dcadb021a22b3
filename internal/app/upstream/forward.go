package upstream

import (
	"io"
	"net/http"

	"go.uber.org/zap"
)

// Hop-by-hop headers must not be copied through the gateway.
var hopHeaders = map[string]struct{}{
	"Connection":          {},
	"Keep-Alive":          {},
	"Proxy-Authorization": {},
	"Proxy-Connection":    {},
	"Te":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
}

// Forward relays an /api request to the backend verbatim, swapping in the
// session's bearer token. Gives pages raw access to endpoints the typed
// client does not cover.
func (c *Client) Forward(w http.ResponseWriter, r *http.Request, path string, src TokenSource) {
	req, err := http.NewRequestWithContext(r.Context(), r.Method, c.base+path, r.Body)
	if err != nil {
		http.Error(w, "bad gateway request", http.StatusBadGateway)
		return
	}

	for name, values := range r.Header {
		if _, hop := hopHeaders[name]; hop {
			continue
		}
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	req.Header.Del("Cookie")
	req.Header.Del("Authorization")
	if tok := tokenFrom(src); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Forwarded request failed", zap.String("path", path), zap.Error(err))
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized(src)
	}

	for name, values := range resp.Header {
		if _, hop := hopHeaders[name]; hop {
			continue
		}
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		c.logger.Debug("Forwarded response copy interrupted", zap.Error(err))
	}
}
