package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// responseHeaders set on every reply.
var responseHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "no-referrer"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Cross-Origin-Resource-Policy", "same-site"},
}

// SecurityHeaders hardens every response. Paths under one of noStorePrefixes
// carry scores or credentials and are marked uncacheable.
func SecurityHeaders(noStorePrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range responseHeaders {
			h.Set(kv[0], kv[1])
		}

		path := c.Request.URL.Path
		for _, prefix := range noStorePrefixes {
			if strings.HasPrefix(path, prefix) {
				h.Set("Cache-Control", "no-store")
				h.Set("Pragma", "no-cache")
				break
			}
		}

		c.Next()
	}
}
