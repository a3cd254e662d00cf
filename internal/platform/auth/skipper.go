package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists URL paths that bypass authentication: health checks and
// the endpoints a visitor needs before they have a session.
var publicPaths = map[string]bool{
	"/healthz":     true,
	"/healthz/db":  true,
	"/auth/login":  true,
	"/auth/signup": true,
}

// AuthSkipper returns true for requests whose path should skip authentication.
func AuthSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

// IsPublicPath reports whether the given path bypasses auth middleware.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}
