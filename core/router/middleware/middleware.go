package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"plinth/core/config"
	"plinth/core/logger"
	"plinth/core/router"
)

// Recovery converts handler panics into 500 responses instead of killing
// the connection.
func Recovery(log logger.Logger) router.Middleware {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c *router.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("handler panic",
						logger.String("path", c.Request.URL.Path),
						logger.Any("panic", r),
						logger.String("stack", string(debug.Stack())))
					err = c.JSON(http.StatusInternalServerError, map[string]any{
						"error": "Internal server error",
					})
				}
			}()
			return next(c)
		}
	}
}

// CORSMiddleware answers preflight requests and sets the CORS headers for
// the configured origins. An empty origin list allows any origin.
func CORSMiddleware(origins []string) router.Middleware {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c *router.Context) error {
			origin := c.Request.Header.Get("Origin")
			if origin != "" && (len(allowed) == 0 || allowed[origin]) {
				header := c.Writer.Header()
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				header.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			}
			if c.Request.Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}
			return next(c)
		}
	}
}

// ApplyConfigurableMiddleware installs the middleware stack driven by the
// middleware section of the app config.
func ApplyConfigurableMiddleware(r *router.Router, cfg *config.MiddlewareConfig, log logger.Logger) {
	r.Use(Recovery(log))
	if cfg.CORSEnabled {
		r.Use(CORSMiddleware(cfg.CORSOrigins))
	}
}

// RequireJSON rejects mutating requests without a JSON content type.
func RequireJSON() router.Middleware {
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c *router.Context) error {
			switch c.Request.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch:
				ct := c.Request.Header.Get("Content-Type")
				if ct != "" && ct != "application/json" && !hasJSONPrefix(ct) {
					return c.JSON(http.StatusUnsupportedMediaType, map[string]any{
						"error": fmt.Sprintf("unsupported content type %q", ct),
					})
				}
			}
			return next(c)
		}
	}
}

func hasJSONPrefix(ct string) bool {
	const prefix = "application/json"
	return len(ct) >= len(prefix) && ct[:len(prefix)] == prefix
}
