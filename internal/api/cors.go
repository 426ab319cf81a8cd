package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"evalgo.org/fleetstatus/internal/config"
)

// DevFrontendOrigin is the Vite dev server, allowed outside production.
const DevFrontendOrigin = "http://localhost:5173"

// ResolveAllowedOrigins derives the CORS origin list from the security
// settings. An explicit list wins. Otherwise the primary frontend domain is
// allowed over https, plus the dev origin when not in production. The result
// may be empty, in which case no cross-origin request is allowed.
func ResolveAllowedOrigins(sec config.SecurityConfig) []string {
	if len(sec.AllowedOrigins) > 0 {
		out := make([]string, 0, len(sec.AllowedOrigins))
		for _, o := range sec.AllowedOrigins {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
		return out
	}

	var origins []string
	if domain := strings.TrimSpace(sec.PrimaryFrontendDomain); domain != "" {
		origins = append(origins, "https://"+domain)
	}
	if !sec.IsProduction() {
		origins = append(origins, DevFrontendOrigin)
	}
	return origins
}

func originAllowed(allowed []string, origin string) bool {
	for _, o := range allowed {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// corsMiddleware uses AllowOriginFunc because echo treats an empty
// AllowOrigins list as "*".
func corsMiddleware(allowed []string) echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			return originAllowed(allowed, origin), nil
		},
		AllowMethods:     []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	})
}
