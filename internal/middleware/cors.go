package middleware

import (
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/jobboard/internal/config"
)

// CORS applies the configured cross-origin policy. Origins may be exact
// ("http://localhost:3000"), a wildcard subdomain with or without scheme
// ("*.vercel.app", "https://*.vercel.app") or "*".
func CORS(cfg config.Config) gin.HandlerFunc {
	matcher := newOriginMatcher(cfg.CORSAllowedOrigins)
	return cors.New(cors.Config{
		AllowOriginFunc:  matcher.Allowed,
		AllowMethods:     cfg.CORSAllowedMethods,
		AllowHeaders:     cfg.CORSAllowedHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: cfg.CORSAllowCredentials,
		MaxAge:           12 * time.Hour,
	})
}

type originPattern struct {
	scheme string
	suffix string
}

type originMatcher struct {
	any      bool
	exact    map[string]struct{}
	patterns []originPattern
}

func newOriginMatcher(origins []string) *originMatcher {
	m := &originMatcher{exact: make(map[string]struct{}, len(origins))}
	for _, raw := range origins {
		origin := strings.ToLower(strings.TrimRight(strings.TrimSpace(raw), "/"))
		switch {
		case origin == "":
		case origin == "*":
			m.any = true
		case strings.Contains(origin, "*."):
			scheme, host, found := strings.Cut(origin, "://")
			if !found {
				scheme, host = "", origin
			}
			m.patterns = append(m.patterns, originPattern{scheme: scheme, suffix: strings.TrimPrefix(host, "*")})
		default:
			m.exact[origin] = struct{}{}
		}
	}
	return m
}

// Allowed reports whether origin may make credentialed cross-origin calls.
func (m *originMatcher) Allowed(origin string) bool {
	if m.any {
		return true
	}
	origin = strings.ToLower(origin)
	if _, ok := m.exact[origin]; ok {
		return true
	}
	if len(m.patterns) == 0 {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Hostname()
	for _, p := range m.patterns {
		if p.scheme != "" && p.scheme != u.Scheme {
			continue
		}
		if strings.HasSuffix(host, p.suffix) && len(host) > len(p.suffix) {
			return true
		}
	}
	return false
}
