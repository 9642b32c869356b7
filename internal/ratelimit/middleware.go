package ratelimit

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/foliohq/folio-server/internal/http/response"
)

// Middleware rejects requests with 429 once the client IP runs out of tokens.
// It expects RemoteAddr to already reflect the real client (chi's RealIP).
func Middleware(krl *KeyedRateLimiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			if wait := krl.Reserve(key); wait > 0 {
				if logger != nil {
					logger.Warn("rate limited", "client", key, "path", r.URL.Path)
				}
				response.TooManyRequests(w, strconv.Itoa(int(math.Ceil(wait.Seconds()))), logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
