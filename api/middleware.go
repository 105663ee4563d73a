package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey int

const claimsKey contextKey = iota

// Claims holds the JWT claims we care about.
type Claims struct {
	Subject string
}

// ClaimsFromContext extracts JWT claims stored by the auth middleware.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey).(Claims)
	return c, ok
}

// CORS adds CORS headers to every response.
func CORS(allowOrigin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// allowedOrigin reports whether r comes from a page allowed to drive the
// service: no Origin header (not a browser page), the service's own
// origin, or the configured CORS origin.
func allowedOrigin(r *http.Request, allow string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || allow == "*" || (allow != "" && origin == allow) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && strings.EqualFold(u.Host, r.Host)
}

// OriginCheck refuses requests from other origins. It guards the API when
// there is no token auth.
func OriginCheck(allow string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowedOrigin(r, allow) {
				writeError(w, http.StatusForbidden, "cross-origin request refused")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogging logs every request with method, path, status, and duration.
// The chi wrapper keeps http.Hijacker so websocket upgrades pass through.
func RequestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration", time.Since(start).String(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// public reports whether path is reachable without a token: the health
// check and the host page with its scripts.
func public(path string) bool {
	return path == "/healthz" || path == "/" || strings.HasPrefix(path, "/js/")
}

// bearerToken reads the token from the Authorization header, or from the
// token query parameter for requests a browser cannot attach headers to
// (websocket upgrades, the preview frame).
func bearerToken(r *http.Request) (string, string) {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", "invalid authorization header format"
		}
		return parts[1], ""
	}
	if t := r.URL.Query().Get("token"); t != "" {
		return t, ""
	}
	return "", "missing authorization header"
}

// JWTAuth validates HS256 bearer tokens and stores claims in context.
func JWTAuth(secret string, issuer string) func(http.Handler) http.Handler {
	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(issuer))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public(r.URL.Path) || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			tokenStr, problem := bearerToken(r)
			if problem != "" {
				writeError(w, http.StatusUnauthorized, problem)
				return
			}

			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
				return []byte(secret), nil
			}, parserOpts...)
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			sub, err := token.Claims.GetSubject()
			if err != nil || sub == "" {
				writeError(w, http.StatusUnauthorized, "token missing subject claim")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, Claims{Subject: sub})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
