package middleware

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey string

const ctxKeyPrefixKey contextKey = "api_key_prefix"

// APIKeyAuth authenticates requests by hashing the Bearer token (SHA-256) and
// comparing it with the configured keys. With no keys configured every
// request passes through.
func APIKeyAuth(keys []string) func(http.Handler) http.Handler {
	hashes := make([][]byte, 0, len(keys))
	for _, k := range keys {
		hashes = append(hashes, []byte(hashKey(k)))
	}
	return func(next http.Handler) http.Handler {
		if len(hashes) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := extractBearer(r)
			if raw == "" {
				writeError(w, http.StatusUnauthorized, "missing or malformed Authorization header")
				return
			}
			if !matchesAny(hashes, []byte(hashKey(raw))) {
				writeError(w, http.StatusUnauthorized, "invalid api key")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyPrefixKey, keyPrefix(raw))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// KeyPrefixFromCtx returns the first characters of the authenticated key, or "".
func KeyPrefixFromCtx(ctx context.Context) string {
	p, _ := ctx.Value(ctxKeyPrefixKey).(string)
	return p
}

func matchesAny(hashes [][]byte, candidate []byte) bool {
	found := 0
	for _, h := range hashes {
		found |= subtle.ConstantTimeCompare(h, candidate)
	}
	return found == 1
}

func keyPrefix(raw string) string {
	if len(raw) > 8 {
		return raw[:8]
	}
	return raw
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func hashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
