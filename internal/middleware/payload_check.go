package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"
)

// MaxPayloadBytes caps request bodies read by PayloadCheck.
const MaxPayloadBytes = 256 << 10

// PayloadValidator validates a raw request body against a named schema.
type PayloadValidator interface {
	Validate(name string, body []byte) error
}

// PayloadCheck reads the body, rejects it with 400 when it does not match
// schema, then replaces r.Body so downstream handlers can re-read it.
func PayloadCheck(v PayloadValidator, schema string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bodyBytes, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxPayloadBytes))
			r.Body.Close()
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
					return
				}
				writeError(w, http.StatusBadRequest, "failed to read body")
				return
			}

			if err := v.Validate(schema, bodyBytes); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}

			// Restore body for the handler.
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			next.ServeHTTP(w, r)
		})
	}
}
