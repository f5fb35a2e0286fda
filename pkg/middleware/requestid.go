package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/docwell/docsearch/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID attaches a request id to the context and response headers,
// honouring an id supplied by the caller.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = newRequestID()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

func newRequestID() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(buf[:])
}
