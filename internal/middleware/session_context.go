package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type ctxKey string

const sessionKey ctxKey = "session"

// SessionHeader identifica la browsing session del cliente.
const SessionHeader = "X-Session-ID"

// SessionContext:
//   - Si viene X-Session-ID, se usa tal cual.
//   - Si no viene, se emite un uuid nuevo y se devuelve en el response header
//     para que el cliente lo repita en los siguientes requests.
func SessionContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := strings.TrimSpace(r.Header.Get(SessionHeader))
			if sid == "" {
				sid = uuid.NewString()
			}

			w.Header().Set(SessionHeader, sid)
			ctx := context.WithValue(r.Context(), sessionKey, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetSessionID(ctx context.Context) (string, bool) {
	v := ctx.Value(sessionKey)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
