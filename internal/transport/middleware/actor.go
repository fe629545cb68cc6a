package middleware

import (
	"net/http"

	"github.com/frahmantamala/insight-pulse/pkg/logger"
)

// ActorHeader names the console user behind a request. It is informational
// only and never used for access decisions.
const ActorHeader = "X-Actor"

func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := r.Header.Get(ActorHeader)
		if actor == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "actor", actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
