package httpapi

import (
	"context"
	"net/http"
)

type contextKey string

const actorKey contextKey = "actor"

// ExtractActor records which trainer made the request, as reported by the
// reverse proxy in front of the server. Requests without a header are
// attributed to "local".
func ExtractActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := r.Header.Get("X-Auth-User")
		if actor == "" {
			actor = r.Header.Get("X-Forwarded-User")
		}
		if actor == "" {
			actor = r.Header.Get("Remote-User")
		}
		if actor == "" {
			actor = "local"
		}

		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func Actor(ctx context.Context) string {
	actor, _ := ctx.Value(actorKey).(string)
	return actor
}
