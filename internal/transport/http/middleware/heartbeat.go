package httpmw

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HeartbeatMiddleware продлевает присутствие для {roomId, user, connection_id},
// если запрос несёт connection_id в query.
type PresenceToucher interface {
	UpdatePresence(ctx context.Context, roomType, roomID, userID, connID string, cursor json.RawMessage) (bool, error)
}

func HeartbeatMiddleware(presenceSvc PresenceToucher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := UserFromCtx(r.Context())
			if user.ID != "" {
				if roomID := chi.URLParam(r, "roomId"); roomID != "" {
					if connID := r.URL.Query().Get("connection_id"); connID != "" {
						// best-effort: промах/ошибка не прерывают запрос
						_, _ = presenceSvc.UpdatePresence(r.Context(), r.URL.Query().Get("type"), roomID, user.ID, connID, nil)
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
