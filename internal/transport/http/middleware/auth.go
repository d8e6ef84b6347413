package httpmw

import (
	"context"
	"net/http"
	"strings"

	"github.com/cwrk-planet/presence-service/internal/domain"
)

type ctxKey string

const (
	ctxKeyToken ctxKey = "token"
	ctxKeyUser  ctxKey = "user"
)

// Session resolver boundary: требуем Bearer + X-User-ID; токен не валидируем —
// это забота resolver'а выше по цепочке, presence его выходу доверяет.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || len(auth) <= 7 {
			http.Error(w, `{"error":"missing bearer token"}`, http.StatusUnauthorized)
			return
		}

		uid := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if uid == "" {
			http.Error(w, `{"error":"missing X-User-ID"}`, http.StatusUnauthorized)
			return
		}

		name := strings.TrimSpace(r.Header.Get("X-User-Name"))
		if name == "" {
			name = uid
		}

		user := domain.User{
			ID:    uid,
			Name:  name,
			Color: strings.TrimSpace(r.Header.Get("X-User-Color")),
		}

		ctx := context.WithValue(r.Context(), ctxKeyToken, strings.TrimSpace(auth[7:]))
		ctx = context.WithValue(ctx, ctxKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserFromCtx(ctx context.Context) domain.User {
	if v := ctx.Value(ctxKeyUser); v != nil {
		if u, ok := v.(domain.User); ok {
			return u
		}
	}
	return domain.User{}
}
