package http

import (
	"net/http"
	"time"

	"github.com/cwrk-planet/presence-service/internal/service"
	httpmw "github.com/cwrk-planet/presence-service/internal/transport/http/middleware"
	"github.com/cwrk-planet/presence-service/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(h *Handler, presenceSvc *service.PresenceService, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-User-ID", "X-User-Name", "X-User-Color"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// WS push channel; авторизация через query (браузерный WS не шлёт заголовки)
	r.Get("/collab/{roomId}/ws", wsServer.HandleWS)

	// Все маршруты требуют access_token и user id
	r.Group(func(pr chi.Router) {
		pr.Use(httpmw.AuthMiddleware)
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Route("/collab/{roomId}", func(cr chi.Router) {
			// на внутреннем роутере: {roomId} уже заматчен родителем
			cr.Use(httpmw.HeartbeatMiddleware(presenceSvc))

			cr.Get("/users", h.GetRoomUsers)
			cr.Post("/join", h.JoinRoom)
			cr.Post("/presence", h.UpdatePresence)
			cr.Post("/leave", h.LeaveRoom)
		})
	})

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
