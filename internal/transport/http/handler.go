package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cwrk-planet/presence-service/internal/domain"
	"github.com/cwrk-planet/presence-service/internal/service"
	httpmw "github.com/cwrk-planet/presence-service/internal/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	presenceSvc *service.PresenceService
}

func NewHandler(presence *service.PresenceService) *Handler {
	return &Handler{presenceSvc: presence}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// normCursor схлопывает пустой payload и литерал null в отсутствие курсора.
func normCursor(c json.RawMessage) json.RawMessage {
	if len(c) == 0 || bytes.Equal(c, []byte("null")) {
		return nil
	}
	return c
}

// GET /collab/{roomId}/users?type=
func (h *Handler) GetRoomUsers(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	roomType := r.URL.Query().Get("type")

	users, count, err := h.presenceSvc.ListUsers(r.Context(), roomType, roomID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingRoomID):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Missing roomId parameter"})
		case errors.Is(err, domain.ErrInvalidKey):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid room key"})
		default:
			slog.Error("handler.GetRoomUsers:", slog.Any("err", err))
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	resp := UsersResponse{Users: make([]UserItem, 0, len(users)), Count: count}
	for _, p := range users {
		resp.Users = append(resp.Users, UserItem{
			User: UserPayload{
				ID:    p.User.ID,
				Name:  p.User.Name,
				Color: p.User.Color,
			},
			Cursor: p.Cursor,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// POST /collab/{roomId}/join?type=
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	roomType := r.URL.Query().Get("type")
	if roomType == "" {
		roomType = h.presenceSvc.DefaultRoomType()
	}

	user := httpmw.UserFromCtx(r.Context())
	if user.ID == "" {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user id"})
		return
	}

	var req JoinRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Error("handler.JoinRoom.Decode:", slog.Any("err", err))
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
			return
		}
	}

	p, err := h.presenceSvc.JoinRoom(r.Context(), roomType, roomID, user, req.ConnectionID, normCursor(req.Cursor))
	if err != nil {
		h.writeKeyError(w, "handler.JoinRoom:", err)
		return
	}

	writeJSON(w, http.StatusOK, JoinResponse{
		RoomID:       roomID,
		RoomType:     roomType,
		ConnectionID: p.ConnectionID,
		User: UserPayload{
			ID:    p.User.ID,
			Name:  p.User.Name,
			Color: p.User.Color,
		},
		Cursor: p.Cursor,
	})
}

// POST /collab/{roomId}/presence?type=
func (h *Handler) UpdatePresence(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	roomType := r.URL.Query().Get("type")

	user := httpmw.UserFromCtx(r.Context())
	if user.ID == "" {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user id"})
		return
	}

	var req PresenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("handler.UpdatePresence.Decode:", slog.Any("err", err))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	active, err := h.presenceSvc.UpdatePresence(r.Context(), roomType, roomID, user.ID, req.ConnectionID, normCursor(req.Cursor))
	if err != nil {
		h.writeKeyError(w, "handler.UpdatePresence:", err)
		return
	}

	// active=false — не ошибка: клиенту следует сделать re-join
	writeJSON(w, http.StatusOK, PresenceResponse{Active: active})
}

// POST /collab/{roomId}/leave?type=
func (h *Handler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	roomType := r.URL.Query().Get("type")

	user := httpmw.UserFromCtx(r.Context())
	if user.ID == "" {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing user id"})
		return
	}

	var req LeaveRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Error("handler.LeaveRoom.Decode:", slog.Any("err", err))
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
			return
		}
	}

	left, err := h.presenceSvc.LeaveRoom(r.Context(), roomType, roomID, user.ID, req.ConnectionID)
	if err != nil {
		h.writeKeyError(w, "handler.LeaveRoom:", err)
		return
	}

	status := "left"
	if !left {
		status = "not_in_room"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (h *Handler) writeKeyError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingRoomID):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Missing roomId parameter"})
	case errors.Is(err, domain.ErrInvalidKey):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid room key"})
	default:
		slog.Error(op, slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}
