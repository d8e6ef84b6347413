package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cwrk-planet/presence-service/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type PresenceSvc interface {
	ListUsers(ctx context.Context, roomType, roomID string) ([]domain.Participant, int, error)
	JoinRoom(ctx context.Context, roomType, roomID string, user domain.User, connID string, cursor json.RawMessage) (domain.Participant, error)
	UpdatePresence(ctx context.Context, roomType, roomID, userID, connID string, cursor json.RawMessage) (bool, error)
	LeaveRoom(ctx context.Context, roomType, roomID, userID, connID string) (bool, error)
	DefaultRoomType() string
}

type Server struct {
	upgrader    websocket.Upgrader
	hub         *Hub
	presenceSvc PresenceSvc

	pingEvery time.Duration
}

func NewServer(hub *Hub, presence PresenceSvc) *Server {
	return &Server{
		hub:         hub,
		presenceSvc: presence,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}
}

// WS endpoint: GET /collab/{roomId}/ws?type=&access_token=&user_id=&user_name=&connection_id=
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	accessToken := strings.TrimSpace(q.Get("access_token"))
	userID := strings.TrimSpace(q.Get("user_id"))
	if accessToken == "" {
		http.Error(w, "missing access_token", http.StatusUnauthorized)
		return
	}
	if userID == "" {
		http.Error(w, "missing user_id", http.StatusUnauthorized)
		return
	}
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		http.Error(w, "Missing roomId parameter", http.StatusBadRequest)
		return
	}
	roomType := strings.TrimSpace(q.Get("type"))
	if roomType == "" {
		roomType = s.presenceSvc.DefaultRoomType()
	}
	key, err := domain.NewRoomKey(roomType, roomID)
	if err != nil {
		http.Error(w, "invalid room key", http.StatusBadRequest)
		return
	}

	user := domain.User{
		ID:    userID,
		Name:  strings.TrimSpace(q.Get("user_name")),
		Color: strings.TrimSpace(q.Get("user_color")),
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		http.Error(w, "upgrade failed", http.StatusBadRequest)
		return
	}

	p, err := s.presenceSvc.JoinRoom(r.Context(), roomType, roomID, user, q.Get("connection_id"), nil)
	if err != nil {
		slog.Warn("ws join failed", "room", key.String(), "user", userID, "err", err)
		_ = conn.Close()
		return
	}

	c := newWsConn(conn, key, userID, p.ConnectionID)
	s.hub.Add(c)

	if err := s.sendState(r.Context(), c); err != nil {
		slog.Warn("ws send initial state failed", "room", key.String(), "user", userID, "err", err)
	}

	// peer_joined
	s.hub.Broadcast(key, Message{
		Type: TypePeerJoined,
		Payload: PeerEventPayload{
			RoomID:       key.ID,
			RoomType:     key.Type,
			UserID:       userID,
			ConnectionID: p.ConnectionID,
		},
	})

	go s.writeLoop(r.Context(), c)
	s.readLoop(r.Context(), c)

	s.hub.Remove(c)

	if _, err := s.presenceSvc.LeaveRoom(r.Context(), key.Type, key.ID, userID, c.connID); err != nil {
		slog.Debug("ws leave room failed", "room", key.String(), "user", userID, "err", err)
	}
	s.hub.Broadcast(key, Message{
		Type: TypePeerLeft,
		Payload: PeerEventPayload{
			RoomID:       key.ID,
			RoomType:     key.Type,
			UserID:       userID,
			ConnectionID: c.connID,
		},
	})

	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "room", key.String(), "user", userID, "err", err)
	}
}

func (s *Server) sendState(ctx context.Context, c *wsConn) error {
	parts, count, err := s.presenceSvc.ListUsers(ctx, c.key.Type, c.key.ID)
	if err != nil {
		return err
	}
	items := make([]ParticipantStateItem, 0, len(parts))
	for _, p := range parts {
		items = append(items, ParticipantStateItem{
			UserID:       p.User.ID,
			UserName:     p.User.Name,
			Color:        p.User.Color,
			ConnectionID: p.ConnectionID,
			Cursor:       p.Cursor,
			LastSeen:     p.LastSeenAt.Unix(),
		})
	}

	return c.Send(Message{
		Type: TypeState,
		Payload: StatePayload{
			RoomID:       c.key.ID,
			RoomType:     c.key.Type,
			Participants: items,
			Count:        count,
		},
	})
}

func (s *Server) readLoop(ctx context.Context, c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 20)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		_, _ = s.presenceSvc.UpdatePresence(ctx, c.key.Type, c.key.ID, c.userID, c.connID, nil)
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case TypeCursor:
			var p CursorPayload
			if decode(msg.Payload, &p) != nil {
				continue
			}
			active, err := s.presenceSvc.UpdatePresence(ctx, c.key.Type, c.key.ID, c.userID, c.connID, p.Cursor)
			if err != nil || !active {
				continue
			}

			// рассылаем всем, включая отправителя (единый источник порядка)
			s.hub.Broadcast(c.key, Message{
				Type: TypeCursor,
				Payload: CursorPayload{
					RoomID:       c.key.ID,
					RoomType:     c.key.Type,
					UserID:       c.userID,
					ConnectionID: c.connID,
					Cursor:       p.Cursor,
				},
			})
		default:
			// ignore
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			_, _ = s.presenceSvc.UpdatePresence(ctx, c.key.Type, c.key.ID, c.userID, c.connID, nil)
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

// --- helpers ---

func decode(payload interface{}, dst interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, dst)
}

type wsConn struct {
	conn   *websocket.Conn
	key    domain.RoomKey
	userID string
	connID string
	sendMu chan struct{}
	closed chan struct{}
}

func newWsConn(c *websocket.Conn, key domain.RoomKey, userID, connID string) *wsConn {
	return &wsConn{
		conn:   c,
		key:    key,
		userID: userID,
		connID: connID,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(msg Message) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}

func (c *wsConn) UserID() string       { return c.userID }
func (c *wsConn) ConnectionID() string { return c.connID }
func (c *wsConn) Room() domain.RoomKey { return c.key }
