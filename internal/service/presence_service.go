package service

import (
	"context"
	"encoding/json"

	"github.com/cwrk-planet/presence-service/internal/domain"
	"github.com/cwrk-planet/presence-service/internal/registry"

	"github.com/google/uuid"
)

// PresenceService — граница для транспорта: нормализует ключ комнаты и
// делегирует в registry. Авторизации здесь нет — identity приходит от
// session resolver'а уже проверенной.
type PresenceService struct {
	reg *registry.Registry

	defaultRoomType string
}

func NewPresenceService(reg *registry.Registry, defaultRoomType string) *PresenceService {
	if defaultRoomType == "" {
		defaultRoomType = "page"
	}
	return &PresenceService{
		reg:             reg,
		defaultRoomType: defaultRoomType,
	}
}

// DefaultRoomType — неймспейс, когда клиент не прислал ?type=.
func (s *PresenceService) DefaultRoomType() string { return s.defaultRoomType }

func (s *PresenceService) resolveKey(roomType, roomID string) (domain.RoomKey, error) {
	if roomID == "" {
		return domain.RoomKey{}, domain.ErrMissingRoomID
	}
	if roomType == "" {
		roomType = s.defaultRoomType
	}
	return domain.NewRoomKey(roomType, roomID)
}

// ListUsers возвращает снапшот комнаты; count всегда == len(users).
func (s *PresenceService) ListUsers(ctx context.Context, roomType, roomID string) ([]domain.Participant, int, error) {
	key, err := s.resolveKey(roomType, roomID)
	if err != nil {
		return nil, 0, err
	}
	users := s.reg.List(key)
	return users, len(users), nil
}

// JoinRoom registers the caller in the room. A missing connection id gets a
// server-assigned uuid (returned to the client for later heartbeats); a
// missing color gets the stable palette color for the user id.
func (s *PresenceService) JoinRoom(ctx context.Context, roomType, roomID string, user domain.User, connID string, cursor json.RawMessage) (domain.Participant, error) {
	key, err := s.resolveKey(roomType, roomID)
	if err != nil {
		return domain.Participant{}, err
	}
	if connID == "" {
		connID = uuid.NewString()
	}
	if user.Name == "" {
		user.Name = user.ID
	}
	if user.Color == "" {
		user.Color = domain.ColorFor(user.ID)
	}
	return s.reg.Join(key, user, connID, cursor), nil
}

// UpdatePresence is the heartbeat path: false means the participant is not
// registered (expired or never joined) and the client should re-join.
func (s *PresenceService) UpdatePresence(ctx context.Context, roomType, roomID, userID, connID string, cursor json.RawMessage) (bool, error) {
	key, err := s.resolveKey(roomType, roomID)
	if err != nil {
		return false, err
	}
	if userID == "" || connID == "" {
		return false, nil
	}
	return s.reg.Heartbeat(key, userID, connID, cursor), nil
}

// LeaveRoom — best-effort: false на отсутствующем участнике, не ошибка.
func (s *PresenceService) LeaveRoom(ctx context.Context, roomType, roomID, userID, connID string) (bool, error) {
	key, err := s.resolveKey(roomType, roomID)
	if err != nil {
		return false, err
	}
	return s.reg.Leave(key, userID, connID), nil
}
