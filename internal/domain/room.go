package domain

// RoomKey — каноничный идентификатор комнаты: тип ресурса + id.
// Типы неймспейсятся строками ("page", "flow"), чтобы разные виды
// ресурсов с одинаковым id не коллизировали.
type RoomKey struct {
	Type string
	ID   string
}

// NewRoomKey validates and builds a RoomKey. Comparison is ordinal and
// case-sensitive; the key is usable directly as a map key.
func NewRoomKey(roomType, roomID string) (RoomKey, error) {
	if roomType == "" || roomID == "" {
		return RoomKey{}, ErrInvalidKey
	}
	return RoomKey{Type: roomType, ID: roomID}, nil
}

func (k RoomKey) String() string {
	return k.Type + ":" + k.ID
}
