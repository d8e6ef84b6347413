package ws

import "encoding/json"

// Типы событий, которые ходят по WS
const (
	TypeState      = "state"       // снапшот всех участников
	TypePeerJoined = "peer_joined" // пользователь присоединился
	TypePeerLeft   = "peer_left"   // пользователь покинул
	TypeCursor     = "cursor"      // обновление курсора
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type StatePayload struct {
	RoomID       string                 `json:"room_id"`
	RoomType     string                 `json:"room_type"`
	Participants []ParticipantStateItem `json:"participants"`
	Count        int                    `json:"count"`
}

type ParticipantStateItem struct {
	UserID       string          `json:"user_id"`
	UserName     string          `json:"user_name"`
	Color        string          `json:"color"`
	ConnectionID string          `json:"connection_id"`
	Cursor       json.RawMessage `json:"cursor"`
	LastSeen     int64           `json:"last_seen_unix"`
}

type PeerEventPayload struct {
	RoomID       string `json:"room_id"`
	RoomType     string `json:"room_type"`
	UserID       string `json:"user_id"`
	ConnectionID string `json:"connection_id"`
}

type CursorPayload struct {
	RoomID       string          `json:"room_id"`
	RoomType     string          `json:"room_type"`
	UserID       string          `json:"user_id"`
	ConnectionID string          `json:"connection_id"`
	Cursor       json.RawMessage `json:"cursor"`
}
