package domain

import (
	"encoding/json"
	"time"
)

// User — идентичность, которую отдаёт session resolver; presence ей доверяет.
type User struct {
	ID    string
	Name  string
	Color string // стабильный hex-цвет для курсора/подсветки
}

// Participant is one live presence record inside a room. Cursor is an opaque
// payload (selection range, caret offset) stored and returned verbatim.
type Participant struct {
	User         User
	ConnectionID string
	Cursor       json.RawMessage
	JoinedAt     time.Time
	LastSeenAt   time.Time
}
