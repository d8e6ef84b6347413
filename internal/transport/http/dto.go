package http

import "encoding/json"

type UserPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type UserItem struct {
	User   UserPayload     `json:"user"`
	Cursor json.RawMessage `json:"cursor"`
}

type UsersResponse struct {
	Users []UserItem `json:"users"`
	Count int        `json:"count"`
}

type JoinRequest struct {
	ConnectionID string          `json:"connection_id,omitempty"`
	Cursor       json.RawMessage `json:"cursor,omitempty"`
}

type JoinResponse struct {
	RoomID       string          `json:"room_id"`
	RoomType     string          `json:"room_type"`
	ConnectionID string          `json:"connection_id"`
	User         UserPayload     `json:"user"`
	Cursor       json.RawMessage `json:"cursor"`
}

type PresenceRequest struct {
	ConnectionID string          `json:"connection_id"`
	Cursor       json.RawMessage `json:"cursor,omitempty"`
}

type PresenceResponse struct {
	Active bool `json:"active"`
}

type LeaveRequest struct {
	ConnectionID string `json:"connection_id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
