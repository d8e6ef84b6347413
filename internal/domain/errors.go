package domain

import "errors"

var (
	ErrInvalidKey    = errors.New("invalid room key")
	ErrMissingRoomID = errors.New("missing room id")
)
