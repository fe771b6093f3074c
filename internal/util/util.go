package util

import (
	"github.com/google/uuid"
)

// NewRoomID returns a random identifier for a room
func NewRoomID() string {
	return uuid.New().String()
}

// IsRoomID returns true if s looks like an identifier returned by NewRoomID
func IsRoomID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
