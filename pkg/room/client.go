package room

import (
	"fmt"
	"time"

	"pokerroom-server/pkg/message"
)

// client is a connection attached to a dealer
type client struct {
	id          uint64
	codec       message.Codec
	connectedAt time.Time
}

// String returns a traceable identifier for the client and room
func (c *client) String(roomID string) string {
	return fmt.Sprintf("%d:%s", c.id, roomID)
}
