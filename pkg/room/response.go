package room

import (
	"pokerroom-server/pkg/lobby"
)

// Response is the public state of a room
// Private hands are never included.
type Response struct {
	UUID     string         `json:"uuid"`
	Lobby    lobby.Snapshot `json:"lobby"`
	Log      []*LogMessage  `json:"log"`
	Clients  int            `json:"clients"`
	Interval string         `json:"interval"`
}

// NOTE: must only be called from the run loop
func (d *Dealer) response() *Response {
	snapshot := d.lobby.Snapshot()
	for i := range snapshot.Players {
		snapshot.Players[i].Hand = nil
	}

	log := make([]*LogMessage, len(d.logMessages))
	copy(log, d.logMessages)

	return &Response{
		UUID:     d.uuid,
		Lobby:    snapshot,
		Log:      log,
		Clients:  d.ClientCount(),
		Interval: d.Interval().String(),
	}
}
