package room

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const logMessageLimit = 25

// LogMessage is a line in the room's history
// If ClientIDs is empty the message is a general statement, otherwise it reads "{player} did X".
type LogMessage struct {
	UUID      string    `json:"uuid"`
	ClientIDs []string  `json:"clientIds"`
	Message   string    `json:"message"`
	Time      time.Time `json:"time"`
}

func newLogMessage(now time.Time, clientID uint64, format string, a ...interface{}) *LogMessage {
	var clientIDs []string
	if clientID > 0 {
		clientIDs = []string{fmt.Sprintf("%d", clientID)}
	}

	return &LogMessage{
		UUID:      uuid.New().String(),
		ClientIDs: clientIDs,
		Message:   fmt.Sprintf(format, a...),
		Time:      now,
	}
}

// addLogMessage adds a log message, keeping the newest logMessageLimit
// Note: this must only be called from within the run loop
func (d *Dealer) addLogMessage(clientID uint64, format string, a ...interface{}) {
	m := append(d.logMessages, newLogMessage(d.now(), clientID, format, a...))
	count := len(m)
	if count > logMessageLimit {
		m = m[count-logMessageLimit:]
	}

	d.logMessages = m
}
