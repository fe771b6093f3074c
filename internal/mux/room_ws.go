package mux

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"pokerroom-server/pkg/message"
	"pokerroom-server/pkg/room"
	"pokerroom-server/pkg/transport"
)

const closeWait = time.Second * 10

// handshake is what a client presents when it opens a room's websocket
type handshake struct {
	clientID uint64
	codec    message.Codec
}

// parseHandshake reads ?clientId=&protocol=&codec= from the request
func (m *Mux) parseHandshake(r *http.Request) (handshake, error) {
	protocol, err := strconv.ParseUint(r.FormValue("protocol"), 10, 64)
	if err != nil || protocol != m.protocolID {
		return handshake{}, fmt.Errorf("unsupported protocol: %q", r.FormValue("protocol"))
	}

	clientID, err := strconv.ParseUint(r.FormValue("clientId"), 10, 64)
	if err != nil || clientID == 0 {
		return handshake{}, errors.New("clientId must be a non-zero unsigned integer")
	}

	codec, err := message.CodecFromString(r.FormValue("codec"))
	if err != nil {
		return handshake{}, err
	}

	return handshake{clientID: clientID, codec: codec}, nil
}

func (m *Mux) getRoomUUIDWS() http.HandlerFunc {
	upgrader := &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		hs, err := m.parseHandshake(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		dealer := r.Context().Value(ctxDealerKey).(*room.Dealer)
		log := logrus.WithField("room", dealer.UUID()).
			WithField("client", hs.clientID).
			WithField("remoteAddr", clientAddr(r))

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.WithError(err).Error("could not upgrade connection")
			return
		}

		// the hub owns the link from here on
		if err := dealer.Connect(hs.clientID, transport.NewServerLink(conn, hs.codec.Binary()), hs.codec); err != nil {
			log.WithError(err).Info("rejected connection")
			closeWithError(conn, err)
			return
		}

		log.WithField("codec", hs.codec.Name()).Debug("websocket connected")
	}
}

// closeWithError tells the client why it was turned away
func closeWithError(conn *websocket.Conn, err error) {
	code := websocket.ClosePolicyViolation
	if errors.Is(err, room.ErrShiftEnded) {
		code = websocket.CloseGoingAway
	}

	msg := websocket.FormatCloseMessage(code, err.Error())
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWait))
	_ = conn.Close()
}
