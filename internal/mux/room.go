package mux

import (
	"errors"
	"net/http"

	"pokerroom-server/pkg/room"
)

type postRoomResponse struct {
	UUID string `json:"uuid"`
}

func (m *Mux) postRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealer := m.pitBoss.CreateRoom()
		writeJSON(w, http.StatusCreated, postRoomResponse{UUID: dealer.UUID()})
	}
}

func (m *Mux) getRoomUUID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealer := r.Context().Value(ctxDealerKey).(*room.Dealer)

		res, err := dealer.Response()
		if err != nil {
			if errors.Is(err, room.ErrShiftEnded) {
				writeJSONError(w, http.StatusNotFound, nil)
				return
			}

			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}
