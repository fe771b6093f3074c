package mux

import (
	"context"
	"net/http"

	gmux "github.com/gorilla/mux"
	"pokerroom-server/pkg/room"
)

type ctxKey int

const (
	ctxDealerKey ctxKey = iota
)

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version    string
	protocolID uint64
	pitBoss    *room.PitBoss
}

// NewMux returns a new HTTP mux
// Websocket clients must present protocolID in their handshake.
func NewMux(version string, protocolID uint64, pitBoss *room.PitBoss) *Mux {
	this := &Mux{
		Router:     gmux.NewRouter(),
		version:    version,
		protocolID: protocolID,
		pitBoss:    pitBoss,
	}

	r := this.Router
	r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
	r.Methods(http.MethodPost).Path("/room").Handler(this.postRoom())

	rr := r.PathPrefix("/room/{uuid:(?i)[a-f0-9]{8}(?:-[a-f0-9]{4}){3}-[a-f0-9]{12}}").Subrouter()
	rr.Use(this.roomMiddleware)

	rr.Methods(http.MethodGet).Path("").Handler(this.getRoomUUID())
	rr.Methods(http.MethodGet).Path("/ws").Handler(this.getRoomUUIDWS())

	return this
}

func (m *Mux) roomMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dealer, found := m.pitBoss.Dealer(gmux.Vars(r)["uuid"])
		if !found {
			writeJSONError(w, http.StatusNotFound, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxDealerKey, dealer)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}
