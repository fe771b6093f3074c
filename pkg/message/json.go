package message

import (
	"encoding/json"
	"strconv"

	"pokerroom-server/pkg/deck"
	"pokerroom-server/pkg/lobby"
)

// JSON encodes messages as JSON objects tagged by "type"
var JSON Codec = jsonCodec{}

type jsonCodec struct{}

type jsonAction struct {
	Type lobby.ActionKind `json:"type"`
	// Amount is a pointer so a Raise of zero can be told apart from a missing amount
	Amount *int `json:"amount,omitempty"`
}

type jsonEnvelope struct {
	Type          Type            `json:"type"`
	Player        *lobby.Player   `json:"player,omitempty"`
	Action        *jsonAction     `json:"action,omitempty"`
	ActorClientID uint64          `json:"actorClientId,string,omitempty"`
	ClientID      uint64          `json:"clientId,string,omitempty"`
	Cards         deck.Hand       `json:"cards,omitempty"`
	Snapshot      *lobby.Snapshot `json:"snapshot,omitempty"`
	// Winners are strings like every other client ID on the wire
	Winners []string `json:"winners,omitempty"`
}

func (jsonCodec) Name() string {
	return "json"
}

func (jsonCodec) Binary() bool {
	return false
}

func (c jsonCodec) Encode(m ServerMessage) ([]byte, error) {
	env := jsonEnvelope{Type: m.Type}
	switch m.Type {
	case TypePlayer:
		env.Player = m.Player
	case TypeAction:
		env.Action = &jsonAction{Type: m.Action.Kind}
		if m.Action.Kind == lobby.Raise {
			amount := m.Action.Amount
			env.Action.Amount = &amount
		}
		env.ActorClientID = m.ActorClientID
	case TypeHand:
		env.ClientID = m.ClientID
		env.Cards = m.Cards
	case TypePlayerLeft:
		env.ClientID = m.ClientID
	case TypeSnapshot:
		env.Snapshot = m.Snapshot
	case TypeAwardPot:
		env.Winners = make([]string, len(m.Winners))
		for i, id := range m.Winners {
			env.Winners[i] = strconv.FormatUint(id, 10)
		}
	}

	return json.Marshal(env)
}

func (c jsonCodec) Decode(data []byte) (ServerMessage, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return ServerMessage{}, &ProtocolError{Codec: c.Name(), Reason: "malformed message", Err: err}
	}

	m := ServerMessage{Type: env.Type}
	hasAmount := false
	switch env.Type {
	case TypePlayer:
		m.Player = env.Player
	case TypeAction:
		if env.Action == nil {
			return ServerMessage{}, protocolError(c.Name(), "action message without an action")
		}

		m.Action = lobby.Action{Kind: env.Action.Type}
		if env.Action.Amount != nil {
			hasAmount = true
			m.Action.Amount = *env.Action.Amount
		}
		m.ActorClientID = env.ActorClientID
	case TypeHand:
		m.ClientID = env.ClientID
		m.Cards = env.Cards
	case TypePlayerLeft:
		m.ClientID = env.ClientID
	case TypeSnapshot:
		m.Snapshot = env.Snapshot
	case TypeAwardPot:
		for _, w := range env.Winners {
			id, err := strconv.ParseUint(w, 10, 64)
			if err != nil {
				return ServerMessage{}, &ProtocolError{Codec: c.Name(), Reason: "bad winner", Err: err}
			}

			m.Winners = append(m.Winners, id)
		}
	}

	if err := validate(c.Name(), m, hasAmount); err != nil {
		return ServerMessage{}, err
	}

	return m, nil
}
