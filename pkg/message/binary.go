package message

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
	"pokerroom-server/pkg/deck"
	"pokerroom-server/pkg/lobby"
)

// Binary encodes messages in the protobuf wire format
// The envelope holds exactly one length-delimited field whose number is the message tag.
var Binary Codec = binaryCodec{}

type binaryCodec struct{}

// envelope field numbers
const (
	fieldPlayer     protowire.Number = 1
	fieldAction     protowire.Number = 2
	fieldStartGame  protowire.Number = 3
	fieldHand       protowire.Number = 4
	fieldPlayerLeft protowire.Number = 5
	fieldSnapshot   protowire.Number = 6
	fieldAwardPot   protowire.Number = 7
)

var envelopeFields = map[Type]protowire.Number{
	TypePlayer:     fieldPlayer,
	TypeAction:     fieldAction,
	TypeStartGame:  fieldStartGame,
	TypeHand:       fieldHand,
	TypePlayerLeft: fieldPlayerLeft,
	TypeSnapshot:   fieldSnapshot,
	TypeAwardPot:   fieldAwardPot,
}

var actionTags = []lobby.ActionKind{lobby.Check, lobby.Call, lobby.Raise, lobby.Fold, lobby.AllIn}

var errWireType = errors.New("unexpected wire type")

func (binaryCodec) Name() string {
	return "binary"
}

func (binaryCodec) Binary() bool {
	return true
}

func (c binaryCodec) Encode(m ServerMessage) ([]byte, error) {
	field, ok := envelopeFields[m.Type]
	if !ok {
		return nil, fmt.Errorf("cannot encode message type: %s", m.Type)
	}

	var body []byte
	switch m.Type {
	case TypePlayer:
		body = appendPlayer(nil, *m.Player)
	case TypeAction:
		body = appendVarint(nil, 1, uint64(actionTag(m.Action.Kind)))
		if m.Action.Kind == lobby.Raise {
			body = appendVarint(body, 2, protowire.EncodeZigZag(int64(m.Action.Amount)))
		}
		body = appendVarint(body, 3, m.ActorClientID)
	case TypeHand:
		body = appendVarint(nil, 1, m.ClientID)
		for _, card := range m.Cards {
			body = appendMessage(body, 2, appendCard(nil, card))
		}
	case TypePlayerLeft:
		body = appendVarint(nil, 1, m.ClientID)
	case TypeSnapshot:
		body = appendSnapshot(nil, *m.Snapshot)
	case TypeAwardPot:
		for _, id := range m.Winners {
			body = appendVarint(body, 1, id)
		}
	}

	return appendMessage(nil, field, body), nil
}

func (c binaryCodec) Decode(data []byte) (ServerMessage, error) {
	var m ServerMessage
	hasAmount := false
	found := false

	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if found {
			return 0, protocolError(c.Name(), "more than one message in envelope")
		}
		found = true

		body, n, err := consumeBytes(typ, b)
		if err != nil {
			return 0, err
		}

		switch num {
		case fieldPlayer:
			m.Type = TypePlayer
			p, err := decodePlayer(body)
			if err != nil {
				return 0, err
			}
			m.Player = &p
		case fieldAction:
			m.Type = TypeAction
			hasAmount, err = decodeAction(body, &m)
		case fieldStartGame:
			m.Type = TypeStartGame
		case fieldHand:
			m.Type = TypeHand
			err = decodeHand(body, &m)
		case fieldPlayerLeft:
			m.Type = TypePlayerLeft
			err = consumeFields(body, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
				if num == 1 {
					v, n, err := consumeVarint(typ, b)
					m.ClientID = v
					return n, err
				}

				return skipField(num, typ, b)
			})
		case fieldSnapshot:
			m.Type = TypeSnapshot
			var s lobby.Snapshot
			s, err = decodeSnapshot(body)
			m.Snapshot = &s
		case fieldAwardPot:
			m.Type = TypeAwardPot
			err = consumeFields(body, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
				if num == 1 {
					v, n, err := consumeVarint(typ, b)
					m.Winners = append(m.Winners, v)
					return n, err
				}

				return skipField(num, typ, b)
			})
		default:
			return 0, protocolError(c.Name(), "unknown message tag %d", num)
		}

		return n, err
	})

	if err != nil {
		var pe *ProtocolError
		if errors.As(err, &pe) {
			return ServerMessage{}, pe
		}

		return ServerMessage{}, &ProtocolError{Codec: c.Name(), Reason: "malformed message", Err: err}
	}

	if !found {
		return ServerMessage{}, protocolError(c.Name(), "empty envelope")
	}

	if err := validate(c.Name(), m, hasAmount); err != nil {
		return ServerMessage{}, err
	}

	return m, nil
}

func actionTag(kind lobby.ActionKind) int {
	for i, k := range actionTags {
		if k == kind {
			return i + 1
		}
	}

	return 0
}

func suitTag(suit deck.Suit) int {
	for i, s := range deck.Suits {
		if s == suit {
			return i + 1
		}
	}

	return 0
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendMessage(b []byte, num protowire.Number, body []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, body)
}

func appendPlayer(b []byte, p lobby.Player) []byte {
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, p.Name)
	b = appendVarint(b, 2, p.ClientID)
	b = appendVarint(b, 3, uint64(p.Position))
	b = appendVarint(b, 4, protowire.EncodeZigZag(int64(p.Money)))
	b = appendVarint(b, 5, protowire.EncodeBool(p.IsFolded))
	b = appendVarint(b, 6, protowire.EncodeBool(p.IsAllIn))
	b = appendVarint(b, 7, protowire.EncodeZigZag(int64(p.BetThisTurn)))
	b = appendVarint(b, 8, protowire.EncodeBool(p.Acted))
	b = appendVarint(b, 9, protowire.EncodeBool(p.Disconnected))

	return b
}

func appendCard(b []byte, card deck.Card) []byte {
	b = appendVarint(b, 1, uint64(card.Rank))
	return appendVarint(b, 2, uint64(suitTag(card.Suit)))
}

func appendSnapshot(b []byte, s lobby.Snapshot) []byte {
	for _, p := range s.Players {
		b = appendMessage(b, 1, appendPlayer(nil, p))
	}

	b = appendVarint(b, 2, uint64(s.Turn))
	b = appendVarint(b, 3, protowire.EncodeZigZag(int64(s.Pot)))
	b = appendVarint(b, 4, protowire.EncodeZigZag(int64(s.CurrentBet)))
	b = appendVarint(b, 5, uint64(s.Round))
	b = appendVarint(b, 6, protowire.EncodeBool(s.InProgress))
	b = appendVarint(b, 7, s.Owner)
	b = appendVarint(b, 8, uint64(s.MaxPlayers))
	b = appendVarint(b, 9, uint64(s.BettingRounds))

	return b
}

// consumeFields calls fn for every field in b
// fn receives the bytes after the tag and returns how many of them it consumed.
func consumeFields(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		n, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		b = b[n:]
	}

	return nil
}

func consumeVarint(typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, errWireType
	}

	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}

	return v, n, nil
}

func consumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, errWireType
	}

	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}

	return v, n, nil
}

// skipField ignores fields added by newer peers
func skipField(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, protowire.ParseError(n)
	}

	return n, nil
}

// toInt converts an unsigned wire value, mapping anything that overflows int to -1
func toInt(v uint64) int {
	if v > uint64(^uint(0)>>1) {
		return -1
	}

	return int(v)
}

func decodePlayer(b []byte) (lobby.Player, error) {
	var p lobby.Player
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			v, n, err := consumeBytes(typ, b)
			p.Name = string(v)
			return n, err
		}

		if num < 2 || num > 9 {
			return skipField(num, typ, b)
		}

		v, n, err := consumeVarint(typ, b)
		if err != nil {
			return 0, err
		}

		switch num {
		case 2:
			p.ClientID = v
		case 3:
			p.Position = toInt(v)
		case 4:
			p.Money = int(protowire.DecodeZigZag(v))
		case 5:
			p.IsFolded = protowire.DecodeBool(v)
		case 6:
			p.IsAllIn = protowire.DecodeBool(v)
		case 7:
			p.BetThisTurn = int(protowire.DecodeZigZag(v))
		case 8:
			p.Acted = protowire.DecodeBool(v)
		case 9:
			p.Disconnected = protowire.DecodeBool(v)
		}

		return n, nil
	})

	return p, err
}

func decodeAction(b []byte, m *ServerMessage) (hasAmount bool, err error) {
	err = consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num < 1 || num > 3 {
			return skipField(num, typ, b)
		}

		v, n, err := consumeVarint(typ, b)
		if err != nil {
			return 0, err
		}

		switch num {
		case 1:
			if v >= 1 && v <= uint64(len(actionTags)) {
				m.Action.Kind = actionTags[v-1]
			} else {
				m.Action.Kind = lobby.ActionKind(fmt.Sprintf("tag(%d)", v))
			}
		case 2:
			hasAmount = true
			m.Action.Amount = int(protowire.DecodeZigZag(v))
		case 3:
			m.ActorClientID = v
		}

		return n, nil
	})

	return hasAmount, err
}

func decodeCard(b []byte) (deck.Card, error) {
	var card deck.Card
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != 1 && num != 2 {
			return skipField(num, typ, b)
		}

		v, n, err := consumeVarint(typ, b)
		if err != nil {
			return 0, err
		}

		if num == 1 {
			card.Rank = deck.Rank(toInt(v))
		} else if v >= 1 && v <= uint64(len(deck.Suits)) {
			card.Suit = deck.Suits[v-1]
		}

		return n, nil
	})

	return card, err
}

func decodeHand(b []byte, m *ServerMessage) error {
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			v, n, err := consumeVarint(typ, b)
			m.ClientID = v
			return n, err
		case 2:
			body, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}

			card, err := decodeCard(body)
			if err != nil {
				return 0, err
			}

			m.Cards = append(m.Cards, card)
			return n, nil
		}

		return skipField(num, typ, b)
	})
}

func decodeSnapshot(b []byte) (lobby.Snapshot, error) {
	s := lobby.Snapshot{Players: []lobby.Player{}}
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			body, n, err := consumeBytes(typ, b)
			if err != nil {
				return 0, err
			}

			p, err := decodePlayer(body)
			if err != nil {
				return 0, err
			}

			s.Players = append(s.Players, p)
			return n, nil
		}

		if num < 2 || num > 9 {
			return skipField(num, typ, b)
		}

		v, n, err := consumeVarint(typ, b)
		if err != nil {
			return 0, err
		}

		switch num {
		case 2:
			s.Turn = toInt(v)
		case 3:
			s.Pot = int(protowire.DecodeZigZag(v))
		case 4:
			s.CurrentBet = int(protowire.DecodeZigZag(v))
		case 5:
			s.Round = toInt(v)
		case 6:
			s.InProgress = protowire.DecodeBool(v)
		case 7:
			s.Owner = v
		case 8:
			s.MaxPlayers = toInt(v)
		case 9:
			s.BettingRounds = toInt(v)
		}

		return n, nil
	})

	return s, err
}
