package message

import (
	"fmt"
)

// Codec converts ServerMessages to and from bytes
type Codec interface {
	// Name identifies the codec in configuration and query strings
	Name() string

	// Binary returns true if encoded messages must travel as binary frames
	Binary() bool

	Encode(m ServerMessage) ([]byte, error)

	// Decode returns a *ProtocolError if data is not a well-formed message
	Decode(data []byte) (ServerMessage, error)
}

var codecs = map[string]Codec{
	JSON.Name():   JSON,
	Binary.Name(): Binary,
}

// CodecFromString returns the codec with the name
// An empty name returns the JSON codec.
func CodecFromString(name string) (Codec, error) {
	if name == "" {
		return JSON, nil
	}

	codec, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("unknown codec: %s", name)
	}

	return codec, nil
}
