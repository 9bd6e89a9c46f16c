package protocol

import "encoding/json"

// Serializer defines the contract for serializing and deserializing command payloads.
// This allows different teams to choose their preferred format (JSON, Protobuf, SBE, etc.)
// while interacting with the Matching Engine.
type Serializer interface {
	// Marshal serializes a Go struct (e.g. Response) into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal deserializes bytes into a Go struct.
	// v must be a pointer to the target struct.
	Unmarshal(data []byte, v any) error
}

// DefaultJSONSerializer is the Serializer a gateway uses when no other
// format has been negotiated with downstream consumers.
type DefaultJSONSerializer struct{}

func (DefaultJSONSerializer) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (DefaultJSONSerializer) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
