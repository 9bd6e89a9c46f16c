package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// EventType tags an Event record for persistence and replay. PREFILL seeds a
// book from a snapshot before live traffic starts; the other three mirror
// the three operations a book exposes.
type EventType uint8

const (
	EventAdd     EventType = 0
	EventCancel  EventType = 1
	EventMatch   EventType = 2
	EventPrefill EventType = 3
)

// EventSize is the fixed encoded length of an Event, in bytes.
const EventSize = 8 + 8 + 4 + 1 + 1 + 4 + 5

// Event is the wire-neutral record shape a journal or replay file stores
// one book operation as. It is deliberately flat and fixed-width so it can
// be memory-mapped or appended without framing.
type Event struct {
	OrderId  uint64
	Price    int64
	Qty      uint32
	Side     uint8
	Type     EventType
	ClientId uint32
}

// EncodeBinary serializes e into a fixed EventSize-byte little-endian record.
func (e Event) EncodeBinary() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, EventSize))
	_ = binary.Write(buf, binary.LittleEndian, e.OrderId)
	_ = binary.Write(buf, binary.LittleEndian, e.Price)
	_ = binary.Write(buf, binary.LittleEndian, e.Qty)
	_ = binary.Write(buf, binary.LittleEndian, e.Side)
	_ = binary.Write(buf, binary.LittleEndian, uint8(e.Type))
	_ = binary.Write(buf, binary.LittleEndian, e.ClientId)
	buf.Write(make([]byte, 5)) // _pad[5]
	return buf.Bytes()
}

// DecodeBinary reconstructs an Event from a buffer produced by EncodeBinary.
func DecodeBinary(data []byte) (Event, error) {
	if len(data) < EventSize {
		return Event{}, fmt.Errorf("protocol: event record too short: got %d want %d", len(data), EventSize)
	}
	var e Event
	var typ uint8
	buf := bytes.NewReader(data)
	_ = binary.Read(buf, binary.LittleEndian, &e.OrderId)
	_ = binary.Read(buf, binary.LittleEndian, &e.Price)
	_ = binary.Read(buf, binary.LittleEndian, &e.Qty)
	_ = binary.Read(buf, binary.LittleEndian, &e.Side)
	_ = binary.Read(buf, binary.LittleEndian, &typ)
	_ = binary.Read(buf, binary.LittleEndian, &e.ClientId)
	e.Type = EventType(typ)
	return e, nil
}
