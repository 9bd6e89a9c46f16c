package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvent_RoundTrip(t *testing.T) {
	e := Event{
		OrderId:  42,
		Price:    -100,
		Qty:      7,
		Side:     1,
		Type:     EventMatch,
		ClientId: 9,
	}

	encoded := e.EncodeBinary()
	assert.Len(t, encoded, EventSize)

	decoded, err := DecodeBinary(encoded)
	assert.NoError(t, err)
	assert.Equal(t, e, decoded)
}

func TestDecodeBinary_TooShort(t *testing.T) {
	_, err := DecodeBinary(make([]byte, EventSize-1))
	assert.Error(t, err)
}

func TestRequestType_String(t *testing.T) {
	assert.Equal(t, "NEW", ReqNew.String())
	assert.Equal(t, "CANCEL", ReqCancel.String())
	assert.Equal(t, "INVALID", ReqInvalid.String())
}

func TestResponseType_String(t *testing.T) {
	assert.Equal(t, "FILLED", RespFilled.String())
	assert.Equal(t, "CANCEL_REJECTED", RespCancelRejected.String())
	assert.Equal(t, "INVALID", RespInvalid.String())
}

func TestDefaultJSONSerializer_RoundTrip(t *testing.T) {
	s := DefaultJSONSerializer{}
	resp := Response{Type: RespFilled, ClientId: 1, MarketOrderId: 42, ExecQty: 5}

	data, err := s.Marshal(resp)
	assert.NoError(t, err)

	var decoded Response
	assert.NoError(t, s.Unmarshal(data, &decoded))
	assert.Equal(t, resp, decoded)
}
