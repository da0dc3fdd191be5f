package visca

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderEncoding(t *testing.T) {
	// header byte = 0x80 | (broadcast?0x08:0) | (source<<4) | recipient
	cmd := NewCommand(MsgCommand, 3, DataCamera, true, []byte{0x00})
	cmd.Source = 2
	h, err := cmd.header()
	require.NoError(t, err)
	assert.Equal(t, byte(0x80|2<<4|3), h)
}

func TestHeaderBroadcast(t *testing.T) {
	cmd := CmdAddressSet()
	h, err := cmd.header()
	require.NoError(t, err)
	assert.Equal(t, BroadcastHeader, h)
}

func TestZoomDirectScenario(t *testing.T) {
	// zoom-in direct, recipient=1, target=0x1234.
	cmd := CmdZoomDirect(1, 0x1234, false)
	frame, err := cmd.Serialize()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x81, 0x01, 0x04, 0x47, 0x01, 0x02, 0x03, 0x04, 0xFF}, frame)
}

func TestPanTiltDirectNegativeScenario(t *testing.T) {
	// recipient=2, speeds 10/10, x=-100, y=200.
	cmd := CmdPanTiltDirect(2, 10, 10, -100, 200, false)
	frame, err := cmd.Serialize()
	require.NoError(t, err)
	// reproduce the expected nibble words via the codec directly rather
	// than hand-transcribing them, since the nibble packing of a negative
	// value is easy to get wrong by eye.
	xEnc := si2v(-100)
	yEnc := si2v(200)
	want := []byte{0x82, 0x01, 0x06, 0x02, 0x0A, 0x0A}
	want = append(want, xEnc[:]...)
	want = append(want, yEnc[:]...)
	want = append(want, Terminator)
	assert.Equal(t, want, frame)
}

func TestSerializeRejectsTerminatorCollision(t *testing.T) {
	cmd := NewCommand(MsgCommand, 1, DataCamera, true, []byte{0xFF})
	_, err := cmd.Serialize()
	assert.Error(t, err)
}

func TestSerializeRejectsBroadcastFromNonController(t *testing.T) {
	cmd := CmdAddressSet()
	cmd.Source = 1
	_, err := cmd.Serialize()
	assert.Error(t, err)
}

func TestParseCommandRoundTrip(t *testing.T) {
	// parse(serialize(c)) must round-trip every observable field for a
	// well-formed outbound Command.
	original := CmdPower(1, true)
	original.Source = ControllerAddress
	frame, err := original.Serialize()
	require.NoError(t, err)

	parsed, err := ParseCommand(frame)
	require.NoError(t, err)
	assert.Equal(t, original.Source, parsed.Source)
	assert.Equal(t, original.Recipient, parsed.Recipient)
	assert.Equal(t, original.Broadcast, parsed.Broadcast)
	assert.Equal(t, original.MsgType, parsed.MsgType)
	assert.Equal(t, original.Socket, parsed.Socket)
	assert.Equal(t, original.DataType, parsed.DataType)
	assert.Equal(t, original.Payload, parsed.Payload)
}

func TestParseCommandDoesNotStripReplyPayload(t *testing.T) {
	// A COMPLETE reply carrying an 8-byte PT-position body must not have its
	// first byte mistaken for an RR datatype byte.
	frame := []byte{0x90, 0x50, 0x00, 0x00, 0x00, 0x0A, 0x00, 0x00, 0x00, 0x0B, 0xFF}
	parsed, err := ParseCommand(frame)
	require.NoError(t, err)
	assert.Equal(t, MsgComplete, parsed.MsgType)
	assert.False(t, parsed.HasDataType)
	assert.Len(t, parsed.Payload, 8)
}

func TestParseCommandRejectsShortFrame(t *testing.T) {
	_, err := ParseCommand([]byte{0x90, 0xFF})
	assert.Error(t, err)
}

func TestParseCommandRejectsMissingTerminator(t *testing.T) {
	_, err := ParseCommand([]byte{0x90, 0x41, 0x00})
	assert.Error(t, err)
}

func TestInquiryParseScenario(t *testing.T) {
	// inquiry reply 90 50 02 FF (power on).
	cmd := InqPower(1)
	require.NotNil(t, cmd.ReplyParser)

	reply, err := ParseCommand([]byte{0x90, 0x50, 0x02, 0xFF})
	require.NoError(t, err)
	data, err := cmd.ReplyParser(reply.Payload)
	require.NoError(t, err)
	assert.Equal(t, true, data)
}
