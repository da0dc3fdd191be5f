package visca

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a submitted Command.
type Status int

const (
	StatusNew Status = iota
	StatusAcked
	StatusCompleted
	StatusErrored
)

func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusAcked:
		return "acked"
	case StatusCompleted:
		return "completed"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// ReplyParser decodes the payload of a COMPLETE reply into a typed value.
// Commands with no meaningful completion data (most CAMERA/PAN_TILT
// commands) leave this nil.
type ReplyParser func(payload []byte) (any, error)

// Command is a single VISCA message: either one the gateway is about to
// send, or one it has just parsed off the wire. Builders in
// builders_command.go / builders_inquiry.go construct well-formed outbound
// Commands; Parse constructs inbound ones.
type Command struct {
	// ID correlates a submitted Command with its eventual terminal
	// callback across the async boundary (ambient addition, spec.md
	// does not name this field; see SPEC_FULL.md §5).
	ID uuid.UUID

	Source     int // 0..7, controller is 0
	Recipient  int // 0..7, or Broadcast (-1)
	Broadcast  bool
	MsgType    MsgType
	Socket     int // 0 for new commands; 1/2 assigned by camera ACK
	DataType   DataType
	HasDataType bool
	Payload    []byte

	// ReplyPayload is the raw payload bytes of the terminal reply that
	// resolved this command, set just before OnComplete/OnError fire.
	// Typed consumers use the parsed value OnComplete hands them instead;
	// this exists for passthrough, which must re-serialize the reply
	// verbatim rather than re-derive it from the parsed form.
	ReplyPayload []byte

	ReplyParser ReplyParser
	OnAck       func()
	OnComplete  func(data any)
	OnError     func(code ErrorCode)

	Status     Status
	AdmittedAt time.Time
}

// NewCommand builds the Command shell every capability builder starts
// from. recipient is Broadcast (-1) for broadcast messages.
func NewCommand(msgType MsgType, recipient int, dataType DataType, hasDataType bool, payload []byte) *Command {
	return &Command{
		ID:          uuid.New(),
		Source:      ControllerAddress,
		Recipient:   recipient,
		Broadcast:   recipient == Broadcast,
		MsgType:     msgType,
		Socket:      0,
		DataType:    dataType,
		HasDataType: hasDataType,
		Payload:     payload,
		Status:      StatusNew,
	}
}

// header computes the header byte: bit7=1, bits6-4=source, bit3=broadcast,
// bits2-0=recipient.
func (c *Command) header() (byte, error) {
	if c.Broadcast {
		if c.Source != ControllerAddress {
			return 0, fmt.Errorf("visca: broadcast command must originate from controller (source=0), got %d", c.Source)
		}
		return BroadcastHeader, nil
	}
	if c.Recipient < 0 || c.Recipient > MaxChainAddress {
		return 0, fmt.Errorf("visca: recipient %d out of range [0,7]", c.Recipient)
	}
	if c.Source < 0 || c.Source > MaxChainAddress {
		return 0, fmt.Errorf("visca: source %d out of range [0,7]", c.Source)
	}
	h := headerBase | byte(c.Source)<<4 | byte(c.Recipient)
	return h, nil
}

// Serialize encodes the Command into its on-wire frame. Per spec invariant,
// the result always ends in Terminator and no interior byte equals it.
func (c *Command) Serialize() ([]byte, error) {
	h, err := c.header()
	if err != nil {
		return nil, err
	}

	qq := byte(c.MsgType) | byte(c.Socket)

	frame := make([]byte, 0, 3+len(c.Payload)+1)
	frame = append(frame, h, qq)
	if c.HasDataType {
		frame = append(frame, byte(c.DataType))
	}
	frame = append(frame, c.Payload...)
	frame = append(frame, Terminator)

	for _, b := range frame[:len(frame)-1] {
		if b == Terminator {
			return nil, fmt.Errorf("visca: payload byte collides with terminator 0xFF")
		}
	}
	return frame, nil
}

// ParseCommand decodes a raw frame into a Command. It does not populate
// callbacks or ReplyParser — those belong only to the outbound Command a
// reply is being correlated against.
func ParseCommand(frame []byte) (*Command, error) {
	if len(frame) < 3 {
		return nil, fmt.Errorf("visca: frame too short (%d bytes)", len(frame))
	}
	if frame[len(frame)-1] != Terminator {
		return nil, fmt.Errorf("visca: frame missing terminator")
	}
	h := frame[0]
	if h&0x80 == 0 {
		return nil, fmt.Errorf("visca: invalid header byte %#x (bit7 must be set)", h)
	}
	bcast := h&headerBroadcast != 0
	src := int(h >> 4 & 0x07)
	recv := int(h & 0x07)

	qq := frame[1]
	var msgType MsgType
	var socket int
	if mt, ok := exactQQ[qq]; ok {
		msgType = mt
		socket = 0
	} else {
		msgType = MsgType(qq & 0xF0)
		socket = int(qq & 0x0F)
	}

	body := frame[2 : len(frame)-1]

	c := &Command{
		Source:    src,
		Recipient: recv,
		Broadcast: bcast,
		MsgType:   msgType,
		Socket:    socket,
		Status:    StatusNew,
	}
	if bcast {
		c.Recipient = Broadcast
	}

	// The RR datatype byte only exists on outbound-shaped commands and
	// inquiries; ACK/COMPLETE/ERROR/ADDRESS_SET/NETCHANGE bodies are raw
	// reply/control bytes with no RR byte, and must be handed to the reply
	// parsers untouched.
	if (msgType == MsgCommand || msgType == MsgInquiry) && len(body) >= 2 {
		c.DataType = DataType(body[0])
		c.HasDataType = true
		c.Payload = append([]byte(nil), body[1:]...)
	} else {
		c.Payload = append([]byte(nil), body...)
	}
	return c, nil
}
