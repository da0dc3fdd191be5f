package visca

import (
	"fmt"
	"log/slog"
	"time"
)

// staleAfter is the uniform GC ceiling for both sent-awaiting-ack entries
// and occupied slots: a camera that never acks or never completes a command
// within this window is treated as unresponsive rather than left to block
// its slot forever.
const staleAfter = 1 * time.Second

// pumpInterval is the self-wake period the Controller's event loop uses to
// retry admission once a slot frees up.
const pumpInterval = 20 * time.Millisecond

// CameraStatus is the last-known pan/tilt/zoom/digital-zoom/effect snapshot
// for a camera. Only the inquire-all suite's replies write it; replies to
// other inquiries leave it unchanged.
type CameraStatus struct {
	Pan           int32
	Tilt          int32
	Zoom          uint16
	DigitalZoomOn bool
	Effect        Effect
}

// Camera is the per-device state machine mirroring the command buffer a
// physical VISCA camera exposes: two command slots and one inquiry slot, the
// admission queues that back up behind them, and the ACK/COMPLETE/ERROR
// dispatch that resolves them.
//
// A Camera is driven entirely by its owning Controller's single goroutine;
// none of its methods are safe to call concurrently.
type Camera struct {
	Address int
	Status  CameraStatus

	write  func(frame []byte) error
	logger *slog.Logger

	slots           [3]*Command // index 0=inquiry, 1/2=command
	sentAwaitingAck []*Command
	cmdQueue        []*Command
	inqQueue        []*Command
}

// NewCamera constructs a Camera bound to address addr (1..7), writing
// frames through write. write is supplied by the Controller and resolves
// to whichever Transport serves this camera's physical link.
func NewCamera(addr int, write func(frame []byte) error, logger *slog.Logger) *Camera {
	if logger == nil {
		logger = slog.Default()
	}
	return &Camera{
		Address: addr,
		write:   write,
		logger:  logger.With(slog.Int("camera", addr)),
	}
}

func (cam *Camera) commandReady() bool {
	return cam.slots[1] == nil && cam.slots[2] == nil
}

func (cam *Camera) inquiryReady() bool {
	return cam.slots[0] == nil
}

// Submit admits cmd to this camera. Command/Inquiry messages are queued
// behind the camera's slot availability; all other message types
// (address-set, net-change, cancel, interface-clear) go straight to the
// wire untracked.
func (cam *Camera) Submit(cmd *Command, now time.Time) error {
	cmd.Source = ControllerAddress
	cmd.Recipient = cam.Address
	cmd.Broadcast = false
	cmd.AdmittedAt = now

	switch cmd.MsgType {
	case MsgInquiry:
		if cam.inquiryReady() {
			cam.slots[0] = cmd
			return cam.writeFrame(cmd)
		}
		cam.inqQueue = append(cam.inqQueue, cmd)
		return nil
	case MsgCommand:
		if cmd.HasDataType && cmd.DataType == DataInterface {
			// interface-clear gets no ACK/COMPLETE, so it is not tracked.
			return cam.writeFrame(cmd)
		}
		if cam.commandReady() {
			cam.sentAwaitingAck = append(cam.sentAwaitingAck, cmd)
			return cam.writeFrame(cmd)
		}
		cam.cmdQueue = append(cam.cmdQueue, cmd)
		return nil
	default:
		return cam.writeFrame(cmd)
	}
}

func (cam *Camera) writeFrame(cmd *Command) error {
	frame, err := cmd.Serialize()
	if err != nil {
		return fmt.Errorf("visca: camera %d: serialize: %w", cam.Address, err)
	}
	if err := cam.write(frame); err != nil {
		return fmt.Errorf("visca: camera %d: write: %w", cam.Address, err)
	}
	return nil
}

// OnAck binds the head of sent_awaiting_ack to the socket the camera
// assigned and fires its OnAck callback. FIFO guarantees the head is the
// correct correlation: cameras assign sockets in the order they receive
// commands.
func (cam *Camera) OnAck(reply *Command) {
	socket := reply.Socket
	if socket != 1 && socket != 2 {
		cam.logger.Warn("ack for unexpected socket, discarded", slog.Int("socket", socket))
		return
	}
	if len(cam.sentAwaitingAck) == 0 {
		cam.logger.Warn("ack with no command awaiting ack, discarded", slog.Int("socket", socket))
		return
	}
	cmd := cam.sentAwaitingAck[0]
	cam.sentAwaitingAck = cam.sentAwaitingAck[1:]
	cmd.Status = StatusAcked
	cmd.Socket = socket
	cam.slots[socket] = cmd
	if cmd.OnAck != nil {
		cmd.OnAck()
	}
}

// OnComplete resolves the slot named by reply.Socket, running the
// resolved command's reply parser over the payload before firing
// OnComplete.
func (cam *Camera) OnComplete(reply *Command) {
	socket := reply.Socket
	cmd := cam.slots[socket]
	if cmd == nil {
		cam.logger.Warn("completion for empty slot, discarded", slog.Int("socket", socket))
		return
	}
	cam.slots[socket] = nil
	cmd.Status = StatusCompleted
	cmd.ReplyPayload = reply.Payload

	var data any
	if cmd.ReplyParser != nil {
		parsed, err := cmd.ReplyParser(reply.Payload)
		if err != nil {
			cam.logger.Warn("reply parse failed", slog.Any("error", err))
		} else {
			data = parsed
		}
	}
	if cmd.OnComplete != nil {
		cmd.OnComplete(data)
	}
}

// OnError resolves the slot (or, for a buffer-full/syntax error reported
// on socket 0 — a camera can reject a command before it ever reaches a
// slot — the head of sent_awaiting_ack) by firing OnError and clearing it.
func (cam *Camera) OnError(reply *Command) (code ErrorCode, err error) {
	code, err = ErrorPayload(reply.Payload)
	if err != nil {
		return 0, err
	}

	socket := reply.Socket
	var cmd *Command
	if socket == 0 && (code == ErrBufferFull || code == ErrSyntax) && len(cam.sentAwaitingAck) > 0 {
		cmd = cam.sentAwaitingAck[0]
		cam.sentAwaitingAck = cam.sentAwaitingAck[1:]
	} else if socket >= 0 && socket <= 2 {
		cmd = cam.slots[socket]
		cam.slots[socket] = nil
	}

	if cmd == nil {
		cam.logger.Warn("error reply with no command to resolve, discarded",
			slog.Int("socket", socket), slog.String("code", code.String()))
		return code, nil
	}
	cmd.Status = StatusErrored
	cmd.ReplyPayload = reply.Payload
	if cmd.OnError != nil {
		cmd.OnError(code)
	}
	return code, nil
}

// GCStale drops any sent-awaiting-ack entry or occupied slot older than
// staleAfter, firing OnError(ErrTimeout) on each.
func (cam *Camera) GCStale(now time.Time) {
	kept := cam.sentAwaitingAck[:0]
	for _, cmd := range cam.sentAwaitingAck {
		if now.Sub(cmd.AdmittedAt) > staleAfter {
			cam.timeout(cmd)
			continue
		}
		kept = append(kept, cmd)
	}
	cam.sentAwaitingAck = kept

	for i, cmd := range cam.slots {
		if cmd == nil {
			continue
		}
		if now.Sub(cmd.AdmittedAt) > staleAfter {
			cam.slots[i] = nil
			cam.timeout(cmd)
		}
	}
}

func (cam *Camera) timeout(cmd *Command) {
	cmd.Status = StatusErrored
	cam.logger.Warn("command timed out, GC'd", slog.String("cmd_id", cmd.ID.String()))
	if cmd.OnError != nil {
		cmd.OnError(ErrTimeout)
	}
}

// Pump dequeues admitted work now that a slot is free. It returns true if
// queued work remains; the Controller's loop ignores the result and calls
// Pump on every pump tick.
func (cam *Camera) Pump(now time.Time) bool {
	for cam.commandReady() && len(cam.cmdQueue) > 0 {
		next := cam.cmdQueue[0]
		cam.cmdQueue = cam.cmdQueue[1:]
		if err := cam.Submit(next, now); err != nil {
			cam.logger.Warn("pump: resubmitting queued command failed", slog.Any("error", err))
		}
	}
	for cam.inquiryReady() && len(cam.inqQueue) > 0 {
		next := cam.inqQueue[0]
		cam.inqQueue = cam.inqQueue[1:]
		if err := cam.Submit(next, now); err != nil {
			cam.logger.Warn("pump: resubmitting queued inquiry failed", slog.Any("error", err))
		}
	}
	return len(cam.cmdQueue) > 0 || len(cam.inqQueue) > 0
}

// Reset flushes every pending and in-flight command with OnError(cause),
// used for IF_CLEAR and for transport/controller teardown — every pending
// callback must fire exactly once rather than leak silently when a link
// goes away.
func (cam *Camera) Reset(cause ErrorCode) {
	for _, cmd := range cam.sentAwaitingAck {
		cmd.Status = StatusErrored
		if cmd.OnError != nil {
			cmd.OnError(cause)
		}
	}
	cam.sentAwaitingAck = nil

	for i, cmd := range cam.slots {
		if cmd == nil {
			continue
		}
		cmd.Status = StatusErrored
		if cmd.OnError != nil {
			cmd.OnError(cause)
		}
		cam.slots[i] = nil
	}

	for _, cmd := range cam.cmdQueue {
		cmd.Status = StatusErrored
		if cmd.OnError != nil {
			cmd.OnError(cause)
		}
	}
	cam.cmdQueue = nil

	for _, cmd := range cam.inqQueue {
		cmd.Status = StatusErrored
		if cmd.OnError != nil {
			cmd.OnError(cause)
		}
	}
	cam.inqQueue = nil
}

// pendingSlotCount reports how many of the two command slots are occupied
// plus how many commands are still awaiting ack. It can exceed 2: while
// both slots are empty Submit keeps writing commands, so several may await
// ack at once, and GC only removes entries older than staleAfter.
func (cam *Camera) pendingSlotCount() int {
	n := len(cam.sentAwaitingAck)
	if cam.slots[1] != nil {
		n++
	}
	if cam.slots[2] != nil {
		n++
	}
	return n
}
