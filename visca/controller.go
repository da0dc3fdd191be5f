package visca

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/viscactl/gateway/eventhub"
)

// Writer is the subset of transport.Transport the Controller needs; kept
// as a local interface so this package does not import transport directly
// and stays usable against any frame-shaped link.
type Writer interface {
	Write(frame []byte) error
	Frames() <-chan []byte
	Closed() <-chan error
	Close() error
}

// cameraLink is how the Controller reaches a camera's underlying link.
// The serial bus is shared by every chain camera (tag 0); each configured
// IP camera owns a dedicated transport, tagged by its own negative
// CameraID so inbound frames can be attributed to it directly instead of
// trusting the wire source byte: a VISCA-over-IP camera is always address 1
// on its own point-to-point socket, so the source byte alone can't tell two
// IP cameras apart.
type cameraLink struct {
	transport Writer
}

type inboundFrame struct {
	tag   int
	frame []byte
}

type transportClosed struct {
	tag int
	err error
}

type submitRequest struct {
	cameraID  int // ignored when broadcast is set
	broadcast bool
	cmd       *Command
	done      chan error
}

// Controller owns the transport bundle, the camera table, address-set
// bring-up, and inbound-frame routing. CameraID is the
// Controller's own addressing scheme: a chain camera's ID equals its
// daisy-chain address (1..7); a configured IP camera's ID is negative
// (-(configIndex+1)) so it never collides with a chain address, since a
// VISCA-over-IP camera is always address 1 on its own point-to-point link.
type Controller struct {
	cameras map[int]*Camera
	links   map[int]cameraLink

	serial    Writer
	chainSize int

	hub    *eventhub.Hub
	logger *slog.Logger

	submitCh chan submitRequest
	stopCh   chan struct{}
	stopped  chan struct{}
}

// NewController constructs a Controller with no cameras yet; call
// AddSerialChain and/or AddIPCamera to attach transports, then BringUp and
// Start.
func NewController(hub *eventhub.Hub, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if hub == nil {
		hub = eventhub.New(logger)
	}
	return &Controller{
		cameras:  make(map[int]*Camera),
		links:    make(map[int]cameraLink),
		hub:      hub,
		logger:   logger.With(slog.String("component", "controller")),
		submitCh: make(chan submitRequest),
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// AddSerialChain attaches the shared serial bus the daisy chain rides on.
func (c *Controller) AddSerialChain(t Writer) {
	c.serial = t
	c.links[0] = cameraLink{transport: t}
}

// AddIPCamera attaches a dedicated UDP (or other point-to-point) link to
// one directly-addressable IP camera and creates its Camera record
// immediately — IP cameras don't participate in bring-up, they're known
// from configuration.
func (c *Controller) AddIPCamera(cameraID int, t Writer) *Camera {
	if cameraID >= 0 {
		panic("visca: IP camera ID must be negative")
	}
	c.links[cameraID] = cameraLink{transport: t}
	cam := NewCamera(1, c.writerFor(cameraID), c.logger)
	c.cameras[cameraID] = cam
	return cam
}

func (c *Controller) writerFor(cameraID int) func([]byte) error {
	return func(frame []byte) error {
		link, ok := c.links[cameraID]
		if !ok {
			return fmt.Errorf("visca: no link for camera %d", cameraID)
		}
		return link.transport.Write(frame)
	}
}

func (c *Controller) writerForChain() func([]byte) error {
	return func(frame []byte) error {
		if c.serial == nil {
			return fmt.Errorf("visca: no serial chain attached")
		}
		return c.serial.Write(frame)
	}
}

// BringUp runs the §4.6 bring-up sequence on the serial chain: broadcast
// ADDRESS_SET, wait for the chain's enumeration reply, (re)build the
// camera table, then broadcast IF_CLEAR. It does not queue the inquire-all
// suite; QueueInquireAll does that once Start is running. Must be called
// before Start, while nothing else is reading the serial transport's Frames
// channel.
func (c *Controller) BringUp(ctx context.Context) error {
	if c.serial == nil {
		return fmt.Errorf("visca: bring-up requires a serial chain")
	}

	frame, err := CmdAddressSet().Serialize()
	if err != nil {
		return err
	}
	if err := c.serial.Write(frame); err != nil {
		return fmt.Errorf("visca: bring-up: %w", err)
	}

	var reply *Command
	for reply == nil {
		select {
		case raw, ok := <-c.serial.Frames():
			if !ok {
				return fmt.Errorf("visca: serial transport closed during bring-up")
			}
			parsed, err := ParseCommand(raw)
			if err != nil {
				c.logger.Warn("bring-up: malformed frame discarded", slog.Any("error", err))
				continue
			}
			if parsed.MsgType != MsgAddressSet {
				c.logger.Warn("bring-up: unexpected frame while awaiting address-set reply")
				continue
			}
			reply = parsed
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return c.onAddressSetReply(reply.Payload)
}

// onAddressSetReply rebuilds the camera table from an ADDRESS_SET reply's
// camera count, then broadcasts IF_CLEAR. Shared by BringUp's direct read
// (before Start, nothing else is draining the serial transport) and by
// route's normal inbound dispatch (after Start, for NETCHANGE-triggered
// re-enumeration — see route's MsgNetChange case for why this is not
// re-entered through a second blocking read on the same channel).
func (c *Controller) onAddressSetReply(payload []byte) error {
	if len(payload) < 1 {
		return fmt.Errorf("visca: address-set reply missing camera count")
	}
	n := int(payload[0]) - 1
	if n < 0 || n > MaxChainAddress {
		return fmt.Errorf("visca: address-set reported implausible chain size %d", n)
	}
	c.rebuildChain(n)

	ifClear, err := CmdInterfaceClear(Broadcast).Serialize()
	if err != nil {
		return err
	}
	if err := c.serial.Write(ifClear); err != nil {
		return fmt.Errorf("visca: bring-up: broadcasting IF_CLEAR: %w", err)
	}

	c.hub.Publish(eventhub.Event{Kind: eventhub.KindBringUpComplete, Detail: fmt.Sprintf("%d cameras", n)})
	return nil
}

// rebuildChain resets the camera table's chain portion (IDs 1..7) and
// creates n fresh Camera records bound to the serial link. Any camera
// being replaced is reset first so its pending commands resolve with
// ErrCancelled instead of vanishing silently (a re-enumeration can land
// mid-flight on a NETCHANGE-triggered re-bring-up).
func (c *Controller) rebuildChain(n int) {
	for addr := 1; addr <= MaxChainAddress; addr++ {
		if cam, ok := c.cameras[addr]; ok {
			cam.Reset(ErrCancelled)
			delete(c.cameras, addr)
		}
	}
	c.chainSize = n
	for addr := 1; addr <= n; addr++ {
		c.cameras[addr] = NewCamera(addr, c.writerForChain(), c.logger)
		c.hub.Publish(eventhub.Event{Kind: eventhub.KindCameraAdded, Address: addr})
	}
}

// QueueInquireAll enqueues the inquire-all suite for every chain camera —
// call once Start has the event loop running, so the resulting ACK/COMPLETE
// traffic is processed normally.
func (c *Controller) QueueInquireAll() {
	for addr := 1; addr <= c.chainSize; addr++ {
		cam, ok := c.cameras[addr]
		if !ok {
			continue
		}
		for _, inq := range inquireAllCommands(cam) {
			_ = c.SendToCamera(addr, inq)
		}
	}
}

// Start launches the single goroutine that owns every Camera and Command
// in this Controller: no lock guards any entity because only this
// goroutine ever touches them.
func (c *Controller) Start() {
	fanIn := make(chan inboundFrame, 256)
	closedFanIn := make(chan transportClosed, len(c.links))
	for tag, link := range c.links {
		go forwardFrames(tag, link.transport, fanIn)
		go forwardClosed(tag, link.transport, closedFanIn)
	}
	go c.loop(fanIn, closedFanIn)
}

func forwardFrames(tag int, t Writer, out chan<- inboundFrame) {
	for f := range t.Frames() {
		out <- inboundFrame{tag: tag, frame: f}
	}
}

func forwardClosed(tag int, t Writer, out chan<- transportClosed) {
	err := <-t.Closed()
	out <- transportClosed{tag: tag, err: err}
}

func (c *Controller) loop(fanIn <-chan inboundFrame, closedFanIn <-chan transportClosed) {
	defer close(c.stopped)
	ticker := time.NewTicker(pumpInterval)
	defer ticker.Stop()

	for {
		select {
		case req := <-c.submitCh:
			req.done <- c.dispatchSubmit(req)

		case in := <-fanIn:
			c.route(in.tag, in.frame)

		case tc := <-closedFanIn:
			c.handleTransportClosed(tc)

		case now := <-ticker.C:
			for _, cam := range c.cameras {
				cam.GCStale(now)
				cam.Pump(now)
			}

		case <-c.stopCh:
			c.flushAll(ErrCancelled)
			return
		}
	}
}

func (c *Controller) dispatchSubmit(req submitRequest) error {
	now := time.Now()
	if req.broadcast {
		var firstErr error
		for id, cam := range c.cameras {
			clone := *req.cmd
			clone.OnAck, clone.OnComplete, clone.OnError = nil, nil, nil
			if err := cam.Submit(&clone, now); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("visca: broadcast to camera %d: %w", id, err)
			}
		}
		return firstErr
	}
	cam, ok := c.cameras[req.cameraID]
	if !ok {
		return fmt.Errorf("visca: no camera at address %d", req.cameraID)
	}
	return cam.Submit(req.cmd, now)
}

// route dispatches one parsed inbound frame to the camera or bring-up
// handler it belongs to.
func (c *Controller) route(tag int, frame []byte) {
	cmd, err := ParseCommand(frame)
	if err != nil {
		c.logger.Warn("malformed frame discarded", slog.Any("error", err))
		return
	}

	cameraID := tag
	if tag == 0 {
		cameraID = cmd.Source
	}

	switch cmd.MsgType {
	case MsgAddressSet:
		if err := c.onAddressSetReply(cmd.Payload); err != nil {
			c.logger.Error("address-set reply rejected", slog.Any("error", err))
		}
		return
	case MsgNetChange:
		// Re-broadcast ADDRESS_SET and return: the reply arrives through
		// this same fan-in/route path and is handled by the MsgAddressSet
		// case above. It must not block here re-reading the serial
		// transport directly (as BringUp does before Start) — that
		// channel is already owned by this goroutine's fan-in reader.
		c.hub.Publish(eventhub.Event{Kind: eventhub.KindNetChange})
		if c.serial == nil {
			c.logger.Warn("net-change received with no serial chain attached")
			return
		}
		frame, err := CmdAddressSet().Serialize()
		if err != nil {
			c.logger.Error("re-bring-up: building address-set", slog.Any("error", err))
			return
		}
		if err := c.serial.Write(frame); err != nil {
			c.logger.Error("re-bring-up: broadcasting address-set", slog.Any("error", err))
		}
		return
	case MsgCommand:
		// A bare COMMAND arriving inbound is the camera's echo reply to
		// IF_CLEAR: treat it as confirmation every camera's state has been
		// cleared.
		for _, cam := range c.cameras {
			cam.Reset(ErrCancelled)
		}
		return
	}

	cam := c.cameraFor(cameraID, tag)
	if cam == nil {
		c.logger.Warn("frame from unrouteable camera, discarded", slog.Int("camera", cameraID))
		return
	}

	switch cmd.MsgType {
	case MsgACK:
		cam.OnAck(cmd)
	case MsgComplete:
		cam.OnComplete(cmd)
	case MsgError:
		if _, err := cam.OnError(cmd); err != nil {
			c.logger.Warn("malformed error reply discarded", slog.Any("error", err))
		}
	default:
		c.logger.Warn("frame with unexpected message type discarded", slog.Int("msg_type", int(cmd.MsgType)))
	}
}

// cameraFor resolves cameraID to a Camera, auto-creating a chain record
// for an unrecognized source address — a camera can be hot-plugged into
// the chain between bring-ups and starts replying before the controller
// has heard about it.
func (c *Controller) cameraFor(cameraID, tag int) *Camera {
	if cam, ok := c.cameras[cameraID]; ok {
		return cam
	}
	if tag != 0 {
		return nil
	}
	if cameraID < 1 || cameraID > MaxChainAddress {
		return nil
	}
	cam := NewCamera(cameraID, c.writerForChain(), c.logger)
	c.cameras[cameraID] = cam
	if cameraID > c.chainSize {
		c.chainSize = cameraID
	}
	c.hub.Publish(eventhub.Event{Kind: eventhub.KindCameraAdded, Address: cameraID})
	return cam
}

func (c *Controller) handleTransportClosed(tc transportClosed) {
	wrapped := NewError(ErrTransport, tc.err)
	c.logger.Warn("transport closed", slog.Any("error", wrapped), slog.Int("tag", tc.tag))
	c.hub.Publish(eventhub.Event{Kind: eventhub.KindTransportClosed, Detail: wrapped.Error()})
	if tc.tag == 0 {
		for addr := 1; addr <= MaxChainAddress; addr++ {
			if cam, ok := c.cameras[addr]; ok {
				cam.Reset(ErrTransport)
			}
		}
		c.serial = nil
		return
	}
	if cam, ok := c.cameras[tc.tag]; ok {
		cam.Reset(ErrTransport)
	}
}

func (c *Controller) flushAll(cause ErrorCode) {
	for _, cam := range c.cameras {
		cam.Reset(cause)
	}
}

// SendToCamera submits cmd to the camera at address/id, blocking until the
// Controller's loop has admitted (not completed) it.
func (c *Controller) SendToCamera(cameraID int, cmd *Command) error {
	req := submitRequest{cameraID: cameraID, cmd: cmd, done: make(chan error, 1)}
	select {
	case c.submitCh <- req:
	case <-c.stopped:
		return fmt.Errorf("visca: controller stopped")
	}
	return <-req.done
}

// SendBroadcast submits cmd to every known camera. Per-camera callbacks
// are stripped on the broadcast copy (a broadcast has no single terminal
// resolution to report back to the caller); use SendToCamera per address
// if per-camera completion matters.
func (c *Controller) SendBroadcast(cmd *Command) error {
	req := submitRequest{broadcast: true, cmd: cmd, done: make(chan error, 1)}
	select {
	case c.submitCh <- req:
	case <-c.stopped:
		return fmt.Errorf("visca: controller stopped")
	}
	return <-req.done
}

// Hub returns the event hub lifecycle events are published to; the same
// feed is broadcast over its websocket endpoint for operator UIs.
func (c *Controller) Hub() *eventhub.Hub { return c.hub }

// Stop flushes every pending command with ErrCancelled and closes every
// attached transport, so no callback is left dangling and no file
// descriptor leaks past shutdown.
func (c *Controller) Stop() {
	close(c.stopCh)
	<-c.stopped
	for _, link := range c.links {
		_ = link.transport.Close()
	}
}
