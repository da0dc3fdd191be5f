// Package passthrough implements the UDP passthrough server: one UDP
// endpoint per physical (serial-attached) camera, so a remote
// VISCA-over-IP client can drive a daisy-chained camera as if it were
// directly reachable.
package passthrough

import (
	"log/slog"
	"net"

	"github.com/google/uuid"

	"github.com/viscactl/gateway/visca"
)

// Server is one UDP listener forwarding frames to a single camera and
// routing that camera's replies back to whichever client's command they
// resolve. If the client is gone by the time a reply arrives, the write
// fails and the reply is silently dropped.
type Server struct {
	cameraID int
	conn     *net.UDPConn
	ctrl     *visca.Controller
	logger   *slog.Logger
}

// Listen opens a UDP listener on addr whose datagrams Serve forwards to the
// camera at cameraID. The address-to-port mapping is the caller's choice
// (cmd/viscagw listens on basePort+address-1, so camera address 1 lands on
// basePort+0).
func Listen(ctrl *visca.Controller, cameraID int, addr string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, err
	}
	return &Server{
		cameraID: cameraID,
		conn:     conn,
		ctrl:     ctrl,
		logger:   logger.With(slog.String("component", "passthrough"), slog.Int("camera", cameraID)),
	}, nil
}

// Serve reads datagrams until the listener is closed. Run it in its own
// goroutine; Close unblocks it.
func (s *Server) Serve() error {
	buf := make([]byte, 1500)
	for {
		n, from, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			return err
		}
		frame := make([]byte, n)
		copy(frame, buf[:n])
		go s.handle(frame, from)
	}
}

func (s *Server) Close() error {
	return s.conn.Close()
}

// handle submits one client datagram to the controller, wiring callbacks
// that re-serialize the camera's ACK/COMPLETE/ERROR reply back to the
// originating client.
func (s *Server) handle(frame []byte, from *net.UDPAddr) {
	parsed, err := visca.ParseCommand(frame)
	if err != nil {
		s.logger.Warn("malformed client frame discarded", slog.Any("error", err))
		return
	}

	sessionID := uuid.New()
	cmd := visca.NewCommand(parsed.MsgType, s.cameraID, parsed.DataType, parsed.HasDataType, parsed.Payload)
	cmd.Socket = parsed.Socket
	cmd.OnAck = func() {
		s.forward(cmd.Socket, visca.MsgACK, nil, from, sessionID)
	}
	cmd.OnComplete = func(any) {
		s.forward(cmd.Socket, visca.MsgComplete, cmd.ReplyPayload, from, sessionID)
	}
	cmd.OnError = func(code visca.ErrorCode) {
		s.forward(cmd.Socket, visca.MsgError, []byte{byte(code)}, from, sessionID)
	}

	if err := s.ctrl.SendToCamera(s.cameraID, cmd); err != nil {
		s.logger.Warn("submit failed", slog.String("session", sessionID.String()), slog.Any("error", err))
	}
}

func (s *Server) forward(socket int, msgType visca.MsgType, payload []byte, to *net.UDPAddr, sessionID uuid.UUID) {
	reply := &visca.Command{
		Source:    s.cameraID,
		Recipient: visca.ControllerAddress,
		MsgType:   msgType,
		Socket:    socket,
		Payload:   payload,
	}
	frame, err := reply.Serialize()
	if err != nil {
		s.logger.Warn("reply serialize failed", slog.Any("error", err))
		return
	}
	if _, err := s.conn.WriteToUDP(frame, to); err != nil {
		s.logger.Debug("client unreachable, reply dropped",
			slog.String("session", sessionID.String()), slog.Any("error", err))
	}
}
