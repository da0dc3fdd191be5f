package transport

import (
	"io"
	"log/slog"
	"net"
	"sync"
)

// UDPTransport wraps one *net.UDPConn dialed to a single IP camera: one
// socket per peripheral, no keepalive. Unlike the serial line, UDP
// preserves datagram boundaries, so each Read is already exactly one frame
// and no frameSplitter is needed.
type UDPTransport struct {
	conn   *net.UDPConn
	frames chan []byte
	closed chan error

	closeOnce sync.Once
	logger    *slog.Logger
}

// DialUDP connects to an IP camera at addr (host:port) and starts the
// background reader.
func DialUDP(addr string, logger *slog.Logger) (*UDPTransport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, err
	}
	t := &UDPTransport{
		conn:   conn,
		frames: make(chan []byte, 64),
		closed: make(chan error, 1),
		logger: logger.With(slog.String("transport", "udp"), slog.String("addr", addr)),
	}
	go t.readLoop()
	return t, nil
}

func (t *UDPTransport) readLoop() {
	buf := make([]byte, 1500)
	for {
		n, err := t.conn.Read(buf)
		if n > 0 {
			frame := make([]byte, n)
			copy(frame, buf[:n])
			t.frames <- frame
		}
		if err != nil {
			t.finish(err)
			return
		}
	}
}

func (t *UDPTransport) finish(cause error) {
	if cause == io.EOF {
		cause = nil
	}
	t.closeOnce.Do(func() {
		t.closed <- cause
		close(t.closed)
		close(t.frames)
	})
}

func (t *UDPTransport) Write(frame []byte) error {
	_, err := t.conn.Write(frame)
	if err != nil {
		t.logger.Error("udp write failed", slog.Any("error", err))
	}
	return err
}

func (t *UDPTransport) Frames() <-chan []byte { return t.frames }
func (t *UDPTransport) Closed() <-chan error  { return t.closed }

func (t *UDPTransport) Close() error {
	err := t.conn.Close()
	t.finish(err)
	return err
}
