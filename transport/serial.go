package transport

import (
	"io"
	"log/slog"
	"sync"

	"github.com/tarm/serial"
)

// Default and production baud rates for the daisy-chain serial bus.
const (
	DefaultBaud    = 9600
	ProductionBaud = 38400
)

// SerialTransport drives the 8-N-1 serial daisy bus the chain's cameras
// share. Reconnect is not automatic; open/close/error conditions are
// surfaced as events instead.
type SerialTransport struct {
	port   io.ReadWriteCloser
	frames chan []byte
	closed chan error

	closeOnce sync.Once
	logger    *slog.Logger
}

// OpenSerial opens dev at baud, 8-N-1, and starts the background reader
// that splits the stream into whole frames.
func OpenSerial(dev string, baud int, logger *slog.Logger) (*SerialTransport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if baud == 0 {
		baud = DefaultBaud
	}
	port, err := serial.OpenPort(&serial.Config{Name: dev, Baud: baud})
	if err != nil {
		return nil, err
	}
	t := &SerialTransport{
		port:   port,
		frames: make(chan []byte, 64),
		closed: make(chan error, 1),
		logger: logger.With(slog.String("transport", "serial"), slog.String("dev", dev)),
	}
	go t.readLoop()
	return t, nil
}

func (t *SerialTransport) readLoop() {
	splitter := &frameSplitter{}
	buf := make([]byte, 256)
	for {
		n, err := t.port.Read(buf)
		if n > 0 {
			for _, frame := range splitter.feed(buf[:n]) {
				t.frames <- frame
			}
		}
		if err != nil {
			t.finish(err)
			return
		}
	}
}

func (t *SerialTransport) finish(cause error) {
	if cause == io.EOF {
		cause = nil
	}
	t.closeOnce.Do(func() {
		t.closed <- cause
		close(t.closed)
		close(t.frames)
	})
}

func (t *SerialTransport) Write(frame []byte) error {
	_, err := t.port.Write(frame)
	if err != nil {
		t.logger.Error("serial write failed", slog.Any("error", err))
	}
	return err
}

func (t *SerialTransport) Frames() <-chan []byte { return t.frames }
func (t *SerialTransport) Closed() <-chan error  { return t.closed }

func (t *SerialTransport) Close() error {
	err := t.port.Close()
	t.finish(err)
	return err
}
