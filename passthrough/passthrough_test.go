package passthrough

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/viscactl/gateway/visca"
)

// fakeLink is an in-memory visca.Writer standing in for a real transport.
type fakeLink struct {
	frames chan []byte
	closed chan error
}

func newFakeLink() *fakeLink {
	return &fakeLink{frames: make(chan []byte, 16), closed: make(chan error, 1)}
}

func (f *fakeLink) Write(frame []byte) error { return nil }
func (f *fakeLink) Frames() <-chan []byte    { return f.frames }
func (f *fakeLink) Closed() <-chan error     { return f.closed }
func (f *fakeLink) Close() error             { close(f.closed); return nil }

func TestPassthroughForwardsAckToClient(t *testing.T) {
	serial := newFakeLink()
	ctrl := visca.NewController(nil, nil)
	ctrl.AddSerialChain(serial)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	bringUpDone := make(chan error, 1)
	go func() { bringUpDone <- ctrl.BringUp(ctx) }()
	serial.frames <- []byte{0x88, 0x30, 0x02, 0xFF} // one-camera chain
	require.NoError(t, <-bringUpDone)

	ctrl.Start()
	defer ctrl.Stop()

	srv, err := Listen(ctrl, 1, "127.0.0.1:0", nil)
	require.NoError(t, err)
	defer srv.Close()
	go srv.Serve()

	client, err := net.Dial("udp", srv.conn.LocalAddr().String())
	require.NoError(t, err)
	defer client.Close()

	// client sends a bare power-on command frame (camera address is
	// irrelevant to the client; the server rewrites it to the camera this
	// listener serves).
	powerOn, err := visca.CmdPower(1, true).Serialize()
	require.NoError(t, err)
	_, err = client.Write(powerOn)
	require.NoError(t, err)

	// Simulate the camera acking socket 1 back on the shared serial bus.
	// The client's datagram crosses goroutines (Serve -> handle ->
	// Controller's loop) before the command is registered to receive an
	// ack, so resend a few times rather than racing a single push.
	go func() {
		ack := []byte{0x91, 0x41, 0xFF}
		for i := 0; i < 20; i++ {
			serial.frames <- ack
			time.Sleep(20 * time.Millisecond)
		}
	}()

	buf := make([]byte, 32)
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := client.Read(buf)
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, 2)

	reply, err := visca.ParseCommand(buf[:n])
	require.NoError(t, err)
	require.Equal(t, visca.MsgACK, reply.MsgType)
}
