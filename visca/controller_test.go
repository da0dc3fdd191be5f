package visca

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLink is an in-memory Writer the controller tests drive directly,
// standing in for a real transport.Transport.
type fakeLink struct {
	frames chan []byte
	closed chan error
	sent   [][]byte
}

func newFakeLink() *fakeLink {
	return &fakeLink{
		frames: make(chan []byte, 16),
		closed: make(chan error, 1),
	}
}

func (f *fakeLink) Write(frame []byte) error {
	f.sent = append(f.sent, frame)
	return nil
}
func (f *fakeLink) Frames() <-chan []byte { return f.frames }
func (f *fakeLink) Closed() <-chan error  { return f.closed }
func (f *fakeLink) Close() error {
	close(f.closed)
	return nil
}

func (f *fakeLink) push(frame []byte) { f.frames <- frame }

func TestControllerBringUpCreatesChain(t *testing.T) {
	serial := newFakeLink()
	ctrl := NewController(nil, nil)
	ctrl.AddSerialChain(serial)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- ctrl.BringUp(ctx) }()

	// address-set bring-up reply reporting a 3-camera chain.
	serial.push([]byte{0x88, 0x30, 0x04, 0xFF})

	require.NoError(t, <-done)
	assert.Len(t, ctrl.cameras, 3)
	for addr := 1; addr <= 3; addr++ {
		assert.Contains(t, ctrl.cameras, addr)
	}
	assert.Equal(t, 3, ctrl.chainSize)

	// two writes: the address-set broadcast, then the IF_CLEAR broadcast.
	require.Len(t, serial.sent, 2)
	assert.Equal(t, byte(0x30), serial.sent[0][1])
}

func TestControllerRoutesAckByChainAddress(t *testing.T) {
	serial := newFakeLink()
	ctrl := NewController(nil, nil)
	ctrl.AddSerialChain(serial)
	ctrl.rebuildChain(1)
	ctrl.Start()
	defer ctrl.Stop()

	var acked bool
	cmd := CmdPower(1, true)
	cmd.OnAck = func() { acked = true }
	require.NoError(t, ctrl.SendToCamera(1, cmd))

	serial.push([]byte{0x91, 0x41, 0xFF}) // source=1, ack socket 1

	require.Eventually(t, func() bool { return acked }, time.Second, time.Millisecond)
}

func TestControllerAutoCreatesCameraFromUnknownChainSource(t *testing.T) {
	serial := newFakeLink()
	ctrl := NewController(nil, nil)
	ctrl.AddSerialChain(serial)
	ctrl.Start()
	defer ctrl.Stop()

	serial.push([]byte{0xD0, 0x40, 0xFF}) // unannounced camera at address 5 acks

	require.Eventually(t, func() bool {
		_, ok := ctrl.cameras[5]
		return ok
	}, time.Second, time.Millisecond)
}

func TestControllerTransportClosedFlushesChainCameras(t *testing.T) {
	serial := newFakeLink()
	ctrl := NewController(nil, nil)
	ctrl.AddSerialChain(serial)
	ctrl.rebuildChain(1)
	ctrl.Start()

	var gotCode ErrorCode
	cmd := CmdPower(1, true)
	cmd.OnError = func(code ErrorCode) { gotCode = code }
	require.NoError(t, ctrl.SendToCamera(1, cmd))

	serial.closed <- nil

	require.Eventually(t, func() bool { return gotCode == ErrTransport }, time.Second, time.Millisecond)
	ctrl.Stop()
}

func TestControllerSendBroadcastReachesEveryCamera(t *testing.T) {
	serial := newFakeLink()
	ctrl := NewController(nil, nil)
	ctrl.AddSerialChain(serial)
	ctrl.rebuildChain(2)
	ctrl.Start()
	defer ctrl.Stop()

	require.NoError(t, ctrl.SendBroadcast(CmdInterfaceClear(Broadcast)))
	require.Eventually(t, func() bool { return len(serial.sent) >= 2 }, time.Second, time.Millisecond)
}
