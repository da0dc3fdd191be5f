package visca

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCamera() (*Camera, *[][]byte) {
	var written [][]byte
	cam := NewCamera(1, func(frame []byte) error {
		written = append(written, frame)
		return nil
	}, nil)
	return cam, &written
}

func TestCameraSubmitAckCompleteFlow(t *testing.T) {
	cam, _ := newTestCamera()
	now := time.Now()

	var acked, completed bool
	var completedData any
	cmd := CmdZoomDirect(1, 0x1234, false)
	cmd.OnAck = func() { acked = true }
	cmd.OnComplete = func(data any) { completed = true; completedData = data }

	require.NoError(t, cam.Submit(cmd, now))
	assert.Equal(t, 1, len(cam.sentAwaitingAck))

	ack, err := ParseCommand([]byte{0x90, 0x41, 0xFF})
	require.NoError(t, err)
	cam.OnAck(ack)
	assert.True(t, acked)
	assert.Equal(t, cmd, cam.slots[1])

	complete, err := ParseCommand([]byte{0x90, 0x51, 0xFF})
	require.NoError(t, err)
	cam.OnComplete(complete)
	assert.True(t, completed)
	assert.Nil(t, completedData) // no reply parser on a plain command
	assert.Nil(t, cam.slots[1])
}

func TestCameraFIFOAckOrdering(t *testing.T) {
	// acks arrive in the order commands were submitted, so OnAck firings
	// must follow submission order too.
	cam, _ := newTestCamera()
	now := time.Now()

	var order []int
	for i := 1; i <= 2; i++ {
		i := i
		cmd := CmdPower(1, true)
		cmd.OnAck = func() { order = append(order, i) }
		require.NoError(t, cam.Submit(cmd, now))
	}

	ack1, _ := ParseCommand([]byte{0x90, 0x41, 0xFF})
	cam.OnAck(ack1)
	ack2, _ := ParseCommand([]byte{0x90, 0x42, 0xFF})
	cam.OnAck(ack2)

	assert.Equal(t, []int{1, 2}, order)
}

func TestCameraAdmitsMultipleBeforeFirstAck(t *testing.T) {
	// commandReady only inspects the two slots, not sentAwaitingAck, so
	// several commands may be outstanding on the wire before any ACK binds
	// one to a slot.
	cam, written := newTestCamera()
	now := time.Now()

	for i := 0; i < 3; i++ {
		require.NoError(t, cam.Submit(CmdPower(1, true), now))
	}
	assert.Equal(t, 3, len(*written))
	assert.Len(t, cam.sentAwaitingAck, 3)
}

func TestCameraErrorResolvesSlot(t *testing.T) {
	cam, _ := newTestCamera()
	now := time.Now()

	var gotCode ErrorCode
	cmd := CmdPower(1, true)
	cmd.OnError = func(code ErrorCode) { gotCode = code }
	require.NoError(t, cam.Submit(cmd, now))

	ack, _ := ParseCommand([]byte{0x90, 0x41, 0xFF})
	cam.OnAck(ack)

	errReply, _ := ParseCommand([]byte{0x90, 0x61, 0x41, 0xFF})
	_, err := cam.OnError(errReply)
	require.NoError(t, err)
	assert.Equal(t, ErrNotExecutable, gotCode)
	assert.Nil(t, cam.slots[1])
}

func TestCameraBufferFullOnSocketZeroResolvesAwaitingAck(t *testing.T) {
	// a camera can reject a command with BUFFER_FULL before it ever binds
	// to a slot; that error arrives on socket 0 and must resolve the head
	// of sentAwaitingAck instead.
	cam, _ := newTestCamera()
	now := time.Now()

	var gotCode ErrorCode
	cmd := CmdPower(1, true)
	cmd.OnError = func(code ErrorCode) { gotCode = code }
	require.NoError(t, cam.Submit(cmd, now))
	require.Equal(t, 1, len(cam.sentAwaitingAck))

	errReply, _ := ParseCommand([]byte{0x90, 0x60, 0x03, 0xFF})
	_, err := cam.OnError(errReply)
	require.NoError(t, err)
	assert.Equal(t, ErrBufferFull, gotCode)
	assert.Empty(t, cam.sentAwaitingAck)
}

func TestCameraGCStaleFiresTimeout(t *testing.T) {
	cam, _ := newTestCamera()
	admitted := time.Now()

	var gotCode ErrorCode
	cmd := CmdPower(1, true)
	cmd.OnError = func(code ErrorCode) { gotCode = code }
	require.NoError(t, cam.Submit(cmd, admitted))

	cam.GCStale(admitted.Add(staleAfter + time.Millisecond))
	assert.Equal(t, ErrTimeout, gotCode)
	assert.Empty(t, cam.sentAwaitingAck)
}

func TestCameraResetFiresEveryPending(t *testing.T) {
	cam, _ := newTestCamera()
	now := time.Now()

	var codes []ErrorCode
	for i := 0; i < 3; i++ {
		cmd := CmdPower(1, true)
		cmd.OnError = func(code ErrorCode) { codes = append(codes, code) }
		require.NoError(t, cam.Submit(cmd, now))
	}

	cam.Reset(ErrCancelled)
	assert.Len(t, codes, 3)
	for _, c := range codes {
		assert.Equal(t, ErrCancelled, c)
	}
	assert.Zero(t, cam.pendingSlotCount())
}

func TestCameraPumpDrainsQueueOnSlotFree(t *testing.T) {
	// commandReady requires BOTH slots empty, so a third submit made while
	// the two acked commands hold slots 1 and 2 queues; it only reaches the
	// wire once both slots have cleared via COMPLETE and Pump runs.
	cam, written := newTestCamera()
	now := time.Now()

	first := CmdPower(1, true)
	require.NoError(t, cam.Submit(first, now))
	second := CmdPower(1, false)
	require.NoError(t, cam.Submit(second, now))
	require.Len(t, *written, 2)

	ack1, _ := ParseCommand([]byte{0x90, 0x41, 0xFF})
	cam.OnAck(ack1)
	ack2, _ := ParseCommand([]byte{0x90, 0x42, 0xFF})
	cam.OnAck(ack2)

	third := CmdPower(1, true)
	require.NoError(t, cam.Submit(third, now))
	assert.Len(t, cam.cmdQueue, 1)

	complete1, _ := ParseCommand([]byte{0x90, 0x51, 0xFF})
	cam.OnComplete(complete1)
	complete2, _ := ParseCommand([]byte{0x90, 0x52, 0xFF})
	cam.OnComplete(complete2)

	stillPending := cam.Pump(now)
	assert.False(t, stillPending)
	assert.Empty(t, cam.cmdQueue)
	assert.Len(t, *written, 3)
}
