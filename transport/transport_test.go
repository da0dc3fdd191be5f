package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameSplitterSingleFrame(t *testing.T) {
	s := &frameSplitter{}
	frames := s.feed([]byte{0x81, 0x01, 0x04, 0x00, 0xFF})
	assert.Equal(t, [][]byte{{0x81, 0x01, 0x04, 0x00, 0xFF}}, frames)
	assert.Empty(t, s.buf)
}

func TestFrameSplitterAcrossMultipleReads(t *testing.T) {
	s := &frameSplitter{}
	assert.Empty(t, s.feed([]byte{0x81, 0x01}))
	frames := s.feed([]byte{0x04, 0x00, 0xFF})
	assert.Equal(t, [][]byte{{0x81, 0x01, 0x04, 0x00, 0xFF}}, frames)
}

func TestFrameSplitterMultipleFramesOneRead(t *testing.T) {
	s := &frameSplitter{}
	frames := s.feed([]byte{0x90, 0x41, 0xFF, 0x90, 0x51, 0xFF})
	assert.Equal(t, [][]byte{
		{0x90, 0x41, 0xFF},
		{0x90, 0x51, 0xFF},
	}, frames)
	assert.Empty(t, s.buf)
}

func TestFrameSplitterRetainsPartialTail(t *testing.T) {
	s := &frameSplitter{}
	frames := s.feed([]byte{0x90, 0x41, 0xFF, 0x90, 0x51})
	assert.Equal(t, [][]byte{{0x90, 0x41, 0xFF}}, frames)
	assert.Equal(t, []byte{0x90, 0x51}, s.buf)
}
