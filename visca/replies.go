package visca

import "fmt"

// Reply parsers decode the data bytes of a terminal reply.
// ACK replies carry only their socket, in the QQ byte (already decoded onto
// Command.Socket by ParseCommand); ERROR replies carry their socket there
// too and their code in one EE payload byte, decoded by ErrorPayload. The
// other functions here decode the data-bearing COMPLETE replies.

// ErrorPayload decodes the single EE byte of an ERROR reply.
func ErrorPayload(payload []byte) (ErrorCode, error) {
	if len(payload) != 1 {
		return 0, fmt.Errorf("visca: error payload must be 1 byte, got %d", len(payload))
	}
	return ErrorCode(payload[0]), nil
}

// PTPosition is the decoded pan-tilt position inquiry reply (8 bytes).
type PTPosition struct {
	X int32
	Y int32
}

func parsePTPosition(payload []byte) (any, error) {
	if len(payload) != 8 {
		return nil, fmt.Errorf("visca: PT position reply must be 8 bytes, got %d", len(payload))
	}
	return PTPosition{X: v2si(payload[0:4]), Y: v2si(payload[4:8])}, nil
}

// PTMaxSpeed is the decoded pan-tilt max-speed inquiry reply (2 bytes).
type PTMaxSpeed struct {
	XSpeed byte
	YSpeed byte
}

func parsePTMaxSpeed(payload []byte) (any, error) {
	if len(payload) != 2 {
		return nil, fmt.Errorf("visca: PT max-speed reply must be 2 bytes, got %d", len(payload))
	}
	return PTMaxSpeed{XSpeed: payload[0], YSpeed: payload[1]}, nil
}

// PTStatus is the decoded pan-tilt status inquiry reply (4 bytes, split
// into 8 nibbles; each flag is one bit of a nibble, and one nibble can hold
// several flags).
type PTStatus struct {
	Initializing bool
	Ready        bool
	Fail         bool
	Moving       bool
	MoveDone     bool
	MoveFail     bool
	AtMaxLeft    bool
	AtMaxRight   bool
	AtMaxUp      bool
	AtMaxDown    bool
}

func parsePTStatus(payload []byte) (any, error) {
	if len(payload) != 4 {
		return nil, fmt.Errorf("visca: PT status reply must be 4 bytes, got %d", len(payload))
	}
	n := make([]byte, 0, 8)
	for _, b := range payload {
		n = append(n, b>>4&0xF, b&0xF)
	}
	return PTStatus{
		Initializing: n[1]&0x2 != 0,
		Ready:        n[1]&0x1 != 0,
		Fail:         n[2]&0x8 != 0,
		Moving:       n[3]&0x2 != 0,
		MoveDone:     n[4]&0x4 != 0,
		MoveFail:     n[4]&0x8 != 0,
		AtMaxUp:      n[5]&0x1 != 0,
		AtMaxDown:    n[5]&0x2 != 0,
		AtMaxLeft:    n[5]&0x4 != 0,
		AtMaxRight:   n[5]&0x8 != 0,
	}, nil
}

// LensBlock is the decoded lens-control block inquiry reply (13 bytes).
type LensBlock struct {
	ZoomPos        uint16
	FocusNearLimit uint16
	FocusPos       uint16
	AFMode         byte
	AFSensitivity  byte
	DigitalZoomOn  bool
	AFOn           bool
	LowContrast    bool
	LoadingPreset  bool
	Focusing       bool
	Zooming        bool
}

func parseLensBlock(payload []byte) (any, error) {
	if len(payload) != 13 {
		return nil, fmt.Errorf("visca: lens block reply must be 13 bytes, got %d", len(payload))
	}
	flags := payload[12]
	statusByte := payload[11]
	return LensBlock{
		ZoomPos:        v2i(payload[0:4]),
		FocusNearLimit: v2i(payload[4:6]),
		FocusPos:       v2i(payload[6:10]),
		AFMode:         payload[10] >> 3 & 0x3,
		AFSensitivity:  payload[10] >> 2 & 0x1,
		DigitalZoomOn:  payload[10]&0x2 != 0,
		AFOn:           payload[10]&0x1 != 0,
		LowContrast:    statusByte&0x1 != 0,
		LoadingPreset:  statusByte&0x2 != 0,
		Focusing:       flags&0x1 != 0,
		Zooming:        flags&0x2 != 0,
	}, nil
}

// ImageBlock is the decoded image/camera-data block inquiry reply
// (13 bytes).
type ImageBlock struct {
	GainR         byte
	GainB         byte
	WBMode        byte
	Gain          byte
	ExposureMode  byte
	ShutterPos    byte
	IrisPos       byte
	GainPos       byte
	Brightness    byte
	Exposure      byte
	Features      byte
}

func parseImageBlock(payload []byte) (any, error) {
	if len(payload) != 13 {
		return nil, fmt.Errorf("visca: image block reply must be 13 bytes, got %d", len(payload))
	}
	return ImageBlock{
		GainR:        payload[0],
		GainB:        payload[1],
		WBMode:       payload[2],
		Gain:         payload[3],
		ExposureMode: payload[4],
		ShutterPos:   payload[5],
		IrisPos:      payload[6],
		GainPos:      payload[7],
		Brightness:   payload[9],
		Exposure:     payload[10],
		Features:     payload[12],
	}, nil
}

// VideoFormat is the decoded video-format (now/next) inquiry reply. The
// per-vendor meaning of Raw is deliberately left coarse: the PTZOptics/Sony
// index table below covers the common formats; anything else still
// round-trips via Raw without error.
type VideoFormat struct {
	Raw byte
}

func parseVideoFormat(payload []byte) (any, error) {
	if len(payload) != 1 {
		return nil, fmt.Errorf("visca: video format reply must be 1 byte, got %d", len(payload))
	}
	return VideoFormat{Raw: payload[0] & 0x0F}, nil
}

func (v VideoFormat) String() string {
	switch v.Raw {
	case 0x0:
		return "1080i59.94"
	case 0x1:
		return "1080p29.97"
	case 0x2:
		return "720p59.94"
	case 0x3:
		return "720p29.97"
	case 0x4:
		return "1080i50"
	case 0x5:
		return "1080p25"
	case 0x6:
		return "720p50"
	case 0x7:
		return "720p25"
	case 0x8:
		return "1080p23.98"
	default:
		return fmt.Sprintf("vendor-specific(%#x)", v.Raw)
	}
}

// genericOnOffParser decodes a single on/off capability byte as reported
// by the camera (0x02=on / 0x03=off is the common VISCA polarity).
func genericOnOffParser(payload []byte) (any, error) {
	if len(payload) != 1 {
		return nil, fmt.Errorf("visca: on/off reply must be 1 byte, got %d", len(payload))
	}
	return payload[0] == 0x02, nil
}

// genericByteParser decodes a single-byte numeric reply verbatim (gain
// limit, noise reduction level, gamma index, and similar small enums).
func genericByteParser(payload []byte) (any, error) {
	if len(payload) != 1 {
		return nil, fmt.Errorf("visca: reply must be 1 byte, got %d", len(payload))
	}
	return payload[0], nil
}

// genericWordParser decodes a 4-nibble word reply (zoom/focus position and
// similar).
func genericWordParser(payload []byte) (any, error) {
	if len(payload) != 4 {
		return nil, fmt.Errorf("visca: reply must be 4 bytes, got %d", len(payload))
	}
	return v2i(payload), nil
}
