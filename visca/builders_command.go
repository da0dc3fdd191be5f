package visca

// Capability builders construct well-formed outbound Commands. Each
// builder clamps its inputs to the capability's documented range and lays
// out the payload as [opcode, value...]: no vendor zero-padding beyond
// what the opcode itself carries.

// direction codes shared by pan and tilt.
const (
	DirDecrement byte = 0x01
	DirIncrement byte = 0x02
	DirStop      byte = 0x03
)

func wordPayload(opcode byte, v uint16) []byte {
	enc := i2v(v)
	return []byte{opcode, enc[0], enc[1], enc[2], enc[3]}
}

func signedWordPayload(opcode byte, v int32) []byte {
	enc := si2v(v)
	return []byte{opcode, enc[0], enc[1], enc[2], enc[3]}
}

func nibblePayload(opcode, v byte) []byte {
	return []byte{opcode, v & 0x0F}
}

func onOffPayload(opcode byte, on bool) []byte {
	v := byte(0x03)
	if on {
		v = 0x02
	}
	return []byte{opcode, v}
}

func newCameraCmd(recipient int, payload []byte) *Command {
	return NewCommand(MsgCommand, recipient, DataCamera, true, payload)
}

func newPanTiltCmd(recipient int, payload []byte) *Command {
	return NewCommand(MsgCommand, recipient, DataPanTilt, true, payload)
}

func newInterfaceCmd(recipient int, payload []byte) *Command {
	return NewCommand(MsgCommand, recipient, DataInterface, true, payload)
}

// --- Power ---

func CmdPower(recipient int, on bool) *Command {
	return newCameraCmd(recipient, onOffPayload(opPower[0], on))
}

// CmdPowerAutoOff sets the auto-power-off timer in minutes (0 disables).
func CmdPowerAutoOff(recipient int, minutes int) *Command {
	m := clampByte(minutes, 0, 0xFF)
	return newCameraCmd(recipient, []byte{opPowerAutoOff[0], m})
}

// --- Presets ---

func clampPreset(preset int) byte {
	// Sony caps at 5, PTZOptics at 127; the engine is permissive and lets
	// the camera reject out-of-range values with NOT_EXECUTABLE.
	return clampByte(preset, 0, 127)
}

func CmdPresetReset(recipient, preset int) *Command {
	return newCameraCmd(recipient, []byte{0x3F, opPresetReset, clampPreset(preset)})
}

func CmdPresetSet(recipient, preset int) *Command {
	return newCameraCmd(recipient, []byte{0x3F, opPresetSet, clampPreset(preset)})
}

func CmdPresetRecall(recipient, preset int) *Command {
	return newCameraCmd(recipient, []byte{0x3F, opPresetRecall, clampPreset(preset)})
}

// --- Pan/Tilt ---

// CmdPanTiltDrive issues a speed-step pan/tilt command. panSpeed is clamped
// to 1..18, tiltSpeed to 1..17.
func CmdPanTiltDrive(recipient int, panSpeed, tiltSpeed int, panDir, tiltDir byte) *Command {
	vv := clampByte(panSpeed, 1, 18)
	ww := clampByte(tiltSpeed, 1, 17)
	return newPanTiltCmd(recipient, append(opPanTiltDrive, vv, ww, panDir, tiltDir))
}

// CmdPanTiltDirect issues an absolute or relative pan/tilt move to
// coordinates x, y.
func CmdPanTiltDirect(recipient int, panSpeed, tiltSpeed int, x, y int32, relative bool) *Command {
	vv := clampByte(panSpeed, 1, 18)
	ww := clampByte(tiltSpeed, 1, 17)
	opcode := opPanTiltAbsolute[0]
	if relative {
		opcode = opPanTiltRelative[0]
	}
	xb := si2v(x)
	yb := si2v(y)
	payload := []byte{opcode, vv, ww}
	payload = append(payload, xb[:]...)
	payload = append(payload, yb[:]...)
	return newPanTiltCmd(recipient, payload)
}

func CmdPanTiltHome(recipient int) *Command {
	return newPanTiltCmd(recipient, opPanTiltHome)
}

func CmdPanTiltReset(recipient int) *Command {
	return newPanTiltCmd(recipient, opPanTiltReset)
}

// PTLimit identifies which of the two stored pan/tilt limits a
// set/clear operation targets.
type PTLimit byte

const (
	PTLimitUpRight PTLimit = 0x00
	PTLimitDownLeft PTLimit = 0x01
)

func CmdPanTiltLimitSet(recipient int, limit PTLimit, x, y int32) *Command {
	xb := si2v(x)
	yb := si2v(y)
	payload := []byte{opPanTiltLimit[0], 0x00, byte(limit)}
	payload = append(payload, xb[:]...)
	payload = append(payload, yb[:]...)
	return newPanTiltCmd(recipient, payload)
}

func CmdPanTiltLimitClear(recipient int, limit PTLimit) *Command {
	payload := []byte{opPanTiltLimit[0], 0x01, byte(limit), 0x07, 0x0F, 0x0F, 0x0F, 0x07, 0x0F, 0x0F, 0x0F}
	return newPanTiltCmd(recipient, payload)
}

// --- Zoom ---

func CmdZoomStop(recipient int) *Command {
	return newCameraCmd(recipient, append(opZoom, 0x00))
}

// CmdZoomIn drives the zoom tele-ward at the given speed, 0 (slowest) to 7
// (fastest). Every speed, 0 included, is sent in the variable-speed form
// 0x2p.
func CmdZoomIn(recipient int, speed int) *Command {
	s := clampByte(speed, 0, 7)
	return newCameraCmd(recipient, append(opZoom, 0x20|s))
}

func CmdZoomOut(recipient int, speed int) *Command {
	s := clampByte(speed, 0, 7)
	return newCameraCmd(recipient, append(opZoom, 0x30|s))
}

// CmdZoomDirect sets an absolute zoom position. target is 0..0x4000
// normally, 0..0x7AC0 when digital zoom is enabled.
func CmdZoomDirect(recipient int, target uint16, digitalZoomEnabled bool) *Command {
	max := uint16(0x4000)
	if digitalZoomEnabled {
		max = 0x7AC0
	}
	v := clampU16(target, 0, max)
	return newCameraCmd(recipient, wordPayload(opZoomDirect[0], v))
}

func CmdDigitalZoom(recipient int, on bool) *Command {
	return newCameraCmd(recipient, onOffPayload(opDigitalZoom[0], on))
}

// --- Focus ---

func CmdFocusStop(recipient int) *Command {
	return newCameraCmd(recipient, append(opFocus, 0x00))
}

func CmdFocusFar(recipient int, speed int) *Command {
	s := clampByte(speed, 0, 7)
	return newCameraCmd(recipient, append(opFocus, 0x20|s))
}

func CmdFocusNear(recipient int, speed int) *Command {
	s := clampByte(speed, 0, 7)
	return newCameraCmd(recipient, append(opFocus, 0x30|s))
}

// CmdFocusDirect sets an absolute focus position, 0..0xF000.
func CmdFocusDirect(recipient int, target uint16) *Command {
	v := clampU16(target, 0, 0xF000)
	return newCameraCmd(recipient, wordPayload(opFocusDirect[0], v))
}

func CmdFocusAuto(recipient int) *Command {
	return newCameraCmd(recipient, []byte{opFocusAuto[0], 0x02})
}

func CmdFocusManual(recipient int) *Command {
	return newCameraCmd(recipient, []byte{opFocusAuto[0], 0x03})
}

// CmdFocusTrigger fires a one-push auto-focus cycle.
func CmdFocusTrigger(recipient int) *Command {
	return newCameraCmd(recipient, []byte{0x18, 0x01})
}

func CmdFocusInfinity(recipient int) *Command {
	return newCameraCmd(recipient, []byte{0x18, 0x02})
}

// CmdFocusNearLimit sets the near-focus limit. The low byte of the
// position must be 0.
func CmdFocusNearLimit(recipient int, target uint16) *Command {
	v := target &^ 0x00FF
	return newCameraCmd(recipient, wordPayload(opFocusNearLimit[0], v))
}

// FocusAFMode selects the one-push/auto-focus scheduling mode.
type FocusAFMode byte

const (
	AFModeNormal      FocusAFMode = 0x00
	AFModeInterval    FocusAFMode = 0x01
	AFModeZoomTrigger FocusAFMode = 0x02
)

func CmdFocusAFMode(recipient int, mode FocusAFMode) *Command {
	return newCameraCmd(recipient, nibblePayload(0x57, byte(mode)))
}

// CmdFocusAFInterval sets the AF movement/interval time pair, each 0..255.
func CmdFocusAFInterval(recipient int, movementTime, intervalTime int) *Command {
	mv := clampByte(movementTime, 0, 0xFF)
	iv := clampByte(intervalTime, 0, 0xFF)
	m := i2v(uint16(mv))
	i := i2v(uint16(iv))
	payload := []byte{0x27}
	payload = append(payload, m[2], m[3], i[2], i[3])
	return newCameraCmd(recipient, payload)
}

func CmdFocusIRCorrection(recipient int, on bool) *Command {
	return newCameraCmd(recipient, onOffPayload(opFocusIRCorrect[0], on))
}

func CmdFocusSensitivityLow(recipient int, low bool) *Command {
	v := byte(0x02)
	if low {
		v = 0x03
	}
	return newCameraCmd(recipient, []byte{0x58, v})
}

// CmdZoomFocusDirect issues the combined zoom+focus direct move some
// cameras expose as a single command (opcode 0x47 with both words).
func CmdZoomFocusDirect(recipient int, zoom, focus uint16) *Command {
	z := i2v(clampU16(zoom, 0, 0x7AC0))
	f := i2v(clampU16(focus, 0, 0xF000))
	payload := []byte{0x47}
	payload = append(payload, z[:]...)
	payload = append(payload, f[:]...)
	return newCameraCmd(recipient, payload)
}

// --- White balance ---

type WBMode byte

const (
	WBAuto       WBMode = 0x00
	WBIndoor     WBMode = 0x01
	WBOutdoor    WBMode = 0x02
	WBOnePush    WBMode = 0x03
	WBAutoTrace  WBMode = 0x04
	WBManual     WBMode = 0x05
)

func CmdWBMode(recipient int, mode WBMode) *Command {
	return newCameraCmd(recipient, nibblePayload(opWBMode[0], byte(mode)))
}

func CmdWBTrigger(recipient int) *Command {
	return newCameraCmd(recipient, opWBTrigger)
}

// --- Exposure ---

type ExposureMode byte

const (
	ExposureFullAuto   ExposureMode = 0x00
	ExposureManual     ExposureMode = 0x03
	ExposureShutterPri ExposureMode = 0x0A
	ExposureIrisPri    ExposureMode = 0x0B
	ExposureBright     ExposureMode = 0x0D
)

func CmdExposureMode(recipient int, mode ExposureMode) *Command {
	return newCameraCmd(recipient, nibblePayload(opExposureMode[0], byte(mode)))
}

func CmdExposureCompEnable(recipient int, on bool) *Command {
	return newCameraCmd(recipient, onOffPayload(opExpCompEnable[0], on))
}

func CmdExposureCompUp(recipient int) *Command {
	return newCameraCmd(recipient, []byte{0x0E, 0x02})
}

func CmdExposureCompDown(recipient int) *Command {
	return newCameraCmd(recipient, []byte{0x0E, 0x03})
}

func CmdExposureCompDirect(recipient int, value int) *Command {
	v := clampByte(value, 0, 0xFF)
	return newCameraCmd(recipient, wordPayload(opExpCompDirect[0], uint16(v)))
}

func CmdBacklight(recipient int, on bool) *Command {
	return newCameraCmd(recipient, onOffPayload(opBacklight[0], on))
}

func CmdShutterUp(recipient int) *Command {
	return newCameraCmd(recipient, []byte{0x0A, 0x02})
}

func CmdShutterDown(recipient int) *Command {
	return newCameraCmd(recipient, []byte{0x0A, 0x03})
}

func CmdShutterDirect(recipient int, value int) *Command {
	v := clampByte(value, 0, 0xFF)
	return newCameraCmd(recipient, wordPayload(opShutterDirect[0], uint16(v)))
}

func CmdSlowShutterAuto(recipient int, on bool) *Command {
	return newCameraCmd(recipient, onOffPayload(0x5A, on))
}

func CmdIrisUp(recipient int) *Command {
	return newCameraCmd(recipient, []byte{0x0B, 0x02})
}

func CmdIrisDown(recipient int) *Command {
	return newCameraCmd(recipient, []byte{0x0B, 0x03})
}

func CmdIrisDirect(recipient int, value int) *Command {
	v := clampByte(value, 0, 0xFF)
	return newCameraCmd(recipient, wordPayload(opIrisDirect[0], uint16(v)))
}

func CmdApertureUp(recipient int) *Command {
	return newCameraCmd(recipient, []byte{0x02, 0x02})
}

func CmdApertureDown(recipient int) *Command {
	return newCameraCmd(recipient, []byte{0x02, 0x03})
}

func CmdApertureDirect(recipient int, value int) *Command {
	v := clampByte(value, 0, 0xFF)
	return newCameraCmd(recipient, wordPayload(opApertureDirect[0], uint16(v)))
}

// --- Gain ---

func CmdGainReset(recipient int) *Command {
	return newCameraCmd(recipient, []byte{0x0C, 0x00})
}

func CmdGainUp(recipient int) *Command {
	return newCameraCmd(recipient, []byte{0x0C, 0x02})
}

func CmdGainDown(recipient int) *Command {
	return newCameraCmd(recipient, []byte{0x0C, 0x03})
}

func CmdGainDirect(recipient int, value int) *Command {
	v := clampByte(value, 0, 0xFF)
	return newCameraCmd(recipient, wordPayload(opGainDirect[0], uint16(v)))
}

// CmdGainLimit sets the AGC gain ceiling, clamped to 4..15.
func CmdGainLimit(recipient int, limit int) *Command {
	v := clampByte(limit, 4, 15)
	return newCameraCmd(recipient, nibblePayload(opGainLimit[0], v))
}

func CmdGainRReset(recipient int) *Command {
	return newCameraCmd(recipient, []byte{opGainRDirect[0], 0x00})
}

func CmdGainRUp(recipient int) *Command {
	return newCameraCmd(recipient, []byte{opGainRDirect[0], 0x02})
}

func CmdGainRDown(recipient int) *Command {
	return newCameraCmd(recipient, []byte{opGainRDirect[0], 0x03})
}

func CmdGainRDirect(recipient int, value int) *Command {
	v := clampByte(value, 0, 0xFF)
	return newCameraCmd(recipient, wordPayload(0x43, uint16(v)))
}

func CmdGainBReset(recipient int) *Command {
	return newCameraCmd(recipient, []byte{opGainBDirect[0], 0x00})
}

func CmdGainBUp(recipient int) *Command {
	return newCameraCmd(recipient, []byte{opGainBDirect[0], 0x02})
}

func CmdGainBDown(recipient int) *Command {
	return newCameraCmd(recipient, []byte{opGainBDirect[0], 0x03})
}

func CmdGainBDirect(recipient int, value int) *Command {
	v := clampByte(value, 0, 0xFF)
	return newCameraCmd(recipient, wordPayload(0x44, uint16(v)))
}

// --- Picture quality toggles ---

func CmdHighRes(recipient int, on bool) *Command {
	return newCameraCmd(recipient, onOffPayload(opHighRes[0], on))
}

func CmdHighSensitivity(recipient int, on bool) *Command {
	return newCameraCmd(recipient, onOffPayload(opHighSensitivity[0], on))
}

// CmdNoiseReduction sets the noise-reduction level, 0..5.
func CmdNoiseReduction(recipient int, level int) *Command {
	v := clampByte(level, 0, 5)
	return newCameraCmd(recipient, nibblePayload(opNoiseReduction[0], v))
}

// CmdGamma sets the gamma curve index, 0..4.
func CmdGamma(recipient int, index int) *Command {
	v := clampByte(index, 0, 4)
	return newCameraCmd(recipient, nibblePayload(opGamma[0], v))
}

// Effect is a basic picture effect.
type Effect byte

const (
	EffectOff      Effect = 0x00
	EffectPastel   Effect = 0x02
	EffectNegative Effect = 0x03
	EffectSepia    Effect = 0x04
	EffectBW       Effect = 0x05
	EffectSolar    Effect = 0x06
	EffectMosaic   Effect = 0x07
	EffectSlim     Effect = 0x08
	EffectStretch  Effect = 0x09
)

func CmdEffect(recipient int, effect Effect) *Command {
	return newCameraCmd(recipient, nibblePayload(opEffect[0], byte(effect)))
}

// DigitalEffect is a digital picture effect.
type DigitalEffect byte

const (
	DigitalEffectOff   DigitalEffect = 0x00
	DigitalEffectStill DigitalEffect = 0x01
	DigitalEffectFlash DigitalEffect = 0x02
	DigitalEffectLumi  DigitalEffect = 0x03
	DigitalEffectTrail DigitalEffect = 0x04
)

func CmdDigitalEffect(recipient int, effect DigitalEffect) *Command {
	return newCameraCmd(recipient, nibblePayload(opDigitalEffect[0], byte(effect)))
}

// CmdDigitalEffectLevel sets the intensity of the active digital effect.
func CmdDigitalEffectLevel(recipient int, level int) *Command {
	v := clampByte(level, 0, 15)
	return newCameraCmd(recipient, nibblePayload(opDigitalEffectLv[0], v))
}

func CmdFreeze(recipient int, on bool) *Command {
	return newCameraCmd(recipient, onOffPayload(opFreeze[0], on))
}

// --- ICR (IR cut filter) ---

func CmdICR(recipient int, on bool) *Command {
	return newCameraCmd(recipient, onOffPayload(opICR[0], on))
}

func CmdICRAuto(recipient int, on bool) *Command {
	return newCameraCmd(recipient, onOffPayload(opICRAuto[0], on))
}

func CmdICRThreshold(recipient int, level int) *Command {
	v := clampByte(level, 0, 15)
	return newCameraCmd(recipient, nibblePayload(opICRThreshold[0], v))
}

// CmdIDWrite stamps a 16-bit identifier into the camera's non-volatile ID.
func CmdIDWrite(recipient int, id uint16) *Command {
	return newCameraCmd(recipient, wordPayload(opIDWrite[0], id))
}

// CmdChromaSuppress sets the chroma suppression level, 0..3.
func CmdChromaSuppress(recipient int, level int) *Command {
	v := clampByte(level, 0, 3)
	return newCameraCmd(recipient, nibblePayload(opChromaSuppress[0], v))
}

// CmdColorGain sets the color gain level, 0..14.
func CmdColorGain(recipient int, level int) *Command {
	v := clampByte(level, 0, 14)
	return newCameraCmd(recipient, nibblePayload(opColorGain[0], v))
}

// CmdColorHue sets the color hue level, 0..14.
func CmdColorHue(recipient int, level int) *Command {
	v := clampByte(level, 0, 14)
	return newCameraCmd(recipient, nibblePayload(opColorHue[0], v))
}

// --- Interface / chain control ---

// CmdInterfaceClear resets every camera's queues and slots. Bring-up sends
// this as a broadcast (recipient=Broadcast).
func CmdInterfaceClear(recipient int) *Command {
	return newInterfaceCmd(recipient, []byte{0x01})
}

// CmdAddressSet broadcasts the daisy-chain bring-up message.
func CmdAddressSet() *Command {
	return NewCommand(MsgAddressSet, Broadcast, 0, false, []byte{0x01})
}

// CmdCancel targets a specific command slot for cancellation.
func CmdCancel(recipient, socket int) *Command {
	c := NewCommand(MsgCancel, recipient, 0, false, nil)
	c.Socket = socket
	return c
}
