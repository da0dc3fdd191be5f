package visca

// Inquiry builders mirror the capability builders in builders_command.go
// but issue an INQUIRY message and attach the typed reply parser from
// replies.go that decodes the eventual COMPLETE payload.

func newInquiry(recipient int, dataType DataType, tail []byte, parser ReplyParser) *Command {
	c := NewCommand(MsgInquiry, recipient, dataType, true, tail)
	c.ReplyParser = parser
	return c
}

func InqPower(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqPower, genericOnOffParser)
}

func InqZoomPos(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqZoomPos, genericWordParser)
}

func InqFocusPos(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqFocusPos, genericWordParser)
}

func InqFocusAutoMode(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqFocusAutoMode, genericOnOffParser)
}

func InqWBMode(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqWBMode, genericByteParser)
}

func InqGainLimit(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqGainLimit, genericByteParser)
}

func InqExposureMode(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqExposureMode, genericByteParser)
}

func InqShutterPos(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqShutterPos, genericByteParser)
}

func InqIrisPos(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqIrisPos, genericByteParser)
}

func InqGainPos(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqGainPos, genericByteParser)
}

func InqHighRes(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqHighRes, genericOnOffParser)
}

func InqHighSensitivity(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqHighSensitivity, genericOnOffParser)
}

func InqNoiseReduction(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqNoiseReduction, genericByteParser)
}

func InqGamma(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqGamma, genericByteParser)
}

func InqEffect(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqEffect, genericByteParser)
}

func InqDigitalEffect(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqDigitalEffect, genericByteParser)
}

func InqDigitalEffectLevel(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqDigitalEffectLv, genericByteParser)
}

func InqICRMode(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqICRMode, genericOnOffParser)
}

func InqChromaSuppress(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqChromaSuppress, genericByteParser)
}

func InqColorGain(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqColorGain, genericByteParser)
}

func InqColorHue(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqColorHue, genericByteParser)
}

// InqLensBlock returns the zoom/focus/AF lens-control block.
func InqLensBlock(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqLensBlock, parseLensBlock)
}

// InqImageBlock returns the gain/WB/exposure image-control block.
func InqImageBlock(recipient int) *Command {
	return newInquiry(recipient, DataCamera, inqImageBlock, parseImageBlock)
}

func InqPTPosition(recipient int) *Command {
	return newInquiry(recipient, DataPanTilt, inqPTPosition, parsePTPosition)
}

func InqPTMaxSpeed(recipient int) *Command {
	return newInquiry(recipient, DataPanTilt, inqPTMaxSpeed, parsePTMaxSpeed)
}

func InqPTStatus(recipient int) *Command {
	return newInquiry(recipient, DataPanTilt, inqPTStatus, parsePTStatus)
}

func InqVideoFormatNow(recipient int) *Command {
	return newInquiry(recipient, DataInterface, inqVideoFormatNow, parseVideoFormat)
}

func InqVideoFormatNext(recipient int) *Command {
	return newInquiry(recipient, DataInterface, inqVideoFormatNext, parseVideoFormat)
}

// inquireAllCommands returns the suite of inquiries the controller enqueues
// after bring-up to refresh a freshly-discovered camera's CameraStatus. Each
// builder that reports a field CameraStatus tracks gets an OnComplete that
// writes the parsed value straight into cam.Status; the others (power,
// focus) are sent for the camera's own bookkeeping but don't feed Status.
func inquireAllCommands(cam *Camera) []*Command {
	zoom := InqZoomPos(cam.Address)
	zoom.OnComplete = func(data any) {
		if v, ok := data.(uint16); ok {
			cam.Status.Zoom = v
		}
	}

	pt := InqPTPosition(cam.Address)
	pt.OnComplete = func(data any) {
		if pos, ok := data.(PTPosition); ok {
			cam.Status.Pan = pos.X
			cam.Status.Tilt = pos.Y
		}
	}

	effect := InqEffect(cam.Address)
	effect.OnComplete = func(data any) {
		if v, ok := data.(byte); ok {
			cam.Status.Effect = Effect(v)
		}
	}

	lens := InqLensBlock(cam.Address)
	lens.OnComplete = func(data any) {
		if lb, ok := data.(LensBlock); ok {
			cam.Status.DigitalZoomOn = lb.DigitalZoomOn
		}
	}

	return []*Command{
		InqPower(cam.Address),
		zoom,
		InqFocusPos(cam.Address),
		pt,
		effect,
		lens,
	}
}
