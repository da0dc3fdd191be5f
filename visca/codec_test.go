package visca

import "testing"

func TestI2VRoundTrip(t *testing.T) {
	cases := []uint16{0, 1, 0x0FFF, 0x1234, 0x7FFF, 0x8000, 0xFFFF}
	for _, v := range cases {
		enc := i2v(v)
		for _, b := range enc {
			if b&0xF0 != 0 {
				t.Fatalf("i2v(%#x) produced byte %#x with nonzero high nibble", v, b)
			}
		}
		if got := v2i(enc[:]); got != v {
			t.Errorf("v2i(i2v(%#x)) = %#x, want %#x", v, got, v)
		}
	}
}

func TestV2ITwoByteLeftPad(t *testing.T) {
	if got := v2i([]byte{0x1, 0x2}); got != 0x12 {
		t.Errorf("v2i(2-byte) = %#x, want 0x12", got)
	}
}

func TestSI2VRoundTrip(t *testing.T) {
	cases := []int32{0, 1, -1, 12345, -12345, 32767, -32768}
	for _, v := range cases {
		enc := si2v(v)
		if got := v2si(enc[:]); got != v {
			t.Errorf("v2si(si2v(%d)) = %d, want %d", v, got, v)
		}
	}
}

func TestSI2VClamps(t *testing.T) {
	if got := v2si(si2v(40000)[:]); got != 32767 {
		t.Errorf("si2v should clamp above range, got %d", got)
	}
	if got := v2si(si2v(-40000)[:]); got != -32768 {
		t.Errorf("si2v should clamp below range, got %d", got)
	}
}

func TestClampByte(t *testing.T) {
	if got := clampByte(-5, 0, 10); got != 0 {
		t.Errorf("clampByte(-5, 0, 10) = %d, want 0", got)
	}
	if got := clampByte(50, 0, 10); got != 10 {
		t.Errorf("clampByte(50, 0, 10) = %d, want 10", got)
	}
	if got := clampByte(5, 0, 10); got != 5 {
		t.Errorf("clampByte(5, 0, 10) = %d, want 5", got)
	}
}
