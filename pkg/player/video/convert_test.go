package video

import (
	"testing"

	"github.com/pocketdeck/pocketdeck/pkg/libretro"
)

func TestToRGBA565(t *testing.T) {
	// one red pixel, one green, pitch padded by 2 bytes
	data := []byte{0x00, 0xF8, 0xE0, 0x07, 0, 0}
	img := ToRGBA(libretro.Frame{Data: data, W: 2, H: 1, Pitch: 6}, libretro.PixelFormatRGB565)
	if img == nil {
		t.Fatal("nil image")
	}
	if r := img.RGBAAt(0, 0); r.R != 0xF8 || r.G != 0 || r.B != 0 || r.A != 0xFF {
		t.Errorf("red pixel: %+v", r)
	}
	if g := img.RGBAAt(1, 0); g.G != 0xFC || g.R != 0 || g.B != 0 {
		t.Errorf("green pixel: %+v", g)
	}
}

func TestToRGBA1555(t *testing.T) {
	// blue at full 5-bit intensity
	data := []byte{0x1F, 0x00}
	img := ToRGBA(libretro.Frame{Data: data, W: 1, H: 1, Pitch: 2}, libretro.PixelFormat0RGB1555)
	if px := img.RGBAAt(0, 0); px.B != 0xF8 || px.R != 0 || px.G != 0 {
		t.Errorf("blue pixel: %+v", px)
	}
}

func TestToRGBAXRGB(t *testing.T) {
	// XRGB little-endian: B G R X
	data := []byte{0x10, 0x20, 0x30, 0x00}
	img := ToRGBA(libretro.Frame{Data: data, W: 1, H: 1, Pitch: 4}, libretro.PixelFormatXRGB8888)
	if px := img.RGBAAt(0, 0); px.R != 0x30 || px.G != 0x20 || px.B != 0x10 || px.A != 0xFF {
		t.Errorf("pixel: %+v", px)
	}
}

func TestToRGBASkipsHardwareFrames(t *testing.T) {
	if img := ToRGBA(libretro.Frame{HW: true, W: 320, H: 240}, libretro.PixelFormatRGB565); img != nil {
		t.Error("hardware frame should convert to nil")
	}
}
