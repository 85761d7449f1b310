package video

import (
	"encoding/binary"
	"image"

	"github.com/pocketdeck/pocketdeck/pkg/libretro"
)

// ToRGBA converts a software frame from the core's pixel format into
// an RGBA image, honoring the row pitch. Returns nil for hardware
// frames or unknown formats.
func ToRGBA(f libretro.Frame, format libretro.PixelFormat) *image.RGBA {
	if f.HW || f.Data == nil || f.W == 0 || f.H == 0 {
		return nil
	}
	w, h := int(f.W), int(f.H)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	switch format {
	case libretro.PixelFormatRGB565:
		for y := 0; y < h; y++ {
			row := f.Data[y*f.Pitch:]
			out := img.Pix[y*img.Stride:]
			for x := 0; x < w; x++ {
				px := binary.LittleEndian.Uint16(row[x*2:])
				out[x*4+0] = uint8((px >> 11 & 0x1F) << 3)
				out[x*4+1] = uint8((px >> 5 & 0x3F) << 2)
				out[x*4+2] = uint8((px & 0x1F) << 3)
				out[x*4+3] = 0xFF
			}
		}
	case libretro.PixelFormat0RGB1555:
		for y := 0; y < h; y++ {
			row := f.Data[y*f.Pitch:]
			out := img.Pix[y*img.Stride:]
			for x := 0; x < w; x++ {
				px := binary.LittleEndian.Uint16(row[x*2:])
				out[x*4+0] = uint8((px >> 10 & 0x1F) << 3)
				out[x*4+1] = uint8((px >> 5 & 0x1F) << 3)
				out[x*4+2] = uint8((px & 0x1F) << 3)
				out[x*4+3] = 0xFF
			}
		}
	case libretro.PixelFormatXRGB8888:
		for y := 0; y < h; y++ {
			row := f.Data[y*f.Pitch:]
			out := img.Pix[y*img.Stride:]
			for x := 0; x < w; x++ {
				out[x*4+0] = row[x*4+2]
				out[x*4+1] = row[x*4+1]
				out[x*4+2] = row[x*4+0]
				out[x*4+3] = 0xFF
			}
		}
	default:
		return nil
	}
	return img
}
