package menu

import (
	"image"
	"os"

	"golang.org/x/image/bmp"
)

// ScaleNearest resamples src to w×h with nearest-neighbor lookups.
// Previews favor speed over quality; the result is half device size.
func ScaleNearest(src *image.RGBA, w, h int) *image.RGBA {
	sw, sh := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if sw == 0 || sh == 0 || w <= 0 || h <= 0 {
		return dst
	}
	for y := 0; y < h; y++ {
		sy := y * sh / h
		srow := src.Pix[(src.Rect.Min.Y+sy)*src.Stride+src.Rect.Min.X*4:]
		drow := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			sx := x * sw / w
			copy(drow[x*4:x*4+4], srow[sx*4:sx*4+4])
		}
	}
	return dst
}

// WritePreview scales the frame and writes it as a BMP next to the
// slot files.
func WritePreview(path string, frame *image.RGBA, w, h int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bmp.Encode(f, ScaleNearest(frame, w, h)); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// ReadPreview loads a slot's BMP preview.
func ReadPreview(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return bmp.Decode(f)
}
