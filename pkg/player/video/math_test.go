package video

import (
	"math"
	"testing"
)

func TestViewportFit(t *testing.T) {
	tests := []struct {
		name                   string
		sw, sh, fw, fh         int
		aspect                 float64
		wantX, wantY           int32
		wantW, wantH           int32
	}{
		{"same aspect", 640, 480, 320, 240, 0, 0, 0, 640, 480},
		{"pillarbox square frame", 640, 480, 240, 240, 0, 80, 0, 480, 480},
		{"letterbox wide frame", 640, 480, 640, 240, 0, 0, 120, 640, 240},
		{"explicit aspect wins", 640, 480, 320, 240, 1.0, 80, 0, 480, 480},
		{"degenerate frame", 640, 480, 0, 0, 0, 0, 0, 640, 480},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, y, w, h := viewportFit(tc.sw, tc.sh, tc.fw, tc.fh, tc.aspect)
			if x != tc.wantX || y != tc.wantY || w != tc.wantW || h != tc.wantH {
				t.Errorf("got %d,%d %dx%d want %d,%d %dx%d",
					x, y, w, h, tc.wantX, tc.wantY, tc.wantW, tc.wantH)
			}
		})
	}
}

func TestViewportForModes(t *testing.T) {
	tests := []struct {
		name           string
		mode           string
		sw, sh, fw, fh int
		aspect         float64
		wantX, wantY   int32
		wantW, wantH   int32
	}{
		{"native centers unscaled", ScaleNative, 640, 480, 320, 240, 0, 160, 120, 320, 240},
		{"fullscreen stretches", ScaleFullscreen, 640, 480, 320, 240, 0, 0, 0, 640, 480},
		{"aspect letterboxes", ScaleAspect, 640, 480, 240, 240, 0, 80, 0, 480, 480},
		{"cropped overflows wide", ScaleCropped, 640, 480, 320, 240, 16.0 / 9.0, -106, 0, 853, 480},
		{"cropped overflows tall", ScaleCropped, 640, 480, 320, 240, 1.0, 0, -80, 640, 640},
		{"unknown falls back to aspect", "sharp", 640, 480, 240, 240, 0, 80, 0, 480, 480},
		{"degenerate frame", ScaleCropped, 640, 480, 0, 0, 0, 0, 0, 640, 480},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, y, w, h := viewportFor(tc.mode, tc.sw, tc.sh, tc.fw, tc.fh, tc.aspect)
			if x != tc.wantX || y != tc.wantY || w != tc.wantW || h != tc.wantH {
				t.Errorf("got %d,%d %dx%d want %d,%d %dx%d",
					x, y, w, h, tc.wantX, tc.wantY, tc.wantW, tc.wantH)
			}
		})
	}
}

func TestTexcoordScale(t *testing.T) {
	sx, sy := texcoordScale(320, 240, 640, 480)
	if sx != 0.5 || sy != 0.5 {
		t.Errorf("scale = %v,%v want 0.5,0.5", sx, sy)
	}
	sx, sy = texcoordScale(10, 10, 0, 0)
	if sx != 1 || sy != 1 {
		t.Errorf("degenerate fbo: %v,%v", sx, sy)
	}
}

// transform applies m to (x, y, 0, 1).
func transform(m mat4, x, y float32) (float32, float32) {
	ox := m[0]*x + m[4]*y + m[12]
	oy := m[1]*x + m[5]*y + m[13]
	return ox, oy
}

func approx(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-5 }

func TestMVPNoRotation(t *testing.T) {
	m := mvp(0)
	// unit quad corners map to clip corners
	if x, y := transform(m, 0, 0); !approx(x, -1) || !approx(y, -1) {
		t.Errorf("(0,0) -> %v,%v", x, y)
	}
	if x, y := transform(m, 1, 1); !approx(x, 1) || !approx(y, 1) {
		t.Errorf("(1,1) -> %v,%v", x, y)
	}
}

func TestMVPQuarterRotations(t *testing.T) {
	// after a 90° turn the corner (1,0) lands where (1,1) was
	m := mvp(1)
	x, y := transform(m, 1, 0)
	if !approx(x, 1) || !approx(y, 1) {
		t.Errorf("rot90 (1,0) -> %v,%v, want 1,1", x, y)
	}
	// 180° maps (0,0) to the opposite corner
	m = mvp(2)
	x, y = transform(m, 0, 0)
	if !approx(x, 1) || !approx(y, 1) {
		t.Errorf("rot180 (0,0) -> %v,%v, want 1,1", x, y)
	}
	// four turns are the identity
	m0, m4 := mvp(0), mvp(4)
	for i := range m0 {
		if !approx(m0[i], m4[i]) {
			t.Fatalf("mvp(4) differs from mvp(0) at %d", i)
		}
	}
}
