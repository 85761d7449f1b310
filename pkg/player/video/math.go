package video

// mat4 is a column-major 4x4 matrix, as GL wants it.
type mat4 [16]float32

func identity() mat4 {
	return mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// ortho maps [l,r]x[b,t] onto clip space with a unit depth range.
func ortho(l, r, b, t float32) mat4 {
	m := identity()
	m[0] = 2 / (r - l)
	m[5] = 2 / (t - b)
	m[10] = -1
	m[12] = -(r + l) / (r - l)
	m[13] = -(t + b) / (t - b)
	return m
}

// rotZ rotates around Z by quarter turns (0..3), the only rotations
// cores may request.
func rotZ(quarterTurns uint) mat4 {
	var c, s float32
	switch quarterTurns % 4 {
	case 0:
		c, s = 1, 0
	case 1:
		c, s = 0, 1
	case 2:
		c, s = -1, 0
	case 3:
		c, s = 0, -1
	}
	m := identity()
	m[0], m[1] = c, s
	m[4], m[5] = -s, c
	return m
}

func mul(a, b mat4) (out mat4) {
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return
}

// mvp builds the presentation matrix: a unit ortho around the quad,
// rotated about its center when the core asks for it.
func mvp(rotation uint) mat4 {
	m := ortho(0, 1, 0, 1)
	if rotation%4 == 0 {
		return m
	}
	// rotate about (0.5, 0.5)
	toOrigin := identity()
	toOrigin[12], toOrigin[13] = -0.5, -0.5
	back := identity()
	back[12], back[13] = 0.5, 0.5
	return mul(m, mul(back, mul(rotZ(rotation), toOrigin)))
}

// viewportFit computes a letterboxed or pillarboxed viewport keeping
// the frame aspect ratio inside the screen. A non-positive aspect
// falls back to the frame's own proportions.
func viewportFit(screenW, screenH, frameW, frameH int, aspect float64) (x, y, w, h int32) {
	if screenW <= 0 || screenH <= 0 || frameW <= 0 || frameH <= 0 {
		return 0, 0, int32(maxInt(screenW, 0)), int32(maxInt(screenH, 0))
	}
	if aspect <= 0 {
		aspect = float64(frameW) / float64(frameH)
	}
	vw := screenW
	vh := int(float64(screenW)/aspect + 0.5)
	if vh > screenH {
		vh = screenH
		vw = int(float64(screenH)*aspect + 0.5)
	}
	return int32((screenW - vw) / 2), int32((screenH - vh) / 2), int32(vw), int32(vh)
}

// Scaling mode names, as configured and cycled in the options menu.
const (
	ScaleNative     = "native"
	ScaleAspect     = "aspect"
	ScaleFullscreen = "fullscreen"
	ScaleCropped    = "cropped"
)

// viewportFor computes the destination rectangle for one scaling mode:
// native centers the frame unscaled, aspect letterboxes, fullscreen
// stretches, cropped fills the screen and cuts the overflow. Unknown
// modes fall back to aspect.
func viewportFor(mode string, screenW, screenH, frameW, frameH int, aspect float64) (x, y, w, h int32) {
	if screenW <= 0 || screenH <= 0 || frameW <= 0 || frameH <= 0 {
		return 0, 0, int32(maxInt(screenW, 0)), int32(maxInt(screenH, 0))
	}
	switch mode {
	case ScaleFullscreen:
		return 0, 0, int32(screenW), int32(screenH)
	case ScaleNative:
		return int32((screenW - frameW) / 2), int32((screenH - frameH) / 2),
			int32(frameW), int32(frameH)
	case ScaleCropped:
		if aspect <= 0 {
			aspect = float64(frameW) / float64(frameH)
		}
		vh := screenH
		vw := int(float64(screenH)*aspect + 0.5)
		if vw < screenW {
			vw = screenW
			vh = int(float64(screenW)/aspect + 0.5)
		}
		return int32((screenW - vw) / 2), int32((screenH - vh) / 2), int32(vw), int32(vh)
	}
	return viewportFit(screenW, screenH, frameW, frameH, aspect)
}

// texcoordScale limits sampling to the written portion of an FBO that
// was allocated at the core's max geometry.
func texcoordScale(w, h, fboW, fboH int) (sx, sy float32) {
	if fboW <= 0 || fboH <= 0 {
		return 1, 1
	}
	return float32(w) / float32(fboW), float32(h) / float32(fboH)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
