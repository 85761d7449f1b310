package video

import (
	"fmt"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"
)

// Screen owns the SDL window. The software path blits straight into
// the window surface; the hardware path attaches a GLES2 context.
type Screen struct {
	w     *sdl.Window
	glCtx sdl.GLContext
	W, H  int
}

func NewScreen(title string, width, height int) (*Screen, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("sdl: %w", err)
	}
	w, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(width), int32(height), sdl.WINDOW_OPENGL|sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("window: %w", err)
	}
	return &Screen{w: w, W: width, H: height}, nil
}

// createGLContext makes a GLES2 context on the window and binds it.
func (s *Screen) createGLContext() error {
	for _, a := range [][2]int{
		{sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_ES},
		{sdl.GL_CONTEXT_MAJOR_VERSION, 2},
		{sdl.GL_CONTEXT_MINOR_VERSION, 0},
	} {
		if err := sdl.GLSetAttribute(sdl.GLattr(a[0]), a[1]); err != nil {
			return err
		}
	}
	ctx, err := s.w.GLCreateContext()
	if err != nil {
		return fmt.Errorf("gl context: %w", err)
	}
	if err := s.w.GLMakeCurrent(ctx); err != nil {
		sdl.GLDeleteContext(ctx)
		return fmt.Errorf("gl bind: %w", err)
	}
	s.glCtx = ctx
	return nil
}

func (s *Screen) bindGL() error {
	return s.w.GLMakeCurrent(s.glCtx)
}

func (s *Screen) swap() { s.w.GLSwap() }

// ProcAddress resolves a GL entry point through SDL.
func ProcAddress(sym string) unsafe.Pointer { return sdl.GLGetProcAddress(sym) }

// Blit is the software present: scale src into the window surface.
func (s *Screen) Blit(src *sdl.Surface) error {
	dst, err := s.w.GetSurface()
	if err != nil {
		return err
	}
	rect := sdl.Rect{W: dst.W, H: dst.H}
	if err := src.BlitScaled(nil, dst, &rect); err != nil {
		return err
	}
	return s.w.UpdateSurface()
}

// BlitFit presents a core frame honoring the scaling mode; the clipped
// borders stay black.
func (s *Screen) BlitFit(src *sdl.Surface, scaling string, aspect float64) error {
	dst, err := s.w.GetSurface()
	if err != nil {
		return err
	}
	x, y, w, h := viewportFor(scaling, int(dst.W), int(dst.H), int(src.W), int(src.H), aspect)
	if err := dst.FillRect(nil, 0); err != nil {
		return err
	}
	rect := sdl.Rect{X: x, Y: y, W: w, H: h}
	if err := src.BlitScaled(nil, dst, &rect); err != nil {
		return err
	}
	return s.w.UpdateSurface()
}

func (s *Screen) Close() {
	if s.glCtx != nil {
		sdl.GLDeleteContext(s.glCtx)
		s.glCtx = nil
	}
	if s.w != nil {
		_ = s.w.Destroy()
		s.w = nil
	}
	sdl.Quit()
}
