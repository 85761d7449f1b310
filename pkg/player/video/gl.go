package video

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v3.1/gles2"
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/pocketdeck/pocketdeck/pkg/libretro"
	"github.com/pocketdeck/pocketdeck/pkg/logger"
)

const vertexShader = `#version 100
uniform mat4 u_mvp;
attribute vec2 a_position;
attribute vec2 a_texcoord;
varying vec2 v_texcoord;
void main() {
	gl_Position = u_mvp * vec4(a_position, 0.0, 1.0);
	v_texcoord = a_texcoord;
}
`

const fragmentShader = `#version 100
precision mediump float;
uniform sampler2D u_texture;
varying vec2 v_texcoord;
void main() {
	gl_FragColor = texture2D(u_texture, v_texcoord);
}
`

// Bridge connects a core's FBO rendering to the window. Once disabled
// (init or resize failure) it stays disabled and the software path
// takes over for the rest of the session.
type Bridge struct {
	log     *logger.Logger
	screen  *Screen
	cb      *libretro.HWRenderCallback
	enabled bool

	fbo, tex, rbo uint32
	hasRBO        bool
	fboW, fboH    int

	program    uint32
	uMVP, uTex int32
	aPos, aTex uint32
	posVBO     uint32
	texVBO     uint32

	// transient texture for SDL overlay surfaces
	overlayTex uint32
}

// NewBridge negotiates the hardware context the core asked for. Only
// OPENGLES2 is accepted; ES3 is declined so the core falls back to
// software rendering.
func NewBridge(screen *Screen, cb *libretro.HWRenderCallback, log *logger.Logger) (*Bridge, error) {
	if cb.ContextType != libretro.HWContextOpenGLES2 {
		return nil, errors.Errorf("unsupported hw context type %d", cb.ContextType)
	}

	b := &Bridge{log: log, screen: screen, cb: cb}

	if err := screen.createGLContext(); err != nil {
		return nil, errors.Wrap(err, "gles2 context")
	}
	if err := gl.InitWithProcAddrFunc(ProcAddress); err != nil {
		return nil, errors.Wrap(err, "gl proc resolution")
	}

	w, h := int(cb.MaxWidth), int(cb.MaxHeight)
	if w <= 0 || h <= 0 {
		w, h = screen.W, screen.H
	}
	if err := b.createFramebuffer(w, h); err != nil {
		return nil, err
	}
	if err := b.createPipeline(); err != nil {
		b.destroyFramebuffer()
		return nil, err
	}

	cb.Framebuffer = func() uint32 { return b.fbo }
	cb.ProcAddress = ProcAddress
	b.enabled = true

	log.Info().Int("w", w).Int("h", h).
		Bool("depth", cb.Depth).Bool("stencil", cb.Stencil).
		Msg("hardware render context ready")

	if cb.ContextReset != nil {
		cb.ContextReset()
	}
	return b, nil
}

func (b *Bridge) Enabled() bool { return b != nil && b.enabled }

func (b *Bridge) createFramebuffer(w, h int) error {
	gl.GenTextures(1, &b.tex)
	gl.BindTexture(gl.TEXTURE_2D, b.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	gl.GenFramebuffers(1, &b.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, b.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, b.tex, 0)

	if b.cb.Depth || b.cb.Stencil {
		format, attachment := uint32(gl.DEPTH_COMPONENT16), uint32(gl.DEPTH_ATTACHMENT)
		if b.cb.Stencil {
			// stencil-only is invalid per the libretro spec; a packed
			// buffer covers it anyway
			if !b.cb.Depth {
				b.log.Warn().Msg("core requested stencil without depth, attaching packed depth+stencil")
			}
			format, attachment = gl.DEPTH24_STENCIL8, gl.DEPTH_STENCIL_ATTACHMENT
		}
		gl.GenRenderbuffers(1, &b.rbo)
		gl.BindRenderbuffer(gl.RENDERBUFFER, b.rbo)
		gl.RenderbufferStorage(gl.RENDERBUFFER, format, int32(w), int32(h))
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, attachment, gl.RENDERBUFFER, b.rbo)
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
		b.hasRBO = true
	}

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		b.destroyFramebuffer()
		return errors.Errorf("framebuffer incomplete: 0x%X", status)
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	b.fboW, b.fboH = w, h
	return nil
}

func (b *Bridge) destroyFramebuffer() {
	if b.hasRBO {
		gl.DeleteRenderbuffers(1, &b.rbo)
		b.hasRBO = false
	}
	if b.fbo != 0 {
		gl.DeleteFramebuffers(1, &b.fbo)
		b.fbo = 0
	}
	if b.tex != 0 {
		gl.DeleteTextures(1, &b.tex)
		b.tex = 0
	}
}

func (b *Bridge) createPipeline() error {
	program, err := compileProgram(vertexShader, fragmentShader)
	if err != nil {
		return err
	}
	b.program = program
	b.uMVP = gl.GetUniformLocation(program, glStr("u_mvp"))
	b.uTex = gl.GetUniformLocation(program, glStr("u_texture"))
	b.aPos = uint32(gl.GetAttribLocation(program, glStr("a_position")))
	b.aTex = uint32(gl.GetAttribLocation(program, glStr("a_texcoord")))

	quad := []float32{0, 0, 1, 0, 0, 1, 1, 1}
	gl.GenBuffers(1, &b.posVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.posVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quad)*4, gl.Ptr(quad), gl.STATIC_DRAW)

	gl.GenBuffers(1, &b.texVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.texVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(quad)*4, gl.Ptr(quad), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

// BeforeRun makes the context current and points the core at its FBO.
// Call right before retro_run on every frame.
func (b *Bridge) BeforeRun() {
	if !b.Enabled() {
		return
	}
	if err := b.screen.bindGL(); err != nil {
		b.log.Warn().Err(err).Msg("gl bind lost")
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, b.fbo)
}

// Resize recreates the FBO for a new core geometry. On failure the
// bridge disables itself for good.
func (b *Bridge) Resize(w, h int) error {
	if !b.Enabled() || (w == b.fboW && h == b.fboH) {
		return nil
	}
	b.destroyFramebuffer()
	if err := b.createFramebuffer(w, h); err != nil {
		b.enabled = false
		b.log.Error().Err(err).Msg("fbo resize failed, falling back to software present")
		return err
	}
	return nil
}

// Present draws the written portion of the core's FBO to the window,
// placed per the scaling mode and rotated in quarter turns.
func (b *Bridge) Present(w, h uint, rotation uint, aspect float64, scaling string) {
	if !b.Enabled() {
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	x, y, vw, vh := viewportFor(scaling, b.screen.W, b.screen.H, int(w), int(h), aspect)
	gl.Viewport(x, y, vw, vh)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	sx, sy := texcoordScale(int(w), int(h), b.fboW, b.fboH)
	coords := []float32{0, 0, sx, 0, 0, sy, sx, sy}
	b.drawQuad(b.tex, mvp(rotation), coords)

	b.screen.swap()
}

// PresentSurface draws an RGB565 SDL surface (menu, HUD) fullscreen
// through the same pipeline, instead of mixing SDL's 2D renderer with
// our GL context.
func (b *Bridge) PresentSurface(surf *sdl.Surface) {
	if !b.Enabled() || surf == nil {
		return
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(b.screen.W), int32(b.screen.H))
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	if b.overlayTex == 0 {
		gl.GenTextures(1, &b.overlayTex)
	}
	gl.BindTexture(gl.TEXTURE_2D, b.overlayTex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGB, surf.W, surf.H, 0,
		gl.RGB, gl.UNSIGNED_SHORT_5_6_5, unsafe.Pointer(&surf.Pixels()[0]))

	// SDL surfaces are top-down, flip vertically
	coords := []float32{0, 1, 1, 1, 0, 0, 1, 0}
	b.drawQuad(b.overlayTex, mvp(0), coords)

	b.screen.swap()
}

func (b *Bridge) drawQuad(tex uint32, m mat4, coords []float32) {
	gl.UseProgram(b.program)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.Uniform1i(b.uTex, 0)
	gl.UniformMatrix4fv(b.uMVP, 1, false, &m[0])

	gl.BindBuffer(gl.ARRAY_BUFFER, b.posVBO)
	gl.EnableVertexAttribArray(b.aPos)
	gl.VertexAttribPointerWithOffset(b.aPos, 2, gl.FLOAT, false, 0, 0)

	gl.BindBuffer(gl.ARRAY_BUFFER, b.texVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(coords)*4, gl.Ptr(coords), gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(b.aTex)
	gl.VertexAttribPointerWithOffset(b.aTex, 2, gl.FLOAT, false, 0, 0)

	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)

	gl.DisableVertexAttribArray(b.aPos)
	gl.DisableVertexAttribArray(b.aTex)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Close tears the context down in reverse init order.
func (b *Bridge) Close() {
	if b == nil || b.program == 0 {
		return
	}
	if b.cb.ContextDestroy != nil {
		b.cb.ContextDestroy()
	}
	if b.overlayTex != 0 {
		gl.DeleteTextures(1, &b.overlayTex)
	}
	gl.DeleteBuffers(1, &b.posVBO)
	gl.DeleteBuffers(1, &b.texVBO)
	gl.DeleteProgram(b.program)
	b.destroyFramebuffer()
	b.program = 0
	b.enabled = false
}

func glStr(v string) *uint8 { return gl.Str(v + "\x00") }

func compileProgram(vertex, fragment string) (uint32, error) {
	vs, err := compileShader(vertex, gl.VERTEX_SHADER)
	if err != nil {
		return 0, errors.Wrap(err, "vertex shader")
	}
	defer gl.DeleteShader(vs)

	fs, err := compileShader(fragment, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, errors.Wrap(err, "fragment shader")
	}
	defer gl.DeleteShader(fs)

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(infoLog))
		gl.DeleteProgram(program)
		return 0, errors.Errorf("link: %v", infoLog)
	}
	return program, nil
}

func compileShader(source string, stype uint32) (uint32, error) {
	shader := gl.CreateShader(stype)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(infoLog))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile: %v", infoLog)
	}
	return shader, nil
}
