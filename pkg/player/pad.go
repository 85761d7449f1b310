package player

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/pocketdeck/pocketdeck/pkg/player/input"
)

// scancodeMap is the stock keyboard layout used when no joystick is
// present; handheld firmwares expose the face buttons as a keyboard.
var scancodeMap = map[sdl.Scancode]input.Button{
	sdl.SCANCODE_UP:     input.BtnUp,
	sdl.SCANCODE_DOWN:   input.BtnDown,
	sdl.SCANCODE_LEFT:   input.BtnLeft,
	sdl.SCANCODE_RIGHT:  input.BtnRight,
	sdl.SCANCODE_A:      input.BtnA,
	sdl.SCANCODE_B:      input.BtnB,
	sdl.SCANCODE_X:      input.BtnX,
	sdl.SCANCODE_Y:      input.BtnY,
	sdl.SCANCODE_RETURN: input.BtnStart,
	sdl.SCANCODE_RSHIFT: input.BtnSelect,
	sdl.SCANCODE_E:      input.BtnL1,
	sdl.SCANCODE_T:      input.BtnR1,
	sdl.SCANCODE_TAB:    input.BtnL2,
	sdl.SCANCODE_BACKSPACE: input.BtnR2,
	sdl.SCANCODE_ESCAPE: input.BtnMenu,
	sdl.SCANCODE_POWER:  input.BtnPower,
}

// pad tracks raw device buttons across frames so presses can be
// edge-triggered for the menu while the core sees levels.
type pad struct {
	held     uint32
	pressed  uint32 // went down this frame
	released uint32 // went up this frame
	left     input.Analog
	right    input.Analog
	quit     bool

	js *sdl.Joystick
}

func newPad() *pad {
	p := &pad{}
	if sdl.NumJoysticks() > 0 {
		p.js = sdl.JoystickOpen(0)
	}
	return p
}

// poll drains the SDL event queue and updates the button state.
func (p *pad) poll() {
	p.pressed, p.released = 0, 0
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch e := ev.(type) {
		case *sdl.QuitEvent:
			p.quit = true
		case *sdl.KeyboardEvent:
			btn, ok := scancodeMap[e.Keysym.Scancode]
			if !ok {
				continue
			}
			p.set(btn, e.Type == sdl.KEYDOWN)
		case *sdl.JoyButtonEvent:
			if int(e.Button) <= int(input.BtnPower) {
				p.set(input.Button(e.Button), e.Type == sdl.JOYBUTTONDOWN)
			}
		case *sdl.JoyAxisEvent:
			p.setAxis(int(e.Axis), e.Value)
		case *sdl.JoyHatEvent:
			p.set(input.BtnUp, e.Value&sdl.HAT_UP != 0)
			p.set(input.BtnDown, e.Value&sdl.HAT_DOWN != 0)
			p.set(input.BtnLeft, e.Value&sdl.HAT_LEFT != 0)
			p.set(input.BtnRight, e.Value&sdl.HAT_RIGHT != 0)
		}
	}
}

func (p *pad) set(btn input.Button, down bool) {
	bit := uint32(1) << uint(btn)
	if down {
		if p.held&bit == 0 {
			p.pressed |= bit
		}
		p.held |= bit
	} else {
		if p.held&bit != 0 {
			p.released |= bit
		}
		p.held &^= bit
	}
}

// setAxis records a stick axis; axes 0/1 are the left stick, 2/3 the
// right. Higher axes (triggers on some firmwares) are ignored.
func (p *pad) setAxis(axis int, v int16) {
	switch axis {
	case 0:
		p.left.X = v
	case 1:
		p.left.Y = v
	case 2:
		p.right.X = v
	case 3:
		p.right.Y = v
	}
}

// snapshot freezes the raw per-port state for one frame.
func (p *pad) snapshot() input.State {
	return input.State{Buttons: p.held, Left: p.left, Right: p.right}
}

func (p *pad) isHeld(btn input.Button) bool {
	return p.held&(1<<uint(btn)) != 0
}

func (p *pad) wasPressed(btn input.Button) bool {
	return p.pressed&(1<<uint(btn)) != 0
}

func (p *pad) wasReleased(btn input.Button) bool {
	return p.released&(1<<uint(btn)) != 0
}

func (p *pad) close() {
	if p.js != nil {
		p.js.Close()
		p.js = nil
	}
}
