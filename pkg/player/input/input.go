// Package input translates raw device button state into libretro
// joypad bits through a per-core, user-remappable table.
package input

import (
	"fmt"

	"github.com/pocketdeck/pocketdeck/pkg/libretro"
)

// Button is a physical button of the device.
type Button int

const BtnNone Button = -1

const (
	BtnUp Button = iota
	BtnDown
	BtnLeft
	BtnRight
	BtnA
	BtnB
	BtnX
	BtnY
	BtnStart
	BtnSelect
	BtnL1
	BtnR1
	BtnL2
	BtnR2
	BtnL3
	BtnR3
	BtnMenu
	BtnPlus
	BtnMinus
	BtnPower
	btnCount
)

// State is the per-port raw input snapshot.
type State struct {
	Buttons uint32
	Left    Analog
	Right   Analog
}

type Analog struct {
	X, Y int16
}

// Mapping binds one libretro joypad ID to a device button. RetroID -1
// marks special rows like "NONE". Modifier rows fire only while MENU
// is held.
type Mapping struct {
	Name      string
	RetroID   int
	LocalID   Button
	Modifier  bool
	DefaultID Button
	Ignore    bool
}

// Remap aliases one device button to another before mapping lookup,
// used for d-pad/hat differences between gamepad revisions.
type Remap struct {
	From, To Button
}

// DefaultMappings is the stock table for a standard handheld layout.
func DefaultMappings() []Mapping {
	rows := []struct {
		name  string
		retro int
		local Button
	}{
		{"Up", libretro.JoypadUp, BtnUp},
		{"Down", libretro.JoypadDown, BtnDown},
		{"Left", libretro.JoypadLeft, BtnLeft},
		{"Right", libretro.JoypadRight, BtnRight},
		{"A", libretro.JoypadA, BtnA},
		{"B", libretro.JoypadB, BtnB},
		{"X", libretro.JoypadX, BtnX},
		{"Y", libretro.JoypadY, BtnY},
		{"Start", libretro.JoypadStart, BtnStart},
		{"Select", libretro.JoypadSelect, BtnSelect},
		{"L1", libretro.JoypadL, BtnL1},
		{"R1", libretro.JoypadR, BtnR1},
		{"L2", libretro.JoypadL2, BtnL2},
		{"R2", libretro.JoypadR2, BtnR2},
		{"L3", libretro.JoypadL3, BtnL3},
		{"R3", libretro.JoypadR3, BtnR3},
	}
	out := make([]Mapping, len(rows))
	for i, r := range rows {
		out[i] = Mapping{Name: r.name, RetroID: r.retro, LocalID: r.local, DefaultID: r.local}
	}
	return out
}

// ValidateMappings rejects tables where two rows claim the same
// libretro ID; such a config reverts to defaults.
func ValidateMappings(mappings []Mapping) error {
	seen := map[int]string{}
	for _, m := range mappings {
		if m.RetroID < 0 {
			continue
		}
		if prev, ok := seen[m.RetroID]; ok {
			return fmt.Errorf("buttons %q and %q both bound to retro id %d", prev, m.Name, m.RetroID)
		}
		seen[m.RetroID] = m.Name
	}
	return nil
}

// MarkIgnoredButtons flags rows the core never declared so the UI can
// grey them out. Cores declaring nothing keep the full table.
func MarkIgnoredButtons(mappings []Mapping, desc []libretro.InputDescriptor) {
	if len(desc) == 0 {
		return
	}
	declared := map[int]struct{}{}
	for _, d := range desc {
		if d.Port == 0 && d.Device == libretro.DeviceJoypad {
			declared[int(d.ID)] = struct{}{}
		}
	}
	for i := range mappings {
		if mappings[i].RetroID < 0 {
			continue
		}
		_, ok := declared[mappings[i].RetroID]
		mappings[i].Ignore = !ok
	}
}

// ResetToDefaults restores every row's binding and clears ignores.
func ResetToDefaults(mappings []Mapping) {
	for i := range mappings {
		mappings[i].LocalID = mappings[i].DefaultID
		mappings[i].Ignore = false
	}
}

// CollectButtons is the per-frame translation from pressed device
// bits to a libretro joypad mask. usedMod reports that a modifier
// combo fired, so the caller suppresses the plain MENU action this
// frame.
func CollectButtons(mappings []Mapping, pressed uint32, menuHeld bool, gamepadType int, dpadRemap []Remap) (retroMask uint32, usedMod bool) {
	if gamepadType == 0 {
		pressed = applyRemap(pressed, dpadRemap)
	}
	for _, m := range mappings {
		if m.LocalID == BtnNone || m.RetroID < 0 {
			continue
		}
		if pressed&(1<<uint(m.LocalID)) == 0 {
			continue
		}
		if m.Modifier {
			if !menuHeld {
				continue
			}
			usedMod = true
		}
		retroMask |= 1 << uint(m.RetroID)
	}
	return retroMask, usedMod
}

func applyRemap(pressed uint32, remap []Remap) uint32 {
	out := pressed
	for _, r := range remap {
		if pressed&(1<<uint(r.From)) != 0 {
			out &^= 1 << uint(r.From)
			out |= 1 << uint(r.To)
		}
	}
	return out
}
