package input

import (
	"testing"

	"github.com/pocketdeck/pocketdeck/pkg/libretro"
)

func press(btns ...Button) (mask uint32) {
	for _, b := range btns {
		mask |= 1 << uint(b)
	}
	return
}

func TestValidateMappings(t *testing.T) {
	good := DefaultMappings()
	if err := ValidateMappings(good); err != nil {
		t.Errorf("default table rejected: %v", err)
	}

	dup := DefaultMappings()
	dup[1].RetroID = dup[0].RetroID
	if err := ValidateMappings(dup); err == nil {
		t.Error("duplicate retro id accepted")
	}

	// special rows with -1 never collide
	specials := []Mapping{
		{Name: "NONE", RetroID: -1},
		{Name: "MENU", RetroID: -1},
	}
	if err := ValidateMappings(specials); err != nil {
		t.Errorf("special rows rejected: %v", err)
	}
}

func TestCollectButtonsBasic(t *testing.T) {
	m := DefaultMappings()
	mask, usedMod := CollectButtons(m, press(BtnA, BtnUp), false, 0, nil)
	want := uint32(1<<libretro.JoypadA | 1<<libretro.JoypadUp)
	if mask != want {
		t.Errorf("mask = %b, want %b", mask, want)
	}
	if usedMod {
		t.Error("usedMod without modifier rows")
	}
}

func TestCollectButtonsUnboundSkipped(t *testing.T) {
	m := DefaultMappings()
	m[4].LocalID = BtnNone // unbind A
	mask, _ := CollectButtons(m, press(BtnA), false, 0, nil)
	if mask != 0 {
		t.Errorf("unbound button produced bits: %b", mask)
	}
}

func TestCollectButtonsModifier(t *testing.T) {
	m := DefaultMappings()
	// L1 acts as save-state only with MENU held
	for i := range m {
		if m[i].Name == "L1" {
			m[i].Modifier = true
		}
	}

	mask, usedMod := CollectButtons(m, press(BtnL1), false, 0, nil)
	if mask&(1<<libretro.JoypadL) != 0 {
		t.Errorf("modifier fired without MENU: %b", mask)
	}
	if usedMod {
		t.Error("usedMod without MENU held")
	}

	mask, usedMod = CollectButtons(m, press(BtnL1), true, 0, nil)
	if mask&(1<<libretro.JoypadL) == 0 {
		t.Error("modifier did not fire with MENU held")
	}
	if !usedMod {
		t.Error("usedMod not reported")
	}
}

func TestCollectButtonsDpadRemap(t *testing.T) {
	m := DefaultMappings()
	remap := []Remap{{From: BtnL3, To: BtnUp}}

	// standard pad: hat alias applies
	mask, _ := CollectButtons(m, press(BtnL3), false, 0, remap)
	if mask&(1<<libretro.JoypadUp) == 0 || mask&(1<<libretro.JoypadL3) != 0 {
		t.Errorf("remap not applied: %b", mask)
	}

	// other gamepad types bypass the alias table
	mask, _ = CollectButtons(m, press(BtnL3), false, 1, remap)
	if mask&(1<<libretro.JoypadL3) == 0 || mask&(1<<libretro.JoypadUp) != 0 {
		t.Errorf("remap wrongly applied: %b", mask)
	}
}

func TestMarkIgnoredButtons(t *testing.T) {
	m := DefaultMappings()
	desc := []libretro.InputDescriptor{
		{Port: 0, Device: libretro.DeviceJoypad, ID: libretro.JoypadA, Description: "A"},
		{Port: 0, Device: libretro.DeviceJoypad, ID: libretro.JoypadB, Description: "B"},
	}
	MarkIgnoredButtons(m, desc)
	for _, row := range m {
		declared := row.RetroID == libretro.JoypadA || row.RetroID == libretro.JoypadB
		if row.Ignore == declared {
			t.Errorf("row %s: ignore = %v", row.Name, row.Ignore)
		}
	}

	// no descriptors: leave the table alone
	m2 := DefaultMappings()
	MarkIgnoredButtons(m2, nil)
	for _, row := range m2 {
		if row.Ignore {
			t.Errorf("row %s ignored with empty descriptors", row.Name)
		}
	}
}

func TestResetToDefaults(t *testing.T) {
	m := DefaultMappings()
	m[0].LocalID = BtnX
	m[3].Ignore = true
	ResetToDefaults(m)
	for _, row := range m {
		if row.LocalID != row.DefaultID || row.Ignore {
			t.Errorf("row %s not reset: %+v", row.Name, row)
		}
	}
}
