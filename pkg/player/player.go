package player

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pocketdeck/pocketdeck/pkg/config"
	"github.com/pocketdeck/pocketdeck/pkg/libretro"
	"github.com/pocketdeck/pocketdeck/pkg/logger"
	oss "github.com/pocketdeck/pocketdeck/pkg/os"
	"github.com/pocketdeck/pocketdeck/pkg/player/audio"
	"github.com/pocketdeck/pocketdeck/pkg/player/cpu"
	"github.com/pocketdeck/pocketdeck/pkg/player/input"
	"github.com/pocketdeck/pocketdeck/pkg/player/menu"
	"github.com/pocketdeck/pocketdeck/pkg/player/mem"
	"github.com/pocketdeck/pocketdeck/pkg/player/video"
)

// Player owns one game session end to end. Everything the subsystems
// need flows through it; there is no package-level state.
type Player struct {
	cfg *config.Player
	pak *config.PakCfg
	log *logger.Logger

	core libretro.Core
	game *Game
	emu  string

	screen *video.Screen
	bridge *video.Bridge
	out    *audio.Output
	scaler *cpu.Scaler
	saves  *saves
	menuSt *menu.State
	pad    *pad

	mappings  []input.Mapping
	dpadRemap []input.Remap
	shortcuts map[input.Button]string

	pixFmt   libretro.PixelFormat
	av       libretro.SystemAVInfo
	rotation uint

	// last software frame, doubles as menu backdrop and slot preview
	lastFrame *libretro.Frame
	lastRGBA  *image.RGBA
	hwFrame   bool

	retroMask   uint32
	rawState    input.State
	inMenu      bool
	menuLoop    *menu.Loop
	menuCombo   bool
	fastForward bool
	muted       bool

	status       string
	statusFrames int

	quit bool
}

// New builds the whole session: window, core, game, audio, scaler,
// saves and menu. Call Run next, Close last.
func New(cfg *config.Player, core libretro.Core, romPath string, log *logger.Logger) (*Player, error) {
	p := &Player{
		cfg:       cfg,
		log:       log,
		core:      core,
		shortcuts: map[input.Button]string{},
	}

	game, err := NewGame(romPath)
	if err != nil {
		return nil, err
	}
	p.game = game

	info := core.SystemInfo()
	p.emu = info.Tag
	log.Info().Str("core", info.Name).Str("version", info.Version).
		Str("game", game.Name).Msg("session starting")

	p.loadPak()
	p.mappings = p.buildMappings()

	p.screen, err = video.NewScreen(game.Name, cfg.Video.Width, cfg.Video.Height)
	if err != nil {
		p.shutdownPartial()
		return nil, err
	}

	p.out, err = audio.Open(cfg.Audio.SampleRate, cfg.Audio.BufferMs, log)
	if err != nil {
		p.shutdownPartial()
		return nil, err
	}

	p.scaler = cpu.New(cpu.Config(cfg.CPU), cpu.Host(), log)

	if err := core.Init(p, p.callbacks()); err != nil {
		p.shutdownPartial()
		return nil, fmt.Errorf("core init: %w", err)
	}

	gi := libretro.GameInfo{Path: game.Path}
	if !info.NeedFullPath {
		if gi.Data, err = game.LoadData(); err != nil {
			p.shutdownPartial()
			return nil, fmt.Errorf("rom read: %w", err)
		}
	}
	if err := core.LoadGame(gi); err != nil {
		p.shutdownPartial()
		return nil, fmt.Errorf("load game: %w", err)
	}

	p.av = core.AVInfo()
	p.scaler.Reset(p.av.Timing.FPS)
	p.out.SetRate(int(p.av.Timing.SampleRate))

	p.saves = newSaves(cfg.Paths, p.emu, game, mem.Provider{
		Size: core.MemorySize,
		Data: core.MemoryData,
	}, log)
	p.saves.Restore()

	p.menuSt, err = menu.NewState(cfg.Paths, p.emu, game.Path, game.M3UPath,
		cfg.Video.Width, cfg.Video.Height, p.menuHooks(), log)
	if err != nil {
		p.shutdownPartial()
		return nil, err
	}

	p.pad = newPad()
	p.consumeResumeSlot()
	return p, nil
}

// Run is the frame loop. It returns when the user quits; sentinel
// files for the launcher are written on the way out.
func (p *Player) Run() {
	term := oss.ExpectTermination()
	budget := time.Duration(p.scaler.FrameBudgetUS()) * time.Microsecond
	for !p.quit {
		select {
		case <-term:
			p.quit = true
			continue
		default:
		}
		start := time.Now()
		p.pad.poll()
		if p.pad.quit {
			break
		}

		if p.inMenu {
			p.menuFrame()
		} else {
			p.coreFrame(start)
		}

		if p.fastForward && !p.inMenu {
			continue
		}
		budget = time.Duration(p.scaler.FrameBudgetUS()) * time.Microsecond
		if spent := time.Since(start); spent < budget {
			time.Sleep(budget - spent)
		}
	}
	p.shutdown()
}

func (p *Player) coreFrame(start time.Time) {
	menuHeld := p.pad.isHeld(input.BtnMenu)
	p.rawState = p.pad.snapshot()
	mask, usedMod := input.CollectButtons(p.mappings, p.rawState.Buttons, menuHeld, 0, p.dpadRemap)
	p.retroMask = mask
	if usedMod {
		p.menuCombo = true
	}
	p.handleShortcuts(menuHeld)
	if p.pad.wasReleased(input.BtnMenu) {
		combo := p.menuCombo
		p.menuCombo = false
		if !combo {
			p.openMenu()
			return
		}
	}

	if p.bridge != nil {
		p.bridge.BeforeRun()
	}
	p.hwFrame = false
	p.core.Run()
	frameTime := time.Since(start).Microseconds()

	if d := p.scaler.Update(frameTime, uint64(p.out.Underruns()), p.out.FillPercent(),
		p.fastForward, false); d != cpu.Skip {
		p.scaler.Apply()
	}
	if mask, ok := p.scaler.TakePendingAffinity(); ok {
		if err := cpu.SetThreadAffinity(mask); err != nil {
			p.log.Warn().Err(err).Msg("thread affinity")
		}
	}

	p.present()
	p.tickStatus()
}

func (p *Player) present() {
	aspect := p.av.Geometry.AspectRatio
	if p.hwFrame && p.bridge.Enabled() {
		p.bridge.Present(p.av.Geometry.BaseW, p.av.Geometry.BaseH, p.rotation, aspect, p.cfg.Video.Scaling)
		return
	}
	if p.lastRGBA == nil {
		return
	}
	frame := p.lastRGBA
	if p.status != "" {
		frame = p.overlayStatus(frame)
	}
	if err := p.presentFrame(frame, aspect); err != nil {
		p.log.Warn().Err(err).Msg("software present")
	}
}

// handleShortcuts fires pak-configured MENU+button combos.
func (p *Player) handleShortcuts(menuHeld bool) {
	if !menuHeld {
		return
	}
	for btn, action := range p.shortcuts {
		if !p.pad.wasPressed(btn) {
			continue
		}
		p.menuCombo = true
		switch action {
		case "fast_forward":
			p.fastForward = !p.fastForward
			p.out.SetMute(p.fastForward)
		case "save_state":
			if err := p.menuSt.Save(p.menuSt.Slot); err != nil {
				p.Message("Save failed", 120)
			}
		case "load_state":
			if p.menuSt.SaveExists {
				if err := p.menuSt.Load(p.menuSt.Slot); err != nil {
					p.Message("Load failed", 120)
				}
			}
		case "mute":
			p.muted = !p.muted
			p.out.SetMute(p.muted || p.fastForward)
		}
	}
}

func (p *Player) openMenu() {
	p.out.Pause(true)
	p.menuLoop = menu.Open(p.menuSt, p.optionsMenu(), p.log)
	p.inMenu = true
}

func (p *Player) menuFrame() {
	keys := menu.Keys{
		Up:    p.pad.wasPressed(input.BtnUp),
		Down:  p.pad.wasPressed(input.BtnDown),
		Left:  p.pad.wasPressed(input.BtnLeft),
		Right: p.pad.wasPressed(input.BtnRight),
		A:     p.pad.wasPressed(input.BtnA),
		B:     p.pad.wasPressed(input.BtnB),
		X:     p.pad.wasPressed(input.BtnX),
		Menu:  p.pad.wasPressed(input.BtnMenu),
	}
	done := p.menuLoop.Update(keys)
	p.renderMenu(p.menuLoop.Snapshot())
	if !done {
		return
	}
	if p.menuLoop.Result() == menu.ResultQuit {
		p.quit = true
	}
	p.inMenu = false
	p.menuLoop = nil
	p.out.Pause(false)
	p.scaler.Resume()
}

func (p *Player) callbacks() libretro.Callbacks {
	return libretro.Callbacks{
		OnVideo: func(f libretro.Frame) {
			if f.HW {
				p.hwFrame = true
				return
			}
			p.lastFrame = &f
			if img := video.ToRGBA(f, p.pixFmt); img != nil {
				p.lastRGBA = img
			}
		},
		OnAudio: func(samples []int16) {
			p.out.Write(samples)
		},
		InputPoll: func() {},
		InputState: func(port, device, index, id uint) int16 {
			if port != 0 {
				return 0
			}
			switch device {
			case libretro.DeviceJoypad:
				if p.retroMask&(1<<id) != 0 {
					return 1
				}
			case libretro.DeviceAnalog:
				return analogAxis(p.rawState, index, id)
			}
			return 0
		},
	}
}

// analogAxis picks one stick axis out of a raw snapshot.
func analogAxis(st input.State, index, id uint) int16 {
	stick := st.Left
	if index == libretro.AnalogRight {
		stick = st.Right
	}
	if id == 0 {
		return stick.X
	}
	return stick.Y
}

func (p *Player) menuHooks() menu.Hooks {
	return menu.Hooks{
		FlushSaves: func() {
			if !p.saves.Flush() {
				p.Message("Save data write failed", 180)
			}
		},
		SaveState:  p.core.Serialize,
		LoadState:  p.core.Unserialize,
		ChangeDisc: p.changeDisc,
		Frame: func() *image.RGBA {
			if p.hwFrame {
				return nil
			}
			return p.lastRGBA
		},
		DropCPU:    p.scaler.Pause,
		RestoreCPU: p.scaler.Resume,
		PowerOff:   func() { p.quit = true },
	}
}

// changeDisc swaps the running disc and records it so the launcher can
// keep the recents entry pointed at the disc actually in the drive.
func (p *Player) changeDisc(path string) error {
	if err := p.swapDisc(path); err != nil {
		return err
	}
	if err := oss.WriteFile(config.ChangeDiscPath, []byte(p.cfg.Paths.SDRelative(path)), 0644); err != nil {
		p.log.Warn().Err(err).Msg("disc-change file")
	}
	return nil
}

// swapDisc drives the core's disk-control interface; cores without
// one fall back to a full game reload.
func (p *Player) swapDisc(path string) error {
	dc := p.core.DiskControl()
	if dc == nil {
		p.core.UnloadGame()
		p.game.SwapDisc(path)
		return p.core.LoadGame(libretro.GameInfo{Path: path})
	}
	if !dc.SetEjectState(true) {
		return fmt.Errorf("disc eject refused")
	}
	want := dc.ImageIndex()
	for di, dp := range p.menuSt.DiscPaths {
		if dp == path && uint(di) < dc.NumImages() {
			want = uint(di)
			break
		}
	}
	if !dc.SetImageIndex(want) {
		dc.SetEjectState(false)
		return fmt.Errorf("disc index %d refused", want)
	}
	if !dc.SetEjectState(false) {
		return fmt.Errorf("disc close refused")
	}
	p.game.SwapDisc(path)
	return nil
}

// optionsMenu builds the in-game Options submenu over live session
// state.
func (p *Player) optionsMenu() *menu.List {
	scaling := &menu.Item{
		Name:   "Scaling",
		Values: []string{"native", "aspect", "fullscreen", "cropped"},
		OnChange: func(_ *menu.List, it *menu.Item) {
			p.cfg.Video.Scaling = it.Values[it.Value]
		},
	}
	for i, v := range scaling.Values {
		if v == p.cfg.Video.Scaling {
			scaling.Value = i
		}
	}
	overclock := &menu.Item{
		Name:   "CPU Speed",
		Values: []string{"powersave", "normal", "performance"},
		Value:  1,
		OnChange: func(_ *menu.List, it *menu.Item) {
			p.scaler.SetOverclock(it.Value)
		},
	}
	return &menu.List{Type: menu.ListVar, Desc: "Options", Items: []*menu.Item{scaling, overclock}}
}

// consumeResumeSlot loads the slot the sleep/wake path asked for.
func (p *Player) consumeResumeSlot() {
	data, err := os.ReadFile(config.ResumeSlotPath)
	if err != nil {
		return
	}
	os.Remove(config.ResumeSlotPath)
	slot, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || slot < 0 || slot > menu.AutoResumeSlot {
		return
	}
	if err := p.menuSt.Load(slot); err != nil {
		p.log.Warn().Int("slot", slot).Err(err).Msg("resume load")
	}
}

func (p *Player) tickStatus() {
	if p.statusFrames > 0 {
		p.statusFrames--
		if p.statusFrames == 0 {
			p.status = ""
		}
	}
}

func (p *Player) loadPak() {
	pakPath := filepath.Join(p.cfg.Paths.Paks, p.emu+".pak", "pak.cfg")
	if !oss.Exists(pakPath) {
		p.pak = config.NewPakCfg()
		return
	}
	pak, err := config.LoadPakCfg(pakPath)
	if err != nil {
		p.log.Warn().Err(err).Str("path", pakPath).Msg("pak.cfg rejected, using defaults")
		p.pak = config.NewPakCfg()
		return
	}
	p.pak = pak
	for action, name := range pak.Shortcuts {
		if btn := buttonByName(name); btn != input.BtnNone {
			p.shortcuts[btn] = action
		}
	}
}

// buildMappings overlays pak bindings on the stock table; an invalid
// table reverts whole, never partially.
func (p *Player) buildMappings() []input.Mapping {
	mappings := input.DefaultMappings()
	for i := range mappings {
		if name, ok := p.pak.Bindings[mappings[i].Name]; ok {
			if btn := buttonByName(name); btn != input.BtnNone {
				mappings[i].LocalID = btn
			}
		}
	}
	if err := input.ValidateMappings(mappings); err != nil {
		p.log.Warn().Err(err).Msg("pak bindings invalid, reverting to defaults")
		input.ResetToDefaults(mappings)
	}
	return mappings
}

var buttonNames = map[string]input.Button{
	"UP": input.BtnUp, "DOWN": input.BtnDown, "LEFT": input.BtnLeft, "RIGHT": input.BtnRight,
	"A": input.BtnA, "B": input.BtnB, "X": input.BtnX, "Y": input.BtnY,
	"START": input.BtnStart, "SELECT": input.BtnSelect,
	"L1": input.BtnL1, "R1": input.BtnR1, "L2": input.BtnL2, "R2": input.BtnR2,
	"L3": input.BtnL3, "R3": input.BtnR3,
	"PLUS": input.BtnPlus, "MINUS": input.BtnMinus,
}

func buttonByName(name string) input.Button {
	if btn, ok := buttonNames[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return btn
	}
	return input.BtnNone
}

// shutdown flushes everything and leaves the sentinel the launcher
// resumes from.
func (p *Player) shutdown() {
	if !p.saves.Flush() {
		p.log.Error().Msg("save data flush failed on exit")
	}
	if p.cfg.Menu.AutosaveOnSleep {
		if err := p.menuSt.Save(menu.AutoResumeSlot); err != nil {
			p.log.Warn().Err(err).Msg("exit autosave")
		}
	}
	launch := p.game.Path
	if p.game.M3UPath != "" {
		launch = p.game.M3UPath
	}
	if err := oss.WriteFile(config.NextCommandPath, []byte(p.cfg.Paths.SDRelative(launch)), 0644); err != nil {
		p.log.Warn().Err(err).Msg("next-command file")
	}
	p.shutdownPartial()
}

// shutdownPartial releases whatever New managed to build, in reverse
// order.
func (p *Player) shutdownPartial() {
	if p.pad != nil {
		p.pad.close()
	}
	if p.core != nil && p.game != nil && p.game.Open() {
		p.core.UnloadGame()
		p.core.Deinit()
	}
	if p.scaler != nil {
		p.scaler.Close()
	}
	if p.out != nil {
		p.out.Close()
	}
	if p.bridge != nil {
		p.bridge.Close()
	}
	if p.screen != nil {
		p.screen.Close()
	}
	if p.game != nil {
		p.game.Close()
	}
}
