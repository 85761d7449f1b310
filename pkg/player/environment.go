package player

import (
	"github.com/pocketdeck/pocketdeck/pkg/libretro"
	"github.com/pocketdeck/pocketdeck/pkg/player/input"
	"github.com/pocketdeck/pocketdeck/pkg/player/video"
)

// The Player is the core's environment: every SET_* the core issues
// lands on one of these.

func (p *Player) SetHWRender(cb *libretro.HWRenderCallback) bool {
	if !p.cfg.Video.HardwareRender {
		return false
	}
	bridge, err := video.NewBridge(p.screen, cb, p.log)
	if err != nil {
		// declined; the core falls back to software video_refresh
		p.log.Warn().Err(err).Msg("hw render declined")
		return false
	}
	p.bridge = bridge
	return true
}

func (p *Player) SetPixelFormat(f libretro.PixelFormat) bool {
	p.pixFmt = f
	return true
}

func (p *Player) SetInputDescriptors(desc []libretro.InputDescriptor) {
	input.MarkIgnoredButtons(p.mappings, desc)
}

func (p *Player) SetGeometry(g libretro.Geometry) {
	p.av.Geometry = g
}

func (p *Player) SetSystemAVInfo(av libretro.SystemAVInfo) {
	p.av = av
	p.scaler.Reset(av.Timing.FPS)
	if p.out != nil {
		p.out.SetRate(int(av.Timing.SampleRate))
	}
	if p.bridge != nil {
		if err := p.bridge.Resize(int(av.Geometry.MaxW), int(av.Geometry.MaxH)); err != nil {
			p.bridge = nil
		}
	}
}

func (p *Player) Variable(key string) (string, bool) {
	if p.pak == nil {
		return "", false
	}
	v, ok := p.pak.Core[key]
	return v, ok
}

func (p *Player) Message(text string, frames int) {
	p.status = text
	p.statusFrames = frames
}

func (p *Player) SetRotation(rot uint) bool {
	p.rotation = rot % 4
	return true
}
