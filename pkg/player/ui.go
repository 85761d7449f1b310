package player

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/pocketdeck/pocketdeck/pkg/player/menu"
)

var (
	menuDim       = color.RGBA{0, 0, 0, 160}
	menuText      = color.RGBA{200, 200, 200, 255}
	menuHighlight = color.RGBA{255, 255, 255, 255}
	menuAccent    = color.RGBA{120, 180, 255, 255}
)

// renderMenu composes the pause menu over the last core frame and
// presents it through whichever path is active.
func (p *Player) renderMenu(snap menu.Snapshot) {
	w, h := p.cfg.Video.Width, p.cfg.Video.Height
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))

	// backdrop: last software frame, black on the hardware path
	if p.lastRGBA != nil && !p.hwFrame {
		draw.Draw(canvas, canvas.Bounds(), menu.ScaleNearest(p.lastRGBA, w, h), image.Point{}, draw.Src)
	}
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(menuDim), image.Point{}, draw.Over)

	face := basicfont.Face7x13
	lineH := face.Height + 8
	x, y := w/8, h/4

	if snap.InSubmenu {
		drawText(canvas, snap.SubDesc, x, y-lineH, menuAccent, face)
		for i, it := range snap.SubItems {
			label := it.Name
			if len(it.Values) > 0 {
				label = fmt.Sprintf("%s  < %s >", it.Name, it.Values[it.Value])
			}
			drawText(canvas, label, x, y+i*lineH, pick(i == snap.SubNav.Selected), face)
		}
	} else {
		for i, name := range snap.Items {
			label := name
			switch name {
			case "Continue":
				if snap.DiscLabel != "" {
					label = fmt.Sprintf("%s  < %s >", name, snap.DiscLabel)
				}
			case "Save", "Load":
				label = fmt.Sprintf("%s  < Slot %d >", name, snap.Slot+1)
			}
			drawText(canvas, label, x, y+i*lineH, pick(i == snap.Selected), face)
		}
		if snap.Preview != "" {
			if img, err := menu.ReadPreview(snap.Preview); err == nil {
				r := img.Bounds().Add(image.Pt(w/2, h/4))
				draw.Draw(canvas, r, img, img.Bounds().Min, draw.Src)
			}
		}
	}
	if snap.Status != "" {
		drawText(canvas, snap.Status, x, h-lineH*2, menuAccent, face)
	}

	if err := p.blitRGBA(canvas); err != nil {
		p.log.Warn().Err(err).Msg("menu present")
	}
}

func pick(selected bool) color.RGBA {
	if selected {
		return menuHighlight
	}
	return menuText
}

func drawText(dst *image.RGBA, s string, x, y int, c color.RGBA, face font.Face) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// overlayStatus copies the frame and stamps the transient status line
// in the lower-left corner.
func (p *Player) overlayStatus(src *image.RGBA) *image.RGBA {
	out := image.NewRGBA(src.Rect)
	draw.Draw(out, out.Bounds(), src, src.Rect.Min, draw.Src)
	face := basicfont.Face7x13
	drawText(out, p.status, 8, src.Rect.Max.Y-face.Height, menuAccent, face)
	return out
}

// presentFrame pushes a gameplay frame out honoring the scaling mode
// on the SDL surface path; the GL path scales inside Present.
func (p *Player) presentFrame(img *image.RGBA, aspect float64) error {
	w, h := int32(img.Rect.Dx()), int32(img.Rect.Dy())
	surf, err := sdl.CreateRGBSurfaceWithFormatFrom(
		unsafe.Pointer(&img.Pix[0]), w, h, 32, int32(img.Stride), sdl.PIXELFORMAT_ABGR8888)
	if err != nil {
		return err
	}
	defer surf.Free()

	if p.bridge.Enabled() {
		conv, err := surf.ConvertFormat(sdl.PIXELFORMAT_RGB565, 0)
		if err != nil {
			return err
		}
		defer conv.Free()
		p.bridge.PresentSurface(conv)
		return nil
	}
	return p.screen.BlitFit(surf, p.cfg.Video.Scaling, aspect)
}

// blitRGBA pushes a composed frame out: GL texture upload on the
// hardware path, SDL surface blit otherwise.
func (p *Player) blitRGBA(img *image.RGBA) error {
	w, h := int32(img.Rect.Dx()), int32(img.Rect.Dy())
	surf, err := sdl.CreateRGBSurfaceWithFormatFrom(
		unsafe.Pointer(&img.Pix[0]), w, h, 32, int32(img.Stride), sdl.PIXELFORMAT_ABGR8888)
	if err != nil {
		return err
	}
	defer surf.Free()

	if p.bridge.Enabled() {
		conv, err := surf.ConvertFormat(sdl.PIXELFORMAT_RGB565, 0)
		if err != nil {
			return err
		}
		defer conv.Free()
		p.bridge.PresentSurface(conv)
		return nil
	}
	return p.screen.Blit(surf)
}
