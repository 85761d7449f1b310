package launcher

import (
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"strings"
	"time"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/pocketdeck/pocketdeck/pkg/config"
	"github.com/pocketdeck/pocketdeck/pkg/launcher/thumb"
	"github.com/pocketdeck/pocketdeck/pkg/logger"
)

var (
	browserBG     = color.RGBA{16, 16, 24, 255}
	browserText   = color.RGBA{200, 200, 200, 255}
	browserSel    = color.RGBA{255, 255, 255, 255}
	browserDim    = color.RGBA{110, 110, 110, 255}
	browserAccent = color.RGBA{120, 180, 255, 255}
)

type rowKind int

const (
	rowEntry rowKind = iota
	rowRecents
	rowCollection
)

// row is one line of the browser. Pseudo rows (recents, collections)
// open virtual lists instead of directories.
type row struct {
	Entry
	kind rowKind
	col  int // collection index when kind == rowCollection
}

type view struct {
	title string
	rows  []row
	sel   int
}

// Browser is the interactive frontend of the launcher: an SDL window,
// a navigation stack, and the background thumbnail machinery.
type Browser struct {
	cfg *config.Launcher
	l   *Launcher
	log *logger.Logger

	win *sdl.Window

	res    *thumb.ResIndex
	cache  *thumb.Cache
	loader *thumb.Loader
	fade   *thumb.Fade

	stack   []view
	lastSel int
	quit    bool
}

func NewBrowser(cfg *config.Launcher, l *Launcher, log *logger.Logger) (*Browser, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_JOYSTICK); err != nil {
		return nil, err
	}
	win, err := sdl.CreateWindow("pocketdeck", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(cfg.Window.Width), int32(cfg.Window.Height), sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, err
	}
	sdl.JoystickOpen(0)

	b := &Browser{
		cfg:    cfg,
		l:      l,
		log:    log,
		win:    win,
		res:    thumb.NewResIndex(),
		cache:  thumb.NewCache(),
		loader: thumb.NewLoader(log),
		fade:   thumb.NewFade(int64(cfg.Thumbs.FadeMs), 255),
	}
	b.stack = []view{b.rootView()}
	b.restoreFocus()
	return b, nil
}

// Run drives the browser until the user launches something or quits.
func (b *Browser) Run() {
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()
	for !b.quit {
		b.input()
		if b.quit {
			break
		}
		b.pumpThumbs()
		b.render()
		<-ticker.C
	}
}

func (b *Browser) Close() {
	b.loader.Close()
	if b.win != nil {
		_ = b.win.Destroy()
		b.win = nil
	}
	sdl.Quit()
}

// rootView mixes the pseudo rows in above the ROM root listing.
func (b *Browser) rootView() view {
	v := view{title: "Games"}
	if len(b.l.Recents()) > 0 {
		v.rows = append(v.rows, row{kind: rowRecents, Entry: Entry{Name: "Recently Played", Dir: true}})
	}
	for i, c := range b.l.Collections() {
		v.rows = append(v.rows, row{kind: rowCollection, col: i, Entry: Entry{Name: c.Name, Dir: true}})
	}
	for _, e := range b.l.Library().List(b.cfg.Paths.Roms) {
		v.rows = append(v.rows, row{Entry: e})
	}
	return v
}

func (b *Browser) dirView(dir, title string) view {
	v := view{title: title}
	for _, e := range b.l.Library().List(dir) {
		v.rows = append(v.rows, row{Entry: e})
	}
	return v
}

func (b *Browser) recentsView() view {
	v := view{title: "Recently Played"}
	for _, r := range b.l.Recents() {
		abs := b.cfg.Paths.SDAbsolute(r.Path)
		e := Entry{
			Path:  abs,
			Name:  filepath.Base(abs),
			Alias: r.Alias,
			Emu:   emuTag(filepath.Dir(abs)),
		}
		rw := row{Entry: e}
		if !r.Available {
			rw.Emu = ""
		}
		v.rows = append(v.rows, rw)
	}
	return v
}

func (b *Browser) collectionView(i int) view {
	c := b.l.Collections()[i]
	v := view{title: c.Name}
	for _, e := range c.Entries {
		v.rows = append(v.rows, row{Entry: e})
	}
	return v
}

// restoreFocus reselects the last launched ROM on startup.
func (b *Browser) restoreFocus() {
	last := RestoreSelection()
	if last == "" {
		return
	}
	// walk down from the root, opening directories along the way
	for {
		v := b.top()
		advanced := false
		for i, r := range v.rows {
			if r.kind != rowEntry {
				continue
			}
			if r.Path == last {
				v.sel = i
				return
			}
			if r.Dir && strings.HasPrefix(last, r.Path+string(filepath.Separator)) {
				v.sel = i
				b.push(b.dirView(r.Path, r.Display()))
				advanced = true
				break
			}
		}
		if !advanced {
			return
		}
	}
}

func (b *Browser) top() *view { return &b.stack[len(b.stack)-1] }

func (b *Browser) push(v view) {
	b.stack = append(b.stack, v)
	b.lastSel = -1
	b.cache.Clear()
}

func (b *Browser) pop() {
	if len(b.stack) == 1 {
		b.quit = true
		return
	}
	b.stack = b.stack[:len(b.stack)-1]
	b.lastSel = -1
	b.cache.Clear()
}

func (b *Browser) input() {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch e := ev.(type) {
		case *sdl.QuitEvent:
			b.quit = true
		case *sdl.KeyboardEvent:
			if e.Type != sdl.KEYDOWN {
				continue
			}
			switch e.Keysym.Scancode {
			case sdl.SCANCODE_UP:
				b.move(-1)
			case sdl.SCANCODE_DOWN:
				b.move(1)
			case sdl.SCANCODE_LEFT:
				b.move(-b.pageSize())
			case sdl.SCANCODE_RIGHT:
				b.move(b.pageSize())
			case sdl.SCANCODE_RETURN, sdl.SCANCODE_Z:
				b.confirm()
			case sdl.SCANCODE_ESCAPE, sdl.SCANCODE_X:
				b.pop()
			}
		case *sdl.JoyHatEvent:
			switch {
			case e.Value&sdl.HAT_UP != 0:
				b.move(-1)
			case e.Value&sdl.HAT_DOWN != 0:
				b.move(1)
			case e.Value&sdl.HAT_LEFT != 0:
				b.move(-b.pageSize())
			case e.Value&sdl.HAT_RIGHT != 0:
				b.move(b.pageSize())
			}
		case *sdl.JoyButtonEvent:
			if e.State != sdl.PRESSED {
				continue
			}
			switch e.Button {
			case 0:
				b.confirm()
			case 1:
				b.pop()
			}
		}
	}
}

func (b *Browser) move(delta int) {
	v := b.top()
	if len(v.rows) == 0 {
		return
	}
	b.lastSel = v.sel
	v.sel += delta
	if v.sel < 0 {
		v.sel = 0
	}
	if v.sel >= len(v.rows) {
		v.sel = len(v.rows) - 1
	}
}

func (b *Browser) confirm() {
	v := b.top()
	if len(v.rows) == 0 {
		return
	}
	r := v.rows[v.sel]
	switch r.kind {
	case rowRecents:
		b.push(b.recentsView())
	case rowCollection:
		b.push(b.collectionView(r.col))
	default:
		if r.Dir {
			b.push(b.dirView(r.Path, r.Display()))
			return
		}
		if r.Emu == "" {
			b.log.Warn().Str("rom", r.Path).Msg("no emulator installed")
			return
		}
		if err := b.l.Launch(r.Entry, r.Alias); err != nil {
			b.log.Error().Err(err).Msg("launch failed")
			return
		}
		b.quit = true
	}
}

// pumpThumbs keeps the selected row's thumbnail flowing: request on
// selection change, hint the likely next one, absorb loader results.
func (b *Browser) pumpThumbs() {
	v := b.top()
	now := time.Now().UnixMilli()
	tw, th := b.cfg.Thumbs.Width, b.cfg.Thumbs.Height

	if len(v.rows) > 0 && v.sel != b.lastSel {
		r := v.rows[v.sel]
		if path, ok := b.thumbFor(r); ok {
			if b.cache.Find(v.sel) >= 0 {
				if b.cache.SetDisplayed(v.sel) {
					b.fade.Start(now)
				}
			} else {
				b.loader.Request(path, tw, th, v.sel)
			}
		}
		if hint := thumb.PreloadHintIndex(v.sel, b.lastSel, len(v.rows)); hint >= 0 && b.cache.Find(hint) < 0 {
			if path, ok := b.thumbFor(v.rows[hint]); ok {
				b.loader.SetPreloadHint(path, tw, th, hint)
			}
		}
		b.lastSel = v.sel
	}

	if res, ok := b.loader.TakeResult(); ok {
		for b.cache.Full() {
			b.cache.Evict()
		}
		b.cache.Add(res.EntryIndex, res.Path, res.Surface)
		if res.EntryIndex == v.sel {
			b.cache.SetDisplayed(v.sel)
			b.fade.Start(now)
		}
	}
	b.fade.Update(now)
}

func (b *Browser) thumbFor(r row) (string, bool) {
	if r.kind != rowEntry || r.Dir || r.Path == "" {
		return "", false
	}
	return b.res.ThumbPath(r.Path)
}

func (b *Browser) pageSize() int {
	face := basicfont.Face7x13
	if n := (b.cfg.Window.Height - b.cfg.Window.Height/4) / (face.Height + 8); n > 0 {
		return n
	}
	return 1
}

func (b *Browser) render() {
	w, h := b.cfg.Window.Width, b.cfg.Window.Height
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(browserBG), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	lineH := face.Height + 8
	x, y := w/16, h/8
	page := b.pageSize()

	v := b.top()
	drawString(canvas, v.title, x, y-lineH, browserAccent, face)

	first := v.sel - v.sel%page
	for i := first; i < len(v.rows) && i < first+page; i++ {
		r := v.rows[i]
		label := r.Display()
		if r.Dir || r.kind != rowEntry {
			label += "/"
		}
		c := browserText
		if r.kind == rowEntry && !r.Dir && r.Emu == "" {
			c = browserDim
		}
		if i == v.sel {
			c = browserSel
		}
		drawString(canvas, label, x, y+(i-first)*lineH, c, face)
	}

	if idx, ok := b.cache.Displayed(); ok && idx == v.sel {
		if img := b.cache.Surface(idx); img != nil {
			mask := image.NewUniform(color.Alpha{A: uint8(b.fade.Alpha())})
			r := img.Bounds().Add(image.Pt(w-img.Bounds().Dx()-w/16, h/8))
			draw.DrawMask(canvas, r, img, img.Bounds().Min, mask, image.Point{}, draw.Over)
		}
	}

	if err := b.blit(canvas); err != nil {
		b.log.Warn().Err(err).Msg("browser present")
	}
}

func drawString(dst *image.RGBA, s string, x, y int, c color.RGBA, face font.Face) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func (b *Browser) blit(img *image.RGBA) error {
	surf, err := sdl.CreateRGBSurfaceWithFormatFrom(
		unsafe.Pointer(&img.Pix[0]),
		int32(img.Rect.Dx()), int32(img.Rect.Dy()), 32, int32(img.Stride),
		sdl.PIXELFORMAT_ABGR8888)
	if err != nil {
		return err
	}
	defer surf.Free()

	dst, err := b.win.GetSurface()
	if err != nil {
		return err
	}
	if err := surf.Blit(nil, dst, nil); err != nil {
		return err
	}
	return b.win.UpdateSurface()
}
