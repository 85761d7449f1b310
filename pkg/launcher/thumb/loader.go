package thumb

import (
	"image"
	"image/png"
	"os"
	"sync"
	"time"

	xdraw "golang.org/x/image/draw"

	"github.com/pocketdeck/pocketdeck/pkg/logger"
)

// promoteDelay is how long a finished load waits before promoting the
// preload hint, giving a fast-scrolling user time to supersede it.
const promoteDelay = 20 * time.Millisecond

type request struct {
	path          string // "" means no request
	width, height int
	entryIndex    int
	isPreload     bool
}

// Result is the last accepted load.
type Result struct {
	Surface    *image.RGBA
	Path       string
	EntryIndex int
}

// Loader is the single background thumbnail decoder. One goroutine,
// one mutex, one condvar; at most one request pending.
type Loader struct {
	log *logger.Logger

	mu       sync.Mutex
	cond     *sync.Cond
	req      request
	hint     request // preload promoted when the queue stays quiet
	result   Result
	shutdown bool

	// injectable for tests
	load func(path string, w, h int) (*image.RGBA, error)
}

func NewLoader(log *logger.Logger) *Loader {
	l := &Loader{log: log, load: loadScaled}
	l.cond = sync.NewCond(&l.mu)
	go l.run()
	return l
}

// Request queues a visible entry's thumbnail. Always supersedes
// whatever is pending.
func (l *Loader) Request(path string, w, h, entryIndex int) {
	l.mu.Lock()
	l.req = request{path: path, width: w, height: h, entryIndex: entryIndex}
	l.mu.Unlock()
	l.cond.Signal()
}

// Preload queues a neighbor speculatively. It only lands when nothing
// else is pending.
func (l *Loader) Preload(path string, w, h, entryIndex int) {
	l.mu.Lock()
	if l.req.path == "" && l.hint.path == "" {
		l.req = request{path: path, width: w, height: h, entryIndex: entryIndex, isPreload: true}
		l.cond.Signal()
	}
	l.mu.Unlock()
}

// SetPreloadHint stores the neighbor to load after the current
// request completes.
func (l *Loader) SetPreloadHint(path string, w, h, entryIndex int) {
	l.mu.Lock()
	l.hint = request{path: path, width: w, height: h, entryIndex: entryIndex, isPreload: true}
	l.mu.Unlock()
}

// TakeResult hands the last accepted surface to the UI, at most once.
func (l *Loader) TakeResult() (Result, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.result.Surface == nil {
		return Result{}, false
	}
	out := l.result
	l.result = Result{}
	return out, true
}

// Close wakes the worker and lets it exit.
func (l *Loader) Close() {
	l.mu.Lock()
	l.shutdown = true
	l.mu.Unlock()
	l.cond.Broadcast()
}

func (l *Loader) run() {
	for {
		l.mu.Lock()
		for l.req.path == "" && !l.shutdown {
			l.cond.Wait()
		}
		if l.shutdown {
			l.mu.Unlock()
			return
		}
		req := l.req
		l.req = request{}
		l.mu.Unlock()

		surface, err := l.load(req.path, req.width, req.height)
		if err != nil {
			l.log.Debug().Err(err).Str("path", req.path).Msg("thumbnail load")
		}

		l.mu.Lock()
		accepted := l.req.path == "" || l.req.path == req.path
		if accepted && surface != nil {
			l.result = Result{Surface: surface, Path: req.path, EntryIndex: req.entryIndex}
		}
		promote := accepted && !req.isPreload
		l.mu.Unlock()

		if !promote {
			continue
		}
		time.Sleep(promoteDelay)
		l.mu.Lock()
		if l.req.path == "" && l.hint.path != "" {
			l.req = l.hint
			l.hint = request{}
			l.cond.Signal()
		}
		l.mu.Unlock()
	}
}

// loadScaled decodes a PNG and fits it into w×h preserving aspect.
func loadScaled(path string, w, h int) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, err := png.Decode(f)
	if err != nil {
		return nil, err
	}

	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw == 0 || sh == 0 {
		return nil, nil
	}
	dw, dh := w, sh*w/sw
	if dh > h {
		dw, dh = sw*h/sh, h
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, sb, xdraw.Src, nil)
	return dst, nil
}
