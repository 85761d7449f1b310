package thumb

import (
	"image"
	"sync"
	"testing"
	"time"

	"github.com/pocketdeck/pocketdeck/pkg/logger"
)

// blockingLoader hands each load to the test for release, so races
// between the worker and new requests become deterministic.
type blockingLoader struct {
	started chan string
	release chan struct{}
}

func newBlockingLoader() *blockingLoader {
	return &blockingLoader{started: make(chan string, 8), release: make(chan struct{})}
}

func (b *blockingLoader) load(path string, w, h int) (*image.RGBA, error) {
	b.started <- path
	<-b.release
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

func waitResult(t *testing.T, l *Loader) Result {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if res, ok := l.TakeResult(); ok {
			return res
		}
		select {
		case <-deadline:
			t.Fatal("no result")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestLoaderDeliversResult(t *testing.T) {
	bl := newBlockingLoader()
	l := newTestLoader(bl)
	defer l.Close()

	l.Request("/res/a.png", 64, 64, 7)
	<-bl.started
	close(bl.release)

	res := waitResult(t, l)
	if res.Path != "/res/a.png" || res.EntryIndex != 7 || res.Surface == nil {
		t.Errorf("result = %+v", res)
	}
	if _, ok := l.TakeResult(); ok {
		t.Error("result should be taken once")
	}
}

func TestLoaderSupersededResultDiscarded(t *testing.T) {
	bl := newBlockingLoader()
	l := newTestLoader(bl)
	defer l.Close()

	l.Request("/res/a.png", 64, 64, 1)
	<-bl.started
	// a different path lands while a.png is loading
	l.Request("/res/b.png", 64, 64, 2)
	bl.release <- struct{}{} // finish a.png: superseded, discarded
	<-bl.started             // b.png starts
	bl.release <- struct{}{} // finish b.png

	res := waitResult(t, l)
	if res.Path != "/res/b.png" || res.EntryIndex != 2 {
		t.Errorf("result = %+v, want the superseding load", res)
	}
}

func TestLoaderPreloadOnlyWhenIdle(t *testing.T) {
	bl := newBlockingLoader()
	l := newTestLoader(bl)
	defer l.Close()

	l.Request("/res/a.png", 64, 64, 1)
	<-bl.started
	// worker is busy but the pending slot is empty, so a preload
	// lands; a second one must not replace it
	l.Preload("/res/p1.png", 64, 64, 2)
	l.Preload("/res/p2.png", 64, 64, 3)

	bl.release <- struct{}{}
	got := <-bl.started
	if got != "/res/p1.png" {
		t.Errorf("second load = %q", got)
	}
	bl.release <- struct{}{}
	for {
		res := waitResult(t, l)
		if res.Path == "/res/p1.png" {
			return
		}
	}
}

func TestLoaderPromotesHintAfterQuietPeriod(t *testing.T) {
	bl := newBlockingLoader()
	l := newTestLoader(bl)
	defer l.Close()

	l.SetPreloadHint("/res/next.png", 64, 64, 5)
	l.Request("/res/current.png", 64, 64, 4)
	<-bl.started
	bl.release <- struct{}{}

	// with no new request arriving, the hint becomes the next load
	got := <-bl.started
	if got != "/res/next.png" {
		t.Errorf("promoted load = %q", got)
	}
	bl.release <- struct{}{}
	for {
		res := waitResult(t, l)
		if res.Path == "/res/next.png" && res.EntryIndex == 5 {
			return
		}
	}
}

func newTestLoader(bl *blockingLoader) *Loader {
	l := &Loader{log: logger.Default(), load: bl.load}
	l.cond = sync.NewCond(&l.mu)
	go l.run()
	return l
}
