// Package thumb is the browser's thumbnail subsystem: a
// per-directory .res index, a tiny FIFO of decoded surfaces, and a
// single background loader with request superseding.
package thumb

import (
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	resDir = ".res"
	// composed thumbnail paths longer than this are never cached
	maxThumbPath = 512
	// CacheSlots is the FIFO capacity; browsing keeps current plus
	// both neighbors warm.
	CacheSlots = 3
)

// ResIndex answers "does this entry have a thumbnail" in O(1) after
// one directory scan.
type ResIndex struct {
	mu   sync.Mutex
	dirs map[string]map[string]struct{} // dir -> .res filenames
}

func NewResIndex() *ResIndex {
	return &ResIndex{dirs: map[string]map[string]struct{}{}}
}

// ThumbPath composes the thumbnail location for an entry; ok is false
// when there is none or the path would be oversized.
func (r *ResIndex) ThumbPath(entryPath string) (string, bool) {
	dir := filepath.Dir(entryPath)
	base := filepath.Base(entryPath)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
	path := filepath.Join(dir, resDir, name)
	if len(path) > maxThumbPath {
		return "", false
	}
	if _, ok := r.scan(dir)[name]; !ok {
		return "", false
	}
	return path, true
}

// HasThumbnail reports membership without composing the path twice.
func (r *ResIndex) HasThumbnail(entryPath string) bool {
	_, ok := r.ThumbPath(entryPath)
	return ok
}

// Forget drops one directory's index so the next query rescans.
func (r *ResIndex) Forget(dir string) {
	r.mu.Lock()
	delete(r.dirs, dir)
	r.mu.Unlock()
}

// scan indexes a directory's .res folder once; a missing folder is
// cached as empty.
func (r *ResIndex) scan(dir string) map[string]struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.dirs[dir]; ok {
		return set
	}
	set := map[string]struct{}{}
	if files, err := os.ReadDir(filepath.Join(dir, resDir)); err == nil {
		for _, f := range files {
			if !f.IsDir() {
				set[f.Name()] = struct{}{}
			}
		}
	}
	r.dirs[dir] = set
	return set
}

// Cache is the UI-side surface FIFO. It exclusively owns the stored
// surfaces; callers look them up every frame and never keep the
// pointer.
type Cache struct {
	slots []slot
	// which cached entry is on screen, if any
	displayedIndex int
	displayedValid bool
}

type slot struct {
	entryIndex int
	path       string
	data       *image.RGBA
}

func NewCache() *Cache { return &Cache{} }

// Add stores a surface for an entry. Fails when full; the caller must
// Evict first.
func (c *Cache) Add(entryIndex int, path string, data *image.RGBA) bool {
	if len(c.slots) >= CacheSlots || data == nil {
		return false
	}
	c.slots = append(c.slots, slot{entryIndex: entryIndex, path: path, data: data})
	return true
}

// Evict frees the oldest slot. Evicting the displayed entry clears
// the displayed mark.
func (c *Cache) Evict() {
	if len(c.slots) == 0 {
		return
	}
	if c.displayedValid && c.slots[0].entryIndex == c.displayedIndex {
		c.displayedValid = false
	}
	c.slots = c.slots[1:]
}

// Find returns the slot number caching an entry, or -1.
func (c *Cache) Find(entryIndex int) int {
	for i, s := range c.slots {
		if s.entryIndex == entryIndex {
			return i
		}
	}
	return -1
}

// Surface is the per-frame lookup; nil when the entry is not cached.
func (c *Cache) Surface(entryIndex int) *image.RGBA {
	if i := c.Find(entryIndex); i >= 0 {
		return c.slots[i].data
	}
	return nil
}

func (c *Cache) Full() bool { return len(c.slots) >= CacheSlots }
func (c *Cache) Len() int   { return len(c.slots) }

// SetDisplayed marks the entry currently on screen. It must be
// cached.
func (c *Cache) SetDisplayed(entryIndex int) bool {
	if c.Find(entryIndex) < 0 {
		return false
	}
	c.displayedIndex = entryIndex
	c.displayedValid = true
	return true
}

func (c *Cache) Displayed() (int, bool) {
	return c.displayedIndex, c.displayedValid
}

// Clear drops everything, for directory changes.
func (c *Cache) Clear() {
	c.slots = nil
	c.displayedValid = false
}

// PreloadHintIndex picks the neighbor to warm based on scroll
// direction; -1 when idle or out of bounds.
func PreloadHintIndex(current, last, count int) int {
	if current == last {
		return -1
	}
	next := current + 1
	if current < last {
		next = current - 1
	}
	if next < 0 || next >= count {
		return -1
	}
	return next
}
