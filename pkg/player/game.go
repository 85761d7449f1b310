// Package player runs one libretro session: core lifecycle, frame
// loop, CPU autoscaling, presentation, the pause menu and save
// persistence.
package player

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pocketdeck/pocketdeck/pkg/player/menu"
)

// Game is the loaded image. Immutable for the session except for the
// open flag and disc swaps.
type Game struct {
	Path    string // absolute path of the image handed to the core
	Name    string // stem without extension
	M3UPath string // set when launched through an M3U
	TmpPath string // extraction dir for zipped ROMs, removed on Close

	Data []byte // cached blob for cores that refuse paths
	Size int64

	open bool
}

// NewGame resolves what the launcher handed over: an M3U becomes its
// first disc, a zip is extracted to a scratch dir.
func NewGame(path string) (*Game, error) {
	g := &Game{
		Path: path,
		Name: stem(path),
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".m3u":
		discs := menu.ParseM3U(path)
		if len(discs) == 0 {
			return nil, fmt.Errorf("m3u %q lists no readable discs", path)
		}
		g.M3UPath = path
		g.Path = discs[0]
	case ".zip":
		extracted, tmp, err := extractZip(path)
		if err != nil {
			return nil, err
		}
		g.Path = extracted
		g.TmpPath = tmp
	}
	st, err := os.Stat(g.Path)
	if err != nil {
		return nil, fmt.Errorf("rom: %w", err)
	}
	g.Size = st.Size()
	g.open = true
	return g, nil
}

// LoadData reads and caches the blob for cores with NeedFullPath
// unset.
func (g *Game) LoadData() ([]byte, error) {
	if g.Data != nil {
		return g.Data, nil
	}
	data, err := os.ReadFile(g.Path)
	if err != nil {
		return nil, err
	}
	g.Data = data
	return data, nil
}

// SwapDisc repoints the game at another disc image of the same set.
func (g *Game) SwapDisc(path string) {
	g.Path = path
	g.Data = nil
}

func (g *Game) Open() bool { return g.open }

// Close releases the blob and the extraction scratch dir.
func (g *Game) Close() {
	g.Data = nil
	g.open = false
	if g.TmpPath != "" {
		os.RemoveAll(g.TmpPath)
		g.TmpPath = ""
	}
}

// extractZip unpacks the first regular file of the archive, which is
// how single-ROM zips are laid out.
func extractZip(path string) (rom, tmp string, err error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", "", fmt.Errorf("zip: %w", err)
	}
	defer r.Close()

	tmp, err = os.MkdirTemp("", "pocketdeck-rom-")
	if err != nil {
		return "", "", err
	}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		dst := filepath.Join(tmp, filepath.Base(f.Name))
		if err := copyZipFile(f, dst); err != nil {
			os.RemoveAll(tmp)
			return "", "", err
		}
		return dst, tmp, nil
	}
	os.RemoveAll(tmp)
	return "", "", fmt.Errorf("zip %q holds no files", path)
}

func copyZipFile(f *zip.File, dst string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
