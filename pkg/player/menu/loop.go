package menu

import (
	"fmt"

	"github.com/pocketdeck/pocketdeck/pkg/config"
	"github.com/pocketdeck/pocketdeck/pkg/logger"
	oss "github.com/pocketdeck/pocketdeck/pkg/os"
)

// Result is how a menu session ended.
type Result int

const (
	ResultNone Result = iota
	ResultResume
	ResultQuit
)

// Keys is one frame of menu input, already debounced to presses.
type Keys struct {
	Up, Down, Left, Right bool
	A, B, X               bool
	Menu                  bool
}

const (
	itemContinue = iota
	itemSave
	itemLoad
	itemOptions
	itemQuit
	mainItems
)

var mainLabels = [mainItems]string{"Continue", "Save", "Load", "Options", "Quit"}

// Loop is the pause-menu state machine. The frame loop feeds it one
// Keys sample per frame and renders from Snapshot; the core never
// runs while a Loop is open.
type Loop struct {
	st  *State
	log *logger.Logger

	nav     Nav
	options *List
	sub     *List
	subNav  Nav

	result Result
	status string
}

// Open starts a menu session: flush saves for crash safety, drop the
// CPU to idle, stop rumble, re-read the persisted slot.
func Open(st *State, options *List, log *logger.Logger) *Loop {
	if st.hooks.FlushSaves != nil {
		st.hooks.FlushSaves()
	}
	if st.hooks.DropCPU != nil {
		st.hooks.DropCPU()
	}
	if st.hooks.StopRumble != nil {
		st.hooks.StopRumble()
	}
	st.Slot = st.ReadPersistedSlot()
	st.UpdateState()
	return &Loop{
		st:      st,
		log:     log,
		nav:     NavInit(mainItems, mainItems),
		options: options,
	}
}

// Update advances the state machine one frame. It reports true when
// the session is over; Result then says how.
func (l *Loop) Update(k Keys) bool {
	l.status = ""
	if l.sub != nil {
		l.updateSubmenu(k)
		return false
	}

	switch {
	case k.Up:
		l.nav.Navigate(mainItems, -1)
	case k.Down:
		l.nav.Navigate(mainItems, +1)
	case k.Left, k.Right:
		dir := 1
		if k.Left {
			dir = -1
		}
		switch l.nav.Selected {
		case itemContinue:
			l.st.CycleDisc(dir)
		case itemSave, itemLoad:
			l.st.CycleSlot(dir)
		}
	case k.A:
		return l.confirm()
	case k.B, k.Menu:
		l.finish(ResultResume)
		return true
	}
	return false
}

func (l *Loop) confirm() bool {
	switch l.nav.Selected {
	case itemContinue:
		if err := l.st.ApplyDisc(); err != nil {
			l.log.Error().Err(err).Msg("disc change")
			l.status = "Disc change failed"
			return false
		}
		l.finish(ResultResume)
		return true
	case itemSave:
		if err := l.st.Save(l.st.Slot); err != nil {
			l.log.Error().Err(err).Msg("save state")
			l.status = "Save failed"
			return false
		}
		l.finish(ResultResume)
		return true
	case itemLoad:
		if !l.st.SaveExists {
			return false
		}
		if err := l.st.Load(l.st.Slot); err != nil {
			l.log.Error().Err(err).Msg("load state")
			l.status = "Load failed"
			return false
		}
		l.finish(ResultResume)
		return true
	case itemOptions:
		if l.options != nil {
			l.sub = l.options
			l.subNav = NavInit(len(l.options.Items), 8)
		}
		return false
	case itemQuit:
		l.finish(ResultQuit)
		if oss.Exists(config.NoUIPath) && l.st.hooks.PowerOff != nil {
			l.st.hooks.PowerOff()
		}
		return true
	}
	return false
}

func (l *Loop) updateSubmenu(k Keys) {
	if l.sub.Dirty {
		l.subNav = NavInit(len(l.sub.Items), 8)
		l.sub.Dirty = false
	}
	count := len(l.sub.Items)
	var item *Item
	if l.subNav.Selected < count {
		item = l.sub.Items[l.subNav.Selected]
	}
	switch {
	case k.Up:
		l.subNav.Navigate(count, -1)
	case k.Down:
		l.subNav.Navigate(count, +1)
	case k.Left, k.Right:
		dir := 1
		if k.Left {
			dir = -1
		}
		if CycleValue(item, dir) {
			if item.OnChange != nil {
				item.OnChange(l.sub, item)
			} else if l.sub.OnChange != nil {
				l.sub.OnChange(l.sub, item)
			}
		}
	default:
		switch GetAction(l.sub, item, k.A, k.B || k.Menu, k.X, nil) {
		case ActionExit:
			l.sub = nil
		case ActionConfirm:
			if item != nil && item.OnConfirm != nil {
				item.OnConfirm(l.sub, item)
			} else if l.sub.OnConfirm != nil {
				l.sub.OnConfirm(l.sub, item)
			}
		case ActionSubmenu:
			l.sub = item.Submenu
			l.subNav = NavInit(len(l.sub.Items), 8)
		}
	}
}

func (l *Loop) finish(r Result) {
	l.result = r
	if l.st.hooks.RestoreCPU != nil {
		l.st.hooks.RestoreCPU()
	}
}

func (l *Loop) Result() Result { return l.result }

// Snapshot is everything a renderer needs for one menu frame.
type Snapshot struct {
	Items      []string
	Selected   int
	Status     string
	Slot       int
	SaveExists bool
	Preview    string // BMP path, empty when none
	DiscLabel  string // empty for single-disc games
	InSubmenu  bool
	SubDesc    string
	SubItems   []*Item
	SubNav     Nav
}

func (l *Loop) Snapshot() Snapshot {
	snap := Snapshot{
		Items:      mainLabels[:],
		Selected:   l.nav.Selected,
		Status:     l.status,
		Slot:       l.st.Slot,
		SaveExists: l.st.SaveExists,
	}
	if l.st.PreviewExists {
		snap.Preview = l.st.SlotBmpPath(l.st.Slot)
	}
	if l.st.TotalDiscs > 1 {
		snap.DiscLabel = fmt.Sprintf("Disc %d/%d", l.st.Disc+1, l.st.TotalDiscs)
	}
	if l.sub != nil {
		snap.InSubmenu = true
		snap.SubDesc = l.sub.Desc
		snap.SubItems = l.sub.Items
		snap.SubNav = l.subNav
	}
	return snap
}
