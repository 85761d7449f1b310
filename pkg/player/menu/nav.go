package menu

// ListType discriminates how a list's items are rendered and what
// confirm means on them.
type ListType int

const (
	ListMain ListType = iota
	ListVar           // cycling option values
	ListFixed
	ListInput // button binding rows
)

// Action is what a key press means for the focused item.
type Action int

const (
	ActionNone Action = iota
	ActionExit
	ActionConfirm
	ActionSubmenu
	ActionAwaitInput
	ActionClearInput
	ActionValueLeft
	ActionValueRight
)

// Item is one row of a menu list.
type Item struct {
	Name string
	Desc string
	// Values cycles with left/right; Value indexes into it.
	Values []string
	Value  int

	Submenu   *List
	OnConfirm func(*List, *Item)
	OnChange  func(*List, *Item)

	// ID carries a retro button id for binding rows, Key a core
	// option key.
	ID  int
	Key string
}

// List is a menu screen.
type List struct {
	Type  ListType
	Desc  string
	Items []*Item

	OnConfirm func(*List, *Item)
	OnChange  func(*List, *Item)

	// Dirty marks the item slice as rebuilt; pagination must reload.
	Dirty bool
}

// Nav is the pagination and selection state for one list. All methods
// are pure state transitions so they test without a display.
type Nav struct {
	Selected    int
	Start, End  int // visible window [Start,End)
	VisibleRows int
	Dirty       bool
}

// NavInit resets the window for a list of count rows with at most
// maxVisible on screen.
func NavInit(count, maxVisible int) Nav {
	end := count
	if end > maxVisible {
		end = maxVisible
	}
	return Nav{Selected: 0, Start: 0, End: end, VisibleRows: end, Dirty: true}
}

// Navigate moves the selection by dir (±1), wrapping across the list
// and scrolling the window to keep the selection visible. Reports
// whether anything changed.
func (n *Nav) Navigate(count, dir int) bool {
	if count <= 1 {
		return false
	}
	n.Selected += dir
	if n.Selected < 0 {
		n.Selected = count - 1
		n.End = count
		n.Start = n.End - n.VisibleRows
		if n.Start < 0 {
			n.Start = 0
		}
	} else if n.Selected >= count {
		n.Selected = 0
		n.Start = 0
		n.End = n.VisibleRows
	} else if n.Selected < n.Start {
		n.Start--
		n.End--
	} else if n.Selected >= n.End {
		n.Start++
		n.End++
	}
	n.Dirty = true
	return true
}

// CycleValue steps an item's value by dir (±1) with wraparound.
// Reports whether the value changed.
func CycleValue(item *Item, dir int) bool {
	if item == nil || len(item.Values) < 2 {
		return false
	}
	item.Value = (item.Value + dir + len(item.Values)) % len(item.Values)
	return true
}

// GetAction classifies a confirm/back/clear key press against the
// focused list and item.
func GetAction(list *List, item *Item, a, b, x bool, btnLabels []string) Action {
	if b {
		return ActionExit
	}
	if a {
		switch {
		case item != nil && item.OnConfirm != nil:
			return ActionConfirm
		case item != nil && item.Submenu != nil:
			return ActionSubmenu
		case list != nil && list.OnConfirm != nil:
			if item != nil && sameValues(item.Values, btnLabels) {
				return ActionAwaitInput
			}
			return ActionConfirm
		}
	}
	if x && list != nil && list.Type == ListInput {
		return ActionClearInput
	}
	return ActionNone
}

// sameValues matches by slice identity, not contents: the binding
// rows all share the one button-label table.
func sameValues(a, b []string) bool {
	return len(a) > 0 && len(a) == len(b) && &a[0] == &b[0]
}
