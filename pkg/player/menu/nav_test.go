package menu

import "testing"

func TestNavInitClampsWindow(t *testing.T) {
	tests := []struct {
		count, maxVisible int
		wantEnd           int
	}{
		{5, 8, 5},
		{20, 8, 8},
		{0, 8, 0},
	}
	for _, tc := range tests {
		n := NavInit(tc.count, tc.maxVisible)
		if n.Selected != 0 || n.Start != 0 || n.End != tc.wantEnd || !n.Dirty {
			t.Errorf("NavInit(%d,%d) = %+v", tc.count, tc.maxVisible, n)
		}
	}
}

func TestNavigateWraps(t *testing.T) {
	n := NavInit(10, 4)

	if !n.Navigate(10, -1) {
		t.Fatal("expected change")
	}
	if n.Selected != 9 || n.Start != 6 || n.End != 10 {
		t.Fatalf("wrap up: %+v", n)
	}

	if !n.Navigate(10, +1) {
		t.Fatal("expected change")
	}
	if n.Selected != 0 || n.Start != 0 || n.End != 4 {
		t.Fatalf("wrap down: %+v", n)
	}
}

func TestNavigateScrollsWindow(t *testing.T) {
	n := NavInit(10, 4)
	for i := 0; i < 4; i++ {
		n.Navigate(10, +1)
	}
	if n.Selected != 4 || n.Start != 1 || n.End != 5 {
		t.Fatalf("scroll down: %+v", n)
	}
	for i := 0; i < 4; i++ {
		n.Navigate(10, -1)
	}
	if n.Selected != 0 || n.Start != 0 || n.End != 4 {
		t.Fatalf("scroll back: %+v", n)
	}
}

func TestNavigateSingleItem(t *testing.T) {
	n := NavInit(1, 4)
	if n.Navigate(1, +1) {
		t.Fatal("single item should not move")
	}
}

func TestCycleValue(t *testing.T) {
	item := &Item{Values: []string{"a", "b", "c"}}
	if !CycleValue(item, +1) || item.Value != 1 {
		t.Fatalf("step: %d", item.Value)
	}
	CycleValue(item, -1)
	if !CycleValue(item, -1) || item.Value != 2 {
		t.Fatalf("wrap backward: %d", item.Value)
	}
	if CycleValue(&Item{Values: []string{"only"}}, +1) {
		t.Fatal("single value should not cycle")
	}
	if CycleValue(nil, +1) {
		t.Fatal("nil item should not cycle")
	}
}

func TestGetAction(t *testing.T) {
	noop := func(*List, *Item) {}
	btnLabels := []string{"A", "B", "X", "Y"}
	sub := &List{}

	tests := []struct {
		name    string
		list    *List
		item    *Item
		a, b, x bool
		want    Action
	}{
		{"b exits unconditionally", &List{OnConfirm: noop}, &Item{OnConfirm: noop}, true, true, false, ActionExit},
		{"a on item with confirm", &List{}, &Item{OnConfirm: noop}, true, false, false, ActionConfirm},
		{"a on item with submenu", &List{}, &Item{Submenu: sub}, true, false, false, ActionSubmenu},
		{"a on list confirm, plain item", &List{OnConfirm: noop}, &Item{}, true, false, false, ActionConfirm},
		{"a on list confirm, binding row", &List{OnConfirm: noop}, &Item{Values: btnLabels}, true, false, false, ActionAwaitInput},
		{"x on input list", &List{Type: ListInput}, &Item{}, false, false, true, ActionClearInput},
		{"x on other list", &List{Type: ListVar}, &Item{}, false, false, true, ActionNone},
		{"nothing pressed", &List{}, &Item{}, false, false, false, ActionNone},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := GetAction(tc.list, tc.item, tc.a, tc.b, tc.x, btnLabels); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGetActionBindingRowNeedsSameTable(t *testing.T) {
	noop := func(*List, *Item) {}
	btnLabels := []string{"A", "B"}
	copied := append([]string(nil), btnLabels...)
	item := &Item{Values: copied}
	if got := GetAction(&List{OnConfirm: noop}, item, true, false, false, btnLabels); got != ActionConfirm {
		t.Errorf("equal contents but different table should confirm, got %v", got)
	}
}
