package launcher

import "testing"

func TestNaturalLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"game 2", "game 10", true},
		{"game 10", "game 2", false},
		{"game 02", "game 2", false}, // equal numbers, equal tails
		{"alpha", "beta", true},
		{"a", "ab", true},
		{"final fantasy 7", "final fantasy 10", true},
	}
	for _, tc := range tests {
		if got := NaturalLess(tc.a, tc.b); got != tc.want {
			t.Errorf("NaturalLess(%q, %q) = %v", tc.a, tc.b, got)
		}
	}
}

func TestSortEntriesStripsArticle(t *testing.T) {
	entries := []Entry{
		{Name: "Metroid.nes"},
		{Name: "The Legend of Zelda.nes"},
		{Name: "A Boy and His Blob.nes"},
		{Name: "Kirby.nes"},
	}
	SortEntries(entries)
	want := []string{"A Boy and His Blob.nes", "Kirby.nes", "The Legend of Zelda.nes", "Metroid.nes"}
	for i, w := range want {
		if entries[i].Name != w {
			t.Fatalf("order[%d] = %q, want %q (full: %v)", i, entries[i].Name, w, entries)
		}
	}
}

func TestSortEntriesUsesAlias(t *testing.T) {
	entries := []Entry{
		{Name: "zzz.gb", Alias: "Alpha Mission"},
		{Name: "aaa.gb", Alias: "Zelda"},
	}
	SortEntries(entries)
	if entries[0].Alias != "Alpha Mission" {
		t.Errorf("alias not used for sorting: %v", entries)
	}
}
