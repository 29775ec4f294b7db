package engine

import "testing"

func TestLookOffsetNorthCone(t *testing.T) {
	cases := []struct {
		d, o, wantDx, wantDy int
	}{
		{0, 0, 0, 0},
		{1, 0, 0, -1},
		{1, -1, -1, -1},
		{1, 1, 1, -1},
	}
	for _, c := range cases {
		dx, dy := lookOffset(North, c.d, c.o)
		if dx != c.wantDx || dy != c.wantDy {
			t.Errorf("lookOffset(North,%d,%d) = (%d,%d), want (%d,%d)", c.d, c.o, dx, dy, c.wantDx, c.wantDy)
		}
	}
}

func TestLookReturnsTwoDPlusOneTilesPerDepth(t *testing.T) {
	w := NewWorld(10, 10, []string{"red"}, 4, 1, 1)
	p := w.Join(0)
	got := w.Look(p)
	// depth 0..level contributes (2d+1) tiles each; level starts at 1.
	wantTiles := 1 + 3
	count := 1
	for _, r := range got {
		if r == ',' {
			count++
		}
	}
	if count != wantTiles {
		t.Fatalf("look returned %d tiles, want %d for level %d", count, wantTiles, p.Level)
	}
}

func TestLookJoinsTilesWithBareComma(t *testing.T) {
	w := NewWorld(10, 10, []string{"red"}, 4, 1, 1)
	p := w.Join(0)
	for y := range w.tiles {
		for x := range w.tiles[y] {
			w.tiles[y][x].Resources = Counters{}
		}
	}
	w.TileAt(p.X, p.Y).Resources[Food] = 1
	got := w.Look(p)
	want := "[player food,,,]"
	if got != want {
		t.Fatalf("Look = %q, want %q", got, want)
	}
}

func TestRenderTileListsPlayersThenResourcesInKindOrder(t *testing.T) {
	tile := &Tile{}
	tile.Occupants = append(tile.Occupants, &Player{})
	tile.Resources[Food] = 1
	tile.Resources[Linemate] = 2
	got := renderTile(tile)
	want := "player food linemate linemate"
	if got != want {
		t.Fatalf("renderTile = %q, want %q", got, want)
	}
}
