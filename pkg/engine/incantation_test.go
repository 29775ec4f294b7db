package engine

import "testing"

func TestIncantationReadyChecksResourcesAndHeadcount(t *testing.T) {
	tile := &Tile{}
	if incantationReady(tile, 1) {
		t.Fatalf("empty tile should not satisfy level 1 preconditions")
	}
	tile.Resources[Linemate] = 1
	if incantationReady(tile, 1) {
		t.Fatalf("level 1 needs one same-level occupant in addition to the resource")
	}
	tile.Occupants = append(tile.Occupants, &Player{Level: 1})
	if !incantationReady(tile, 1) {
		t.Fatalf("tile with the resource and one level-1 occupant should be ready")
	}
}

func TestStartAndFinishIncantationPromotesOnSuccess(t *testing.T) {
	w := NewWorld(10, 10, []string{"red"}, 4, 1, 1)
	p := w.Join(0)
	w.DrainNotifications()
	w.TileAt(p.X, p.Y).removeOccupant(p)
	p.X, p.Y = 0, 0
	w.TileAt(0, 0).addOccupant(p)
	w.TileAt(0, 0).Resources[Linemate] = 1

	w.Submit(p.ID, VerbIncantation, "")
	_, unicasts, _ := w.DrainNotifications()
	if len(unicasts) != 1 || unicasts[0].Line != "Elevation underway\n" {
		t.Fatalf("expected immediate Elevation underway reply, got %+v", unicasts)
	}
	if len(p.Queue) != 1 {
		t.Fatalf("successful start should enqueue the completion action")
	}

	for !p.Ready(w.Now) {
		w.Now++
	}
	w.ExecuteReadyActions()
	if p.Level != 2 {
		t.Fatalf("player level = %d, want 2 after a successful incantation", p.Level)
	}
}

func TestStartIncantationRejectsUnmetPreconditions(t *testing.T) {
	w := NewWorld(10, 10, []string{"red"}, 4, 1, 1)
	p := w.Join(0)
	w.DrainNotifications()

	w.Submit(p.ID, VerbIncantation, "")
	_, unicasts, _ := w.DrainNotifications()
	if len(unicasts) != 1 || unicasts[0].Line != "ko\n" {
		t.Fatalf("expected immediate ko, got %+v", unicasts)
	}
	if len(p.Queue) != 0 {
		t.Fatalf("a rejected incantation must not enqueue a completion action")
	}
}
