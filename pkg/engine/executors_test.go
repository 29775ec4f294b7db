package engine

import "testing"

func stepUntilReady(w *World, p *Player) {
	for !p.Ready(w.Now) {
		w.Now++
	}
	w.ExecuteReadyActions()
}

func TestForwardMovesAndWraps(t *testing.T) {
	w := NewWorld(4, 4, []string{"red"}, 4, 1, 1)
	p := w.Join(0)
	w.DrainNotifications()
	w.TileAt(p.X, p.Y).removeOccupant(p)
	p.X, p.Y, p.Orientation = 0, 0, North
	w.TileAt(0, 0).addOccupant(p)

	w.Submit(p.ID, VerbForward, "")
	stepUntilReady(w, p)
	if p.X != 0 || p.Y != 3 {
		t.Fatalf("player at (%d,%d), want (0,3) after wrapping north", p.X, p.Y)
	}
	if len(w.TileAt(0, 0).Occupants) != 0 {
		t.Fatalf("old tile should no longer list the player as an occupant")
	}
	if len(w.TileAt(0, 3).Occupants) != 1 {
		t.Fatalf("new tile should list the player as an occupant")
	}
}

func TestTakeAndSetResource(t *testing.T) {
	w := NewWorld(4, 4, []string{"red"}, 4, 1, 1)
	p := w.Join(0)
	w.DrainNotifications()
	tile := w.TileAt(p.X, p.Y)
	tile.Resources[Linemate] = 2

	w.Submit(p.ID, VerbTake, "linemate")
	stepUntilReady(w, p)
	if p.Inventory[Linemate] != 1 || tile.Resources[Linemate] != 1 {
		t.Fatalf("take: inventory=%d tile=%d, want 1 and 1", p.Inventory[Linemate], tile.Resources[Linemate])
	}

	w.Submit(p.ID, VerbSet, "linemate")
	stepUntilReady(w, p)
	if p.Inventory[Linemate] != 0 || tile.Resources[Linemate] != 2 {
		t.Fatalf("set: inventory=%d tile=%d, want 0 and 2", p.Inventory[Linemate], tile.Resources[Linemate])
	}
}

func TestTakeMissingResourceRepliesKo(t *testing.T) {
	w := NewWorld(4, 4, []string{"red"}, 4, 1, 1)
	p := w.Join(0)
	w.DrainNotifications()

	w.Submit(p.ID, VerbTake, "thystame")
	stepUntilReady(w, p)
	_, unicasts, _ := w.DrainNotifications()
	if len(unicasts) != 1 || unicasts[0].Line != "ko\n" {
		t.Fatalf("expected ko for a take with no matching resource on the tile, got %+v", unicasts)
	}
}

func TestEjectMovesOccupantsAndNotifiesReverseDirection(t *testing.T) {
	w := NewWorld(4, 4, []string{"red", "blue"}, 4, 1, 1)
	ejector := w.Join(0)
	victim := w.Join(1)
	w.DrainNotifications()

	w.TileAt(ejector.X, ejector.Y).removeOccupant(ejector)
	w.TileAt(victim.X, victim.Y).removeOccupant(victim)
	ejector.X, ejector.Y, ejector.Orientation = 1, 1, East
	victim.X, victim.Y = 1, 1
	w.TileAt(1, 1).addOccupant(ejector)
	w.TileAt(1, 1).addOccupant(victim)

	w.Submit(ejector.ID, VerbEject, "")
	stepUntilReady(w, ejector)
	if victim.X != 2 || victim.Y != 1 {
		t.Fatalf("victim at (%d,%d), want (2,1) after eastward eject", victim.X, victim.Y)
	}
	_, unicasts, _ := w.DrainNotifications()
	found := false
	for _, u := range unicasts {
		if u.To == victim.ID && u.Line == "eject: 4\n" {
			found = true
		}
	}
	if !found {
		t.Fatalf("victim should receive an eject notice with the reverse direction, got %+v", unicasts)
	}
}

func TestForkIncrementsTeamCapacityAndLaysEgg(t *testing.T) {
	w := NewWorld(4, 4, []string{"red"}, 1, 1, 1)
	p := w.Join(0)
	w.DrainNotifications()
	before := w.Teams[0].MaxClients

	w.Submit(p.ID, VerbFork, "")
	stepUntilReady(w, p)
	if w.Teams[0].MaxClients != before+1 {
		t.Fatalf("team max clients = %d, want %d", w.Teams[0].MaxClients, before+1)
	}
	if len(w.Eggs) != 1 {
		t.Fatalf("fork should lay exactly one egg, got %d", len(w.Eggs))
	}
}
