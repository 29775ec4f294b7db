package engine

import "testing"

func newTestWorld(t *testing.T) *World {
	t.Helper()
	return NewWorld(10, 10, []string{"red", "blue"}, 4, 100, 1)
}

func TestWrap(t *testing.T) {
	w := newTestWorld(t)
	cases := []struct{ x, y, wx, wy int }{
		{0, 0, 0, 0},
		{-1, -1, 9, 9},
		{10, 10, 0, 0},
		{23, -4, 3, 6},
	}
	for _, c := range cases {
		x, y := w.wrap(c.x, c.y)
		if x != c.wx || y != c.wy {
			t.Errorf("wrap(%d,%d) = (%d,%d), want (%d,%d)", c.x, c.y, x, y, c.wx, c.wy)
		}
	}
}

func TestJoinAssignsSlotsAndEmitsNotifications(t *testing.T) {
	w := newTestWorld(t)
	p := w.Join(0)
	if p.Level != 1 || p.Life != initialLife || p.Inventory[Food] != initialFoodAmount {
		t.Fatalf("unexpected new player state: %+v", p)
	}
	if w.Teams[0].CurrentClients != 1 {
		t.Fatalf("team client count = %d, want 1", w.Teams[0].CurrentClients)
	}
	events, _, _ := w.DrainNotifications()
	wantKinds := []string{"pnw", "ppo", "plv", "pin", "ebo"}
	if len(events) != len(wantKinds) {
		t.Fatalf("got %d events, want %d", len(events), len(wantKinds))
	}
	for i, k := range wantKinds {
		if events[i].Kind != k {
			t.Errorf("event %d kind = %s, want %s", i, events[i].Kind, k)
		}
	}
}

func TestRemoveReusesOnlyFinalSlot(t *testing.T) {
	w := newTestWorld(t)
	a := w.Join(0)
	b := w.Join(0)
	w.DrainNotifications()

	w.Remove(a.ID)
	if w.Player(a.ID) != nil {
		t.Fatalf("removed player still resolves")
	}
	if len(w.Players) != 2 {
		t.Fatalf("removing a non-final slot should not shrink the list, got len %d", len(w.Players))
	}

	w.Remove(b.ID)
	if len(w.Players) != 0 {
		t.Fatalf("removing the final live slot should truncate trailing tombstones, got len %d", len(w.Players))
	}
}

func TestOnSecondElapsedStarvesWithoutFood(t *testing.T) {
	w := newTestWorld(t)
	p := w.Join(0)
	p.Inventory[Food] = 0
	w.DrainNotifications()

	ticks := 0
	for p.Alive() && ticks < initialLife/w.Freq+2 {
		w.OnSecondElapsed()
		ticks++
	}
	if p.Alive() {
		t.Fatalf("player should have starved within %d ticks", initialLife/w.Freq+2)
	}
	_, _, discs := w.DrainNotifications()
	found := false
	for _, d := range discs {
		if d.Who == p.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("starvation should emit a Disconnect for the dead player")
	}
}

func TestOnSecondElapsedFeedsFromInventory(t *testing.T) {
	w := NewWorld(10, 10, []string{"red"}, 4, 1, 1)
	p := w.Join(0)
	w.DrainNotifications()
	p.Life = initialLife
	p.Inventory[Food] = 5

	for i := 0; i < foodTickInterval; i++ {
		w.OnSecondElapsed()
	}
	if !p.Alive() {
		t.Fatalf("player with food in inventory should not starve")
	}
	if p.Inventory[Food] != 4 {
		t.Fatalf("inventory food = %d, want 4 after one food tick", p.Inventory[Food])
	}
}

func TestRespawnTopsUpToTargetDensity(t *testing.T) {
	w := newTestWorld(t)
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			w.tiles[y][x].Resources = Counters{}
		}
	}
	w.Respawn()
	total := 0
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			total += w.tiles[y][x].Resources.Total()
		}
	}
	if total == 0 {
		t.Fatalf("respawn left the map empty of resources")
	}
}
