package engine

import (
	"fmt"
	"strings"
)

// verbIncantationFinish is an internal-only verb tagging the synthetic
// completion action enqueued by a successful Incantation start; it is never
// produced by the command parser.
const verbIncantationFinish Verb = -1

// Submit enqueues an AI command for player id. Incantation is special: its
// preconditions are checked immediately (spec §4.8) and again at
// completion, so its reply (ko / "Elevation underway") is unicast right
// away and only a successful start enqueues the 300-tick completion action.
func (w *World) Submit(id PlayerID, verb Verb, arg string) {
	p := w.Player(id)
	if p == nil || !p.alive {
		return
	}
	if verb == VerbIncantation {
		w.startIncantation(p)
		return
	}
	p.Enqueue(verb, arg, w.Now, w.Freq)
}

// execute runs one due action to completion and replies/notifies.
func (w *World) execute(p *Player, a *Action) {
	switch a.Verb {
	case VerbForward:
		w.doForward(p)
	case VerbRight:
		p.Orientation = p.Orientation.Right()
		w.emit("ppo", p.ID, p.X, p.Y, p.Orientation.Wire())
		w.unicast(p.ID, "ok\n")
	case VerbLeft:
		p.Orientation = p.Orientation.Left()
		w.emit("ppo", p.ID, p.X, p.Y, p.Orientation.Wire())
		w.unicast(p.ID, "ok\n")
	case VerbLook:
		w.unicast(p.ID, w.Look(p)+"\n")
	case VerbInventory:
		w.unicast(p.ID, w.inventoryString(p)+"\n")
	case VerbTake:
		w.doTake(p, a.Arg)
	case VerbSet:
		w.doSet(p, a.Arg)
	case VerbEject:
		w.doEject(p)
	case VerbBroadcast:
		w.doBroadcast(p, a.Arg)
	case VerbFork:
		w.doFork(p)
	case VerbConnectNbr:
		w.unicast(p.ID, fmt.Sprintf("%d\n", w.Teams[p.TeamID].FreeSlots()))
	case verbIncantationFinish:
		w.finishIncantation(p)
	}
}

func (w *World) doForward(p *Player) {
	old := w.TileAt(p.X, p.Y)
	dx, dy := p.Orientation.step()
	p.X, p.Y = w.wrap(p.X+dx, p.Y+dy)
	old.removeOccupant(p)
	w.TileAt(p.X, p.Y).addOccupant(p)
	w.emit("ppo", p.ID, p.X, p.Y, p.Orientation.Wire())
	w.unicast(p.ID, "ok\n")
}

func (w *World) inventoryString(p *Player) string {
	parts := make([]string, ResourceCount)
	for r := 0; r < ResourceCount; r++ {
		parts[r] = fmt.Sprintf("%s %d", Resource(r), p.Inventory[r])
	}
	return "[ " + strings.Join(parts, ", ") + " ]"
}

func resourceByName(name string) (Resource, bool) {
	for r := 0; r < ResourceCount; r++ {
		if Resource(r).String() == name {
			return Resource(r), true
		}
	}
	return 0, false
}

func (w *World) doTake(p *Player, arg string) {
	r, ok := resourceByName(arg)
	t := w.TileAt(p.X, p.Y)
	if !ok || t.Resources[r] <= 0 {
		w.unicast(p.ID, "ko\n")
		return
	}
	t.Resources[r]--
	p.Inventory[r]++
	w.emit("pgt", p.ID, int(r))
	w.unicast(p.ID, "ok\n")
}

func (w *World) doSet(p *Player, arg string) {
	r, ok := resourceByName(arg)
	if !ok || p.Inventory[r] <= 0 {
		w.unicast(p.ID, "ko\n")
		return
	}
	p.Inventory[r]--
	w.TileAt(p.X, p.Y).Resources[r]++
	w.emit("pdr", p.ID, int(r))
	w.unicast(p.ID, "ok\n")
}

func (w *World) doEject(p *Player) {
	t := w.TileAt(p.X, p.Y)
	others := make([]*Player, 0, len(t.Occupants))
	for _, o := range t.Occupants {
		if o != p {
			others = append(others, o)
		}
	}
	if len(others) == 0 {
		w.unicast(p.ID, "ko\n")
		return
	}
	dx, dy := p.Orientation.step()
	reverse := p.Orientation.Reverse().Wire()
	for _, o := range others {
		t.removeOccupant(o)
		o.X, o.Y = w.wrap(o.X+dx, o.Y+dy)
		w.TileAt(o.X, o.Y).addOccupant(o)
		w.emit("ppo", o.ID, o.X, o.Y, o.Orientation.Wire())
		w.unicast(o.ID, fmt.Sprintf("eject: %d\n", reverse))
	}
	w.emit("pex", p.ID)
	w.unicast(p.ID, "ok\n")
}

func (w *World) doBroadcast(sender *Player, text string) {
	for _, p := range w.LivingPlayers() {
		if p.ID == sender.ID {
			continue
		}
		k := SoundDirection(w, sender.X, sender.Y, p.X, p.Y, p.Orientation)
		w.unicast(p.ID, fmt.Sprintf("message %d, %s\n", k, text))
	}
	w.emit("pbc", sender.ID, text)
	w.unicast(sender.ID, "ok\n")
}

func (w *World) doFork(p *Player) {
	team := w.Teams[p.TeamID]
	team.MaxClients++
	egg := w.layEgg(p.TeamID, p.ID, p.X, p.Y)
	w.emit("pfk", p.ID)
	w.emit("enw", egg.ID, egg.OwnerID, egg.X, egg.Y)
	w.unicast(p.ID, "ok\n")
}

func (w *World) startIncantation(p *Player) {
	if p.Level >= maxLevel {
		w.unicast(p.ID, "ko\n")
		return
	}
	t := w.TileAt(p.X, p.Y)
	if !incantationReady(t, p.Level) {
		w.unicast(p.ID, "ko\n")
		return
	}
	beginIncantation(t, p.Level)
	ids := make([]any, 0, len(t.Occupants)+3)
	ids = append(ids, p.X, p.Y, p.Level)
	for _, o := range t.Occupants {
		if o.Level == p.Level {
			ids = append(ids, o.ID)
		}
	}
	w.emit("pic", ids...)
	p.Enqueue(verbIncantationFinish, "", w.Now, w.Freq)
	w.unicast(p.ID, "Elevation underway\n")
}

func (w *World) finishIncantation(p *Player) {
	level := p.Level
	t := w.TileAt(p.X, p.Y)
	if !incantationReady(t, level) {
		w.cancelIncantation(t, level)
		w.emit("pie", p.X, p.Y, 0)
		return
	}
	row := elevationTable[level]
	for r := 0; r < ResourceCount; r++ {
		t.Resources[r] -= row.cost[r]
	}
	w.promoteIncantation(t, level)
	w.emit("pie", p.X, p.Y, 1)
}
