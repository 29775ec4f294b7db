package engine

import "fmt"

// elevationRow is one level's Incantation precondition: minimum same-level
// participants plus the resource cost paid on success.
type elevationRow struct {
	players int
	cost    Counters
}

// elevationTable indexes by the INCANTER's current level (1..7); level 0 and
// 8 are never looked up (level 8 cannot incant, per spec §4.8).
var elevationTable = [8]elevationRow{
	1: {players: 1, cost: Counters{Linemate: 1}},
	2: {players: 2, cost: Counters{Linemate: 1, Deraumere: 1, Sibur: 1}},
	3: {players: 2, cost: Counters{Linemate: 2, Sibur: 1, Phiras: 2}},
	4: {players: 4, cost: Counters{Linemate: 1, Deraumere: 1, Sibur: 2, Phiras: 1}},
	5: {players: 4, cost: Counters{Linemate: 1, Deraumere: 2, Sibur: 1, Mendiane: 3}},
	6: {players: 6, cost: Counters{Linemate: 1, Deraumere: 2, Sibur: 3, Phiras: 1}},
	7: {players: 6, cost: Counters{Linemate: 2, Deraumere: 2, Sibur: 2, Mendiane: 2, Phiras: 2, Thystame: 1}},
}

// incantationReady reports whether the tile currently satisfies level L's
// resource and same-level-participant preconditions.
func incantationReady(t *Tile, level int) bool {
	row := elevationTable[level]
	for r := 0; r < ResourceCount; r++ {
		if t.Resources[r] < row.cost[r] {
			return false
		}
	}
	return t.sameLevelCount(level) >= row.players
}

// beginIncantation marks every same-level occupant of the tile as incanting
// and awaiting promotion.
func beginIncantation(t *Tile, level int) {
	for _, p := range t.Occupants {
		if p.Level == level {
			p.Incanting = true
			p.AwaitingLevel = true
		}
	}
}

// cancelIncantation clears flags and tells every waiting same-level
// participant the ritual failed.
func (w *World) cancelIncantation(t *Tile, level int) {
	for _, p := range t.Occupants {
		if p.AwaitingLevel && p.Level == level {
			p.AwaitingLevel = false
			p.Incanting = false
			w.unicast(p.ID, "ko\n")
		}
	}
}

// promoteIncantation clears flags, raises every waiting participant's
// level by one, and tells them their new level.
func (w *World) promoteIncantation(t *Tile, level int) {
	for _, p := range t.Occupants {
		if p.AwaitingLevel && p.Level == level {
			p.Level++
			p.AwaitingLevel = false
			p.Incanting = false
			w.unicast(p.ID, fmt.Sprintf("Current level: %d\n", p.Level))
		}
	}
}
