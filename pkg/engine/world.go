package engine

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/opd-ai/zappy/pkg/rng"
)

// normalizeTeamName title-cases a team name the same way for both the
// CLI-configured roster and every incoming join request, so admission
// matching and GUI/log display agree regardless of the casing an AI client
// happens to send.
func normalizeTeamName(name string) string {
	return cases.Title(language.English).String(name)
}

// World is the authoritative toroidal grid: tiles, teams, players and eggs.
// It performs no I/O; the network package drives it tick by tick and turns
// its DrainNotifications output into wire traffic.
type World struct {
	Width, Height int

	tiles [][]Tile
	Teams []*Team
	Eggs  map[EggID]*Egg

	eggQueue map[int][]EggID

	// Players is indexed by PlayerID. A removed player's slot is nilled out
	// unless it is the final slot, in which case the slice is truncated along
	// with any tombstones left at its end — ids are reused only on that
	// list-end shift, per spec §3.
	Players []*Player

	nextEggID EggID
	rng       *rng.RNG

	Now  Tick // advances once per elapsed wall-clock second
	Freq int  // ticks (action-cost units) per wall-clock second

	Events      []Event
	Unicasts    []Unicast
	Disconnects []Disconnect
}

// NewWorld builds a world of the given size, with one Team per name each
// capped at clientsPerTeam, and resources distributed to their target
// density. seed drives the single-owner random source used for placement
// and spawn positions (spec §5: no reseeding between calls beyond init).
func NewWorld(width, height int, teamNames []string, clientsPerTeam, freq int, seed int64) *World {
	w := &World{
		Width:    width,
		Height:   height,
		Eggs:     make(map[EggID]*Egg),
		eggQueue: make(map[int][]EggID),
		rng:      rng.NewRNG(seed),
		Freq:     freq,
	}
	w.tiles = make([][]Tile, height)
	for y := range w.tiles {
		w.tiles[y] = make([]Tile, width)
	}
	for i, name := range teamNames {
		w.Teams = append(w.Teams, &Team{Name: normalizeTeamName(name), MaxClients: clientsPerTeam})
		for j := 0; j < clientsPerTeam; j++ {
			x, y := w.randomPos()
			w.layEgg(i, ServerSpawnedEgg, x, y)
		}
	}
	w.seedResources()
	return w
}

// wrap folds (x,y) onto the torus: (x mod W + W) mod W, similarly for y.
func (w *World) wrap(x, y int) (int, int) {
	x = ((x % w.Width) + w.Width) % w.Width
	y = ((y % w.Height) + w.Height) % w.Height
	return x, y
}

// TileAt returns the tile at (x,y), wrapping both coordinates first.
func (w *World) TileAt(x, y int) *Tile {
	x, y = w.wrap(x, y)
	return &w.tiles[y][x]
}

// FindTeam returns the index of the team with the given name, or -1.
func (w *World) FindTeam(name string) int {
	name = normalizeTeamName(name)
	for i, t := range w.Teams {
		if t.Name == name {
			return i
		}
	}
	return -1
}

func (w *World) randomPos() (int, int) {
	return w.rng.Intn(w.Width), w.rng.Intn(w.Height)
}

// seedResources places each resource kind at density*W*H randomly-chosen
// tiles (piling allowed), per spec §4.9.
func (w *World) seedResources() {
	for r := 0; r < ResourceCount; r++ {
		count := int(densityTarget[r] * float64(w.Width*w.Height))
		w.scatter(Resource(r), count)
	}
}

func (w *World) scatter(r Resource, count int) {
	for i := 0; i < count; i++ {
		x, y := w.randomPos()
		w.tiles[y][x].Resources[r]++
	}
}

// Respawn recounts each resource kind's total and tops it back up to its
// target density by scattering the shortfall, per spec §4.9.
func (w *World) Respawn() {
	totals := Counters{}
	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			for r := 0; r < ResourceCount; r++ {
				totals[r] += w.tiles[y][x].Resources[r]
			}
		}
	}
	for r := 0; r < ResourceCount; r++ {
		target := int(densityTarget[r] * float64(w.Width*w.Height))
		if missing := target - totals[r]; missing > 0 {
			w.scatter(Resource(r), missing)
		}
	}
}

// allocatePlayerID returns the slot a new player will occupy: the one just
// past the end of the list. Tombstoned slots inside the list are not reused.
func (w *World) allocatePlayerID() PlayerID {
	return PlayerID(len(w.Players))
}

// Join admits a new player onto the given team, at a random position and
// orientation, with initial level, inventory and life per spec §4.3.
func (w *World) Join(teamIdx int) *Player {
	id := w.allocatePlayerID()
	x, y := w.randomPos()
	p := &Player{
		ID:          id,
		TeamID:      teamIdx,
		Level:       1,
		X:           x,
		Y:           y,
		Orientation: Orientation(w.rng.Intn(4)),
		Life:        initialLife,
		alive:       true,
	}
	p.Inventory[Food] = initialFoodAmount
	if int(id) == len(w.Players) {
		w.Players = append(w.Players, p)
	} else {
		w.Players[id] = p
	}
	w.TileAt(x, y).addOccupant(p)
	w.Teams[teamIdx].CurrentClients++

	w.emit("pnw", p.ID, p.X, p.Y, p.Orientation.Wire(), p.Level, w.Teams[teamIdx].Name)
	w.emit("ppo", p.ID, p.X, p.Y, p.Orientation.Wire())
	w.emit("plv", p.ID, p.Level)
	w.emit("pin", p.ID, p.X, p.Y, p.Inventory)
	if eggID, ok := w.hatchEgg(teamIdx); ok {
		w.emit("ebo", eggID)
	}
	return p
}

// Player looks up a player by id; returns nil if the slot is empty.
func (w *World) Player(id PlayerID) *Player {
	if id < 0 || int(id) >= len(w.Players) {
		return nil
	}
	return w.Players[id]
}

// Remove destroys a player: frees its tile occupancy, decrements its
// team's count, and (per spec §3) reuses its id slot only when it is the
// final slot.
func (w *World) Remove(id PlayerID) {
	p := w.Player(id)
	if p == nil || !p.alive {
		return
	}
	p.alive = false
	w.TileAt(p.X, p.Y).removeOccupant(p)
	w.Teams[p.TeamID].CurrentClients--
	if int(id) == len(w.Players)-1 {
		w.Players = w.Players[:id]
		for len(w.Players) > 0 && w.Players[len(w.Players)-1] == nil {
			w.Players = w.Players[:len(w.Players)-1]
		}
	} else {
		w.Players[id] = nil
	}
	w.emit("pdi", p.ID)
	w.disconnect(p.ID)
}

// LivingPlayers returns every player still in the simulation.
func (w *World) LivingPlayers() []*Player {
	out := make([]*Player, 0, len(w.Players))
	for _, p := range w.Players {
		if p != nil && p.alive {
			out = append(out, p)
		}
	}
	return out
}

// ExecuteReadyActions runs the head action of every living player whose
// end tick has arrived, in ascending player-id order (spec §5 ordering
// guarantee). At most one action per player runs per call.
func (w *World) ExecuteReadyActions() {
	for _, p := range w.Players {
		if p == nil || !p.alive {
			continue
		}
		if a := p.PopReady(w.Now); a != nil {
			w.execute(p, a)
		}
	}
}

// OnSecondElapsed advances the one-per-wall-second coarse clock: it drains
// life/food at the configured frequency and, every 20 ticks, replenishes
// resources (spec §4.1 step vii, §4.9).
func (w *World) OnSecondElapsed() {
	w.Now++
	w.stepLife()
	if w.Now%20 == 0 {
		w.Respawn()
	}
}

// stepLife drains every living player's life meter by Freq units (so a
// 1260-unit meter empties in 1260/Freq wall-clock seconds) and runs the
// once-per-126-units food clock, per spec §4.5.
func (w *World) stepLife() {
	for _, p := range w.Players {
		if p == nil || !p.alive {
			continue
		}
		p.Life -= w.Freq
		if p.Life <= 0 {
			w.Remove(p.ID)
			continue
		}
		p.foodCounter += w.Freq
		for p.foodCounter >= foodTickInterval {
			p.foodCounter -= foodTickInterval
			if p.Inventory[Food] > 0 {
				p.Inventory[Food]--
				p.Life += initialLife
				if p.Life > initialLife {
					p.Life = initialLife
				}
			}
		}
	}
}
