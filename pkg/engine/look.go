package engine

import "strings"

// lookOffset returns the (dx,dy) of the tile at forward depth d and lateral
// offset o from a player facing orient, per the glossary's offset mapping.
func lookOffset(orient Orientation, d, o int) (int, int) {
	switch orient {
	case North:
		return o, -d
	case East:
		return d, o
	case South:
		return -o, d
	case West:
		return -d, -o
	}
	return 0, 0
}

// renderTile lists a tile's contents as space-separated tokens: one
// "player" token per occupant in arrival order, then each resource kind
// repeated by its count, in fixed kind order.
func renderTile(t *Tile) string {
	var tokens []string
	for range t.Occupants {
		tokens = append(tokens, "player")
	}
	for r := 0; r < ResourceCount; r++ {
		for i := 0; i < t.Resources[r]; i++ {
			tokens = append(tokens, Resource(r).String())
		}
	}
	return strings.Join(tokens, " ")
}

// Look builds the bracketed, comma-separated cone of tiles in front of p,
// from its own tile out to depth p.Level, per spec §4.5. Tiles are joined
// with a bare comma, matching the original server's wire format.
func (w *World) Look(p *Player) string {
	var tiles []string
	for d := 0; d <= p.Level; d++ {
		for o := -d; o <= d; o++ {
			dx, dy := lookOffset(p.Orientation, d, o)
			x, y := w.wrap(p.X+dx, p.Y+dy)
			tiles = append(tiles, renderTile(&w.tiles[y][x]))
		}
	}
	return "[" + strings.Join(tiles, ",") + "]"
}
