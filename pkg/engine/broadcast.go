package engine

import "math"

// wrapDelta picks between the direct signed delta (a-b) and its
// torus-wrapped complement, keeping whichever has the smaller absolute
// value and breaking ties toward the direct delta (spec §4.7).
func wrapDelta(a, b, size int) int {
	direct := a - b
	var wrapped int
	if direct > 0 {
		wrapped = direct - size
	} else {
		wrapped = direct + size
	}
	if abs(wrapped) < abs(direct) {
		return wrapped
	}
	return direct
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// SoundDirection computes the 1..8 sector through which a sound originating
// at (sx,sy) arrives for a listener at (rx,ry) facing orient, or 0 if
// sender and listener share a tile (spec §4.7). Sector 1 is the tile
// directly in front of the listener; sectors increase counter-clockwise
// (3 = left side, 5 = behind, 7 = right side).
func SoundDirection(w *World, sx, sy, rx, ry int, orient Orientation) int {
	dx := wrapDelta(sx, rx, w.Width)
	dy := wrapDelta(sy, ry, w.Height)
	if dx == 0 && dy == 0 {
		return 0
	}
	// Clockwise compass index of (dx,dy), 0=N, 2=E, 4=S, 6=W: y grows south,
	// so "north" is -y and the clockwise angle from north is atan2(dx,-dy).
	angle := math.Atan2(float64(dx), float64(-dy))
	cw := int(math.Round(angle/(math.Pi/4))) % 8
	if cw < 0 {
		cw += 8
	}
	front := int(orient) * 2 // N=0, E=2, S=4, W=6
	k := ((front-cw)%8 + 8) % 8
	return k + 1
}
