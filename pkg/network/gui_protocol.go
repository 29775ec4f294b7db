package network

import (
	"strconv"
	"strings"

	"github.com/opd-ai/zappy/pkg/engine"
)

// processGUIQuery answers one GUI request (or, for the handshake sentinel,
// sends the full initial snapshot per spec §4.6). It runs on the main-loop
// goroutine, so it may read World state directly.
func (s *GameServer) processGUIQuery(q guiQuery) {
	if q.line == "__handshake__" {
		s.sendGUIHandshake(q.gui)
		return
	}

	fields := strings.Fields(q.line)
	if len(fields) == 0 {
		s.deliverGUI(q.gui, "suc\n")
		return
	}

	switch fields[0] {
	case "msz":
		s.deliverGUI(q.gui, mszLine(s.world))
	case "bct":
		x, y, ok := parseXY(fields[1:])
		if !ok {
			s.deliverGUI(q.gui, "sbp\n")
			return
		}
		s.deliverGUI(q.gui, bctLine(x, y, s.world.TileAt(x, y).Resources))
	case "mct":
		for y := 0; y < s.world.Height; y++ {
			for x := 0; x < s.world.Width; x++ {
				s.deliverGUI(q.gui, bctLine(x, y, s.world.TileAt(x, y).Resources))
			}
		}
	case "tna":
		for _, t := range s.world.Teams {
			s.deliverGUI(q.gui, "tna "+t.Name+"\n")
		}
	case "ppo":
		p, ok := s.findPlayerArg(fields[1:])
		if !ok {
			s.deliverGUI(q.gui, "sbp\n")
			return
		}
		line, _ := formatEvent(engine.Event{Kind: "ppo", Args: []any{p.ID, p.X, p.Y, p.Orientation.Wire()}})
		s.deliverGUI(q.gui, line)
	case "plv":
		p, ok := s.findPlayerArg(fields[1:])
		if !ok {
			s.deliverGUI(q.gui, "sbp\n")
			return
		}
		line, _ := formatEvent(engine.Event{Kind: "plv", Args: []any{p.ID, p.Level}})
		s.deliverGUI(q.gui, line)
	case "pin":
		p, ok := s.findPlayerArg(fields[1:])
		if !ok {
			s.deliverGUI(q.gui, "sbp\n")
			return
		}
		line, _ := formatEvent(engine.Event{Kind: "pin", Args: []any{p.ID, p.X, p.Y, p.Inventory}})
		s.deliverGUI(q.gui, line)
	case "sgt":
		s.deliverGUI(q.gui, "sgt "+strconv.Itoa(s.world.Freq)+"\n")
	case "sst":
		if len(fields) != 2 {
			s.deliverGUI(q.gui, "sbp\n")
			return
		}
		f, err := strconv.Atoi(fields[1])
		if err != nil || f <= 0 {
			s.deliverGUI(q.gui, "sbp\n")
			return
		}
		s.world.Freq = f
		s.deliverGUI(q.gui, "sst "+fields[1]+"\n")
	default:
		s.deliverGUI(q.gui, "suc\n")
	}
}

func (s *GameServer) findPlayerArg(args []string) (*engine.Player, bool) {
	if len(args) != 1 {
		return nil, false
	}
	idStr := strings.TrimPrefix(args[0], "#")
	n, err := strconv.Atoi(idStr)
	if err != nil {
		return nil, false
	}
	p := s.world.Player(engine.PlayerID(n))
	if p == nil || !p.Alive() {
		return nil, false
	}
	return p, true
}

func parseXY(args []string) (int, int, bool) {
	if len(args) != 2 {
		return 0, 0, false
	}
	x, err1 := strconv.Atoi(args[0])
	y, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return x, y, true
}

func mszLine(w *engine.World) string {
	return "msz " + strconv.Itoa(w.Width) + " " + strconv.Itoa(w.Height) + "\n"
}

// sendGUIHandshake sends the initial spectator snapshot per spec §4.6: msz,
// mct, tna, pnw+ppo+plv+pin for each living player, then sgt.
func (s *GameServer) sendGUIHandshake(gc *guiConn) {
	s.deliverGUI(gc, mszLine(s.world))
	for y := 0; y < s.world.Height; y++ {
		for x := 0; x < s.world.Width; x++ {
			s.deliverGUI(gc, bctLine(x, y, s.world.TileAt(x, y).Resources))
		}
	}
	for _, t := range s.world.Teams {
		s.deliverGUI(gc, "tna "+t.Name+"\n")
	}
	for _, p := range s.world.LivingPlayers() {
		team := ""
		if p.TeamID >= 0 && p.TeamID < len(s.world.Teams) {
			team = s.world.Teams[p.TeamID].Name
		}
		pnw, _ := formatEvent(engine.Event{Kind: "pnw", Args: []any{p.ID, p.X, p.Y, p.Orientation.Wire(), p.Level, team}})
		ppo, _ := formatEvent(engine.Event{Kind: "ppo", Args: []any{p.ID, p.X, p.Y, p.Orientation.Wire()}})
		plv, _ := formatEvent(engine.Event{Kind: "plv", Args: []any{p.ID, p.Level}})
		pin, _ := formatEvent(engine.Event{Kind: "pin", Args: []any{p.ID, p.X, p.Y, p.Inventory}})
		s.deliverGUI(gc, pnw)
		s.deliverGUI(gc, ppo)
		s.deliverGUI(gc, plv)
		s.deliverGUI(gc, pin)
	}
	s.deliverGUI(gc, "sgt "+strconv.Itoa(s.world.Freq)+"\n")
}
