package engine

// Event is a server-initiated GUI notification, fanned out to every
// connected spectator. Kind matches the wire verb (pnw, ppo, plv, ...); the
// network layer renders Args with the verb-specific format from spec §6.
type Event struct {
	Kind string
	Args []any
}

// Unicast is a line destined for exactly one AI socket outside the normal
// reply/queue flow: the "message k, text" broadcast delivery and the
// "eject: k" ejection notice.
type Unicast struct {
	To   PlayerID
	Line string
}

// Disconnect marks that a player's socket must be closed by the network
// layer (starvation death, or an explicit kill).
type Disconnect struct {
	Who PlayerID
}

func (w *World) emit(kind string, args ...any) {
	w.Events = append(w.Events, Event{Kind: kind, Args: args})
}

func (w *World) unicast(to PlayerID, line string) {
	w.Unicasts = append(w.Unicasts, Unicast{To: to, Line: line})
}

func (w *World) disconnect(who PlayerID) {
	w.Disconnects = append(w.Disconnects, Disconnect{Who: who})
}

// DrainNotifications returns and clears everything accumulated since the
// last drain. The network layer calls this once per main-loop pass so a
// GUI recipient never observes a notification ahead of the state it
// describes (spec §5 ordering guarantee).
func (w *World) DrainNotifications() ([]Event, []Unicast, []Disconnect) {
	events, unicasts, discs := w.Events, w.Unicasts, w.Disconnects
	w.Events, w.Unicasts, w.Disconnects = nil, nil, nil
	return events, unicasts, discs
}
