package network

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/opd-ai/zappy/pkg/engine"
)

// verbNames maps the wire keyword to its Verb, per spec §4.5. Matching is
// exact and case-sensitive, as the AI protocol specifies.
var verbNames = map[string]engine.Verb{
	"Forward":     engine.VerbForward,
	"Right":       engine.VerbRight,
	"Left":        engine.VerbLeft,
	"Look":        engine.VerbLook,
	"Inventory":   engine.VerbInventory,
	"Take":        engine.VerbTake,
	"Set":         engine.VerbSet,
	"Eject":       engine.VerbEject,
	"Broadcast":   engine.VerbBroadcast,
	"Incantation": engine.VerbIncantation,
	"Fork":        engine.VerbFork,
	"Connect_nbr": engine.VerbConnectNbr,
}

// parseAICommand splits a client line into its verb and argument. Broadcast
// keeps the remainder of the line intact (spaces and all) as its text.
func parseAICommand(line string) (verb engine.Verb, arg string, ok bool) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.SplitN(line, " ", 2)
	if len(fields) == 0 || fields[0] == "" {
		return 0, "", false
	}
	verb, known := verbNames[fields[0]]
	if !known {
		return 0, "", false
	}
	if len(fields) == 2 {
		arg = fields[1]
	}
	if verb == engine.VerbBroadcast && arg == "" {
		return 0, "", false
	}
	return verb, arg, true
}

// formatEvent renders a GUI notification event to its wire line, per §6.
func formatEvent(e engine.Event) (string, bool) {
	switch e.Kind {
	case "pnw":
		return fmt.Sprintf("pnw #%d %d %d %d %d %s\n", e.Args[0], e.Args[1], e.Args[2], e.Args[3], e.Args[4], e.Args[5]), true
	case "ppo":
		return fmt.Sprintf("ppo #%d %d %d %d\n", e.Args[0], e.Args[1], e.Args[2], e.Args[3]), true
	case "plv":
		return fmt.Sprintf("plv #%d %d\n", e.Args[0], e.Args[1]), true
	case "pin":
		inv := e.Args[3].(engine.Counters)
		return fmt.Sprintf("pin #%d %d %d %s\n", e.Args[0], e.Args[1], e.Args[2], joinCounters(inv)), true
	case "pgt":
		return fmt.Sprintf("pgt #%d %d\n", e.Args[0], e.Args[1]), true
	case "pdr":
		return fmt.Sprintf("pdr #%d %d\n", e.Args[0], e.Args[1]), true
	case "pex":
		return fmt.Sprintf("pex #%d\n", e.Args[0]), true
	case "pbc":
		return fmt.Sprintf("pbc #%d %s\n", e.Args[0], e.Args[1]), true
	case "pic":
		ids := make([]string, 0, len(e.Args)-3)
		for _, id := range e.Args[3:] {
			ids = append(ids, fmt.Sprintf("#%v", id))
		}
		return fmt.Sprintf("pic %d %d %d %s\n", e.Args[0], e.Args[1], e.Args[2], strings.Join(ids, " ")), true
	case "pie":
		return fmt.Sprintf("pie %d %d %d\n", e.Args[0], e.Args[1], e.Args[2]), true
	case "pdi":
		return fmt.Sprintf("pdi #%d\n", e.Args[0]), true
	case "pfk":
		return fmt.Sprintf("pfk #%d\n", e.Args[0]), true
	case "enw":
		return fmt.Sprintf("enw #%d #%d %d %d\n", e.Args[0], e.Args[1], e.Args[2], e.Args[3]), true
	case "ebo":
		return fmt.Sprintf("ebo #%d\n", e.Args[0]), true
	case "edi":
		return fmt.Sprintf("edi #%d\n", e.Args[0]), true
	case "seg":
		return fmt.Sprintf("seg %s\n", e.Args[0]), true
	case "smg":
		return fmt.Sprintf("smg %s\n", e.Args[0]), true
	case "sst":
		return fmt.Sprintf("sst %d\n", e.Args[0]), true
	default:
		return "", false
	}
}

func joinCounters(c engine.Counters) string {
	parts := make([]string, len(c))
	for i, n := range c {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " ")
}

// bctLine renders one tile's resource tally in bct wire form.
func bctLine(x, y int, c engine.Counters) string {
	return fmt.Sprintf("bct %d %d %s\n", x, y, joinCounters(c))
}
