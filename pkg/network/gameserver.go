package network

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/opd-ai/zappy/pkg/engine"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// fastPollInterval bounds how long a queued command can wait before the
	// main loop next drains it and advances ready actions (spec §5: a
	// multiplexed wait with a short timeout).
	fastPollInterval = 100 * time.Millisecond
	// secondTick drives World.OnSecondElapsed, the coarse once-per-wall-second
	// clock that schedules action completion and the starvation/food meter.
	secondTick = time.Second

	outboxSize = 64
)

type joinRequest struct {
	teamName string
	resp     chan joinResult
}

type joinResult struct {
	id       engine.PlayerID
	freeSlot int
	err      error
}

type commandRequest struct {
	id   engine.PlayerID
	verb engine.Verb
	arg  string
}

type guiQuery struct {
	gui  *guiConn
	line string
}

// aiConn is one identified AI client's socket-side state. out is drained by
// a dedicated writer goroutine so the main loop never blocks on a slow peer.
type aiConn struct {
	id   engine.PlayerID
	conn net.Conn
	out  chan string
}

type guiConn struct {
	id   int
	conn net.Conn
	out  chan string
}

// GameServer is the authoritative Zappy TCP front end: one accept loop, one
// line-reading goroutine per connection, and a single main-loop goroutine
// that owns the World and is the only mutator of its state (spec §5).
type GameServer struct {
	listener net.Listener
	world    *engine.World

	mu       sync.RWMutex
	aiConns  map[engine.PlayerID]*aiConn
	guiConns map[int]*guiConn
	nextGUI  int
	running  bool

	joinCh    chan joinRequest
	cmdCh     chan commandRequest
	guiCh     chan guiQuery
	leaveCh   chan engine.PlayerID
	limiters  map[string]*rate.Limiter
	limiterMu sync.Mutex
	joinRate  rate.Limit
	joinBurst int

	maxTotalPlayers int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewGameServer builds a server bound to port, driving world. joinRate and
// joinBurst configure the per-IP token bucket guarding the join handshake
// against connection floods. maxTotalPlayers caps total simultaneous AI
// admissions across all teams, independent of each team's own slot count
// (the original's MAX_CLIENTS safety net, per SPEC_FULL §3).
func NewGameServer(port int, world *engine.World, joinRate float64, joinBurst int, maxTotalPlayers int) (*GameServer, error) {
	addr := fmt.Sprintf(":%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &GameServer{
		listener:        listener,
		world:           world,
		aiConns:         make(map[engine.PlayerID]*aiConn),
		guiConns:        make(map[int]*guiConn),
		joinCh:          make(chan joinRequest),
		cmdCh:           make(chan commandRequest, 256),
		guiCh:           make(chan guiQuery, 64),
		leaveCh:         make(chan engine.PlayerID, 64),
		limiters:        make(map[string]*rate.Limiter),
		joinRate:        rate.Limit(joinRate),
		joinBurst:       joinBurst,
		maxTotalPlayers: maxTotalPlayers,
		ctx:             ctx,
		cancel:          cancel,
	}, nil
}

// Start begins accepting connections and running the authoritative loop.
func (s *GameServer) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.running = true
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"system_name": "gameserver",
		"width":       s.world.Width,
		"height":      s.world.Height,
	}).Info("starting zappy server")

	s.wg.Add(1)
	go s.acceptLoop()

	s.wg.Add(1)
	go s.mainLoop()

	return nil
}

// Stop gracefully shuts down the server and closes all client sockets.
func (s *GameServer) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("server not running")
	}
	s.running = false
	s.mu.Unlock()

	logrus.WithField("system_name", "gameserver").Info("stopping zappy server")

	s.cancel()
	s.listener.Close()

	s.mu.Lock()
	for _, c := range s.aiConns {
		c.conn.Close()
	}
	for _, c := range s.guiConns {
		c.conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

func (s *GameServer) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
				logrus.WithError(err).Error("accept failed")
				continue
			}
		}
		if !s.allowJoinAttempt(conn.RemoteAddr()) {
			conn.Close()
			continue
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// allowJoinAttempt throttles new connections per source IP, independent of
// team admission, to absorb a connect flood before it reaches the handshake.
func (s *GameServer) allowJoinAttempt(addr net.Addr) bool {
	host := addr.String()
	if tcp, ok := addr.(*net.TCPAddr); ok {
		host = tcp.IP.String()
	}

	s.limiterMu.Lock()
	lim, ok := s.limiters[host]
	if !ok {
		lim = rate.NewLimiter(s.joinRate, s.joinBurst)
		s.limiters[host] = lim
	}
	s.limiterMu.Unlock()

	return lim.Allow()
}

// handleConn runs the per-connection handshake then either the AI or GUI
// read loop. It never touches World directly — all state changes are
// requested over channels and executed by mainLoop.
func (s *GameServer) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	if _, err := conn.Write([]byte("WELCOME\n")); err != nil {
		return
	}

	reader := bufio.NewReader(conn)
	first, err := reader.ReadString('\n')
	if err != nil {
		return
	}
	first = trimLine(first)

	if first == "GRAPHIC" {
		s.handleGUI(conn, reader)
		return
	}
	s.handleAI(conn, reader, first)
}

func trimLine(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func (s *GameServer) handleAI(conn net.Conn, reader *bufio.Reader, teamName string) {
	resp := make(chan joinResult, 1)
	select {
	case s.joinCh <- joinRequest{teamName: teamName, resp: resp}:
	case <-s.ctx.Done():
		return
	}

	var result joinResult
	select {
	case result = <-resp:
	case <-s.ctx.Done():
		return
	}
	if result.err != nil {
		logrus.WithFields(logrus.Fields{
			"system_name": "gameserver",
			"team":        teamName,
		}).WithError(result.err).Debug("join rejected")
		conn.Write([]byte("ko\n"))
		return
	}
	conn.Write([]byte(fmt.Sprintf("%d\n%d %d\n", result.freeSlot, s.world.Width, s.world.Height)))

	ac := &aiConn{id: result.id, conn: conn, out: make(chan string, outboxSize)}
	s.mu.Lock()
	s.aiConns[ac.id] = ac
	s.mu.Unlock()

	s.wg.Add(1)
	go s.writeLoop(conn, ac.out)

	defer func() {
		select {
		case s.leaveCh <- ac.id:
		case <-s.ctx.Done():
		}
		s.mu.Lock()
		delete(s.aiConns, ac.id)
		s.mu.Unlock()
		close(ac.out)
	}()

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		verb, arg, ok := parseAICommand(trimLine(line))
		if !ok {
			logrus.WithFields(logrus.Fields{
				"system_name": "gameserver",
				"player_id":   ac.id,
			}).WithError(ErrMalformedLine).Debug("ignoring unparseable command")
			select {
			case ac.out <- "ko\n":
			case <-s.ctx.Done():
				return
			}
			continue
		}
		select {
		case s.cmdCh <- commandRequest{id: ac.id, verb: verb, arg: arg}:
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *GameServer) handleGUI(conn net.Conn, reader *bufio.Reader) {
	s.mu.Lock()
	id := s.nextGUI
	s.nextGUI++
	gc := &guiConn{id: id, conn: conn, out: make(chan string, outboxSize)}
	s.guiConns[id] = gc
	s.mu.Unlock()

	s.wg.Add(1)
	go s.writeLoop(conn, gc.out)

	select {
	case s.guiCh <- guiQuery{gui: gc, line: "__handshake__"}:
	case <-s.ctx.Done():
		return
	}

	defer func() {
		s.mu.Lock()
		delete(s.guiConns, id)
		s.mu.Unlock()
		close(gc.out)
	}()

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		select {
		case s.guiCh <- guiQuery{gui: gc, line: trimLine(line)}:
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *GameServer) writeLoop(conn net.Conn, out chan string) {
	defer s.wg.Done()
	for line := range out {
		if _, err := conn.Write([]byte(line)); err != nil {
			return
		}
	}
}

// mainLoop is the sole goroutine that ever touches s.world. Everything else
// is a request over a channel.
func (s *GameServer) mainLoop() {
	defer s.wg.Done()

	poll := time.NewTicker(fastPollInterval)
	defer poll.Stop()
	seconds := time.NewTicker(secondTick)
	defer seconds.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case req := <-s.joinCh:
			s.processJoin(req)
		case cmd := <-s.cmdCh:
			s.world.Submit(cmd.id, cmd.verb, cmd.arg)
			s.flushNotifications()
		case q := <-s.guiCh:
			s.processGUIQuery(q)
		case id := <-s.leaveCh:
			s.world.Remove(id)
			s.flushNotifications()
		case <-seconds.C:
			s.world.OnSecondElapsed()
			s.flushNotifications()
		case <-poll.C:
			s.world.ExecuteReadyActions()
			s.flushNotifications()
		}
	}
}

func (s *GameServer) processJoin(req joinRequest) {
	idx := s.world.FindTeam(req.teamName)
	if idx < 0 {
		req.resp <- joinResult{err: fmt.Errorf("team %q: %w", req.teamName, ErrUnknownTeam)}
		return
	}
	if s.world.Teams[idx].FreeSlots() <= 0 {
		req.resp <- joinResult{err: fmt.Errorf("team %q: %w", req.teamName, ErrTeamFull)}
		return
	}
	if s.maxTotalPlayers > 0 && len(s.world.LivingPlayers()) >= s.maxTotalPlayers {
		req.resp <- joinResult{err: fmt.Errorf("cap %d: %w", s.maxTotalPlayers, ErrGlobalCapReached)}
		return
	}
	p := s.world.Join(idx)
	s.flushNotifications()
	req.resp <- joinResult{id: p.ID, freeSlot: s.world.Teams[idx].FreeSlots()}
}

// flushNotifications drains the world's accumulated events/unicasts/
// disconnects and fans them out to the relevant sockets.
func (s *GameServer) flushNotifications() {
	events, unicasts, discs := s.world.DrainNotifications()

	if len(events) > 0 {
		lines := make([]string, 0, len(events))
		for _, e := range events {
			if line, ok := formatEvent(e); ok {
				lines = append(lines, line)
			}
		}
		s.mu.RLock()
		for _, gc := range s.guiConns {
			for _, line := range lines {
				s.deliverGUI(gc, line)
			}
		}
		s.mu.RUnlock()
	}

	s.mu.RLock()
	for _, u := range unicasts {
		if ac, ok := s.aiConns[u.To]; ok {
			s.deliverAI(ac, u.Line)
		}
	}
	s.mu.RUnlock()

	for _, d := range discs {
		s.mu.RLock()
		ac, ok := s.aiConns[d.Who]
		s.mu.RUnlock()
		if ok {
			ac.conn.Close()
		}
	}
}

func (s *GameServer) deliverAI(ac *aiConn, line string) {
	select {
	case ac.out <- line:
	default:
		logrus.WithFields(logrus.Fields{
			"system_name": "gameserver",
			"player_id":   ac.id,
		}).Warn("ai outbox full, dropping notification")
	}
}

func (s *GameServer) deliverGUI(gc *guiConn, line string) {
	select {
	case gc.out <- line:
	default:
		logrus.WithFields(logrus.Fields{
			"system_name": "gameserver",
			"gui_id":      gc.id,
		}).Warn("gui outbox full, dropping notification")
	}
}

// GetAddr returns the listener's bound network address, useful when the
// server was started on port 0 for an ephemeral test port.
func (s *GameServer) GetAddr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// GetClientCount returns the number of identified AI connections.
func (s *GameServer) GetClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.aiConns)
}

// GetGUICount returns the number of identified GUI connections.
func (s *GameServer) GetGUICount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.guiConns)
}
