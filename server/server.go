package server

import (
	"encoding/json"
	"net/http"
	"net/rpc"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"avalon/broadcast"
	"avalon/game"
	"avalon/logger"
	"avalon/monitor"
	"avalon/network"
	"avalon/persistence"
	avalonrpc "avalon/rpc"
	"avalon/services"
	"avalon/session"
	"avalon/timer"
)

const heartbeatInterval = 30 * time.Second

// GameServer owns the single authoritative session. Every request that
// reads or mutates it goes through mu, so no two requests can
// interleave their read-modify-write; broadcast and persistence work
// from copies taken under the lock.
type GameServer struct {
	addr         string
	upgrader     websocket.Upgrader
	engine       *game.Engine
	mu           sync.Mutex
	registry     *session.Registry
	broadcaster  broadcast.Broadcaster
	store        persistence.Store
	stats        *services.StatsService
	monitor      *monitor.Monitor
	timers       *timer.Manager
	rpcServer    *avalonrpc.Server
	saveInterval time.Duration
	shutdownChan chan struct{}
}

func NewGameServer(addr, rpcAddr, metricsAddr string, store persistence.Store, saveInterval time.Duration) *GameServer {
	state := restoreState(store)

	s := &GameServer{
		addr:         addr,
		engine:       game.NewEngine(state),
		registry:     session.NewRegistry(),
		store:        store,
		monitor:      monitor.NewMonitor("avalon"),
		timers:       timer.NewManager(),
		saveInterval: saveInterval,
		shutdownChan: make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.broadcaster = broadcast.NewRegistryBroadcaster(s.registry)

	if recordStore, ok := store.(persistence.RecordStore); ok {
		s.stats = services.NewStatsService(recordStore)
	}

	rpcServer, err := avalonrpc.NewServer(rpcAddr)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer
	rpc.Register(avalonrpc.NewAdminService(s, s.stats))

	s.monitor.StartServer(metricsAddr)

	// Periodic save as the durability backstop behind the per-mutation
	// fire-and-forget saves.
	s.timers.Schedule(s.saveInterval, s.saveInterval, s.persistSnapshot)

	return s
}

// restoreState loads the last snapshot once at process start. A broken
// snapshot falls back to a fresh lobby instead of crashing.
func restoreState(store persistence.Store) *game.SessionState {
	state, err := store.LoadSnapshot()
	if err != nil {
		logger.Log.Errorf("Failed to load snapshot, starting fresh: %v", err)
		return game.NewSessionState()
	}
	if state == nil {
		return game.NewSessionState()
	}

	// Connections do not survive a restart; every seat starts offline.
	for _, p := range state.Players {
		p.Connected = false
	}
	logger.Log.Infof("Restored session: phase=%s players=%d", state.CurrentPhase, len(state.Players))
	return state
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.timers.Stop()
	s.rpcServer.Stop()
	s.persistSnapshot()
}

// Status implements rpc.StatusProvider.
func (s *GameServer) Status() avalonrpc.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.engine.State()
	good, evil := state.MissionWins()
	status := avalonrpc.SessionStatus{
		Phase:          string(state.CurrentPhase),
		GameStarted:    state.GameStarted,
		CurrentMission: state.CurrentMission,
		GoodWins:       good,
		EvilWins:       evil,
		Winner:         string(state.Winner),
	}
	for _, p := range state.Players {
		status.Players = append(status.Players, avalonrpc.PlayerStatus{
			Name:      p.Name,
			Connected: p.Connected,
		})
	}
	return status
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	wsConn.SetHeartbeat(heartbeatInterval)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.registry.Add(sess)

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.handleDisconnect(sess)
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			event, err := wsConn.ReadEvent()
			if err != nil {
				return
			}
			s.handleEvent(sess, event)
		}
	}
}

func (s *GameServer) handleEvent(sess *session.Session, event *network.Event) {
	start := time.Now()
	s.monitor.IncRequestsReceived()

	switch event.Event {
	case network.EventJoin:
		s.handleJoin(sess, event.Data)
	case network.EventReconnectPlayer:
		s.handleReconnect(sess, event.Data)
	case network.EventStartGame:
		s.handleStartGame(sess)
	case network.EventProposeTeam:
		s.handleProposeTeam(sess, event.Data)
	case network.EventTeamVote:
		s.handleTeamVote(sess, event.Data)
	case network.EventMissionVote:
		s.handleMissionVote(sess, event.Data)
	case network.EventAssassinate:
		s.handleAssassinate(sess, event.Data)
	case network.EventNewGame:
		s.handleNewGame(sess)
	default:
		logger.Log.Infof("Unknown event %q from session %s", event.Event, sess.GetID())
		s.sendError(sess, "unknown event")
	}

	s.monitor.ObserveRequestLatency(time.Since(start))
}

type namePayload struct {
	Name string `json:"name"`
}

type teamPayload struct {
	Team []string `json:"team"`
}

type votePayload struct {
	Vote bool `json:"vote"`
}

type targetPayload struct {
	Target string `json:"target"`
}

func (s *GameServer) handleJoin(sess *session.Session, data json.RawMessage) {
	var req namePayload
	if err := json.Unmarshal(data, &req); err != nil || req.Name == "" {
		s.sendError(sess, "a name is required to join")
		return
	}

	s.mu.Lock()
	err := s.engine.Join(req.Name)
	if err != nil {
		s.mu.Unlock()
		s.rejected(sess, err)
		return
	}
	state := s.engine.State()
	players := game.ProjectPlayers(state)
	view := game.Project(state, req.Name)
	snapshot := snapshotCopy(state)
	s.mu.Unlock()

	s.bind(sess, req.Name)
	logger.Log.Infof("New player joined: %s", req.Name)

	sess.Send(network.EventInitialState, map[string]interface{}{
		"players":   players,
		"gameState": view,
	})
	s.broadcaster.BroadcastEvent(network.EventPlayerJoined, map[string]interface{}{
		"name":    req.Name,
		"players": players,
	})
	s.broadcaster.BroadcastEvent(network.EventPlayersUpdated, map[string]interface{}{
		"players":        snapshot.PlayerNames(),
		"fullPlayerData": players,
	})
	s.broadcaster.BroadcastViews(snapshot)
	s.persistAsync(snapshot)
}

func (s *GameServer) handleReconnect(sess *session.Session, data json.RawMessage) {
	var req namePayload
	if err := json.Unmarshal(data, &req); err != nil || req.Name == "" {
		s.sendError(sess, "a name is required to reconnect")
		return
	}

	s.mu.Lock()
	err := s.engine.Reconnect(req.Name)
	if err != nil {
		s.mu.Unlock()
		s.rejected(sess, err)
		return
	}
	state := s.engine.State()
	players := game.ProjectPlayers(state)
	view := game.Project(state, req.Name)
	snapshot := snapshotCopy(state)
	s.mu.Unlock()

	s.bind(sess, req.Name)
	logger.Log.Infof("Player reconnected: %s", req.Name)

	sess.Send(network.EventInitialState, map[string]interface{}{
		"players":   players,
		"gameState": view,
	})
	s.broadcaster.BroadcastEvent(network.EventPlayerReconnected, map[string]interface{}{
		"name": req.Name,
	})
	s.broadcaster.BroadcastEvent(network.EventPlayersUpdated, map[string]interface{}{
		"players":        snapshot.PlayerNames(),
		"fullPlayerData": players,
	})
	s.persistAsync(snapshot)
}

func (s *GameServer) handleStartGame(sess *session.Session) {
	name, ok := s.identify(sess)
	if !ok {
		return
	}
	if s.apply(sess, func() error { return s.engine.StartGame(name) }) {
		s.monitor.IncGamesStarted()
		logger.Log.Infof("Game started by %s", name)
	}
}

func (s *GameServer) handleProposeTeam(sess *session.Session, data json.RawMessage) {
	name, ok := s.identify(sess)
	if !ok {
		return
	}
	var req teamPayload
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendError(sess, "invalid team payload")
		return
	}
	if s.apply(sess, func() error { return s.engine.ProposeTeam(name, req.Team) }) {
		logger.Log.Infof("Team proposed by %s: %v", name, req.Team)
	}
}

func (s *GameServer) handleTeamVote(sess *session.Session, data json.RawMessage) {
	name, ok := s.identify(sess)
	if !ok {
		return
	}
	var req votePayload
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendError(sess, "invalid vote payload")
		return
	}
	s.apply(sess, func() error { return s.engine.SubmitTeamVote(name, req.Vote) })
}

func (s *GameServer) handleMissionVote(sess *session.Session, data json.RawMessage) {
	name, ok := s.identify(sess)
	if !ok {
		return
	}
	var req votePayload
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendError(sess, "invalid vote payload")
		return
	}
	s.apply(sess, func() error { return s.engine.SubmitMissionVote(name, req.Vote) })
}

func (s *GameServer) handleAssassinate(sess *session.Session, data json.RawMessage) {
	name, ok := s.identify(sess)
	if !ok {
		return
	}
	var req targetPayload
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendError(sess, "invalid target payload")
		return
	}
	if s.apply(sess, func() error { return s.engine.Assassinate(name, req.Target) }) {
		logger.Log.Infof("Assassination attempt by %s on %s", name, req.Target)
	}
}

func (s *GameServer) handleNewGame(sess *session.Session) {
	if _, ok := s.identify(sess); !ok {
		return
	}
	if s.apply(sess, func() error { return s.engine.NewGame() }) {
		// The reset emptied the roster, so the per-player view
		// broadcast in apply reached nobody. Tell every connection the
		// lobby reopened.
		logger.Log.Info("Session reset to a fresh lobby")
		s.broadcaster.BroadcastEvent(network.EventPlayersUpdated, map[string]interface{}{
			"players":        []string{},
			"fullPlayerData": []game.PlayerView{},
		})
	}
}

// handleDisconnect runs on transport-level close. It only touches
// connectivity; recorded votes and roles stay exactly as they were.
func (s *GameServer) handleDisconnect(sess *session.Session) {
	name := s.registry.Unbind(sess.GetID())
	if name == "" {
		return
	}

	s.mu.Lock()
	err := s.engine.Disconnect(name)
	var players []game.PlayerView
	var snapshot *game.SessionState
	if err == nil {
		players = game.ProjectPlayers(s.engine.State())
		snapshot = snapshotCopy(s.engine.State())
	}
	s.mu.Unlock()

	if err != nil {
		// The roster was reset while this connection was up; nothing
		// left to record.
		return
	}

	logger.Log.Infof("Player disconnected: %s", name)
	s.updateConnectedGauge()
	s.broadcaster.BroadcastEvent(network.EventPlayerLeft, map[string]interface{}{
		"name":    name,
		"players": players,
	})
	s.persistAsync(snapshot)
}

// apply runs one state-changing request under the session lock. On
// success every connected player gets a fresh view and the snapshot is
// saved; on rejection only the requester hears about it.
func (s *GameServer) apply(sess *session.Session, mutate func() error) bool {
	s.mu.Lock()
	missionsBefore := len(s.engine.State().MissionHistory)

	if err := mutate(); err != nil {
		s.mu.Unlock()
		s.rejected(sess, err)
		return false
	}

	state := s.engine.State()
	missionsAfter := len(state.MissionHistory)
	gameOver := state.CurrentPhase == game.PhaseGameOver && state.Winner != ""
	snapshot := snapshotCopy(state)
	s.mu.Unlock()

	if missionsAfter > missionsBefore {
		s.monitor.IncMissionsCompleted()
	}

	// The broadcast reads the stable post-mutation snapshot, so it can
	// overlap the next incoming request.
	s.broadcaster.BroadcastViews(snapshot)
	s.persistAsync(snapshot)

	if gameOver {
		logger.Log.Infof("Game over: winner=%s", snapshot.Winner)
		s.stats.RecordGameOver(snapshot)
	}
	return true
}

// identify resolves the requester's bound player name. Requests from
// connections that never joined are rejected without touching state.
func (s *GameServer) identify(sess *session.Session) (string, bool) {
	if sess.PlayerName == "" {
		s.sendError(sess, "join first")
		return "", false
	}
	return sess.PlayerName, true
}

func (s *GameServer) bind(sess *session.Session, name string) {
	if displaced := s.registry.Bind(name, sess); displaced != nil {
		logger.Log.Infof("Displacing stale connection for %s", name)
		displaced.Close()
	}
	s.updateConnectedGauge()
}

func (s *GameServer) updateConnectedGauge() {
	s.mu.Lock()
	connected := 0
	for _, p := range s.engine.State().Players {
		if p.Connected {
			connected++
		}
	}
	s.mu.Unlock()
	s.monitor.SetConnectedPlayers(connected)
}

func (s *GameServer) rejected(sess *session.Session, err error) {
	s.monitor.IncRequestsRejected()
	s.sendError(sess, err.Error())
}

func (s *GameServer) sendError(sess *session.Session, message string) {
	sess.Send(network.EventError, map[string]string{"message": message})
}

// persistAsync saves a snapshot without stalling the request path.
// Failures are logged; the periodic save will retry.
func (s *GameServer) persistAsync(snapshot *game.SessionState) {
	go func() {
		if err := s.store.SaveSnapshot(snapshot); err != nil {
			logger.Log.Errorf("Failed to save snapshot: %v", err)
		}
	}()
}

// persistSnapshot is the synchronous periodic save.
func (s *GameServer) persistSnapshot() {
	s.mu.Lock()
	snapshot := snapshotCopy(s.engine.State())
	s.mu.Unlock()

	if err := s.store.SaveSnapshot(snapshot); err != nil {
		logger.Log.Errorf("Periodic snapshot save failed: %v", err)
	}
}

// snapshotCopy deep-copies the state so broadcast and persistence can
// run outside the lock. Callers must hold mu.
func snapshotCopy(state *game.SessionState) *game.SessionState {
	data, err := json.Marshal(state)
	if err != nil {
		logger.Log.Errorf("Failed to copy session state: %v", err)
		return game.NewSessionState()
	}
	copied := game.NewSessionState()
	if err := json.Unmarshal(data, copied); err != nil {
		logger.Log.Errorf("Failed to copy session state: %v", err)
		return game.NewSessionState()
	}
	copied.Normalize()
	return copied
}
