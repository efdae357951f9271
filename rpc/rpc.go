package rpc

import (
	"net"
	"net/rpc"

	"avalon/logger"
	"avalon/models"
	"avalon/services"
)

// Server manages the RPC listener for the admin surface.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// SessionStatus is the operator-facing summary of the live session.
// It deliberately carries no role assignment.
type SessionStatus struct {
	Phase          string
	GameStarted    bool
	CurrentMission int
	GoodWins       int
	EvilWins       int
	Winner         string
	Players        []PlayerStatus
}

type PlayerStatus struct {
	Name      string
	Connected bool
}

// StatusProvider is implemented by the game server; it lets the admin
// service read a consistent summary without importing the server.
type StatusProvider interface {
	Status() SessionStatus
}

// AdminService exposes the net/rpc admin methods.
type AdminService struct {
	provider StatusProvider
	stats    *services.StatsService
}

func NewAdminService(provider StatusProvider, stats *services.StatsService) *AdminService {
	return &AdminService{provider: provider, stats: stats}
}

type StatusArgs struct{}

type StatusReply struct {
	Status SessionStatus
}

// SessionStatus reports the current phase, roster and mission tally.
func (a *AdminService) SessionStatus(args *StatusArgs, reply *StatusReply) error {
	reply.Status = a.provider.Status()
	return nil
}

type GetPlayerStatsArgs struct {
	Name string
}

type GetPlayerStatsReply struct {
	Stats models.PlayerStats
}

// GetPlayerStats returns the lifetime win/loss tally for a player name.
func (a *AdminService) GetPlayerStats(args *GetPlayerStatsArgs, reply *GetPlayerStatsReply) error {
	stats, err := a.stats.GetPlayerStats(args.Name)
	if err != nil {
		return err
	}
	reply.Stats = *stats
	return nil
}
