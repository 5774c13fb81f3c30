package server

import (
	"context"
	"sync"
	"time"

	"falsepos/internal/config"
	"falsepos/internal/solver"
	"falsepos/internal/sse"
)

// RunParams — параметры запуска метода
type RunParams struct {
	Func    string  `json:"func"`
	A       float64 `json:"a"`
	B       float64 `json:"b"`
	Eps     float64 `json:"eps"`
	MaxIter int     `json:"maxIter"`
}

// RunState — состояние одного запуска
type RunState struct {
	ID        string
	Params    RunParams
	CreatedAt time.Time

	// границы после автоматического поиска смены знака
	A, B float64

	Iters  []solver.Iter
	Result solver.Result

	Err    string
	Done   bool
	Cancel context.CancelFunc
}

// Server держит конфигурацию, SSE-хаб и состояния запусков
type Server struct {
	cfg config.Config
	hub *sse.Hub

	mu   sync.Mutex
	runs map[string]*RunState
}

func New(cfg config.Config) *Server {
	return &Server{
		cfg:  cfg,
		hub:  sse.NewHub(),
		runs: map[string]*RunState{},
	}
}

func (s *Server) saveRun(rs *RunState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[rs.ID] = rs
}

func (s *Server) getRun(id string) *RunState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[id]
}
