package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	"falsepos/internal/report"
	"falsepos/internal/solver"
)

// StartRun запускает новый расчёт методом ложного положения
func (s *Server) StartRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "только POST", http.StatusMethodNotAllowed)
		return
	}

	var p RunParams
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "ошибка JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if p.MaxIter <= 0 {
		p.MaxIter = s.cfg.Defaults.MaxIter
	}
	if p.Eps <= 0 {
		p.Eps = s.cfg.Defaults.Eps
	}
	if !(p.A < p.B) {
		http.Error(w, "требуется a < b", http.StatusBadRequest)
		return
	}

	f, err := solver.NewEvalFunc(p.Func)
	if err != nil {
		http.Error(w, "ошибка в выражении функции: "+err.Error(), http.StatusBadRequest)
		return
	}

	// проверка и ремонт интервала выполняются до ответа, чтобы сразу
	// показать пользователю скорректированные границы
	a, b, attempts, err := solver.SearchBracket(f, p.A, p.B)
	if err != nil {
		var nb *solver.NoBracketError
		if errors.As(err, &nb) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, "ошибка при вычислении: "+err.Error(), http.StatusBadRequest)
		return
	}

	// значения функции для графика по рабочему интервалу
	const n = 400
	xs, ys := solver.Sample(f, a-1, b+1, n)

	// таблица значений по исходному интервалу, как в форме
	tableXs, tableYs := solver.Sample(f, p.A-1, p.B+1, 10)

	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	rs := &RunState{
		ID:        id,
		Params:    p,
		CreatedAt: time.Now(),
		A:         a,
		B:         b,
		Cancel:    cancel,
	}
	s.saveRun(rs)

	// асинхронный запуск итераций
	go s.run(ctx, rs, f)

	resp := map[string]any{
		"id":       id,
		"a":        a,
		"b":        b,
		"adjusted": attempts > 0,
		"xs":       xs,
		"ys":       jsonFloats(ys),
		"tableXs":  tableXs,
		"tableYs":  jsonFloats(tableYs),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// jsonFloats заменяет NaN и бесконечности на null: encoding/json
// не умеет сериализовать такие значения
func jsonFloats(vs []float64) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[i] = nil
		} else {
			out[i] = v
		}
	}
	return out
}

func (s *Server) run(ctx context.Context, rs *RunState, f solver.Func) {
	startMsg, _ := json.Marshal(map[string]any{
		"type": "start",
		"id":   rs.ID,
		"a":    rs.A,
		"b":    rs.B,
	})
	s.hub.Publish(rs.ID, string(startMsg))

	onIter := func(it solver.Iter) error {
		select {
		case <-ctx.Done():
			return solver.ErrStopped
		default:
		}

		s.mu.Lock()
		rs.Iters = append(rs.Iters, it)
		s.mu.Unlock()

		msg, _ := json.Marshal(map[string]any{
			"type": "iter",
			"iter": it,
		})
		s.hub.Publish(rs.ID, string(msg))
		return nil
	}

	_, res, err := solver.RegulaFalsi(f, rs.A, rs.B, rs.Params.Eps, rs.Params.MaxIter, onIter)

	if err != nil {
		if errors.Is(err, solver.ErrStopped) || errors.Is(err, context.Canceled) {
			stopMsg, _ := json.Marshal(map[string]any{
				"type": "stopped",
			})
			s.hub.Publish(rs.ID, string(stopMsg))
			return
		}

		s.mu.Lock()
		rs.Err = "ошибка при вычислении: " + err.Error()
		s.mu.Unlock()

		errMsg, _ := json.Marshal(map[string]any{
			"type": "error",
			"err":  "ошибка при вычислении: " + err.Error(),
		})
		s.hub.Publish(rs.ID, string(errMsg))
		return
	}

	s.mu.Lock()
	rs.Done = true
	rs.Result = res
	s.mu.Unlock()

	doneMsg, _ := json.Marshal(map[string]any{
		"type":      "done",
		"z":         res.Z,
		"fz":        res.FZ,
		"iters":     res.Iters,
		"converged": res.Converged,
	})
	s.hub.Publish(rs.ID, string(doneMsg))
}

// StopRun — прерывание расчёта
func (s *Server) StopRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "только POST", http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "требуется id", http.StatusBadRequest)
		return
	}

	rs := s.getRun(id)
	if rs == nil {
		http.Error(w, "неизвестный id", http.StatusNotFound)
		return
	}

	if rs.Cancel != nil {
		rs.Cancel()
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportCSV — экспорт трассы итераций в CSV
func (s *Server) ExportCSV(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "требуется id", http.StatusBadRequest)
		return
	}

	rs := s.getRun(id)
	if rs == nil {
		http.Error(w, "неизвестный id", http.StatusNotFound)
		return
	}

	s.mu.Lock()
	iters := append([]solver.Iter(nil), rs.Iters...)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=false_position_"+id+".csv")

	_ = report.Write(w, iters)
}

// Stream — SSE-стрим итераций
func (s *Server) Stream(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "требуется id", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch, cancel := s.hub.Subscribe(id)
	defer cancel()

	ctx := r.Context()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-ch:
			fmt.Fprintf(w, "event: msg\n")
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
