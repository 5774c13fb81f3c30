package server

import (
	"net/http"
	"path/filepath"
)

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// API эндпоинты
	mux.HandleFunc("/start", s.StartRun)
	mux.HandleFunc("/stop", s.StopRun)
	mux.HandleFunc("/stream", s.Stream)
	mux.HandleFunc("/export", s.ExportCSV)

	// статика
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(s.cfg.StaticDir, "index.html"))
	})
	mux.HandleFunc("/help", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(s.cfg.StaticDir, "help.html"))
	})

	return mux
}
