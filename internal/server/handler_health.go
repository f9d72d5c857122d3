package server

import (
	"net/http"
	"runtime"
	"time"
)

// Version is reported by /health and the discovery document.
const Version = "0.1.0"

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
	Scheduler string `json:"scheduler"`
	NextCycle *int64 `json:"next_cycle,omitempty"`
	Published int    `json:"published"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	resp := healthResponse{
		Status:    "healthy",
		Version:   Version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Scheduler: "not_configured",
	}
	if s.loop != nil {
		resp.Scheduler = "running"
		next := s.loop.Cycle()
		resp.NextCycle = &next
	}
	if s.recorder != nil {
		resp.Published = s.recorder.Count()
	}
	respondOK(w, reqID, resp)
}
