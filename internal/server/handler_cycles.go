package server

import (
	"net/http"

	"github.com/me/jamsched/pkg/model"
)

func (s *Server) handleLatestCycle(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if s.recorder == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("Broadcast", "latest"))
		return
	}
	b, ok := s.recorder.Latest()
	if !ok {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("Broadcast", "latest"))
		return
	}
	respondOK(w, reqID, b)
}
