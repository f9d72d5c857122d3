package server

import (
	"io"
	"net/http"

	"github.com/me/jamsched/internal/workload"
	"github.com/me/jamsched/pkg/model"
)

// planResponse pairs a plan with its rendered assignment matrix.
type planResponse struct {
	*model.Plan
	MatrixText string `json:"matrix_text"`
}

type workloadAccepted struct {
	Cycle   int64 `json:"cycle"`
	Workers int   `json:"workers"`
	Tasks   int   `json:"tasks"`
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	wl, ok := s.readWorkload(w, r, reqID)
	if !ok {
		return
	}
	plan, err := s.planner.Plan(r.Context(), wl)
	if err != nil {
		s.logger.Debug("plan rejected", "error", err, "request_id", reqID)
		respondErr(w, reqID, err)
		return
	}
	respondOK(w, reqID, planResponse{Plan: plan, MatrixText: plan.Matrix.String()})
}

func (s *Server) handleGetWorkload(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if s.loop == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("Scheduler", "loop"))
		return
	}
	wl := s.loop.Workload()
	if wl == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("Workload", "current"))
		return
	}
	respondOK(w, reqID, wl)
}

func (s *Server) handlePutWorkload(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	if s.loop == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("Scheduler", "loop"))
		return
	}

	wl, ok := s.readWorkload(w, r, reqID)
	if !ok {
		return
	}
	if apiErr := s.planner.Validate(wl); apiErr != nil {
		respondError(w, reqID, http.StatusBadRequest, apiErr)
		return
	}
	s.loop.SetWorkload(wl)
	cycle := s.loop.Cycle()
	s.logger.Info("workload replaced", "cycle", cycle, "workers", len(wl.Workers), "tasks", len(wl.Tasks))
	respondAccepted(w, reqID, workloadAccepted{Cycle: cycle, Workers: len(wl.Workers), Tasks: len(wl.Tasks)})
}

// readWorkload decodes the request body and fills in the server defaults.
// It writes the error response itself and reports false on failure.
func (s *Server) readWorkload(w http.ResponseWriter, r *http.Request, reqID string) (*workload.Workload, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("Cannot read body: "+err.Error()))
		return nil, false
	}
	wl, err := s.parser.Parse(data)
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("Invalid workload: "+err.Error()))
		return nil, false
	}
	wl.ApplyDefaults(s.defaults)
	return wl, true
}
