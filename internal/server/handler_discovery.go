package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	respondOK(w, reqID, discoveryResponse{
		Name:        "jamsched API",
		Version:     "v1",
		Description: "Periodic RT/SY co-scheduler: task assignment, per-worker timelines and cycle broadcasts",
		Endpoints: []endpointInfo{
			{"/api/v1/plan", []string{"POST"}, "Plan a workload (YAML or JSON) and return the assignment matrix and schedule"},
			{"/api/v1/workload", []string{"GET", "PUT"}, "Workload planned by the cycle loop; PUT replaces it from the next cycle"},
			{"/api/v1/cycles/latest", []string{"GET"}, "Most recently published broadcast"},
			{"/api/v1/health", []string{"GET"}, "Server health and version"},
		},
	})
}
