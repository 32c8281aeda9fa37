package api

import (
	json "github.com/go-json-experiment/json"
	"net/http"

	"github.com/sadhanaapp/sadhana-server/internal/http/response"
	"github.com/sadhanaapp/sadhana-server/internal/service"
)

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	response.Success(w, s.preferences.Get(r.Context()), s.logger)
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	response.Success(w, s.preferences.Update(r.Context(), req), s.logger)
}
