package api

import (
	json "github.com/go-json-experiment/json"
	"net/http"
	"strconv"

	"github.com/sadhanaapp/sadhana-server/internal/http/response"
	"github.com/sadhanaapp/sadhana-server/internal/service"
)

func (s *Server) handleGetAnnotations(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		response.BadRequest(w, "key is required", s.logger)
		return
	}

	ann, err := s.annotations.Get(r.Context(), key)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, ann, s.logger)
}

func (s *Server) handleAddMarker(w http.ResponseWriter, r *http.Request) {
	var req service.AddMarkerRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	markers, err := s.annotations.AddMarker(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Created(w, markers, s.logger)
}

func (s *Server) handleRemoveMarker(w http.ResponseWriter, r *http.Request) {
	key, index, ok := s.annotationTarget(w, r)
	if !ok {
		return
	}

	markers, err := s.annotations.RemoveMarker(r.Context(), key, index)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, markers, s.logger)
}

func (s *Server) handleAddNote(w http.ResponseWriter, r *http.Request) {
	var req service.AddNoteRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	notes, err := s.annotations.AddNote(r.Context(), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Created(w, notes, s.logger)
}

func (s *Server) handleRemoveNote(w http.ResponseWriter, r *http.Request) {
	key, index, ok := s.annotationTarget(w, r)
	if !ok {
		return
	}

	notes, err := s.annotations.RemoveNote(r.Context(), key, index)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, notes, s.logger)
}

// annotationTarget reads the key and index query parameters shared by the
// delete endpoints, writing the error response itself on bad input.
func (s *Server) annotationTarget(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	q := r.URL.Query()

	key := q.Get("key")
	if key == "" {
		response.BadRequest(w, "key is required", s.logger)
		return "", 0, false
	}

	index, err := strconv.Atoi(q.Get("index"))
	if err != nil {
		response.BadRequest(w, "index must be an integer", s.logger)
		return "", 0, false
	}

	return key, index, true
}
