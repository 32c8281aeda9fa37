package api

import (
	json "github.com/go-json-experiment/json"
	"net/http"

	"github.com/sadhanaapp/sadhana-server/internal/http/response"
)

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	response.Success(w, s.playback.Current(r.Context()), s.logger)
}

// SelectRequest names the item to play.
type SelectRequest struct {
	Key string `json:"key"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if req.Key == "" {
		response.BadRequest(w, "key is required", s.logger)
		return
	}

	np, err := s.playback.Select(r.Context(), req.Key)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, np, s.logger)
}

// ReadyRequest reports that the client's media element has metadata.
type ReadyRequest struct {
	Generation uint64  `json:"generation"`
	Duration   float64 `json:"duration"`
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	var req ReadyRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	target, err := s.playback.Ready(r.Context(), req.Generation, req.Duration)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	// A nil target means the report was stale; acknowledging it keeps the
	// superseded client quiet without making it retry.
	response.Success(w, target, s.logger)
}

// TickRequest reports playback time progress.
type TickRequest struct {
	Generation uint64  `json:"generation"`
	Time       float64 `json:"time"`
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	var req TickRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.playback.Tick(r.Context(), req.Generation, req.Time); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.NoContent(w)
}

// GenerationRequest carries only the reporting client's generation tag.
type GenerationRequest struct {
	Generation uint64 `json:"generation"`
}

func (s *Server) handleEnded(w http.ResponseWriter, r *http.Request) {
	var req GenerationRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	next, err := s.playback.Ended(r.Context(), req.Generation)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, next, s.logger)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	if err := s.playback.Pause(r.Context()); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.NoContent(w)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if err := s.playback.Resume(r.Context()); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.NoContent(w)
}

func (s *Server) handlePlayRejected(w http.ResponseWriter, r *http.Request) {
	var req GenerationRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.playback.PlayRejected(r.Context(), req.Generation); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.NoContent(w)
}

// SeekRequest moves the playback position. Exactly one of Time (absolute)
// or Delta (relative to the current position) should be set.
type SeekRequest struct {
	Time  *float64 `json:"time,omitempty"`
	Delta *float64 `json:"delta,omitempty"`
}

func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	var req SeekRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	switch {
	case req.Time != nil && req.Delta == nil:
		target, err := s.playback.Seek(r.Context(), *req.Time)
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
		response.Success(w, target, s.logger)
	case req.Delta != nil && req.Time == nil:
		target, err := s.playback.SeekRelative(r.Context(), *req.Delta)
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
		response.Success(w, target, s.logger)
	default:
		response.BadRequest(w, "exactly one of time or delta is required", s.logger)
	}
}
