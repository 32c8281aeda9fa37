package api

import (
	json "github.com/go-json-experiment/json"
	"net/http"
	"strconv"

	"github.com/sadhanaapp/sadhana-server/internal/catalog"
	"github.com/sadhanaapp/sadhana-server/internal/http/response"
	"github.com/sadhanaapp/sadhana-server/internal/service"
)

// handleQueryCatalog returns the filtered, sorted catalog view.
// Query params: q (substring), favorites (bool), sort (mode).
func (s *Server) handleQueryCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	favoritesOnly := false
	if raw := q.Get("favorites"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(w, "favorites must be a boolean", s.logger)
			return
		}
		favoritesOnly = v
	}

	items := s.catalogService.Query(r.Context(), service.QueryRequest{
		Query:         q.Get("q"),
		FavoritesOnly: favoritesOnly,
		Sort:          catalog.ParseSortMode(q.Get("sort")),
	})

	response.Success(w, items, s.logger)
}

// handleExportCatalog returns the catalog with the listener's effective
// start times merged into each entry.
func (s *Server) handleExportCatalog(w http.ResponseWriter, r *http.Request) {
	response.Success(w, s.catalogService.Export(r.Context()), s.logger)
}

// handleReloadCatalog re-reads the catalog source on demand.
func (s *Server) handleReloadCatalog(w http.ResponseWriter, r *http.Request) {
	if err := s.catalogService.Load(r.Context()); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, map[string]string{"status": "reloaded"}, s.logger)
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	response.Success(w, s.catalogService.Favorites(r.Context()), s.logger)
}

// ToggleFavoriteRequest identifies the item to toggle.
type ToggleFavoriteRequest struct {
	Key string `json:"key"`
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req ToggleFavoriteRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if req.Key == "" {
		response.BadRequest(w, "key is required", s.logger)
		return
	}

	favorited, err := s.catalogService.ToggleFavorite(r.Context(), req.Key)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, map[string]any{"key": req.Key, "favorited": favorited}, s.logger)
}

func (s *Server) handleListStarts(w http.ResponseWriter, r *http.Request) {
	response.Success(w, s.catalogService.CustomStarts(r.Context()), s.logger)
}

// SetStartRequest sets a per-item default start offset.
type SetStartRequest struct {
	Key     string `json:"key"`
	Seconds int    `json:"seconds"`
}

func (s *Server) handleSetStart(w http.ResponseWriter, r *http.Request) {
	var req SetStartRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	if req.Key == "" {
		response.BadRequest(w, "key is required", s.logger)
		return
	}

	if err := s.catalogService.SetCustomStart(r.Context(), req.Key, req.Seconds); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Success(w, s.catalogService.CustomStarts(r.Context()), s.logger)
}

// handleClearStart removes the start offset for the item named by the key
// query parameter. Item keys carry reserved characters, so they travel as
// a query value rather than a path segment.
func (s *Server) handleClearStart(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		response.BadRequest(w, "key is required", s.logger)
		return
	}

	if err := s.catalogService.ClearCustomStart(r.Context(), key); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.NoContent(w)
}
