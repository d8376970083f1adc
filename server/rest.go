package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/tripmind/tripmind/pkg/domain"
	"github.com/tripmind/tripmind/pkg/recommender"
)

// itemResponse is the wire representation of a scored item
type itemResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Location    string             `json:"location"`
	Category    string             `json:"category"`
	Description string             `json:"description,omitempty"`
	Tags        []domain.Tag       `json:"tags"`
	EnergyLevel domain.EnergyLevel `json:"energy_level"`
	PriceRange  string             `json:"price_range,omitempty"`
	Score       float64            `json:"score"`
}

func toItemResponses(items []recommender.ScoredItem) []itemResponse {
	result := make([]itemResponse, len(items))
	for i, si := range items {
		tags := si.Tags
		if tags == nil {
			tags = []domain.Tag{}
		}
		result[i] = itemResponse{
			ID:          si.ID,
			Name:        si.Name,
			Location:    si.Location,
			Category:    si.Category,
			Description: si.Description,
			Tags:        tags,
			EnergyLevel: si.EnergyLevel,
			PriceRange:  si.PriceRange,
			Score:       si.Score,
		}
	}
	return result
}

// statusHandler returns server status
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	renderJSON(w, r, http.StatusOK, status)
}

// recommendHandler returns a single-user ranked list. On an empty
// destination catalog it falls back to the importer once, then retries.
func (s *Server) recommendHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		UserID      string `json:"user_id"`
		Destination string `json:"destination"`
		TopN        int    `json:"top_n"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.Destination == "" {
		renderError(w, r, fmt.Errorf("user_id and destination are required"), http.StatusBadRequest)
		return
	}
	if req.TopN <= 0 {
		req.TopN = 20
	}

	items, err := s.engine.Recommend(ctx, req.UserID, req.Destination, req.TopN)
	if errors.Is(err, domain.ErrNotFound) && s.importer != nil {
		log.Printf("[INFO] no items for destination %q, importing generic pool", req.Destination)
		if _, impErr := s.importer.Import(ctx, req.Destination); impErr != nil {
			log.Printf("[WARN] catalog import for %q failed: %v", req.Destination, impErr)
		} else {
			items, err = s.engine.Recommend(ctx, req.UserID, req.Destination, req.TopN)
		}
	}
	if err != nil {
		renderEngineError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, map[string]interface{}{"recommendations": toItemResponses(items)})
}

// groupRecommendHandler returns a group-aware ranked list
func (s *Server) groupRecommendHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		ParticipantIDs []string `json:"participant_ids"`
		Destination    string   `json:"destination"`
		TopN           int      `json:"top_n"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}
	if len(req.ParticipantIDs) == 0 || req.Destination == "" {
		renderError(w, r, fmt.Errorf("participant_ids and destination are required"), http.StatusBadRequest)
		return
	}
	if req.TopN <= 0 {
		req.TopN = 20
	}

	items, err := s.engine.GroupRecommend(ctx, req.ParticipantIDs, req.Destination, req.TopN)
	if err != nil {
		renderEngineError(w, r, err)
		return
	}

	renderJSON(w, r, http.StatusOK, map[string]interface{}{"recommendations": toItemResponses(items)})
}

// swipeHandler records a like/dislike. The upsert is idempotent, so
// replays are accepted. With a trip id the group consensus is recomputed
// synchronously from the fresh interaction log.
func (s *Server) swipeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		UserID      string `json:"user_id"`
		ItemID      string `json:"item_id"`
		Action      string `json:"action"`
		Destination string `json:"destination"`
		TripID      string `json:"trip_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.ItemID == "" || req.Destination == "" {
		renderError(w, r, fmt.Errorf("user_id, item_id and destination are required"), http.StatusBadRequest)
		return
	}
	action := domain.Action(strings.ToLower(req.Action))
	if !action.Valid() {
		renderError(w, r, fmt.Errorf("invalid action %q", req.Action), http.StatusBadRequest)
		return
	}

	if _, err := s.store.EnsureUser(ctx, req.UserID); err != nil {
		log.Printf("[ERROR] failed to ensure user %s: %v", req.UserID, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	inter := &domain.Interaction{
		UserID:      req.UserID,
		ItemID:      req.ItemID,
		Action:      action,
		Destination: req.Destination,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.RecordInteraction(ctx, inter); err != nil {
		log.Printf("[ERROR] failed to record swipe: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{"accepted": true}
	if req.TripID != "" {
		confidence, err := s.group.SwipeRecorded(ctx, req.TripID)
		if err != nil {
			log.Printf("[WARN] group recompute after swipe failed: %v", err)
		} else {
			resp["group_confidence"] = confidence
		}
	}
	renderJSON(w, r, http.StatusOK, resp)
}

// confidenceHandler returns single-user confidence metrics
func (s *Server) confidenceHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	destination := r.URL.Query().Get("destination")
	if userID == "" || destination == "" {
		renderError(w, r, fmt.Errorf("user_id and destination are required"), http.StatusBadRequest)
		return
	}

	metrics, err := s.confidence.Check(r.Context(), userID, destination)
	if err != nil {
		renderEngineError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusOK, metrics)
}

// groupConfidenceHandler returns the group ready decision, by explicit
// participant list or by trip id
func (s *Server) groupConfidenceHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	participants, destination, ok := s.groupQuery(w, r)
	if !ok {
		return
	}

	confidence, err := s.group.GroupConfidence(ctx, participants, destination)
	if err != nil {
		renderEngineError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusOK, confidence)
}

// groupPreferencesHandler returns merged group preferences with consensus
// and conflict items
func (s *Server) groupPreferencesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	participants, destination, ok := s.groupQuery(w, r)
	if !ok {
		return
	}

	prefs, err := s.group.GroupPreferences(ctx, participants, destination)
	if err != nil {
		renderEngineError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusOK, prefs)
}

// groupQuery resolves participants and destination from either an explicit
// participant list or a trip id
func (s *Server) groupQuery(w http.ResponseWriter, r *http.Request) (participants []string, destination string, ok bool) {
	destination = r.URL.Query().Get("destination")
	if raw := r.URL.Query().Get("participants"); raw != "" {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				participants = append(participants, p)
			}
		}
	}

	if tripID := r.URL.Query().Get("trip_id"); tripID != "" && len(participants) == 0 {
		trip, err := s.store.GetTrip(r.Context(), tripID)
		if err != nil {
			renderEngineError(w, r, err)
			return nil, "", false
		}
		participants = trip.ParticipantIDs
		if destination == "" {
			destination = trip.Destination
		}
	}

	if len(participants) == 0 || destination == "" {
		renderError(w, r, fmt.Errorf("participants (or trip_id) and destination are required"), http.StatusBadRequest)
		return nil, "", false
	}
	return participants, destination, true
}

// highConfidenceHandler returns the items reliable enough to feed the
// itinerary generator
func (s *Server) highConfidenceHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	destination := r.URL.Query().Get("destination")
	if userID == "" || destination == "" {
		renderError(w, r, fmt.Errorf("user_id and destination are required"), http.StatusBadRequest)
		return
	}

	items, err := s.engine.HighConfidenceItems(r.Context(), userID, destination)
	if err != nil {
		renderEngineError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusOK, map[string]interface{}{"items": toItemResponses(items)})
}

// createTripHandler creates a trip in collecting_preferences
func (s *Server) createTripHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		ID             string   `json:"id"`
		Destination    string   `json:"destination"`
		ParticipantIDs []string `json:"participant_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}
	if req.ID == "" || req.Destination == "" || len(req.ParticipantIDs) == 0 {
		renderError(w, r, fmt.Errorf("id, destination and participant_ids are required"), http.StatusBadRequest)
		return
	}

	trip := &domain.Trip{ID: req.ID, Destination: req.Destination, ParticipantIDs: req.ParticipantIDs, Status: domain.TripCollecting}
	if err := s.store.CreateTrip(ctx, trip); err != nil {
		log.Printf("[ERROR] failed to create trip: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusCreated, trip)
}

// joinTripHandler adds a participant and recomputes group consensus from
// scratch so the new member's preferences count before the next ready check
func (s *Server) joinTripHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tripID := r.PathValue("id")

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body"), http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		renderError(w, r, fmt.Errorf("user_id is required"), http.StatusBadRequest)
		return
	}

	if _, err := s.store.EnsureUser(ctx, req.UserID); err != nil {
		log.Printf("[ERROR] failed to ensure user %s: %v", req.UserID, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	confidence, err := s.group.ParticipantJoined(ctx, tripID, req.UserID)
	if err != nil {
		renderEngineError(w, r, err)
		return
	}
	renderJSON(w, r, http.StatusOK, confidence)
}

// renderEngineError maps engine errors to HTTP status codes
func renderEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		renderError(w, r, err, http.StatusNotFound)
	case errors.Is(err, domain.ErrInsufficientData):
		renderError(w, r, err, http.StatusBadRequest)
	default:
		log.Printf("[ERROR] request failed: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
	}
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}
