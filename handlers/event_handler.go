package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kumiteops/kumite-system/brackets"
	"github.com/kumiteops/kumite-system/services"
)

type EventHandler struct {
	eventService   services.EventService
	bracketService services.BracketService
}

func NewEventHandler(eventService services.EventService, bracketService services.BracketService) *EventHandler {
	return &EventHandler{
		eventService:   eventService,
		bracketService: bracketService,
	}
}

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var input services.CreateEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.CreateEvent(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := getUUIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.GetEvent(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.ListEvents(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"events": events}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := getUUIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateEventInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	event, err := h.eventService.UpdateEvent(r.Context(), eventID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"event": event}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type registerAthletesInput struct {
	AthleteIDs []string `json:"athlete_ids"`
}

func (h *EventHandler) RegisterAthletes(w http.ResponseWriter, r *http.Request) {
	eventID, err := getUUIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input registerAthletesInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.AthleteIDs) == 0 {
		badRequestResponse(w, r, errors.New("athlete_ids must not be empty"))
		return
	}

	athletes, err := h.eventService.RegisterAthletes(r.Context(), eventID, input.AthleteIDs)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"athletes": athletes}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateBracket godoc
// @Summary Generate (or regenerate) the single elimination bracket for an event
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /events/{eventID}/bracket [post]
func (h *EventHandler) GenerateBracket(w http.ResponseWriter, r *http.Request) {
	eventID, err := getUUIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.bracketService.GenerateAndSaveBracket(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *EventHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	eventID, err := getUUIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.eventService.ListEventMatches(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// BracketMetadata previews the bracket shape for a participant count
// without touching the database.
func (h *EventHandler) BracketMetadata(w http.ResponseWriter, r *http.Request) {
	countStr := chi.URLParam(r, "count")
	count, err := strconv.Atoi(countStr)
	if err != nil {
		badRequestResponse(w, r, errors.New("count must be an integer"))
		return
	}
	if count < brackets.MinParticipants || count > brackets.MaxParticipants {
		mapServiceErrorToHTTP(w, r, services.ErrInvalidParticipantCount)
		return
	}

	meta := brackets.GetBracketMetadata(count)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"metadata": meta}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
