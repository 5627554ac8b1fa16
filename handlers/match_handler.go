package handlers

import (
	"errors"
	"net/http"

	"github.com/kumiteops/kumite-system/middleware"
	"github.com/kumiteops/kumite-system/models"
	"github.com/kumiteops/kumite-system/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// GetMatch godoc
// @Summary Get a match with its scores
// @Tags matches
// @Produce json
// @Param matchID path string true "Match ID"
// @Success 200 {object} models.Match
// @Failure 404 {object} map[string]string
// @Router /matches/{matchID} [get]
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatchByID(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type applyScoreInput struct {
	AthleteID string             `json:"athlete_id"`
	Action    models.ScoreAction `json:"action"`
}

// ApplyScore godoc
// @Summary Apply a scoring action to a match
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path string true "Match ID"
// @Success 200 {object} models.Match
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /matches/{matchID}/scores [post]
func (h *MatchHandler) ApplyScore(w http.ResponseWriter, r *http.Request) {
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input applyScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.AthleteID == "" {
		badRequestResponse(w, r, errors.New("athlete_id is required"))
		return
	}

	var performedBy *string
	if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
		performedBy = &userID
	}

	match, err := h.matchService.ApplyScoreAction(r.Context(), matchID, input.AthleteID, input.Action, performedBy)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UndoLastAction godoc
// @Summary Undo the most recent scoring action on a match
// @Tags matches
// @Produce json
// @Param matchID path string true "Match ID"
// @Success 200 {object} models.Match
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /matches/{matchID}/undo [post]
func (h *MatchHandler) UndoLastAction(w http.ResponseWriter, r *http.Request) {
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, undone, err := h.matchService.UndoLastAction(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"match":         match,
		"undone_action": undone,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type setWinnerInput struct {
	WinnerID string           `json:"winner_id"`
	Method   models.WinMethod `json:"method"`
}

// SetWinner godoc
// @Summary Declare the winner of a match and advance the bracket
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path string true "Match ID"
// @Success 200 {object} models.Match
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /matches/{matchID}/winner [post]
func (h *MatchHandler) SetWinner(w http.ResponseWriter, r *http.Request) {
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input setWinnerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.WinnerID == "" {
		badRequestResponse(w, r, errors.New("winner_id is required"))
		return
	}

	match, err := h.matchService.SetWinner(r.Context(), matchID, input.WinnerID, input.Method)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
