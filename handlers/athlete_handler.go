package handlers

import (
	"net/http"

	"github.com/kumiteops/kumite-system/services"
)

const maxPhotoSize = 5 << 20 // 5MB

type AthleteHandler struct {
	athleteService services.AthleteService
}

func NewAthleteHandler(athleteService services.AthleteService) *AthleteHandler {
	return &AthleteHandler{athleteService: athleteService}
}

func (h *AthleteHandler) CreateAthlete(w http.ResponseWriter, r *http.Request) {
	var input services.CreateAthleteInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	athlete, err := h.athleteService.CreateAthlete(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"athlete": athlete}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AthleteHandler) GetAthlete(w http.ResponseWriter, r *http.Request) {
	athleteID, err := getUUIDFromURL(r, "athleteID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	athlete, err := h.athleteService.GetAthlete(r.Context(), athleteID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"athlete": athlete}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AthleteHandler) ListAthletes(w http.ResponseWriter, r *http.Request) {
	athletes, err := h.athleteService.ListAthletes(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"athletes": athletes}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AthleteHandler) UpdateAthlete(w http.ResponseWriter, r *http.Request) {
	athleteID, err := getUUIDFromURL(r, "athleteID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateAthleteInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	athlete, err := h.athleteService.UpdateAthlete(r.Context(), athleteID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"athlete": athlete}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AthleteHandler) DeleteAthlete(w http.ResponseWriter, r *http.Request) {
	athleteID, err := getUUIDFromURL(r, "athleteID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.athleteService.DeleteAthlete(r.Context(), athleteID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AthleteHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	athleteID, err := getUUIDFromURL(r, "athleteID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")

	athlete, err := h.athleteService.UploadPhoto(r.Context(), athleteID, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"athlete": athlete}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
