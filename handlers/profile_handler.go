package handlers

import (
	"net/http"

	"github.com/JavierHEM/tarreo-oficial/services"
)

type ProfileHandler struct {
	authService services.AuthService
}

func NewProfileHandler(authService services.AuthService) *ProfileHandler {
	return &ProfileHandler{authService: authService}
}

func (h *ProfileHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "profileID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	profile, err := h.authService.GetProfile(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"profile": profile}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListLookingForTeam returns gamers who flagged themselves as available,
// so captains can scout for missing roster slots.
func (h *ProfileHandler) ListLookingForTeam(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.authService.ListLookingForTeam(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"profiles": profiles}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
