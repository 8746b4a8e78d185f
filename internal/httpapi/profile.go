package httpapi

import (
	"net/http"

	"github.com/MiguelL1304/aquascape/internal/profile"
)

type createProfileRequest struct {
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

type updateAvatarRequest struct {
	Avatar string `json:"avatar"`
}

func (h *handler) createProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req createProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := serviceContext(r)
	defer cancel()

	p, err := h.Profiles.Create(ctx, profile.CreateInput{
		UserID:      uid,
		DisplayName: req.DisplayName,
		Avatar:      req.Avatar,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *handler) getProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := serviceContext(r)
	defer cancel()

	p, err := h.Profiles.Get(ctx, uid)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) updateAvatar(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req updateAvatarRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := serviceContext(r)
	defer cancel()

	p, err := h.Profiles.UpdateAvatar(ctx, uid, req.Avatar)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
