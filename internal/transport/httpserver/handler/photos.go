package handler

import (
	"net/http"
	"time"

	"family-recipes-go/internal/transport/httpserver/middleware"
)

type photoUploadRequest struct {
	ContentType string `json:"content_type" validate:"required"`
}

type photoUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	PhotoURL  string    `json:"photo_url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreatePhotoUpload hands out a presigned URL; the client uploads directly
// and then references photo_url in a recipe body.
func (h *Handlers) CreatePhotoUpload(w http.ResponseWriter, r *http.Request) {
	if h.Photos == nil {
		writeError(w, http.StatusServiceUnavailable, codeUnavailable, "photo uploads are not configured")
		return
	}

	var req photoUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}
	userID := middleware.UserIDFromContext(r.Context())
	if err := h.checkRequest(req); err != nil {
		h.writeServiceError(w, r, "photos.upload", err, "user_id", userID)
		return
	}

	upload, err := h.Photos.PresignUpload(r.Context(), userID, req.ContentType)
	if err != nil {
		h.writeServiceError(w, r, "photos.upload", err, "user_id", userID)
		return
	}

	writeJSON(w, http.StatusOK, photoUploadResponse{
		UploadURL: upload.UploadURL,
		PhotoURL:  upload.PhotoURL,
		Method:    upload.Method,
		ExpiresAt: upload.ExpiresAt,
	})
}
