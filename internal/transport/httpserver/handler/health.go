package handler

import (
	"net/http"

	"family-recipes-go/pkg/logger"
)

type healthResponse struct {
	Status string `json:"status"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			logger.FromContext(r.Context(), h.log).Error("health: database unreachable", "err", err)
			writeError(w, http.StatusServiceUnavailable, codeUnavailable, "database unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
