package handler

import (
	"net/http"
	"time"

	userdomain "family-recipes-go/internal/domain/user"
	"family-recipes-go/internal/transport/httpserver/middleware"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	PhotoURL  *string   `json:"photo_url"`
	CreatedAt time.Time `json:"created_at"`
}

type authResponse struct {
	User      userResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type meResponse struct {
	User userResponse `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}

	result, err := h.Users.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.writeServiceError(w, r, "auth.register", err)
		return
	}

	writeJSON(w, http.StatusCreated, toAuthResponse(result))
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}
	if err := h.checkRequest(req); err != nil {
		h.writeServiceError(w, r, "auth.login", err)
		return
	}

	result, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, "auth.login", err)
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(result))
}

// Logout only acknowledges; tokens are stateless and expire on their own.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "authentication required")
		return
	}

	user, err := h.Users.Get(r.Context(), caller.ID)
	if err != nil {
		h.writeServiceError(w, r, "auth.me", err, "user_id", caller.ID)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{User: toUserResponse(user)})
}

func toUserResponse(user *userdomain.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		PhotoURL:  user.PhotoURL,
		CreatedAt: user.CreatedAt,
	}
}

func toAuthResponse(result *userdomain.AuthResult) authResponse {
	return authResponse{
		User:      toUserResponse(result.User),
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	}
}
