package handler

import (
	"net/http"
	"time"

	familydomain "family-recipes-go/internal/domain/family"
	"family-recipes-go/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type familyNameRequest struct {
	Name string `json:"name"`
}

type joinFamilyRequest struct {
	InviteCode string `json:"invite_code" validate:"required"`
}

type familyResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code,omitempty"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Role       string    `json:"role,omitempty"`
}

type familySummaryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	InviteCode  string    `json:"invite_code,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
	MemberCount int64     `json:"member_count"`
	RecipeCount int64     `json:"recipe_count"`
}

type memberResponse struct {
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	PhotoURL *string   `json:"photo_url"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type familyDetailsResponse struct {
	familyResponse
	Members     []memberResponse `json:"members"`
	RecipeCount int64            `json:"recipe_count"`
}

type inviteResponse struct {
	InviteCode string `json:"invite_code"`
	InviteLink string `json:"invite_link"`
}

type joinedFamilyResponse struct {
	Family struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"family"`
}

type removedResponse struct {
	Removed bool `json:"removed"`
}

func (h *Handlers) ListFamilies(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	summaries, err := h.Families.ListForUser(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, "families.list", err, "user_id", userID)
		return
	}

	response := make([]familySummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		item := familySummaryResponse{
			ID:          summary.ID,
			Name:        summary.Name,
			CreatedBy:   summary.CreatedBy,
			CreatedAt:   summary.CreatedAt,
			Role:        summary.Role,
			JoinedAt:    summary.JoinedAt,
			MemberCount: summary.MemberCount,
			RecipeCount: summary.RecipeCount,
		}
		if summary.Role == familydomain.RoleAdmin {
			item.InviteCode = summary.InviteCode
		}
		response = append(response, item)
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateFamily(w http.ResponseWriter, r *http.Request) {
	var req familyNameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}
	userID := middleware.UserIDFromContext(r.Context())

	family, err := h.Families.Create(r.Context(), userID, req.Name)
	if err != nil {
		h.writeServiceError(w, r, "families.create", err, "user_id", userID)
		return
	}
	h.Metrics.FamilyCreated()

	writeJSON(w, http.StatusCreated, toFamilyResponse(family, familydomain.RoleAdmin))
}

func (h *Handlers) GetFamily(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	familyID := chi.URLParam(r, "id")

	details, err := h.Families.Get(r.Context(), familyID, userID)
	if err != nil {
		h.writeServiceError(w, r, "families.get", err, "user_id", userID, "family_id", familyID)
		return
	}

	members := make([]memberResponse, 0, len(details.Members))
	for _, member := range details.Members {
		members = append(members, memberResponse{
			UserID:   member.UserID,
			Name:     member.Name,
			Email:    member.Email,
			PhotoURL: member.PhotoURL,
			Role:     member.Role,
			JoinedAt: member.JoinedAt,
		})
	}

	writeJSON(w, http.StatusOK, familyDetailsResponse{
		familyResponse: toFamilyResponse(&details.Family, details.Role),
		Members:        members,
		RecipeCount:    details.RecipeCount,
	})
}

func (h *Handlers) UpdateFamily(w http.ResponseWriter, r *http.Request) {
	var req familyNameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}
	userID := middleware.UserIDFromContext(r.Context())
	familyID := chi.URLParam(r, "id")

	family, err := h.Families.Rename(r.Context(), familyID, userID, req.Name)
	if err != nil {
		h.writeServiceError(w, r, "families.update", err, "user_id", userID, "family_id", familyID)
		return
	}

	writeJSON(w, http.StatusOK, toFamilyResponse(family, familydomain.RoleAdmin))
}

func (h *Handlers) CreateInvite(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	familyID := chi.URLParam(r, "id")

	invite, err := h.Families.InviteLink(r.Context(), familyID, userID)
	if err != nil {
		h.writeServiceError(w, r, "families.invite", err, "user_id", userID, "family_id", familyID)
		return
	}

	writeJSON(w, http.StatusOK, inviteResponse{InviteCode: invite.Code, InviteLink: invite.Link})
}

func (h *Handlers) JoinFamily(w http.ResponseWriter, r *http.Request) {
	var req joinFamilyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}
	userID := middleware.UserIDFromContext(r.Context())
	if err := h.checkRequest(req); err != nil {
		h.writeServiceError(w, r, "families.join", err, "user_id", userID)
		return
	}

	family, err := h.Families.Join(r.Context(), userID, req.InviteCode)
	if err != nil {
		h.writeServiceError(w, r, "families.join", err, "user_id", userID)
		return
	}

	var response joinedFamilyResponse
	response.Family.ID = family.ID
	response.Family.Name = family.Name
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	familyID := chi.URLParam(r, "id")
	targetID := chi.URLParam(r, "user_id")

	if err := h.Families.RemoveMember(r.Context(), familyID, userID, targetID); err != nil {
		h.writeServiceError(w, r, "families.remove_member", err, "user_id", userID, "family_id", familyID, "target_id", targetID)
		return
	}

	writeJSON(w, http.StatusOK, removedResponse{Removed: true})
}

// toFamilyResponse reveals the invite code to admins only.
func toFamilyResponse(family *familydomain.Family, role string) familyResponse {
	response := familyResponse{
		ID:        family.ID,
		Name:      family.Name,
		CreatedBy: family.CreatedBy,
		CreatedAt: family.CreatedAt,
		UpdatedAt: family.UpdatedAt,
		Role:      role,
	}
	if role == familydomain.RoleAdmin {
		response.InviteCode = family.InviteCode
	}
	return response
}
