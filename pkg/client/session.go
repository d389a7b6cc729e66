package client

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Session is created by Register or Login and ends with Logout. It is safe
// for concurrent use.
type Session struct {
	client    *Client
	user      User
	expiresAt time.Time

	mu     sync.RWMutex
	token  string
	closed bool
}

func newSession(c *Client, auth authResponse) *Session {
	return &Session{
		client:    c,
		user:      auth.User,
		token:     auth.Token,
		expiresAt: auth.ExpiresAt,
	}
}

func (s *Session) User() User {
	return s.user
}

func (s *Session) ExpiresAt() time.Time {
	return s.expiresAt
}

// Token returns ErrSessionClosed after Logout.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", ErrSessionClosed
	}
	return s.token, nil
}

// Logout tells the server and closes the session even if that call fails.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	token := s.token
	s.closed = true
	s.token = ""
	s.mu.Unlock()

	return s.client.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil, nil)
}

func (s *Session) Me(ctx context.Context) (*User, error) {
	var result struct {
		User User `json:"user"`
	}
	if err := s.do(ctx, http.MethodGet, "/auth/me", nil, nil, &result); err != nil {
		return nil, err
	}
	return &result.User, nil
}

func (s *Session) Families(ctx context.Context) ([]FamilySummary, error) {
	var result []FamilySummary
	if err := s.do(ctx, http.MethodGet, "/families", nil, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Session) CreateFamily(ctx context.Context, name string) (*Family, error) {
	var family Family
	if err := s.do(ctx, http.MethodPost, "/families", nil, map[string]string{"name": name}, &family); err != nil {
		return nil, err
	}
	return &family, nil
}

func (s *Session) Family(ctx context.Context, familyID string) (*FamilyDetails, error) {
	var details FamilyDetails
	if err := s.do(ctx, http.MethodGet, "/families/"+url.PathEscape(familyID), nil, nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (s *Session) RenameFamily(ctx context.Context, familyID, name string) (*Family, error) {
	var family Family
	if err := s.do(ctx, http.MethodPatch, "/families/"+url.PathEscape(familyID), nil, map[string]string{"name": name}, &family); err != nil {
		return nil, err
	}
	return &family, nil
}

func (s *Session) Invite(ctx context.Context, familyID string) (*Invite, error) {
	var invite Invite
	if err := s.do(ctx, http.MethodPost, "/families/"+url.PathEscape(familyID)+"/invite", nil, nil, &invite); err != nil {
		return nil, err
	}
	return &invite, nil
}

func (s *Session) JoinFamily(ctx context.Context, inviteCode string) (*FamilyRef, error) {
	var result struct {
		Family FamilyRef `json:"family"`
	}
	if err := s.do(ctx, http.MethodPost, "/families/join", nil, map[string]string{"invite_code": inviteCode}, &result); err != nil {
		return nil, err
	}
	return &result.Family, nil
}

func (s *Session) RemoveMember(ctx context.Context, familyID, userID string) error {
	path := "/families/" + url.PathEscape(familyID) + "/members/" + url.PathEscape(userID)
	return s.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (s *Session) FamilyRecipes(ctx context.Context, familyID string, params ListParams) ([]RecipeSummary, error) {
	var result []RecipeSummary
	if err := s.do(ctx, http.MethodGet, "/families/"+url.PathEscape(familyID)+"/recipes", params.values(), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Session) CreateRecipe(ctx context.Context, familyID string, input RecipeInput) (*Recipe, error) {
	var recipe Recipe
	if err := s.do(ctx, http.MethodPost, "/families/"+url.PathEscape(familyID)+"/recipes", nil, input, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (s *Session) Recipe(ctx context.Context, recipeID string) (*Recipe, error) {
	var recipe Recipe
	if err := s.do(ctx, http.MethodGet, "/recipes/"+url.PathEscape(recipeID), nil, nil, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (s *Session) UpdateRecipe(ctx context.Context, recipeID string, patch RecipePatch) (*Recipe, error) {
	var recipe Recipe
	if err := s.do(ctx, http.MethodPatch, "/recipes/"+url.PathEscape(recipeID), nil, patch, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (s *Session) DeleteRecipe(ctx context.Context, recipeID string) error {
	return s.do(ctx, http.MethodDelete, "/recipes/"+url.PathEscape(recipeID), nil, nil, nil)
}

// Search includes the caller's family recipes alongside public ones.
func (s *Session) Search(ctx context.Context, params SearchParams) ([]RecipeSummary, error) {
	var result []RecipeSummary
	if err := s.do(ctx, http.MethodGet, "/recipes/search", params.values(), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Session) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	token, err := s.Token()
	if err != nil {
		return err
	}
	return s.client.do(ctx, method, path, token, query, payload, out)
}
