package family

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"family-recipes-go/internal/domain/randcode"
	"family-recipes-go/internal/domain/validation"
	"github.com/google/uuid"
)

const (
	maxNameLength     = 255
	defaultInviteBase = "http://localhost:8080"
)

type Service struct {
	repo       Repository
	inviteBase string
}

func NewService(repo Repository, inviteBase string) *Service {
	inviteBase = strings.TrimRight(strings.TrimSpace(inviteBase), "/")
	if inviteBase == "" {
		inviteBase = defaultInviteBase
	}
	return &Service{repo: repo, inviteBase: inviteBase}
}

// RequireMembership is the single membership gate for family and recipe
// operations.
func (s *Service) RequireMembership(ctx context.Context, familyID, userID string) (*Membership, error) {
	if familyID == "" || userID == "" {
		return nil, ErrNotMember
	}
	member, err := s.repo.GetMembership(ctx, familyID, userID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, ErrNotMember
		}
		return nil, err
	}
	return member, nil
}

func (s *Service) RequireAdmin(ctx context.Context, familyID, userID string) (*Membership, error) {
	member, err := s.RequireMembership(ctx, familyID, userID)
	if err != nil {
		return nil, err
	}
	if !member.IsAdmin() {
		return nil, ErrNotAdmin
	}
	return member, nil
}

func (s *Service) Create(ctx context.Context, userID, name string) (*Family, error) {
	name, err := validation.RequiredText("name", name, maxNameLength)
	if err != nil {
		return nil, err
	}

	var result Family
	err = s.repo.Transaction(ctx, func(tx Repository) error {
		code, err := randcode.Unique(ctx, tx.IsCodeTaken)
		if err != nil {
			if errors.Is(err, randcode.ErrExhausted) {
				return ErrCodeGenerationFailed
			}
			return err
		}

		family := Family{
			ID:         uuid.NewString(),
			Name:       name,
			InviteCode: code,
			CreatedBy:  userID,
		}
		if err := tx.CreateFamily(ctx, &family); err != nil {
			return err
		}

		member := Membership{
			FamilyID: family.ID,
			UserID:   userID,
			Role:     RoleAdmin,
		}
		if err := tx.AddMember(ctx, &member); err != nil {
			return err
		}

		result = family
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *Service) ListForUser(ctx context.Context, userID string) ([]Summary, error) {
	return s.repo.ListFamiliesForUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, familyID, userID string) (*Details, error) {
	member, err := s.RequireMembership(ctx, familyID, userID)
	if err != nil {
		return nil, err
	}

	family, err := s.repo.GetFamily(ctx, familyID)
	if err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, familyID)
	if err != nil {
		return nil, err
	}

	recipeCount, err := s.repo.CountRecipes(ctx, familyID)
	if err != nil {
		return nil, err
	}

	return &Details{
		Family:      *family,
		Role:        member.Role,
		Members:     members,
		RecipeCount: recipeCount,
	}, nil
}

func (s *Service) Rename(ctx context.Context, familyID, userID, name string) (*Family, error) {
	if _, err := s.RequireAdmin(ctx, familyID, userID); err != nil {
		return nil, err
	}

	name, err := validation.RequiredText("name", name, maxNameLength)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFamilyName(ctx, familyID, name); err != nil {
		return nil, err
	}

	return s.repo.GetFamily(ctx, familyID)
}

// InviteLink derives the shareable link from the family's stable code.
func (s *Service) InviteLink(ctx context.Context, familyID, userID string) (*InviteLink, error) {
	if _, err := s.RequireAdmin(ctx, familyID, userID); err != nil {
		return nil, err
	}

	family, err := s.repo.GetFamily(ctx, familyID)
	if err != nil {
		return nil, err
	}

	return &InviteLink{
		Code: family.InviteCode,
		Link: s.inviteBase + "/join?code=" + url.QueryEscape(family.InviteCode),
	}, nil
}

func (s *Service) Join(ctx context.Context, userID, code string) (*Family, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, validation.New("invite_code", "invite_code is required")
	}

	var result Family
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		family, err := tx.GetFamilyByCode(ctx, code)
		if err != nil {
			if errors.Is(err, ErrFamilyNotFound) {
				return validation.New("invite_code", "invalid invite code")
			}
			return err
		}

		_, err = tx.GetMembership(ctx, family.ID, userID)
		if err == nil {
			return ErrAlreadyMember
		}
		if !errors.Is(err, ErrMemberNotFound) {
			return err
		}

		member := Membership{
			FamilyID: family.ID,
			UserID:   userID,
			Role:     RoleMember,
		}
		if err := tx.AddMember(ctx, &member); err != nil {
			return err
		}

		result = *family
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// RemoveMember lets admins remove anyone and members remove themselves.
// Removing the last admin is allowed.
func (s *Service) RemoveMember(ctx context.Context, familyID, actorID, targetID string) error {
	actor, err := s.RequireMembership(ctx, familyID, actorID)
	if err != nil {
		return err
	}
	if actorID != targetID && !actor.IsAdmin() {
		return ErrNotAdmin
	}

	return s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.GetMembership(ctx, familyID, targetID); err != nil {
			return err
		}
		return tx.DeleteMember(ctx, familyID, targetID)
	})
}
