package recipe

import (
	"context"

	familydomain "family-recipes-go/internal/domain/family"
)

type MembershipChecker interface {
	RequireMembership(ctx context.Context, familyID, userID string) (*familydomain.Membership, error)
}

func (s *Service) requireMembership(ctx context.Context, familyID, userID string) error {
	_, err := s.members.RequireMembership(ctx, familyID, userID)
	return err
}

func requireOwnership(recipe *Recipe, userID string) error {
	if recipe.CreatedBy != userID {
		return ErrNotCreator
	}
	return nil
}
