package family

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	CreateFamily(ctx context.Context, family *Family) error
	GetFamily(ctx context.Context, familyID string) (*Family, error)
	GetFamilyByCode(ctx context.Context, code string) (*Family, error)
	UpdateFamilyName(ctx context.Context, familyID, name string) error
	AddMember(ctx context.Context, member *Membership) error
	GetMembership(ctx context.Context, familyID, userID string) (*Membership, error)
	DeleteMember(ctx context.Context, familyID, userID string) error
	ListFamiliesForUser(ctx context.Context, userID string) ([]Summary, error)
	ListMembers(ctx context.Context, familyID string) ([]Member, error)
	CountRecipes(ctx context.Context, familyID string) (int64, error)
	IsCodeTaken(ctx context.Context, code string) (bool, error)
}
