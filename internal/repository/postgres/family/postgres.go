package family

import (
	"context"
	"errors"
	"time"

	familydomain "family-recipes-go/internal/domain/family"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(familydomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateFamily(ctx context.Context, family *familydomain.Family) error {
	return r.db.WithContext(ctx).Create(family).Error
}

func (r *PostgresRepository) GetFamily(ctx context.Context, familyID string) (*familydomain.Family, error) {
	var family familydomain.Family
	if err := r.db.WithContext(ctx).Where("id = ?", familyID).First(&family).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, familydomain.ErrFamilyNotFound
		}
		return nil, err
	}
	return &family, nil
}

func (r *PostgresRepository) GetFamilyByCode(ctx context.Context, code string) (*familydomain.Family, error) {
	var family familydomain.Family
	if err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&family).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, familydomain.ErrFamilyNotFound
		}
		return nil, err
	}
	return &family, nil
}

func (r *PostgresRepository) UpdateFamilyName(ctx context.Context, familyID, name string) error {
	return r.db.WithContext(ctx).Model(&familydomain.Family{}).Where("id = ?", familyID).Update("name", name).Error
}

func (r *PostgresRepository) AddMember(ctx context.Context, member *familydomain.Membership) error {
	err := r.db.WithContext(ctx).Create(member).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return familydomain.ErrAlreadyMember
	}
	return err
}

func (r *PostgresRepository) GetMembership(ctx context.Context, familyID, userID string) (*familydomain.Membership, error) {
	var member familydomain.Membership
	if err := r.db.WithContext(ctx).Where("family_id = ? AND user_id = ?", familyID, userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, familydomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *PostgresRepository) DeleteMember(ctx context.Context, familyID, userID string) error {
	return r.db.WithContext(ctx).Delete(&familydomain.Membership{}, "family_id = ? AND user_id = ?", familyID, userID).Error
}

func (r *PostgresRepository) ListFamiliesForUser(ctx context.Context, userID string) ([]familydomain.Summary, error) {
	type summaryRow struct {
		ID          string    `gorm:"column:id"`
		Name        string    `gorm:"column:name"`
		InviteCode  string    `gorm:"column:invite_code"`
		CreatedBy   string    `gorm:"column:created_by"`
		CreatedAt   time.Time `gorm:"column:created_at"`
		Role        string    `gorm:"column:role"`
		JoinedAt    time.Time `gorm:"column:joined_at"`
		MemberCount int64     `gorm:"column:member_count"`
		RecipeCount int64     `gorm:"column:recipe_count"`
	}

	var rows []summaryRow
	if err := r.db.WithContext(ctx).
		Table("families").
		Select(`families.id, families.name, families.invite_code, families.created_by, families.created_at,
			family_members.role, family_members.joined_at,
			(SELECT COUNT(*) FROM family_members AS fm WHERE fm.family_id = families.id) AS member_count,
			(SELECT COUNT(*) FROM recipes WHERE recipes.family_id = families.id AND recipes.deleted_at IS NULL) AS recipe_count`).
		Joins("JOIN family_members ON family_members.family_id = families.id").
		Where("family_members.user_id = ?", userID).
		Order("family_members.joined_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	summaries := make([]familydomain.Summary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, familydomain.Summary{
			ID:          row.ID,
			Name:        row.Name,
			InviteCode:  row.InviteCode,
			CreatedBy:   row.CreatedBy,
			CreatedAt:   row.CreatedAt,
			Role:        row.Role,
			JoinedAt:    row.JoinedAt,
			MemberCount: row.MemberCount,
			RecipeCount: row.RecipeCount,
		})
	}
	return summaries, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, familyID string) ([]familydomain.Member, error) {
	type memberRow struct {
		UserID   string    `gorm:"column:user_id"`
		Name     string    `gorm:"column:name"`
		Email    string    `gorm:"column:email"`
		PhotoURL *string   `gorm:"column:photo_url"`
		Role     string    `gorm:"column:role"`
		JoinedAt time.Time `gorm:"column:joined_at"`
	}

	var rows []memberRow
	if err := r.db.WithContext(ctx).
		Table("family_members").
		Select("family_members.user_id, users.name, users.email, users.photo_url, family_members.role, family_members.joined_at").
		Joins("JOIN users ON users.id = family_members.user_id").
		Where("family_members.family_id = ?", familyID).
		Order("CASE WHEN family_members.role = 'admin' THEN 0 ELSE 1 END, family_members.joined_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	members := make([]familydomain.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, familydomain.Member{
			UserID:   row.UserID,
			Name:     row.Name,
			Email:    row.Email,
			PhotoURL: row.PhotoURL,
			Role:     row.Role,
			JoinedAt: row.JoinedAt,
		})
	}
	return members, nil
}

func (r *PostgresRepository) CountRecipes(ctx context.Context, familyID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Table("recipes").
		Where("family_id = ? AND deleted_at IS NULL", familyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&familydomain.Family{}).Where("invite_code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
