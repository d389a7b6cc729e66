package recipe

import (
	"context"
	"errors"
	"strings"
	"time"

	recipedomain "family-recipes-go/internal/domain/recipe"
	"gorm.io/gorm"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(recipedomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) CreateRecipe(ctx context.Context, recipe *recipedomain.Recipe) error {
	return r.db.WithContext(ctx).Create(recipe).Error
}

func (r *PostgresRepository) GetRecipe(ctx context.Context, recipeID string) (*recipedomain.Recipe, error) {
	var recipe recipedomain.Recipe
	if err := r.db.WithContext(ctx).Where("id = ?", recipeID).First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recipedomain.ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (r *PostgresRepository) GetPublicRecipeBySlug(ctx context.Context, slug string) (*recipedomain.Recipe, error) {
	var recipe recipedomain.Recipe
	if err := r.db.WithContext(ctx).
		Where("public_slug = ? AND is_public = ?", slug, true).
		First(&recipe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, recipedomain.ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

func (r *PostgresRepository) GetDetails(ctx context.Context, recipeID string) (*recipedomain.Details, error) {
	recipe, err := r.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	details := &recipedomain.Details{
		Recipe:  *recipe,
		Family:  recipedomain.Ref{ID: recipe.FamilyID},
		Creator: recipedomain.Ref{ID: recipe.CreatedBy},
	}

	db := r.db.WithContext(ctx)
	if details.Family.Name, err = r.lookupName(db, "families", recipe.FamilyID); err != nil {
		return nil, err
	}
	if details.Creator.Name, err = r.lookupName(db, "users", recipe.CreatedBy); err != nil {
		return nil, err
	}

	if err := db.Where("recipe_id = ?", recipe.ID).Order("position ASC").Find(&details.Ingredients).Error; err != nil {
		return nil, err
	}
	if err := db.Where("recipe_id = ?", recipe.ID).Order("step_number ASC").Find(&details.Instructions).Error; err != nil {
		return nil, err
	}
	if err := db.Where("recipe_id = ?", recipe.ID).Order("position ASC, id ASC").Find(&details.Photos).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&recipedomain.Tag{}).Where("recipe_id = ?", recipe.ID).Order("id ASC").Pluck("tag", &details.Tags).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&recipedomain.Category{}).Where("recipe_id = ?", recipe.ID).Order("id ASC").Pluck("category", &details.Categories).Error; err != nil {
		return nil, err
	}

	return details, nil
}

func (r *PostgresRepository) lookupName(db *gorm.DB, table, id string) (string, error) {
	var names []string
	if err := db.Table(table).Where("id = ?", id).Limit(1).Pluck("name", &names).Error; err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", nil
	}
	return names[0], nil
}

func (r *PostgresRepository) UpdateRecipeFields(ctx context.Context, recipeID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&recipedomain.Recipe{}).Where("id = ?", recipeID).Updates(fields).Error
}

func (r *PostgresRepository) SoftDeleteRecipe(ctx context.Context, recipeID string) error {
	result := r.db.WithContext(ctx).Delete(&recipedomain.Recipe{}, "id = ?", recipeID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return recipedomain.ErrRecipeNotFound
	}
	return nil
}

// IsSlugTaken also counts tombstoned recipes so a slug is never reissued.
func (r *PostgresRepository) IsSlugTaken(ctx context.Context, slug string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Unscoped().Model(&recipedomain.Recipe{}).Where("public_slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) ReplaceIngredients(ctx context.Context, recipeID string, items []recipedomain.Ingredient) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("recipe_id = ?", recipeID).Delete(&recipedomain.Ingredient{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.Create(&items).Error
}

func (r *PostgresRepository) ReplaceInstructions(ctx context.Context, recipeID string, items []recipedomain.Instruction) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("recipe_id = ?", recipeID).Delete(&recipedomain.Instruction{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.Create(&items).Error
}

func (r *PostgresRepository) ReplacePhotos(ctx context.Context, recipeID string, items []recipedomain.Photo) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("recipe_id = ?", recipeID).Delete(&recipedomain.Photo{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.Create(&items).Error
}

func (r *PostgresRepository) ReplaceTags(ctx context.Context, recipeID string, tags []string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("recipe_id = ?", recipeID).Delete(&recipedomain.Tag{}).Error; err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	rows := make([]recipedomain.Tag, 0, len(tags))
	for _, tag := range tags {
		rows = append(rows, recipedomain.Tag{RecipeID: recipeID, Tag: tag})
	}
	return db.Create(&rows).Error
}

func (r *PostgresRepository) ReplaceCategories(ctx context.Context, recipeID string, categories []string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("recipe_id = ?", recipeID).Delete(&recipedomain.Category{}).Error; err != nil {
		return err
	}
	if len(categories) == 0 {
		return nil
	}
	rows := make([]recipedomain.Category, 0, len(categories))
	for _, category := range categories {
		rows = append(rows, recipedomain.Category{RecipeID: recipeID, Category: category})
	}
	return db.Create(&rows).Error
}

func (r *PostgresRepository) ListSummaries(ctx context.Context, scope recipedomain.Scope, filter recipedomain.Filter) ([]recipedomain.Summary, error) {
	type summaryRow struct {
		ID              string    `gorm:"column:id"`
		FamilyID        string    `gorm:"column:family_id"`
		Name            string    `gorm:"column:name"`
		Description     *string   `gorm:"column:description"`
		CreatedBy       string    `gorm:"column:created_by"`
		CreatorName     *string   `gorm:"column:creator_name"`
		IsPublic        bool      `gorm:"column:is_public"`
		CreatedAt       time.Time `gorm:"column:created_at"`
		UpdatedAt       time.Time `gorm:"column:updated_at"`
		PrimaryPhotoURL *string   `gorm:"column:primary_photo_url"`
	}

	query := r.db.WithContext(ctx).
		Table("recipes").
		Select(`recipes.id, recipes.family_id, recipes.name, recipes.description, recipes.created_by,
			users.name AS creator_name, recipes.is_public, recipes.created_at, recipes.updated_at,
			(SELECT recipe_photos.photo_url FROM recipe_photos
				WHERE recipe_photos.recipe_id = recipes.id AND recipe_photos.is_primary = ?
				ORDER BY recipe_photos.position ASC LIMIT 1) AS primary_photo_url`, true).
		Joins("LEFT JOIN users ON users.id = recipes.created_by").
		Where("recipes.deleted_at IS NULL")

	if scope.FamilyID != "" {
		query = query.Where("recipes.family_id = ?", scope.FamilyID)
	}
	if scope.PublicOnly {
		query = query.Where("recipes.is_public = ?", true)
	}
	if scope.VisibleTo != "" {
		query = query.Where(
			"(recipes.is_public = ? OR recipes.family_id IN (SELECT family_id FROM family_members WHERE user_id = ?))",
			true, scope.VisibleTo,
		)
	}

	if filter.Query != "" {
		pattern := "%" + strings.ToLower(filter.Query) + "%"
		query = query.Where(
			"(LOWER(recipes.name) LIKE ? OR LOWER(COALESCE(recipes.description, '')) LIKE ? OR LOWER(COALESCE(recipes.notes, '')) LIKE ?)",
			pattern, pattern, pattern,
		)
	}
	if filter.Category != "" {
		query = query.Where(
			"EXISTS (SELECT 1 FROM recipe_categories WHERE recipe_categories.recipe_id = recipes.id AND recipe_categories.category = ?)",
			filter.Category,
		)
	}
	if filter.Tag != "" {
		query = query.Where(
			"EXISTS (SELECT 1 FROM recipe_tags WHERE recipe_tags.recipe_id = recipes.id AND recipe_tags.tag = ?)",
			filter.Tag,
		)
	}
	if filter.CreatorID != "" {
		query = query.Where("recipes.created_by = ?", filter.CreatorID)
	}

	var rows []summaryRow
	if err := query.
		Order("recipes.updated_at DESC, recipes.created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset()).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	summaries := make([]recipedomain.Summary, 0, len(rows))
	for _, row := range rows {
		summary := recipedomain.Summary{
			ID:              row.ID,
			FamilyID:        row.FamilyID,
			Name:            row.Name,
			Description:     row.Description,
			CreatedBy:       row.CreatedBy,
			IsPublic:        row.IsPublic,
			CreatedAt:       row.CreatedAt,
			UpdatedAt:       row.UpdatedAt,
			PrimaryPhotoURL: row.PrimaryPhotoURL,
		}
		if row.CreatorName != nil {
			summary.CreatorName = *row.CreatorName
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
