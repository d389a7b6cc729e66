package recipe

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	CreateRecipe(ctx context.Context, recipe *Recipe) error
	GetRecipe(ctx context.Context, recipeID string) (*Recipe, error)
	GetPublicRecipeBySlug(ctx context.Context, slug string) (*Recipe, error)
	GetDetails(ctx context.Context, recipeID string) (*Details, error)
	UpdateRecipeFields(ctx context.Context, recipeID string, fields map[string]any) error
	SoftDeleteRecipe(ctx context.Context, recipeID string) error
	IsSlugTaken(ctx context.Context, slug string) (bool, error)
	ReplaceIngredients(ctx context.Context, recipeID string, items []Ingredient) error
	ReplaceInstructions(ctx context.Context, recipeID string, items []Instruction) error
	ReplacePhotos(ctx context.Context, recipeID string, items []Photo) error
	ReplaceTags(ctx context.Context, recipeID string, tags []string) error
	ReplaceCategories(ctx context.Context, recipeID string, categories []string) error
	ListSummaries(ctx context.Context, scope Scope, filter Filter) ([]Summary, error)
}
