package recipe

import (
	"context"
	"errors"
	"time"

	familydomain "family-recipes-go/internal/domain/family"
	"family-recipes-go/internal/domain/randcode"
	"family-recipes-go/internal/domain/validation"
	"family-recipes-go/pkg/optional"
	"github.com/google/uuid"
)

type Service struct {
	repo    Repository
	members MembershipChecker
	now     func() time.Time
}

func NewService(repo Repository, members MembershipChecker) *Service {
	return &Service{
		repo:    repo,
		members: members,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, familyID, userID string, draft Draft) (*Details, error) {
	draft, err := normalizeDraft(draft)
	if err != nil {
		return nil, err
	}
	if err := s.requireMembership(ctx, familyID, userID); err != nil {
		return nil, err
	}

	recipe := Recipe{
		ID:              uuid.NewString(),
		FamilyID:        familyID,
		CreatedBy:       userID,
		Name:            draft.Name,
		Description:     draft.Description,
		PrepTimeMinutes: draft.PrepTimeMinutes,
		CookTimeMinutes: draft.CookTimeMinutes,
		Servings:        draft.Servings,
		Notes:           draft.Notes,
		Status:          draft.Status,
		IsPublic:        draft.IsPublic,
	}

	ingredients, err := buildIngredients(recipe.ID, draft.Ingredients)
	if err != nil {
		return nil, err
	}
	instructions, err := buildInstructions(recipe.ID, draft.Instructions)
	if err != nil {
		return nil, err
	}
	photos, err := buildPhotos(recipe.ID, draft.Photos)
	if err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if recipe.IsPublic {
			slug, err := generateSlug(ctx, tx)
			if err != nil {
				return err
			}
			recipe.PublicSlug = &slug
		}

		if err := tx.CreateRecipe(ctx, &recipe); err != nil {
			return err
		}
		if err := tx.ReplaceIngredients(ctx, recipe.ID, ingredients); err != nil {
			return err
		}
		if err := tx.ReplaceInstructions(ctx, recipe.ID, instructions); err != nil {
			return err
		}
		if err := tx.ReplacePhotos(ctx, recipe.ID, photos); err != nil {
			return err
		}
		if err := tx.ReplaceTags(ctx, recipe.ID, draft.Tags); err != nil {
			return err
		}
		return tx.ReplaceCategories(ctx, recipe.ID, draft.Categories)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetDetails(ctx, recipe.ID)
}

// Get returns a public recipe to anyone and a private one only to members of
// its family. An empty viewerID means the caller presented no valid token.
func (s *Service) Get(ctx context.Context, recipeID, viewerID string) (*Details, error) {
	recipe, err := s.repo.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	if !recipe.IsPublic {
		if viewerID == "" {
			return nil, ErrUnauthenticated
		}
		if err := s.requireMembership(ctx, recipe.FamilyID, viewerID); err != nil {
			return nil, err
		}
	}

	return s.repo.GetDetails(ctx, recipe.ID)
}

// GetBySlug resolves only recipes that are public right now. A slug kept
// from an earlier public period does not resolve.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Details, error) {
	if slug == "" {
		return nil, ErrRecipeNotFound
	}
	recipe, err := s.repo.GetPublicRecipeBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.repo.GetDetails(ctx, recipe.ID)
}

func (s *Service) ListForFamily(ctx context.Context, familyID, userID string, filter Filter) ([]Summary, error) {
	if err := s.requireMembership(ctx, familyID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListSummaries(ctx, Scope{FamilyID: familyID}, normalizeFilter(filter))
}

// Search lists recipes across families. With a family filter, members see
// the whole family and everyone else only its public recipes. Without one,
// signed-in callers see public recipes plus their families' recipes.
func (s *Service) Search(ctx context.Context, viewerID string, filter SearchFilter) ([]Summary, error) {
	scope := Scope{PublicOnly: true}

	switch {
	case filter.FamilyID != "":
		scope.FamilyID = filter.FamilyID
		if viewerID != "" {
			err := s.requireMembership(ctx, filter.FamilyID, viewerID)
			switch {
			case err == nil:
				scope.PublicOnly = false
			case !errors.Is(err, familydomain.ErrNotMember):
				return nil, err
			}
		}
	case viewerID != "":
		scope = Scope{VisibleTo: viewerID}
	}

	return s.repo.ListSummaries(ctx, scope, normalizeFilter(filter.Filter))
}

func (s *Service) Update(ctx context.Context, recipeID, userID string, patch Patch) (*Details, error) {
	fields, err := patchFields(patch)
	if err != nil {
		return nil, err
	}
	children, err := buildCollections(recipeID, patch)
	if err != nil {
		return nil, err
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		recipe, err := tx.GetRecipe(ctx, recipeID)
		if err != nil {
			return err
		}
		if err := requireOwnership(recipe, userID); err != nil {
			return err
		}

		if public, ok := patch.IsPublic.Get(); ok && public && recipe.PublicSlug == nil {
			slug, err := generateSlug(ctx, tx)
			if err != nil {
				return err
			}
			fields["public_slug"] = slug
		}

		fields["updated_at"] = s.now()
		if err := tx.UpdateRecipeFields(ctx, recipe.ID, fields); err != nil {
			return err
		}

		return children.apply(ctx, tx, recipe.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetDetails(ctx, recipeID)
}

// Delete writes a tombstone; rows and children stay in place.
func (s *Service) Delete(ctx context.Context, recipeID, userID string) error {
	return s.repo.Transaction(ctx, func(tx Repository) error {
		recipe, err := tx.GetRecipe(ctx, recipeID)
		if err != nil {
			return err
		}
		if err := requireOwnership(recipe, userID); err != nil {
			return err
		}
		return tx.SoftDeleteRecipe(ctx, recipe.ID)
	})
}

func patchFields(patch Patch) (map[string]any, error) {
	fields := make(map[string]any)

	if patch.Name.IsSet() {
		value, ok := patch.Name.Get()
		if !ok {
			return nil, validation.New("name", "name cannot be null")
		}
		name, err := validation.RequiredText("name", value, maxNameLength)
		if err != nil {
			return nil, err
		}
		fields["name"] = name
	}

	if patch.Description.IsSet() {
		fields["description"] = patch.Description.Ptr()
	}
	if patch.Notes.IsSet() {
		fields["notes"] = patch.Notes.Ptr()
	}

	intFields := []struct {
		column string
		value  optional.Value[int]
	}{
		{"prep_time_minutes", patch.PrepTimeMinutes},
		{"cook_time_minutes", patch.CookTimeMinutes},
		{"servings", patch.Servings},
	}
	for _, field := range intFields {
		if !field.value.IsSet() {
			continue
		}
		value := field.value.Ptr()
		if err := checkNonNegative(field.column, value); err != nil {
			return nil, err
		}
		fields[field.column] = value
	}

	if patch.Status.IsSet() {
		value, _ := patch.Status.Get()
		status, err := normalizeStatus(value)
		if err != nil {
			return nil, err
		}
		fields["status"] = status
	}

	if patch.IsPublic.IsSet() {
		value, ok := patch.IsPublic.Get()
		if !ok {
			return nil, validation.New("is_public", "is_public cannot be null")
		}
		fields["is_public"] = value
	}

	return fields, nil
}

// collections holds the child rows a patch replaces. A nil slice field means
// the collection was absent; a null collection clears it like an empty one.
type collections struct {
	ingredients  []Ingredient
	instructions []Instruction
	photos       []Photo
	tags         []string
	categories   []string
}

func buildCollections(recipeID string, patch Patch) (*collections, error) {
	var (
		result collections
		err    error
	)

	if patch.Ingredients.IsSet() {
		inputs, _ := patch.Ingredients.Get()
		if result.ingredients, err = buildIngredients(recipeID, inputs); err != nil {
			return nil, err
		}
	}
	if patch.Instructions.IsSet() {
		inputs, _ := patch.Instructions.Get()
		if result.instructions, err = buildInstructions(recipeID, inputs); err != nil {
			return nil, err
		}
	}
	if patch.Photos.IsSet() {
		inputs, _ := patch.Photos.Get()
		if result.photos, err = buildPhotos(recipeID, inputs); err != nil {
			return nil, err
		}
	}
	if patch.Tags.IsSet() {
		labels, _ := patch.Tags.Get()
		if result.tags, err = normalizeLabels("tags", labels); err != nil {
			return nil, err
		}
	}
	if patch.Categories.IsSet() {
		labels, _ := patch.Categories.Get()
		if result.categories, err = normalizeLabels("categories", labels); err != nil {
			return nil, err
		}
	}

	return &result, nil
}

func (c *collections) apply(ctx context.Context, tx Repository, recipeID string) error {
	if c.ingredients != nil {
		if err := tx.ReplaceIngredients(ctx, recipeID, c.ingredients); err != nil {
			return err
		}
	}
	if c.instructions != nil {
		if err := tx.ReplaceInstructions(ctx, recipeID, c.instructions); err != nil {
			return err
		}
	}
	if c.photos != nil {
		if err := tx.ReplacePhotos(ctx, recipeID, c.photos); err != nil {
			return err
		}
	}
	if c.tags != nil {
		if err := tx.ReplaceTags(ctx, recipeID, c.tags); err != nil {
			return err
		}
	}
	if c.categories != nil {
		if err := tx.ReplaceCategories(ctx, recipeID, c.categories); err != nil {
			return err
		}
	}
	return nil
}

func generateSlug(ctx context.Context, tx Repository) (string, error) {
	slug, err := randcode.Unique(ctx, tx.IsSlugTaken)
	if errors.Is(err, randcode.ErrExhausted) {
		return "", ErrSlugGenerationFailed
	}
	return slug, err
}
