package recipe

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"family-recipes-go/internal/domain/validation"
)

const (
	maxNameLength     = 255
	maxStatusLength   = 32
	maxLabelLength    = 100
	maxQuantityLength = 100
)

func normalizeDraft(draft Draft) (Draft, error) {
	name, err := validation.RequiredText("name", draft.Name, maxNameLength)
	if err != nil {
		return Draft{}, err
	}
	draft.Name = name

	status, err := normalizeStatus(draft.Status)
	if err != nil {
		return Draft{}, err
	}
	draft.Status = status

	if err := checkNonNegative("prep_time_minutes", draft.PrepTimeMinutes); err != nil {
		return Draft{}, err
	}
	if err := checkNonNegative("cook_time_minutes", draft.CookTimeMinutes); err != nil {
		return Draft{}, err
	}
	if err := checkNonNegative("servings", draft.Servings); err != nil {
		return Draft{}, err
	}

	if draft.Tags, err = normalizeLabels("tags", draft.Tags); err != nil {
		return Draft{}, err
	}
	if draft.Categories, err = normalizeLabels("categories", draft.Categories); err != nil {
		return Draft{}, err
	}
	return draft, nil
}

func normalizeStatus(status string) (string, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return DefaultStatus, nil
	}
	if utf8.RuneCountInString(status) > maxStatusLength {
		return "", validation.New("status", "status is too long")
	}
	return status, nil
}

func checkNonNegative(field string, value *int) error {
	if value != nil && *value < 0 {
		return validation.New(field, field+" must not be negative")
	}
	return nil
}

// buildIngredients assigns dense 1-based positions in input order.
func buildIngredients(recipeID string, inputs []IngredientInput) ([]Ingredient, error) {
	items := make([]Ingredient, 0, len(inputs))
	for i, input := range inputs {
		text := strings.TrimSpace(input.Ingredient)
		if text == "" {
			return nil, validation.New(fmt.Sprintf("ingredients[%d].ingredient", i), "ingredient is required")
		}
		quantity := input.Quantity
		if quantity != nil {
			trimmed := strings.TrimSpace(*quantity)
			if utf8.RuneCountInString(trimmed) > maxQuantityLength {
				return nil, validation.New(fmt.Sprintf("ingredients[%d].quantity", i), "quantity is too long")
			}
			quantity = &trimmed
			if trimmed == "" {
				quantity = nil
			}
		}
		items = append(items, Ingredient{
			RecipeID:   recipeID,
			Quantity:   quantity,
			Ingredient: text,
			Position:   i + 1,
		})
	}
	return items, nil
}

func buildInstructions(recipeID string, inputs []InstructionInput) ([]Instruction, error) {
	items := make([]Instruction, 0, len(inputs))
	for i, input := range inputs {
		text := strings.TrimSpace(input.Instruction)
		if text == "" {
			return nil, validation.New(fmt.Sprintf("instructions[%d].instruction", i), "instruction is required")
		}
		items = append(items, Instruction{
			RecipeID:    recipeID,
			StepNumber:  i + 1,
			Instruction: text,
		})
	}
	return items, nil
}

// buildPhotos keeps at most one primary photo: the first one claiming it, or
// the first photo when none does.
func buildPhotos(recipeID string, inputs []PhotoInput) ([]Photo, error) {
	primary := -1
	for i, input := range inputs {
		if input.IsPrimary {
			primary = i
			break
		}
	}
	if primary < 0 && len(inputs) > 0 {
		primary = 0
	}

	items := make([]Photo, 0, len(inputs))
	for i, input := range inputs {
		url := strings.TrimSpace(input.PhotoURL)
		if url == "" {
			return nil, validation.New(fmt.Sprintf("photos[%d].photo_url", i), "photo_url is required")
		}
		items = append(items, Photo{
			RecipeID:  recipeID,
			PhotoURL:  url,
			IsPrimary: i == primary,
			Position:  i + 1,
		})
	}
	return items, nil
}

// normalizeLabels trims, drops blanks and collapses duplicates in first-seen order.
func normalizeLabels(field string, labels []string) ([]string, error) {
	seen := make(map[string]struct{}, len(labels))
	result := make([]string, 0, len(labels))
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		if utf8.RuneCountInString(label) > maxLabelLength {
			return nil, validation.New(field, "label is too long")
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		result = append(result, label)
	}
	return result, nil
}

func normalizeFilter(filter Filter) Filter {
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Tag = strings.TrimSpace(filter.Tag)
	filter.CreatorID = strings.TrimSpace(filter.CreatorID)
	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	return filter
}
