package recipe

import "errors"

var (
	ErrRecipeNotFound       = errors.New("recipe not found")
	ErrNotCreator           = errors.New("only the recipe creator can modify it")
	ErrUnauthenticated      = errors.New("authentication required")
	ErrSlugGenerationFailed = errors.New("unique slug exhausted")
)
