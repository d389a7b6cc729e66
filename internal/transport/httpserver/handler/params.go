package handler

import (
	"net/http"
	"strconv"
	"strings"

	recipedomain "family-recipes-go/internal/domain/recipe"
	"family-recipes-go/internal/domain/validation"
)

func parseIntParam(value string, fallback int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, strconv.ErrSyntax
	}
	return parsed, nil
}

// parseRecipeFilter reads the listing query. Search takes q, family listings
// take search; both are accepted everywhere.
func parseRecipeFilter(r *http.Request) (recipedomain.Filter, error) {
	query := r.URL.Query()

	page, err := parseIntParam(query.Get("page"), 0)
	if err != nil {
		return recipedomain.Filter{}, validation.New("page", "page must be a positive integer")
	}
	limit, err := parseIntParam(query.Get("limit"), 0)
	if err != nil {
		return recipedomain.Filter{}, validation.New("limit", "limit must be a positive integer")
	}

	text := query.Get("q")
	if text == "" {
		text = query.Get("search")
	}

	return recipedomain.Filter{
		Query:     text,
		Category:  query.Get("category"),
		Tag:       query.Get("tag"),
		CreatorID: query.Get("creator_id"),
		Page:      page,
		Limit:     limit,
	}, nil
}
