package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	recipedomain "family-recipes-go/internal/domain/recipe"
	"family-recipes-go/internal/transport/httpserver/middleware"
	"family-recipes-go/pkg/optional"
	"github.com/go-chi/chi/v5"
)

type ingredientRequest struct {
	Quantity   *string `json:"quantity"`
	Ingredient string  `json:"ingredient"`
	Order      *int    `json:"order"`
}

// instructionRequest accepts either a bare string or an object.
type instructionRequest struct {
	Instruction string `json:"instruction"`
	StepNumber  *int   `json:"step_number"`
}

func (i *instructionRequest) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		i.StepNumber = nil
		return json.Unmarshal(trimmed, &i.Instruction)
	}
	type plain instructionRequest
	var decoded plain
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return err
	}
	*i = instructionRequest(decoded)
	return nil
}

type photoRequest struct {
	PhotoURL  string `json:"photo_url"`
	IsPrimary bool   `json:"is_primary"`
	Order     *int   `json:"order"`
}

type createRecipeRequest struct {
	Name            string               `json:"name"`
	Description     *string              `json:"description"`
	PrepTimeMinutes *int                 `json:"prep_time_minutes"`
	CookTimeMinutes *int                 `json:"cook_time_minutes"`
	Servings        *int                 `json:"servings"`
	Notes           *string              `json:"notes"`
	Status          string               `json:"status"`
	IsPublic        bool                 `json:"is_public"`
	Ingredients     []ingredientRequest  `json:"ingredients"`
	Instructions    []instructionRequest `json:"instructions"`
	Photos          []photoRequest       `json:"photos"`
	Tags            []string             `json:"tags"`
	Categories      []string             `json:"categories"`
}

type updateRecipeRequest struct {
	Name            optional.Value[string]               `json:"name"`
	Description     optional.Value[string]               `json:"description"`
	PrepTimeMinutes optional.Value[int]                  `json:"prep_time_minutes"`
	CookTimeMinutes optional.Value[int]                  `json:"cook_time_minutes"`
	Servings        optional.Value[int]                  `json:"servings"`
	Notes           optional.Value[string]               `json:"notes"`
	Status          optional.Value[string]               `json:"status"`
	IsPublic        optional.Value[bool]                 `json:"is_public"`
	Ingredients     optional.Value[[]ingredientRequest]  `json:"ingredients"`
	Instructions    optional.Value[[]instructionRequest] `json:"instructions"`
	Photos          optional.Value[[]photoRequest]       `json:"photos"`
	Tags            optional.Value[[]string]             `json:"tags"`
	Categories      optional.Value[[]string]             `json:"categories"`
}

type refResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ingredientResponse struct {
	Quantity   *string `json:"quantity"`
	Ingredient string  `json:"ingredient"`
	Order      int     `json:"order"`
}

type instructionResponse struct {
	StepNumber  int    `json:"step_number"`
	Instruction string `json:"instruction"`
}

type photoResponse struct {
	ID        uint   `json:"id"`
	PhotoURL  string `json:"photo_url"`
	IsPrimary bool   `json:"is_primary"`
	Order     int    `json:"order"`
}

type recipeResponse struct {
	ID              string                `json:"id"`
	FamilyID        string                `json:"family_id"`
	Family          refResponse           `json:"family"`
	CreatedBy       string                `json:"created_by"`
	Creator         refResponse           `json:"creator"`
	Name            string                `json:"name"`
	Description     *string               `json:"description"`
	PrepTimeMinutes *int                  `json:"prep_time_minutes"`
	CookTimeMinutes *int                  `json:"cook_time_minutes"`
	Servings        *int                  `json:"servings"`
	Notes           *string               `json:"notes"`
	Status          string                `json:"status"`
	IsPublic        bool                  `json:"is_public"`
	PublicSlug      *string               `json:"public_slug"`
	Ingredients     []ingredientResponse  `json:"ingredients"`
	Instructions    []instructionResponse `json:"instructions"`
	Photos          []photoResponse       `json:"photos"`
	Tags            []string              `json:"tags"`
	Categories      []string              `json:"categories"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

type recipeSummaryResponse struct {
	ID              string    `json:"id"`
	FamilyID        string    `json:"family_id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	CreatedBy       string    `json:"created_by"`
	CreatorName     string    `json:"creator_name"`
	IsPublic        bool      `json:"is_public"`
	PrimaryPhotoURL *string   `json:"primary_photo_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type deletedResponse struct {
	Deleted bool `json:"deleted"`
}

func (h *Handlers) ListFamilyRecipes(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	familyID := chi.URLParam(r, "id")

	filter, err := parseRecipeFilter(r)
	if err != nil {
		h.writeServiceError(w, r, "recipes.list", err, "user_id", userID, "family_id", familyID)
		return
	}

	summaries, err := h.Recipes.ListForFamily(r.Context(), familyID, userID, filter)
	if err != nil {
		h.writeServiceError(w, r, "recipes.list", err, "user_id", userID, "family_id", familyID)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponses(summaries))
}

func (h *Handlers) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req createRecipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}
	userID := middleware.UserIDFromContext(r.Context())
	familyID := chi.URLParam(r, "id")

	details, err := h.Recipes.Create(r.Context(), familyID, userID, req.toDraft())
	if err != nil {
		h.writeServiceError(w, r, "recipes.create", err, "user_id", userID, "family_id", familyID)
		return
	}
	h.Metrics.RecipeCreated()

	writeJSON(w, http.StatusCreated, toRecipeResponse(details))
}

func (h *Handlers) SearchRecipes(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.UserIDFromContext(r.Context())

	filter, err := parseRecipeFilter(r)
	if err != nil {
		h.writeServiceError(w, r, "recipes.search", err, "user_id", viewerID)
		return
	}

	summaries, err := h.Recipes.Search(r.Context(), viewerID, recipedomain.SearchFilter{
		Filter:   filter,
		FamilyID: r.URL.Query().Get("family_id"),
	})
	if err != nil {
		h.writeServiceError(w, r, "recipes.search", err, "user_id", viewerID)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponses(summaries))
}

func (h *Handlers) GetRecipe(w http.ResponseWriter, r *http.Request) {
	viewerID := middleware.UserIDFromContext(r.Context())
	recipeID := chi.URLParam(r, "id")

	details, err := h.Recipes.Get(r.Context(), recipeID, viewerID)
	if err != nil {
		h.writeServiceError(w, r, "recipes.get", err, "user_id", viewerID, "recipe_id", recipeID)
		return
	}

	writeJSON(w, http.StatusOK, toRecipeResponse(details))
}

func (h *Handlers) GetPublicRecipe(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	details, err := h.Recipes.GetBySlug(r.Context(), slug)
	if err != nil {
		h.writeServiceError(w, r, "recipes.get_public", err, "slug", slug)
		return
	}

	writeJSON(w, http.StatusOK, toRecipeResponse(details))
}

func (h *Handlers) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	var req updateRecipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(w)
		return
	}
	userID := middleware.UserIDFromContext(r.Context())
	recipeID := chi.URLParam(r, "id")

	details, err := h.Recipes.Update(r.Context(), recipeID, userID, req.toPatch())
	if err != nil {
		h.writeServiceError(w, r, "recipes.update", err, "user_id", userID, "recipe_id", recipeID)
		return
	}

	writeJSON(w, http.StatusOK, toRecipeResponse(details))
}

func (h *Handlers) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	recipeID := chi.URLParam(r, "id")

	if err := h.Recipes.Delete(r.Context(), recipeID, userID); err != nil {
		h.writeServiceError(w, r, "recipes.delete", err, "user_id", userID, "recipe_id", recipeID)
		return
	}

	writeJSON(w, http.StatusOK, deletedResponse{Deleted: true})
}

func (req createRecipeRequest) toDraft() recipedomain.Draft {
	return recipedomain.Draft{
		Name:            req.Name,
		Description:     req.Description,
		PrepTimeMinutes: req.PrepTimeMinutes,
		CookTimeMinutes: req.CookTimeMinutes,
		Servings:        req.Servings,
		Notes:           req.Notes,
		Status:          req.Status,
		IsPublic:        req.IsPublic,
		Ingredients:     toIngredientInputs(req.Ingredients),
		Instructions:    toInstructionInputs(req.Instructions),
		Photos:          toPhotoInputs(req.Photos),
		Tags:            req.Tags,
		Categories:      req.Categories,
	}
}

func (req updateRecipeRequest) toPatch() recipedomain.Patch {
	return recipedomain.Patch{
		Name:            req.Name,
		Description:     req.Description,
		PrepTimeMinutes: req.PrepTimeMinutes,
		CookTimeMinutes: req.CookTimeMinutes,
		Servings:        req.Servings,
		Notes:           req.Notes,
		Status:          req.Status,
		IsPublic:        req.IsPublic,
		Ingredients:     mapOptional(req.Ingredients, toIngredientInputs),
		Instructions:    mapOptional(req.Instructions, toInstructionInputs),
		Photos:          mapOptional(req.Photos, toPhotoInputs),
		Tags:            req.Tags,
		Categories:      req.Categories,
	}
}

func mapOptional[A, B any](value optional.Value[A], convert func(A) B) optional.Value[B] {
	switch {
	case !value.IsSet():
		return optional.Value[B]{}
	case value.IsNull():
		return optional.Null[B]()
	}
	inner, _ := value.Get()
	return optional.Of(convert(inner))
}

// Request positions are informational; array order is authoritative.
func toIngredientInputs(items []ingredientRequest) []recipedomain.IngredientInput {
	inputs := make([]recipedomain.IngredientInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, recipedomain.IngredientInput{Quantity: item.Quantity, Ingredient: item.Ingredient})
	}
	return inputs
}

func toInstructionInputs(items []instructionRequest) []recipedomain.InstructionInput {
	inputs := make([]recipedomain.InstructionInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, recipedomain.InstructionInput{Instruction: item.Instruction})
	}
	return inputs
}

func toPhotoInputs(items []photoRequest) []recipedomain.PhotoInput {
	inputs := make([]recipedomain.PhotoInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, recipedomain.PhotoInput{PhotoURL: item.PhotoURL, IsPrimary: item.IsPrimary})
	}
	return inputs
}

func toRecipeResponse(details *recipedomain.Details) recipeResponse {
	response := recipeResponse{
		ID:              details.ID,
		FamilyID:        details.FamilyID,
		Family:          refResponse{ID: details.Family.ID, Name: details.Family.Name},
		CreatedBy:       details.CreatedBy,
		Creator:         refResponse{ID: details.Creator.ID, Name: details.Creator.Name},
		Name:            details.Name,
		Description:     details.Description,
		PrepTimeMinutes: details.PrepTimeMinutes,
		CookTimeMinutes: details.CookTimeMinutes,
		Servings:        details.Servings,
		Notes:           details.Notes,
		Status:          details.Status,
		IsPublic:        details.IsPublic,
		PublicSlug:      details.PublicSlug,
		Ingredients:     make([]ingredientResponse, 0, len(details.Ingredients)),
		Instructions:    make([]instructionResponse, 0, len(details.Instructions)),
		Photos:          make([]photoResponse, 0, len(details.Photos)),
		Tags:            append([]string{}, details.Tags...),
		Categories:      append([]string{}, details.Categories...),
		CreatedAt:       details.CreatedAt,
		UpdatedAt:       details.UpdatedAt,
	}
	for _, item := range details.Ingredients {
		response.Ingredients = append(response.Ingredients, ingredientResponse{
			Quantity:   item.Quantity,
			Ingredient: item.Ingredient,
			Order:      item.Position,
		})
	}
	for _, item := range details.Instructions {
		response.Instructions = append(response.Instructions, instructionResponse{
			StepNumber:  item.StepNumber,
			Instruction: item.Instruction,
		})
	}
	for _, item := range details.Photos {
		response.Photos = append(response.Photos, photoResponse{
			ID:        item.ID,
			PhotoURL:  item.PhotoURL,
			IsPrimary: item.IsPrimary,
			Order:     item.Position,
		})
	}
	return response
}

func toSummaryResponses(summaries []recipedomain.Summary) []recipeSummaryResponse {
	response := make([]recipeSummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		response = append(response, recipeSummaryResponse{
			ID:              summary.ID,
			FamilyID:        summary.FamilyID,
			Name:            summary.Name,
			Description:     summary.Description,
			CreatedBy:       summary.CreatedBy,
			CreatorName:     summary.CreatorName,
			IsPublic:        summary.IsPublic,
			PrimaryPhotoURL: summary.PrimaryPhotoURL,
			CreatedAt:       summary.CreatedAt,
			UpdatedAt:       summary.UpdatedAt,
		})
	}
	return response
}
