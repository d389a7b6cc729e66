package client

import (
	"time"

	"family-recipes-go/pkg/optional"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	PhotoURL  *string   `json:"photo_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Family carries InviteCode only when the caller is an admin.
type Family struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code,omitempty"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Role       string    `json:"role,omitempty"`
}

type FamilyRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type FamilySummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	InviteCode  string    `json:"invite_code,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	Role        string    `json:"role"`
	JoinedAt    time.Time `json:"joined_at"`
	MemberCount int64     `json:"member_count"`
	RecipeCount int64     `json:"recipe_count"`
}

type Member struct {
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	PhotoURL *string   `json:"photo_url"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type FamilyDetails struct {
	Family
	Members     []Member `json:"members"`
	RecipeCount int64    `json:"recipe_count"`
}

type Invite struct {
	InviteCode string `json:"invite_code"`
	InviteLink string `json:"invite_link"`
}

type Ingredient struct {
	Quantity   *string `json:"quantity"`
	Ingredient string  `json:"ingredient"`
	Order      int     `json:"order,omitempty"`
}

type Instruction struct {
	StepNumber  int    `json:"step_number,omitempty"`
	Instruction string `json:"instruction"`
}

type Photo struct {
	ID        uint   `json:"id,omitempty"`
	PhotoURL  string `json:"photo_url"`
	IsPrimary bool   `json:"is_primary"`
	Order     int    `json:"order,omitempty"`
}

type Recipe struct {
	ID              string        `json:"id"`
	FamilyID        string        `json:"family_id"`
	Family          FamilyRef     `json:"family"`
	CreatedBy       string        `json:"created_by"`
	Creator         FamilyRef     `json:"creator"`
	Name            string        `json:"name"`
	Description     *string       `json:"description"`
	PrepTimeMinutes *int          `json:"prep_time_minutes"`
	CookTimeMinutes *int          `json:"cook_time_minutes"`
	Servings        *int          `json:"servings"`
	Notes           *string       `json:"notes"`
	Status          string        `json:"status"`
	IsPublic        bool          `json:"is_public"`
	PublicSlug      *string       `json:"public_slug"`
	Ingredients     []Ingredient  `json:"ingredients"`
	Instructions    []Instruction `json:"instructions"`
	Photos          []Photo       `json:"photos"`
	Tags            []string      `json:"tags"`
	Categories      []string      `json:"categories"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type RecipeSummary struct {
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

type RecipeInput struct {
	Name            string        `json:"name"`
	Description     *string       `json:"description,omitempty"`
	PrepTimeMinutes *int          `json:"prep_time_minutes,omitempty"`
	CookTimeMinutes *int          `json:"cook_time_minutes,omitempty"`
	Servings        *int          `json:"servings,omitempty"`
	Notes           *string       `json:"notes,omitempty"`
	Status          string        `json:"status,omitempty"`
	IsPublic        bool          `json:"is_public"`
	Ingredients     []Ingredient  `json:"ingredients,omitempty"`
	Instructions    []Instruction `json:"instructions,omitempty"`
	Photos          []Photo       `json:"photos,omitempty"`
	Tags            []string      `json:"tags,omitempty"`
	Categories      []string      `json:"categories,omitempty"`
}

// RecipePatch sends only the fields that are set; optional.Null clears one.
type RecipePatch struct {
	Name            optional.Value[string]        `json:"name,omitzero"`
	Description     optional.Value[string]        `json:"description,omitzero"`
	PrepTimeMinutes optional.Value[int]           `json:"prep_time_minutes,omitzero"`
	CookTimeMinutes optional.Value[int]           `json:"cook_time_minutes,omitzero"`
	Servings        optional.Value[int]           `json:"servings,omitzero"`
	Notes           optional.Value[string]        `json:"notes,omitzero"`
	Status          optional.Value[string]        `json:"status,omitzero"`
	IsPublic        optional.Value[bool]          `json:"is_public,omitzero"`
	Ingredients     optional.Value[[]Ingredient]  `json:"ingredients,omitzero"`
	Instructions    optional.Value[[]Instruction] `json:"instructions,omitzero"`
	Photos          optional.Value[[]Photo]       `json:"photos,omitzero"`
	Tags            optional.Value[[]string]      `json:"tags,omitzero"`
	Categories      optional.Value[[]string]      `json:"categories,omitzero"`
}
