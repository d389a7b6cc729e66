package recipe

import (
	"time"

	"family-recipes-go/pkg/optional"
	"gorm.io/gorm"
)

const (
	DefaultStatus = "published"

	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

type Recipe struct {
	ID              string         `gorm:"type:uuid;primaryKey"`
	FamilyID        string         `gorm:"type:uuid;not null;index"`
	CreatedBy       string         `gorm:"type:uuid;not null;index"`
	Name            string         `gorm:"size:255;not null"`
	Description     *string        `gorm:"type:text"`
	PrepTimeMinutes *int           `gorm:"column:prep_time_minutes"`
	CookTimeMinutes *int           `gorm:"column:cook_time_minutes"`
	Servings        *int           `gorm:"column:servings"`
	Notes           *string        `gorm:"type:text"`
	Status          string         `gorm:"size:32;not null"`
	IsPublic        bool           `gorm:"not null"`
	PublicSlug      *string        `gorm:"size:32;uniqueIndex"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

type Ingredient struct {
	ID         uint    `gorm:"primaryKey"`
	RecipeID   string  `gorm:"type:uuid;not null;index"`
	Quantity   *string `gorm:"size:100"`
	Ingredient string  `gorm:"type:text;not null"`
	Position   int     `gorm:"not null"`
}

func (Ingredient) TableName() string {
	return "recipe_ingredients"
}

type Instruction struct {
	ID          uint   `gorm:"primaryKey"`
	RecipeID    string `gorm:"type:uuid;not null;index"`
	StepNumber  int    `gorm:"not null"`
	Instruction string `gorm:"type:text;not null"`
}

func (Instruction) TableName() string {
	return "recipe_instructions"
}

type Photo struct {
	ID        uint      `gorm:"primaryKey"`
	RecipeID  string    `gorm:"type:uuid;not null;index"`
	PhotoURL  string    `gorm:"column:photo_url;type:text;not null"`
	IsPrimary bool      `gorm:"not null"`
	Position  int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Photo) TableName() string {
	return "recipe_photos"
}

type Tag struct {
	ID       uint   `gorm:"primaryKey"`
	RecipeID string `gorm:"type:uuid;not null;index"`
	Tag      string `gorm:"size:100;not null;index"`
}

func (Tag) TableName() string {
	return "recipe_tags"
}

type Category struct {
	ID       uint   `gorm:"primaryKey"`
	RecipeID string `gorm:"type:uuid;not null;index"`
	Category string `gorm:"size:100;not null;index"`
}

func (Category) TableName() string {
	return "recipe_categories"
}

type Ref struct {
	ID   string
	Name string
}

// Details is the hydrated aggregate returned by every read and write.
type Details struct {
	Recipe
	Family       Ref
	Creator      Ref
	Ingredients  []Ingredient
	Instructions []Instruction
	Photos       []Photo
	Tags         []string
	Categories   []string
}

type Summary struct {
	ID              string
	FamilyID        string
	Name            string
	Description     *string
	CreatedBy       string
	CreatorName     string
	IsPublic        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PrimaryPhotoURL *string
}

type IngredientInput struct {
	Quantity   *string
	Ingredient string
}

type InstructionInput struct {
	Instruction string
}

type PhotoInput struct {
	PhotoURL  string
	IsPrimary bool
}

type Draft struct {
	Name            string
	Description     *string
	PrepTimeMinutes *int
	CookTimeMinutes *int
	Servings        *int
	Notes           *string
	Status          string
	IsPublic        bool
	Ingredients     []IngredientInput
	Instructions    []InstructionInput
	Photos          []PhotoInput
	Tags            []string
	Categories      []string
}

// Patch leaves absent fields untouched. A present collection replaces the
// stored one wholesale.
type Patch struct {
	Name            optional.Value[string]
	Description     optional.Value[string]
	PrepTimeMinutes optional.Value[int]
	CookTimeMinutes optional.Value[int]
	Servings        optional.Value[int]
	Notes           optional.Value[string]
	Status          optional.Value[string]
	IsPublic        optional.Value[bool]
	Ingredients     optional.Value[[]IngredientInput]
	Instructions    optional.Value[[]InstructionInput]
	Photos          optional.Value[[]PhotoInput]
	Tags            optional.Value[[]string]
	Categories      optional.Value[[]string]
}

type Filter struct {
	Query     string
	Category  string
	Tag       string
	CreatorID string
	Page      int
	Limit     int
}

func (f Filter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type SearchFilter struct {
	Filter
	FamilyID string
}

// Scope restricts which recipes a listing may return.
type Scope struct {
	FamilyID   string
	PublicOnly bool
	// VisibleTo limits results to public recipes plus those of the user's families.
	VisibleTo string
}
