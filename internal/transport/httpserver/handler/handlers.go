package handler

import (
	"context"
	"reflect"
	"strings"

	familydomain "family-recipes-go/internal/domain/family"
	recipedomain "family-recipes-go/internal/domain/recipe"
	userdomain "family-recipes-go/internal/domain/user"
	"family-recipes-go/internal/metrics"
	"family-recipes-go/internal/storage/photos"
	"family-recipes-go/pkg/logger"
	"github.com/go-playground/validator/v10"
)

type PhotoUploader interface {
	PresignUpload(ctx context.Context, userID, contentType string) (*photos.Upload, error)
}

type HealthChecker func(ctx context.Context) error

type Handlers struct {
	Users    *userdomain.Service
	Families *familydomain.Service
	Recipes  *recipedomain.Service
	// Photos is nil when no bucket is configured.
	Photos   PhotoUploader
	Metrics  *metrics.Registry
	health   HealthChecker
	log      logger.Logger
	validate *validator.Validate
}

func New(
	users *userdomain.Service,
	families *familydomain.Service,
	recipes *recipedomain.Service,
	uploader PhotoUploader,
	registry *metrics.Registry,
	health HealthChecker,
	log logger.Logger,
) *Handlers {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handlers{
		Users:    users,
		Families: families,
		Recipes:  recipes,
		Photos:   uploader,
		Metrics:  registry,
		health:   health,
		log:      log,
		validate: validate,
	}
}
