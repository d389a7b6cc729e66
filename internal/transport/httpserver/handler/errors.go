package handler

import (
	"errors"
	"net/http"

	familydomain "family-recipes-go/internal/domain/family"
	recipedomain "family-recipes-go/internal/domain/recipe"
	userdomain "family-recipes-go/internal/domain/user"
	"family-recipes-go/internal/domain/validation"
	"family-recipes-go/pkg/logger"
	"github.com/go-playground/validator/v10"
)

const (
	codeValidation   = "VALIDATION_ERROR"
	codeUnauthorized = "UNAUTHORIZED"
	codeForbidden    = "FORBIDDEN"
	codeNotFound     = "NOT_FOUND"
	codeConflict     = "CONFLICT"
	codeInternal     = "INTERNAL_ERROR"
	codeUnavailable  = "SERVICE_UNAVAILABLE"
)

// writeServiceError maps a domain failure onto the error envelope. Expected
// failures are logged as business errors; anything unclassified is logged in
// full and reported to the caller without detail.
func (h *Handlers) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error, attrs ...any) {
	log := logger.FromContext(r.Context(), h.log)

	var verr *validation.Error
	if errors.As(err, &verr) {
		log.BusinessError(op+": validation failed", err, attrs...)
		details := map[string]string{}
		if verr.Field != "" {
			details[verr.Field] = verr.Message
		}
		writeErrorDetails(w, http.StatusBadRequest, codeValidation, verr.Message, details)
		return
	}

	status, code := classify(err)
	if status == http.StatusInternalServerError {
		log.InternalError(op+": unexpected failure", err, attrs...)
		writeError(w, status, code, "internal error")
		return
	}

	log.BusinessError(op+": request rejected", err, attrs...)
	writeError(w, status, code, err.Error())
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, userdomain.ErrInvalidCredentials),
		errors.Is(err, userdomain.ErrUnauthenticated),
		errors.Is(err, recipedomain.ErrUnauthenticated):
		return http.StatusUnauthorized, codeUnauthorized
	case errors.Is(err, familydomain.ErrNotMember),
		errors.Is(err, familydomain.ErrNotAdmin),
		errors.Is(err, recipedomain.ErrNotCreator):
		return http.StatusForbidden, codeForbidden
	case errors.Is(err, userdomain.ErrUserNotFound),
		errors.Is(err, familydomain.ErrFamilyNotFound),
		errors.Is(err, familydomain.ErrMemberNotFound),
		errors.Is(err, recipedomain.ErrRecipeNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, userdomain.ErrEmailTaken),
		errors.Is(err, familydomain.ErrAlreadyMember):
		return http.StatusConflict, codeConflict
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// checkRequest runs struct tag validation and reports the first failing field.
func (h *Handlers) checkRequest(req any) error {
	err := h.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		field := fieldErrs[0].Field()
		switch fieldErrs[0].Tag() {
		case "required":
			return validation.New(field, field+" is required")
		default:
			return validation.New(field, field+" is invalid")
		}
	}
	return err
}
