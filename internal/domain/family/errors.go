package family

import "errors"

var (
	ErrFamilyNotFound       = errors.New("family not found")
	ErrNotMember            = errors.New("not a member of this family")
	ErrNotAdmin             = errors.New("family admin role required")
	ErrAlreadyMember        = errors.New("already a member of this family")
	ErrMemberNotFound       = errors.New("member not found")
	ErrCodeGenerationFailed = errors.New("invite code generation failed")
)
