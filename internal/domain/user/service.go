package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"family-recipes-go/internal/auth"
	"family-recipes-go/internal/domain/validation"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	minPasswordLength = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72
	maxNameLength    = 255
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenManager interface {
	Issue(userID, email string) (string, time.Time, error)
	Verify(token string) (*auth.Claims, error)
}

type Service struct {
	repo     Repository
	hasher   PasswordHasher
	tokens   TokenManager
	validate *validator.Validate
}

func NewService(repo Repository, hasher PasswordHasher, tokens TokenManager) *Service {
	return &Service{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		validate: validator.New(),
	}
}

func (s *Service) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if err := s.validate.Var(email, "required,email,max=255"); err != nil {
		return nil, validation.New("email", "a valid email is required")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, validation.New("password", "password must be at least 8 characters")
	}
	if len(password) > maxPasswordBytes {
		return nil, validation.New("password", "password is too long")
	}
	name, err := validation.RequiredText("name", name, maxNameLength)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
	}
	if err := s.repo.Create(ctx, &user); err != nil {
		return nil, err
	}

	return s.issue(&user)
}

func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, validation.New("email", "email is required")
	}
	if password == "" {
		return nil, validation.New("password", "password is required")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	return s.issue(user)
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Authenticate resolves a bearer token to a user that still exists.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) issue(user *User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
