package service

import (
	"context"
	"errors"
	"strings"

	"pacta-backend/internal/apperr"
	"pacta-backend/internal/model"
	"pacta-backend/internal/repository"
	"pacta-backend/internal/util"
)

// UserStore is the persistence surface the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type AuthService struct {
	userRepo  UserStore
	jwtSecret string
}

func NewAuthService(userRepo UserStore, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
}

// Register creates a new active user with the default role.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validation("invalid_email", "a valid email is required")
	}
	if len(password) < 8 {
		return nil, apperr.Validation("weak_password", "password must be at least 8 characters")
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal(err)
	}
	if existing != nil {
		return nil, apperr.Validation("email_taken", "email already exists")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         "user",
		Status:       model.UserStatusActive,
	}

	if err := s.userRepo.CreateUser(ctx, u); err != nil {
		// Concurrent registers can slip past the FindByEmail check and
		// lose the race on the unique constraint.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperr.Validation("email_taken", "email already exists")
		}
		return nil, apperr.Internal(err)
	}

	return u, nil
}

// Login checks credentials and returns a signed JWT. Every failure
// renders the same message so accounts cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", apperr.Authorization("invalid_credentials", "invalid email or password")
	}

	if u.Status != model.UserStatusActive {
		return "", apperr.Authorization("invalid_credentials", "invalid email or password")
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		return "", apperr.Authorization("invalid_credentials", "invalid email or password")
	}

	token, err := util.GenerateJWT(u.ID, u.Role, s.jwtSecret)
	if err != nil {
		return "", apperr.Internal(err)
	}

	return token, nil
}
