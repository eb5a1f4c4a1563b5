package service

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/utils"
)

const minPasswordLength = 8

// AuthService handles staff login and account management
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *utils.JWTManager
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repository.UserRepository, jwtManager *utils.JWTManager) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

// LoginInput represents the login input
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, apperror.ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		log.Printf("Warning: failed to record login for user %s: %v", user.ID, err)
	}

	return s.issueTokens(user)
}

// RefreshToken generates new tokens from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*LoginOutput, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, apperror.ErrInvalidToken
	}

	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *entity.User) (*LoginOutput, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtManager.AccessTokenExpiry().Seconds()),
	}, nil
}

// GetCurrentUser returns the current user by ID
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewNotFoundError("User")
	}
	return user, nil
}

// CreateUserInput represents a new staff account
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// CreateUser adds a staff account. Role defaults to pharmacist.
func (s *AuthService) CreateUser(ctx context.Context, input *CreateUserInput) (*entity.User, error) {
	role := enum.Role(strings.ToLower(strings.TrimSpace(input.Role)))
	if role == "" {
		role = enum.RolePharmacist
	}

	user := &entity.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    normalizeEmail(input.Email),
		Role:     role,
		IsActive: true,
	}

	var errs []apperror.FieldError
	if user.Name == "" {
		errs = append(errs, apperror.FieldError{Field: "name", Message: "Name is required"})
	}
	if _, err := mail.ParseAddress(user.Email); err != nil {
		errs = append(errs, apperror.FieldError{Field: "email", Message: "A valid email is required"})
	}
	if len(input.Password) < minPasswordLength {
		errs = append(errs, apperror.FieldError{Field: "password", Message: "Password must be at least 8 characters"})
	}
	if !role.IsValid() {
		errs = append(errs, apperror.FieldError{Field: "role", Message: "Role must be admin or pharmacist"})
	}
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	existing, err := s.userRepo.GetByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewDuplicateError("Email already registered")
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user.Password = hashed

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.NewDuplicateError("Email already registered")
		}
		return nil, err
	}
	return user, nil
}

// EnsureAdmin seeds the first admin account. It does nothing when the
// password is empty or the email is already registered.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) error {
	if password == "" {
		return nil
	}

	existing, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	_, err = s.CreateUser(ctx, &CreateUserInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     string(enum.RoleAdmin),
	})
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
