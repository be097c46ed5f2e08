package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"ctchen222/portfolio-tracker/internal/api/models"
	"ctchen222/portfolio-tracker/internal/api/repository"
	"ctchen222/portfolio-tracker/internal/apperr"

	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"
)

var tracer = otel.Tracer("api.service")

const minUsernameLen = 3

var (
	ErrUserNotFound    = apperr.NotFound("user not found")
	ErrInvalidPassword = apperr.Unauthenticated("invalid password")
	ErrInvalidUsername = apperr.Validation("username must have at least 3 non-blank characters")
)

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// UserService defines the interface for user-related business logic.
type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (int64, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, tokens TokenIssuer) UserService {
	return &userService{userRepo: userRepo, tokens: tokens}
}

// Register handles user registration. Uniqueness is enforced by the store,
// which reports a taken username or email as a conflict.
func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (int64, error) {
	ctx, span := tracer.Start(ctx, "UserService.Register")
	defer span.End()

	user := &models.User{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
	}
	if utf8.RuneCountInString(user.Username) < minUsernameLen {
		return 0, ErrInvalidUsername
	}

	id, err := s.userRepo.CreateUser(ctx, user, req.Password)
	if err != nil {
		return 0, err
	}
	slog.InfoContext(ctx, "user registered", "user_id", id, "username", user.Username)
	return id, nil
}

// FindByEmail returns the user registered with email, or ErrUserNotFound.
func (s *userService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Login handles user login and returns a signed token on success.
func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	ctx, span := tracer.Start(ctx, "UserService.Login")
	defer span.End()

	user, err := s.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	if !VerifyPassword(user, req.Password) {
		slog.WarnContext(ctx, "login rejected", "user_id", user.ID)
		return nil, ErrInvalidPassword
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnknown, "failed to issue token", err)
	}

	return &models.LoginResponse{Token: token, User: user.Info()}, nil
}

// VerifyPassword reports whether password matches the stored hash of user.
func VerifyPassword(user *models.User, password string) bool {
	if user == nil || user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}
