package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ctchen222/portfolio-tracker/internal/api/models"
	"ctchen222/portfolio-tracker/internal/apperr"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"
)

var tracer = otel.Tracer("api.repository")

// ErrUserExists is returned when the username or email is already taken.
var ErrUserExists = apperr.Conflict("username or email already exists")

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash.
var ErrPasswordTooLong = apperr.Validation("password must be at most 72 bytes")

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type sqliteUserRepository struct {
	db         *sqlx.DB
	bcryptCost int
}

// NewUserRepository creates a new SQLite-based UserRepository hashing
// passwords with the given bcrypt cost.
func NewUserRepository(db *sqlx.DB, bcryptCost int) UserRepository {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &sqliteUserRepository{db: db, bcryptCost: bcryptCost}
}

// CreateUser hashes the password and inserts a new user into the database.
// A username or email collision yields ErrUserExists.
func (r *sqliteUserRepository) CreateUser(ctx context.Context, user *models.User, password string) (int64, error) {
	ctx, span := tracer.Start(ctx, "UserRepository.CreateUser")
	defer span.End()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), r.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return 0, ErrPasswordTooLong
		}
		return 0, apperr.Storage("failed to hash password", err)
	}
	user.PasswordHash = string(hashedPassword)

	query := `INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.PasswordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrUserExists
		}
		span.RecordError(err)
		return 0, apperr.Storage("failed to create user", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperr.Storage("failed to read new user id", err)
	}
	user.ID = id
	return id, nil
}

// GetUserByEmail retrieves a user by email. A missing user is (nil, nil).
func (r *sqliteUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "UserRepository.GetUserByEmail")
	defer span.End()

	return r.getUser(ctx, `SELECT id, username, email, password_hash FROM users WHERE email = ?`, email)
}

// GetUserByUsername retrieves a user by username. A missing user is (nil, nil).
func (r *sqliteUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "UserRepository.GetUserByUsername")
	defer span.End()

	return r.getUser(ctx, `SELECT id, username, email, password_hash FROM users WHERE username = ?`, username)
}

func (r *sqliteUserRepository) getUser(ctx context.Context, query string, arg string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No user found is not an application error
		}
		return nil, apperr.Storage("failed to get user", fmt.Errorf("query user: %w", err))
	}
	return &user, nil
}
