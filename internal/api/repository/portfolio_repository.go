package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ctchen222/portfolio-tracker/internal/api/models"
	"ctchen222/portfolio-tracker/internal/apperr"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// UpdateFunc computes the next state of a position from the current one.
// existing is nil when the user holds none of the symbol; returning a nil
// position deletes the record.
type UpdateFunc func(existing *models.Position) (*models.Position, error)

// PortfolioRepository defines the interface for position data operations.
type PortfolioRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]models.Position, error)
	Get(ctx context.Context, userID int64, symbol string) (*models.Position, error)
	Upsert(ctx context.Context, pos models.Position) error
	Delete(ctx context.Context, userID int64, symbol string) error
	Apply(ctx context.Context, userID int64, symbol string, fn UpdateFunc) (*models.Position, error)
}

type sqlitePortfolioRepository struct {
	db *sqlx.DB
	// ext is db, or the open transaction inside Apply.
	ext sqlx.ExtContext
}

// NewPortfolioRepository creates a new SQLite-based PortfolioRepository.
func NewPortfolioRepository(db *sqlx.DB) PortfolioRepository {
	return &sqlitePortfolioRepository{db: db, ext: db}
}

const (
	selectPositions = `SELECT user_id, symbol, name, shares, avg_price FROM portfolio`
	upsertPosition  = `
		INSERT INTO portfolio (user_id, symbol, name, shares, avg_price)
		VALUES (:user_id, :symbol, :name, :shares, :avg_price)
		ON CONFLICT (user_id, symbol) DO UPDATE SET
			name = excluded.name,
			shares = excluded.shares,
			avg_price = excluded.avg_price`
	deletePosition = `DELETE FROM portfolio WHERE user_id = ? AND symbol = ?`
)

// ListByUser returns every position of userID ordered by symbol.
func (r *sqlitePortfolioRepository) ListByUser(ctx context.Context, userID int64) ([]models.Position, error) {
	ctx, span := tracer.Start(ctx, "PortfolioRepository.ListByUser", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	positions := []models.Position{}
	err := sqlx.SelectContext(ctx, r.ext, &positions, selectPositions+` WHERE user_id = ? ORDER BY symbol`, userID)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.Storage("failed to list positions", err)
	}
	return positions, nil
}

// Get returns the position of userID in symbol, or nil when none is held.
func (r *sqlitePortfolioRepository) Get(ctx context.Context, userID int64, symbol string) (*models.Position, error) {
	ctx, span := tracer.Start(ctx, "PortfolioRepository.Get")
	defer span.End()

	var pos models.Position
	err := sqlx.GetContext(ctx, r.ext, &pos, selectPositions+` WHERE user_id = ? AND symbol = ?`, userID, symbol)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, apperr.Storage("failed to get position", fmt.Errorf("query position %s: %w", symbol, err))
	}
	return &pos, nil
}

// Upsert writes pos, replacing any position with the same user and symbol.
func (r *sqlitePortfolioRepository) Upsert(ctx context.Context, pos models.Position) error {
	ctx, span := tracer.Start(ctx, "PortfolioRepository.Upsert")
	defer span.End()

	if _, err := sqlx.NamedExecContext(ctx, r.ext, upsertPosition, pos); err != nil {
		span.RecordError(err)
		return apperr.Storage("failed to save position", err)
	}
	return nil
}

// Delete removes the position of userID in symbol, if any.
func (r *sqlitePortfolioRepository) Delete(ctx context.Context, userID int64, symbol string) error {
	ctx, span := tracer.Start(ctx, "PortfolioRepository.Delete")
	defer span.End()

	if _, err := r.ext.ExecContext(ctx, deletePosition, userID, symbol); err != nil {
		span.RecordError(err)
		return apperr.Storage("failed to delete position", err)
	}
	return nil
}

// Apply runs a read-modify-write of one position inside a transaction,
// reading with Get and writing with Upsert or Delete on that transaction.
// Errors returned by fn abort the transaction and are passed through.
func (r *sqlitePortfolioRepository) Apply(ctx context.Context, userID int64, symbol string, fn UpdateFunc) (*models.Position, error) {
	ctx, span := tracer.Start(ctx, "PortfolioRepository.Apply", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.String("position.symbol", symbol),
	))
	defer span.End()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.Storage("failed to begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	txRepo := &sqlitePortfolioRepository{db: r.db, ext: tx}

	existing, err := txRepo.Get(ctx, userID, symbol)
	if err != nil {
		return nil, err
	}

	next, err := fn(existing)
	if err != nil {
		return nil, err
	}

	switch {
	case next != nil:
		next.UserID = userID
		next.Symbol = symbol
		if err := txRepo.Upsert(ctx, *next); err != nil {
			return nil, err
		}
	case existing != nil:
		if err := txRepo.Delete(ctx, userID, symbol); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		return nil, apperr.Storage("failed to commit position update", err)
	}
	return next, nil
}
