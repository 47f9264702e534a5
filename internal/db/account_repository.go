package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/chepyr/task-collab-api/internal/apperr"
	"github.com/chepyr/task-collab-api/internal/models"
)

// defines methods for account db operations
type AccountRepositoryInterface interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
}

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `INSERT INTO accounts (id, username, email, password_hash, created_at, updated_at)
	 VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(
		ctx, query, account.ID, account.Username, account.Email,
		account.PasswordHash, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return r.getBy(ctx, "id", id.String())
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.getBy(ctx, "username", username)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getBy(ctx, "email", email)
}

func (r *AccountRepository) getBy(ctx context.Context, column, value string) (*models.Account, error) {
	query := `SELECT id, username, email, password_hash, created_at, updated_at
	 FROM accounts WHERE ` + column + ` = $1`
	account := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&account.ID, &account.Username, &account.Email,
		&account.PasswordHash, &account.CreatedAt, &account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (r *AccountRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username", username)
}

func (r *AccountRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email", email)
}

func (r *AccountRepository) exists(ctx context.Context, column, value string) (bool, error) {
	query := `SELECT COUNT(*) FROM accounts WHERE ` + column + ` = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, value).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// mapUniqueViolation converts a driver-level unique-constraint error into the
// same field-tagged validation error the registrar pre-check produces, so a
// race between two concurrent registrations surfaces exactly one success and
// one conflict instead of a raw database error.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return duplicateFieldError(pqErr.Constraint + " " + pqErr.Detail)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return duplicateFieldError(sqliteErr.Error())
	}

	return err
}

func duplicateFieldError(detail string) error {
	switch {
	case strings.Contains(detail, "username"):
		return apperr.Duplicate("username")
	case strings.Contains(detail, "email"):
		return apperr.Duplicate("email")
	default:
		return apperr.ValidationErrors{{Field: "general", Message: "duplicate value"}}
	}
}
