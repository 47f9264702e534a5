package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/chepyr/task-collab-api/internal/apperr"
	"github.com/chepyr/task-collab-api/internal/models"
)

// defines methods for task db operations; every read and delete is scoped to
// the owning account so a foreign task is indistinguishable from a missing one
type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *models.Task) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Task, error)
	GetByIDForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) error
}

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, owner_id, title, description, priority, due_date, status,
	 created_at, updated_at, completed_at`

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(
		ctx, query, task.ID, task.OwnerID, task.Title, task.Description,
		task.Priority, task.DueDate, task.Status,
		task.CreatedAt, task.UpdatedAt, task.CompletedAt)
	return err
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) GetByIDForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND owner_id = $2`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `UPDATE tasks SET title = $1, description = $2, priority = $3, due_date = $4,
	 status = $5, updated_at = $6, completed_at = $7 WHERE id = $8 AND owner_id = $9`

	res, err := r.db.ExecContext(
		ctx, query, task.Title, task.Description, task.Priority, task.DueDate,
		task.Status, task.UpdatedAt, task.CompletedAt, task.ID, task.OwnerID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *TaskRepository) DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	err := row.Scan(
		&task.ID, &task.OwnerID, &task.Title, &task.Description,
		&task.Priority, &task.DueDate, &task.Status,
		&task.CreatedAt, &task.UpdatedAt, &task.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
