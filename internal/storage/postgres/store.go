package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-tracker/internal/models"
	"github.com/adanyl0v/go-todo-tracker/internal/storage"
)

type Store struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

var _ storage.Store = (*Store)(nil)

func New(logger zerolog.Logger, pgPool *pgxpool.Pool) *Store {
	return &Store{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pgPool.Ping(ctx)
}

func (s *Store) Close(context.Context) error {
	s.pgPool.Close()
	return nil
}

// validID reports whether id can be used as a uuid column value.
// Anything else can never match a row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	const selectUsernameExistsQuery = `
SELECT EXISTS(SELECT 1
              FROM users
              WHERE username = $1)
`
	var exists bool
	err := s.pgPool.QueryRow(
		ctx,
		selectUsernameExistsQuery,
		username,
	).Scan(&exists)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("username", username).
			Msg("failed to check username")
		return false, err
	}
	return exists, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	userUUID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate user uuid: %w", err)
	}

	const insertUserQuery = `
INSERT INTO users (id,
                   username,
                   password,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertUserQuery,
		userUUID.String(),
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.UniqueViolation {
				s.logger.Debug().
					Str("username", user.Username).
					Msg("username already taken")
				return storage.ErrDuplicate
			}
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return err
	}
	user.ID = userUUID.String()

	s.logger.Debug().
		Str("user_id", user.ID).
		Msg("inserted user")
	return nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{Username: username}

	const selectUserByUsernameQuery = `
SELECT id,
       password,
       created_at,
       updated_at
FROM users
WHERE username = $1
`
	err := s.pgPool.QueryRow(
		ctx,
		selectUserByUsernameQuery,
		username,
	).Scan(
		&user.ID,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Str("username", username).
			Msg("failed to select user by username")
		return nil, err
	}
	return user, nil
}

const taskColumns = `id,
       user_id,
       text,
       completed,
       due_date,
       category,
       priority,
       created_at,
       updated_at`

func scanTask(row pgx.Row) (*models.Task, error) {
	var (
		task     models.Task
		priority *string
	)
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Text,
		&task.Completed,
		&task.DueDate,
		&task.Category,
		&priority,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if priority != nil {
		value := models.Priority(*priority)
		task.Priority = &value
	}
	return &task, nil
}

func priorityParam(p *models.Priority) *string {
	if p == nil {
		return nil
	}
	value := string(*p)
	return &value
}

func (s *Store) ListTasksByUserID(ctx context.Context, userID string) ([]*models.Task, error) {
	tasks := make([]*models.Task, 0)
	if !validID(userID) {
		return tasks, nil
	}

	const selectTasksByUserIDQuery = `
SELECT ` + taskColumns + `
FROM tasks
WHERE user_id = $1
ORDER BY seq
`
	rows, err := s.pgPool.Query(
		ctx,
		selectTasksByUserIDQuery,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks by user id")
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", userID).
		Msg("selected tasks by user id")
	return tasks, nil
}

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	taskUUID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate task uuid: %w", err)
	}

	const insertTaskQuery = `
INSERT INTO tasks (id,
                   user_id,
                   text,
                   completed,
                   due_date,
                   category,
                   priority,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertTaskQuery,
		taskUUID.String(),
		task.UserID,
		task.Text,
		task.Completed,
		task.DueDate,
		task.Category,
		priorityParam(task.Priority),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return err
	}
	task.ID = taskUUID.String()

	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("inserted task")
	return nil
}

func (s *Store) GetTaskByID(ctx context.Context, taskID string) (*models.Task, error) {
	if !validID(taskID) {
		return nil, storage.ErrNotFound
	}

	const selectTaskByIDQuery = `
SELECT ` + taskColumns + `
FROM tasks
WHERE id = $1
`
	task, err := scanTask(s.pgPool.QueryRow(ctx, selectTaskByIDQuery, taskID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task by id")
		return nil, err
	}
	return task, nil
}

func (s *Store) UpdateTask(ctx context.Context, taskID, userID string, patch models.TaskPatch) (*models.Task, error) {
	if !validID(taskID) || !validID(userID) {
		return nil, storage.ErrNotFound
	}

	const updateTaskQuery = `
UPDATE tasks
SET text       = COALESCE($3::text, text),
    completed  = COALESCE($4::boolean, completed),
    due_date   = CASE WHEN $5::boolean THEN $6::timestamptz ELSE due_date END,
    category   = CASE WHEN $7::boolean THEN $8::text ELSE category END,
    priority   = CASE WHEN $9::boolean THEN $10::text ELSE priority END,
    updated_at = $11
WHERE id = $1 AND user_id = $2
RETURNING ` + taskColumns + `
`
	task, err := scanTask(s.pgPool.QueryRow(
		ctx,
		updateTaskQuery,
		taskID,
		userID,
		patch.Text,
		patch.Completed,
		patch.DueDateSet,
		patch.DueDate,
		patch.CategorySet,
		patch.Category,
		patch.PrioritySet,
		priorityParam(patch.Priority),
		time.Now().UTC(),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug().
				Str("task_id", taskID).
				Str("user_id", userID).
				Msg("no task matched update")
			return nil, storage.ErrNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task")
		return nil, err
	}

	s.logger.Debug().
		Str("task_id", taskID).
		Msg("updated task")
	return task, nil
}

func (s *Store) DeleteTask(ctx context.Context, taskID, userID string) error {
	if !validID(taskID) || !validID(userID) {
		return storage.ErrNotFound
	}

	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1 AND user_id = $2
`
	tag, err := s.pgPool.Exec(
		ctx,
		deleteTaskQuery,
		taskID,
		userID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	s.logger.Debug().
		Str("task_id", taskID).
		Msg("deleted task")
	return nil
}
