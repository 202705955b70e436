// Package storage declares the persistence contracts used by the services.
//
// Implementations live in the subpackages (postgres, mongodb, redis,
// memory). Every implementation reports a missing record with ErrNotFound
// and a uniqueness violation with ErrDuplicate; any other error is a
// driver failure and is passed through unchanged.
package storage

import (
	"context"
	"errors"

	"github.com/adanyl0v/go-todo-tracker/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserStore interface {
	// UsernameExists reports whether a user with the exact username exists.
	UsernameExists(ctx context.Context, username string) (bool, error)

	// CreateUser persists the user and assigns user.ID.
	//
	// It returns ErrDuplicate if the username is already taken.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername returns ErrNotFound if there is no such user.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type TaskStore interface {
	// ListTasksByUserID returns the user's tasks in insertion order.
	ListTasksByUserID(ctx context.Context, userID string) ([]*models.Task, error)

	// CreateTask persists the task and assigns task.ID.
	CreateTask(ctx context.Context, task *models.Task) error

	// GetTaskByID returns ErrNotFound if there is no such task.
	GetTaskByID(ctx context.Context, taskID string) (*models.Task, error)

	// UpdateTask applies the patch to the task matching both taskID and
	// userID in a single conditional write and returns the stored result.
	//
	// It returns ErrNotFound if no task matches.
	UpdateTask(ctx context.Context, taskID, userID string, patch models.TaskPatch) (*models.Task, error)

	// DeleteTask removes the task matching both taskID and userID.
	//
	// It returns ErrNotFound if no task matches.
	DeleteTask(ctx context.Context, taskID, userID string) error
}

// Pinger is implemented by stores that can report backend liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store bundles everything a backend provides.
type Store interface {
	UserStore
	TaskStore
	Pinger
	Close(ctx context.Context) error
}
