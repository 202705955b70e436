package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adanyl0v/go-todo-tracker/internal/models"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidToken       = errors.New("invalid token")
	ErrValidation         = errors.New("validation failed")
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskForbidden      = errors.New("task belongs to another user")
	ErrStorage            = errors.New("storage failure")
)

// ValidationError names the input field that failed validation.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

type AuthService interface {
	// Register creates a user with the given username and password
	// and returns a fresh session token for it.
	//
	// It returns ErrValidation if the username or password is empty
	// or the password is too long for the configured hasher, and
	// ErrUserAlreadyExists if the username is taken.
	Register(ctx context.Context, params CredentialsParams) (*AuthResult, error)

	// Login checks the password against the stored hash and returns
	// a fresh session token. Tokens issued earlier stay valid.
	//
	// It returns ErrInvalidCredentials both for an unknown username
	// and for a wrong password.
	Login(ctx context.Context, params CredentialsParams) (*AuthResult, error)

	// Verify returns the user id carried by a session token.
	//
	// It returns ErrMissingToken for an empty token and ErrInvalidToken
	// for anything that does not verify. It never touches storage.
	Verify(token string) (string, error)
}

type TaskService interface {
	// ListTasks returns every task owned by the user in insertion
	// order. No tasks is an empty slice, not an error.
	ListTasks(ctx context.Context, userID string) ([]*models.Task, error)

	// CreateTask stores a new, not yet completed task for the user.
	//
	// It returns ErrValidation for blank text or an unknown priority.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// UpdateTask applies a partial update and returns the stored task.
	//
	// It returns ErrTaskNotFound if there is no such task,
	// ErrTaskForbidden if it belongs to someone else and
	// ErrValidation for an invalid patch.
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	// DeleteTask removes the task. It returns the same ownership
	// errors as UpdateTask.
	DeleteTask(ctx context.Context, params DeleteTaskParams) error
}

type CredentialsParams struct {
	Username string
	Password string
}

type AuthResult struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

type CreateTaskParams struct {
	UserID   string
	Text     string
	DueDate  *time.Time
	Category *string
	Priority *models.Priority
}

type UpdateTaskParams struct {
	UserID string
	TaskID string
	Patch  models.TaskPatch
}

type DeleteTaskParams struct {
	UserID string
	TaskID string
}
