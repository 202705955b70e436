package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/adanyl0v/go-todo-tracker/internal/models"
	"github.com/adanyl0v/go-todo-tracker/internal/storage/memory"
)

var testSigningKey = []byte("test-signing-key")

type testEnv struct {
	store  *memory.Store
	tokens TokenIssuer
	auth   AuthService
	tasks  TaskService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hasher, err := NewPasswordHasher(HashAlgorithmBcrypt, bcrypt.MinCost)
	require.NoError(t, err)

	store := memory.New()
	tokens := NewTokenIssuer("go-todo-tracker", testSigningKey, time.Hour)
	return &testEnv{
		store:  store,
		tokens: tokens,
		auth:   NewAuthService(zerolog.Nop(), store, hasher, tokens),
		tasks:  NewTaskService(zerolog.Nop(), store),
	}
}

// register creates a user and returns its id and token.
func (e *testEnv) register(t *testing.T, username, password string) (string, string) {
	t.Helper()

	result, err := e.auth.Register(context.Background(), CredentialsParams{
		Username: username,
		Password: password,
	})
	require.NoError(t, err)
	return result.UserID, result.Token
}

type userStoreMock struct {
	mock.Mock
}

func (m *userStoreMock) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *userStoreMock) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *userStoreMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)

	var user *models.User
	if value := args.Get(0); value != nil {
		user = value.(*models.User)
	}
	return user, args.Error(1)
}

type taskStoreMock struct {
	mock.Mock
}

func (m *taskStoreMock) ListTasksByUserID(ctx context.Context, userID string) ([]*models.Task, error) {
	args := m.Called(ctx, userID)

	var tasks []*models.Task
	if value := args.Get(0); value != nil {
		tasks = value.([]*models.Task)
	}
	return tasks, args.Error(1)
}

func (m *taskStoreMock) CreateTask(ctx context.Context, task *models.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *taskStoreMock) GetTaskByID(ctx context.Context, taskID string) (*models.Task, error) {
	args := m.Called(ctx, taskID)

	var task *models.Task
	if value := args.Get(0); value != nil {
		task = value.(*models.Task)
	}
	return task, args.Error(1)
}

func (m *taskStoreMock) UpdateTask(ctx context.Context, taskID, userID string, patch models.TaskPatch) (*models.Task, error) {
	args := m.Called(ctx, taskID, userID, patch)

	var task *models.Task
	if value := args.Get(0); value != nil {
		task = value.(*models.Task)
	}
	return task, args.Error(1)
}

func (m *taskStoreMock) DeleteTask(ctx context.Context, taskID, userID string) error {
	args := m.Called(ctx, taskID, userID)
	return args.Error(0)
}
