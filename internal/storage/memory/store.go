// Package memory is an in-process storage backend. It keeps insertion
// order and is safe for concurrent use.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adanyl0v/go-todo-tracker/internal/models"
	"github.com/adanyl0v/go-todo-tracker/internal/storage"
)

type Store struct {
	mu sync.RWMutex

	usersByName map[string]*models.User
	tasks       map[string]*models.Task
	// taskOrder holds task ids in insertion order.
	taskOrder []string
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		usersByName: make(map[string]*models.User),
		tasks:       make(map[string]*models.Task),
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close(context.Context) error { return nil }

func (s *Store) UsernameExists(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.usersByName[username]
	return ok, nil
}

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usersByName[user.Username]; ok {
		return storage.ErrDuplicate
	}
	user.ID = id.String()
	stored := *user
	s.usersByName[user.Username] = &stored
	return nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.usersByName[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	found := *user
	return &found, nil
}

func (s *Store) ListTasksByUserID(_ context.Context, userID string) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*models.Task, 0)
	for _, id := range s.taskOrder {
		task := s.tasks[id]
		if task.UserID == userID {
			tasks = append(tasks, task.Clone())
		}
	}
	return tasks, nil
}

func (s *Store) CreateTask(_ context.Context, task *models.Task) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = id.String()
	s.tasks[task.ID] = task.Clone()
	s.taskOrder = append(s.taskOrder, task.ID)
	return nil
}

func (s *Store) GetTaskByID(_ context.Context, taskID string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return task.Clone(), nil
}

func (s *Store) UpdateTask(_ context.Context, taskID, userID string, patch models.TaskPatch) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return nil, storage.ErrNotFound
	}
	patch.Apply(task)
	task.UpdatedAt = time.Now().UTC()
	return task.Clone(), nil
}

func (s *Store) DeleteTask(_ context.Context, taskID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return storage.ErrNotFound
	}
	delete(s.tasks, taskID)
	for i, id := range s.taskOrder {
		if id == taskID {
			s.taskOrder = append(s.taskOrder[:i], s.taskOrder[i+1:]...)
			break
		}
	}
	return nil
}
