// Package redis stores users and tasks as JSON documents in Redis.
//
// Layout:
//
//	todo:usernames:<username>  -> user id (SETNX, enforces uniqueness)
//	todo:users:<id>            -> user document
//	todo:tasks:<id>            -> task document
//	todo:users:<id>:tasks      -> ZSET of task ids scored by todo:seq:tasks
//	todo:seq:tasks             -> INCR counter for insertion order
//
// Conditional writes use WATCH/MULTI on the task key.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/adanyl0v/go-todo-tracker/internal/models"
	"github.com/adanyl0v/go-todo-tracker/internal/storage"
)

const (
	keyPrefix = "todo:"
	taskSeq   = keyPrefix + "seq:tasks"

	// maxWatchAttempts bounds the optimistic transaction loop when a
	// watched key changes underneath us.
	maxWatchAttempts = 8
)

type Store struct {
	client goredis.UniversalClient
}

var _ storage.Store = (*Store)(nil)

func New(client goredis.UniversalClient) *Store {
	return &Store{client: client}
}

func usernameKey(username string) string { return keyPrefix + "usernames:" + username }
func userKey(id string) string           { return keyPrefix + "users:" + id }
func userTasksKey(id string) string      { return keyPrefix + "users:" + id + ":tasks" }
func taskKey(id string) string           { return keyPrefix + "tasks:" + id }

type userDocument struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type taskDocument struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Category  *string    `json:"category,omitempty"`
	Priority  *string    `json:"priority,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func newTaskDocument(task *models.Task) taskDocument {
	doc := taskDocument{
		ID:        task.ID,
		UserID:    task.UserID,
		Text:      task.Text,
		Completed: task.Completed,
		DueDate:   task.DueDate,
		Category:  task.Category,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
	if task.Priority != nil {
		value := string(*task.Priority)
		doc.Priority = &value
	}
	return doc
}

func (d taskDocument) toModel() *models.Task {
	task := &models.Task{
		ID:        d.ID,
		UserID:    d.UserID,
		Text:      d.Text,
		Completed: d.Completed,
		DueDate:   d.DueDate,
		Category:  d.Category,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.Priority != nil {
		value := models.Priority(*d.Priority)
		task.Priority = &value
	}
	return task
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close(context.Context) error {
	return s.client.Close()
}

func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	n, err := s.client.Exists(ctx, usernameKey(username)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return n > 0, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate user id: %w", err)
	}

	claimed, err := s.client.SetNX(ctx, usernameKey(user.Username), id.String(), 0).Result()
	if err != nil {
		return fmt.Errorf("failed to claim username: %w", err)
	}
	if !claimed {
		return storage.ErrDuplicate
	}

	data, err := json.Marshal(userDocument{
		ID:           id.String(),
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})
	if err != nil {
		_ = s.client.Del(ctx, usernameKey(user.Username)).Err()
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	err = s.client.Set(ctx, userKey(id.String()), data, 0).Err()
	if err != nil {
		// Release the username so a later registration can succeed.
		_ = s.client.Del(ctx, usernameKey(user.Username)).Err()
		return fmt.Errorf("failed to store user: %w", err)
	}

	user.ID = id.String()
	return nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	id, err := s.client.Get(ctx, usernameKey(username)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get username: %w", err)
	}

	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var doc userDocument
	err = json.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return &models.User{
		ID:           doc.ID,
		Username:     doc.Username,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}, nil
}

func (s *Store) ListTasksByUserID(ctx context.Context, userID string) ([]*models.Task, error) {
	ids, err := s.client.ZRange(ctx, userTasksKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list task ids: %w", err)
	}

	tasks := make([]*models.Task, 0, len(ids))
	if len(ids) == 0 {
		return tasks, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = taskKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}

	for _, value := range values {
		// Deleted between ZRANGE and MGET.
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var doc taskDocument
		err = json.Unmarshal([]byte(raw), &doc)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal task: %w", err)
		}
		tasks = append(tasks, doc.toModel())
	}
	return tasks, nil
}

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate task id: %w", err)
	}

	seq, err := s.client.Incr(ctx, taskSeq).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate task sequence: %w", err)
	}

	stored := task.Clone()
	stored.ID = id.String()
	data, err := json.Marshal(newTaskDocument(stored))
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, taskKey(stored.ID), data, 0)
		pipe.ZAdd(ctx, userTasksKey(stored.UserID), goredis.Z{
			Score:  float64(seq),
			Member: stored.ID,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store task: %w", err)
	}

	task.ID = stored.ID
	return nil
}

type getter interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
}

// validID reports whether id has the shape of a generated id. Other
// strings could address keys that are not task documents.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func getTask(ctx context.Context, g getter, taskID string) (*models.Task, error) {
	if !validID(taskID) {
		return nil, storage.ErrNotFound
	}

	data, err := g.Get(ctx, taskKey(taskID)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	var doc taskDocument
	err = json.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return doc.toModel(), nil
}

func (s *Store) GetTaskByID(ctx context.Context, taskID string) (*models.Task, error) {
	return getTask(ctx, s.client, taskID)
}

func (s *Store) UpdateTask(ctx context.Context, taskID, userID string, patch models.TaskPatch) (*models.Task, error) {
	if !validID(taskID) {
		return nil, storage.ErrNotFound
	}

	var updated *models.Task
	err := s.watchTask(ctx, taskID, func(tx *goredis.Tx) error {
		task, err := getTask(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if task.UserID != userID {
			return storage.ErrNotFound
		}

		patch.Apply(task)
		task.UpdatedAt = time.Now().UTC()

		data, err := json.Marshal(newTaskDocument(task))
		if err != nil {
			return fmt.Errorf("failed to marshal task: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, taskKey(taskID), data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) DeleteTask(ctx context.Context, taskID, userID string) error {
	if !validID(taskID) {
		return storage.ErrNotFound
	}

	return s.watchTask(ctx, taskID, func(tx *goredis.Tx) error {
		task, err := getTask(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if task.UserID != userID {
			return storage.ErrNotFound
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Del(ctx, taskKey(taskID))
			pipe.ZRem(ctx, userTasksKey(userID), taskID)
			return nil
		})
		return err
	})
}

func (s *Store) watchTask(ctx context.Context, taskID string, fn func(tx *goredis.Tx) error) error {
	for range maxWatchAttempts {
		err := s.client.Watch(ctx, fn, taskKey(taskID))
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("task %s kept changing during update: %w", taskID, goredis.TxFailedErr)
}
