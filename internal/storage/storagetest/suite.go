// Package storagetest holds the behavioural contract every storage
// backend must satisfy. Backend packages run it from their own tests.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/adanyl0v/go-todo-tracker/internal/models"
	"github.com/adanyl0v/go-todo-tracker/internal/storage"
)

type Suite struct {
	suite.Suite

	// NewStore returns an empty store. It is called before every test.
	NewStore func() storage.Store

	// MissingID is a well-formed id that no record uses.
	MissingID string

	store storage.Store
	ctx   context.Context
}

func (s *Suite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.NewStore()
}

func (s *Suite) TearDownTest() {
	if s.store != nil {
		s.Require().NoError(s.store.Close(s.ctx))
	}
}

func (s *Suite) createUser(username string) *models.User {
	now := time.Now().UTC()
	user := &models.User{
		Username:     username,
		PasswordHash: "hash-of-" + username,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.Require().NoError(s.store.CreateUser(s.ctx, user))
	return user
}

func (s *Suite) createTask(userID, text string) *models.Task {
	now := time.Now().UTC()
	task := &models.Task{
		UserID:    userID,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.store.CreateTask(s.ctx, task))
	return task
}

func (s *Suite) TestPing() {
	s.Require().NoError(s.store.Ping(s.ctx))
}

func (s *Suite) TestCreateUser_AssignsID() {
	user := s.createUser("alice")
	s.Require().NotEmpty(user.ID)

	found, err := s.store.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().Equal(user.ID, found.ID)
	s.Require().Equal("hash-of-alice", found.PasswordHash)
}

func (s *Suite) TestCreateUser_DuplicateKeepsOriginal() {
	original := s.createUser("alice")

	err := s.store.CreateUser(s.ctx, &models.User{Username: "alice", PasswordHash: "other"})
	s.Require().ErrorIs(err, storage.ErrDuplicate)

	found, err := s.store.GetUserByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().Equal(original.ID, found.ID)
	s.Require().Equal("hash-of-alice", found.PasswordHash)
}

func (s *Suite) TestUsernameExists_IsCaseSensitive() {
	s.createUser("alice")

	exists, err := s.store.UsernameExists(s.ctx, "alice")
	s.Require().NoError(err)
	s.Require().True(exists)

	exists, err = s.store.UsernameExists(s.ctx, "Alice")
	s.Require().NoError(err)
	s.Require().False(exists)
}

func (s *Suite) TestGetUserByUsername_NotFound() {
	_, err := s.store.GetUserByUsername(s.ctx, "nobody")
	s.Require().ErrorIs(err, storage.ErrNotFound)
}

func (s *Suite) TestListTasks_ScopedToOwnerInInsertionOrder() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")

	first := s.createTask(alice.ID, "first")
	s.createTask(bob.ID, "bob's")
	second := s.createTask(alice.ID, "second")
	third := s.createTask(alice.ID, "third")

	tasks, err := s.store.ListTasksByUserID(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(tasks, 3)
	s.Require().Equal(first.ID, tasks[0].ID)
	s.Require().Equal(second.ID, tasks[1].ID)
	s.Require().Equal(third.ID, tasks[2].ID)
	for _, task := range tasks {
		s.Require().Equal(alice.ID, task.UserID)
	}
}

func (s *Suite) TestListTasks_EmptyIsNotError() {
	user := s.createUser("alice")

	tasks, err := s.store.ListTasksByUserID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Require().Empty(tasks)
}

func (s *Suite) TestCreateTask_RoundTripsOptionalFields() {
	user := s.createUser("alice")
	due := time.Date(2026, 5, 17, 0, 0, 0, 0, time.UTC)
	category := "groceries"
	priority := models.PriorityHigh

	task := &models.Task{
		UserID:    user.ID,
		Text:      "buy milk",
		DueDate:   &due,
		Category:  &category,
		Priority:  &priority,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.store.CreateTask(s.ctx, task))
	s.Require().NotEmpty(task.ID)

	found, err := s.store.GetTaskByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Require().Equal("buy milk", found.Text)
	s.Require().False(found.Completed)
	s.Require().Equal(user.ID, found.UserID)
	s.Require().NotNil(found.DueDate)
	s.Require().True(due.Equal(*found.DueDate))
	s.Require().Equal("groceries", *found.Category)
	s.Require().Equal(models.PriorityHigh, *found.Priority)
}

func (s *Suite) TestGetTaskByID_NotFound() {
	_, err := s.store.GetTaskByID(s.ctx, s.MissingID)
	s.Require().ErrorIs(err, storage.ErrNotFound)

	_, err = s.store.GetTaskByID(s.ctx, "not-an-id")
	s.Require().ErrorIs(err, storage.ErrNotFound)
}

func (s *Suite) TestMalformedTaskIDsAreNotFound() {
	user := s.createUser("alice")
	s.createTask(user.ID, "buy milk")

	text := "x"
	for _, id := range []string{"seq", "not-an-id", "seq:tasks", "", "../users"} {
		_, err := s.store.GetTaskByID(s.ctx, id)
		s.Require().ErrorIs(err, storage.ErrNotFound, "get %q", id)

		_, err = s.store.UpdateTask(s.ctx, id, user.ID, models.TaskPatch{Text: &text})
		s.Require().ErrorIs(err, storage.ErrNotFound, "update %q", id)

		err = s.store.DeleteTask(s.ctx, id, user.ID)
		s.Require().ErrorIs(err, storage.ErrNotFound, "delete %q", id)
	}

	tasks, err := s.store.ListTasksByUserID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Require().Len(tasks, 1)
}

func (s *Suite) TestUpdateTask_AppliesPatch() {
	user := s.createUser("alice")
	task := s.createTask(user.ID, "buy milk")

	completed := true
	priority := models.PriorityMedium
	updated, err := s.store.UpdateTask(s.ctx, task.ID, user.ID, models.TaskPatch{
		Completed:   &completed,
		Priority:    &priority,
		PrioritySet: true,
	})
	s.Require().NoError(err)
	s.Require().True(updated.Completed)
	s.Require().Equal("buy milk", updated.Text)
	s.Require().Equal(models.PriorityMedium, *updated.Priority)

	found, err := s.store.GetTaskByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Require().True(found.Completed)
	s.Require().Equal(models.PriorityMedium, *found.Priority)
}

func (s *Suite) TestUpdateTask_ClearsField() {
	user := s.createUser("alice")
	category := "work"
	task := &models.Task{UserID: user.ID, Text: "x", Category: &category, CreatedAt: time.Now().UTC()}
	s.Require().NoError(s.store.CreateTask(s.ctx, task))

	updated, err := s.store.UpdateTask(s.ctx, task.ID, user.ID, models.TaskPatch{CategorySet: true})
	s.Require().NoError(err)
	s.Require().Nil(updated.Category)
}

func (s *Suite) TestUpdateTask_WrongOwnerDoesNotMatch() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	task := s.createTask(alice.ID, "buy milk")

	text := "hijacked"
	_, err := s.store.UpdateTask(s.ctx, task.ID, bob.ID, models.TaskPatch{Text: &text})
	s.Require().ErrorIs(err, storage.ErrNotFound)

	found, err := s.store.GetTaskByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Require().Equal("buy milk", found.Text)
}

func (s *Suite) TestUpdateTask_Missing() {
	user := s.createUser("alice")
	text := "x"
	_, err := s.store.UpdateTask(s.ctx, s.MissingID, user.ID, models.TaskPatch{Text: &text})
	s.Require().ErrorIs(err, storage.ErrNotFound)
}

func (s *Suite) TestDeleteTask() {
	alice := s.createUser("alice")
	bob := s.createUser("bob")
	task := s.createTask(alice.ID, "buy milk")

	s.Require().ErrorIs(s.store.DeleteTask(s.ctx, task.ID, bob.ID), storage.ErrNotFound)

	s.Require().NoError(s.store.DeleteTask(s.ctx, task.ID, alice.ID))
	s.Require().ErrorIs(s.store.DeleteTask(s.ctx, task.ID, alice.ID), storage.ErrNotFound)

	_, err := s.store.GetTaskByID(s.ctx, task.ID)
	s.Require().ErrorIs(err, storage.ErrNotFound)

	tasks, err := s.store.ListTasksByUserID(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Empty(tasks)
}
