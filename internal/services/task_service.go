package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-tracker/internal/models"
	"github.com/adanyl0v/go-todo-tracker/internal/storage"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	tasks  storage.TaskStore
}

func NewTaskService(
	logger zerolog.Logger,
	tasks storage.TaskStore,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		tasks:  tasks,
	}
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, userID string) ([]*models.Task, error) {
	tasks, err := s.tasks.ListTasksByUserID(ctx, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to list tasks")
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", userID).
		Msg("listed tasks")
	return tasks, nil
}

func validatePriority(p *models.Priority) error {
	if p != nil && !p.Valid() {
		return newValidationError("priority", "must be one of low, medium, high")
	}
	return nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	text := strings.TrimSpace(params.Text)
	if text == "" {
		return nil, newValidationError("text", "is required")
	}
	err := validatePriority(params.Priority)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := &models.Task{
		UserID:    params.UserID,
		Text:      text,
		Completed: false,
		DueDate:   params.DueDate,
		Category:  params.Category,
		Priority:  params.Priority,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.tasks.CreateTask(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", params.UserID).
			Msg("failed to create task")
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("created task")
	return task, nil
}

// authorize loads the task and checks that userID owns it.
func (s *taskServiceImpl) authorize(ctx context.Context, taskID, userID string) (*models.Task, error) {
	task, err := s.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Info().
				Str("task_id", taskID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to get task")
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if task.UserID != userID {
		s.logger.Warn().
			Str("task_id", taskID).
			Str("user_id", userID).
			Msg("task belongs to another user")
		return nil, ErrTaskForbidden
	}
	return task, nil
}

func validatePatch(patch *models.TaskPatch) error {
	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return newValidationError("text", "must not be empty")
		}
		patch.Text = &text
	}
	if patch.PrioritySet {
		return validatePriority(patch.Priority)
	}
	return nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	task, err := s.authorize(ctx, params.TaskID, params.UserID)
	if err != nil {
		return nil, err
	}

	patch := params.Patch
	err = validatePatch(&patch)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return task, nil
	}

	updated, err := s.tasks.UpdateTask(ctx, params.TaskID, params.UserID, patch)
	if err != nil {
		// Deleted after authorize.
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Info().
				Str("task_id", params.TaskID).
				Msg("task disappeared before update")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", params.TaskID).
			Msg("failed to update task")
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.logger.Info().
		Str("task_id", updated.ID).
		Str("user_id", updated.UserID).
		Msg("updated task")
	return updated, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, params DeleteTaskParams) error {
	_, err := s.authorize(ctx, params.TaskID, params.UserID)
	if err != nil {
		return err
	}

	err = s.tasks.DeleteTask(ctx, params.TaskID, params.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Info().
				Str("task_id", params.TaskID).
				Msg("task disappeared before delete")
			return ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", params.TaskID).
			Msg("failed to delete task")
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	s.logger.Info().
		Str("task_id", params.TaskID).
		Str("user_id", params.UserID).
		Msg("deleted task")
	return nil
}
