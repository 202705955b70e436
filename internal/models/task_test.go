package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-todo-tracker/internal/models"
)

func TestTaskPatch_ApplyOnlyTouchesProvidedFields(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	category := "home"
	priority := models.PriorityLow
	task := &models.Task{
		ID:       "t1",
		UserID:   "u1",
		Text:     "buy milk",
		DueDate:  &due,
		Category: &category,
		Priority: &priority,
	}

	completed := true
	patch := models.TaskPatch{Completed: &completed}
	patch.Apply(task)

	require.True(t, task.Completed)
	require.Equal(t, "buy milk", task.Text)
	require.Equal(t, due, *task.DueDate)
	require.Equal(t, "home", *task.Category)
	require.Equal(t, models.PriorityLow, *task.Priority)
	require.Equal(t, "u1", task.UserID)
}

func TestTaskPatch_ApplyClearsNullableFields(t *testing.T) {
	due := time.Now()
	category := "work"
	priority := models.PriorityHigh
	task := &models.Task{Text: "x", DueDate: &due, Category: &category, Priority: &priority}

	patch := models.TaskPatch{DueDateSet: true, CategorySet: true, PrioritySet: true}
	require.False(t, patch.IsEmpty())
	patch.Apply(task)

	require.Nil(t, task.DueDate)
	require.Nil(t, task.Category)
	require.Nil(t, task.Priority)
}

func TestTaskPatch_IsEmpty(t *testing.T) {
	require.True(t, (&models.TaskPatch{}).IsEmpty())

	text := "x"
	require.False(t, (&models.TaskPatch{Text: &text}).IsEmpty())
}

func TestTask_CloneDoesNotShareFields(t *testing.T) {
	category := "a"
	task := &models.Task{Text: "x", Category: &category}

	clone := task.Clone()
	*clone.Category = "b"

	require.Equal(t, "a", *task.Category)
}

func TestPriority_Valid(t *testing.T) {
	require.True(t, models.PriorityLow.Valid())
	require.True(t, models.PriorityMedium.Valid())
	require.True(t, models.PriorityHigh.Valid())
	require.False(t, models.Priority("urgent").Valid())
	require.False(t, models.Priority("").Valid())
}
