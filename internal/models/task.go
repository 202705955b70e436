package models

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

type Task struct {
	ID        string
	UserID    string
	Text      string
	Completed bool
	DueDate   *time.Time
	Category  *string
	Priority  *Priority
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskPatch is a partial task update. A nil pointer leaves the field
// untouched; for nullable fields the *Set flag with a nil value clears it.
type TaskPatch struct {
	Text        *string
	Completed   *bool
	DueDate     *time.Time
	DueDateSet  bool
	Category    *string
	CategorySet bool
	Priority    *Priority
	PrioritySet bool
}

func (p *TaskPatch) IsEmpty() bool {
	return p.Text == nil &&
		p.Completed == nil &&
		!p.DueDateSet &&
		!p.CategorySet &&
		!p.PrioritySet
}

// Apply merges the patch into task. It never touches ID or UserID.
func (p *TaskPatch) Apply(task *Task) {
	if p.Text != nil {
		task.Text = *p.Text
	}
	if p.Completed != nil {
		task.Completed = *p.Completed
	}
	if p.DueDateSet {
		task.DueDate = copyTime(p.DueDate)
	}
	if p.CategorySet {
		task.Category = copyString(p.Category)
	}
	if p.PrioritySet {
		if p.Priority == nil {
			task.Priority = nil
		} else {
			value := *p.Priority
			task.Priority = &value
		}
	}
}

// Clone returns a deep copy so stores can hand out records without
// sharing pointers with their internal state.
func (t *Task) Clone() *Task {
	clone := *t
	clone.DueDate = copyTime(t.DueDate)
	clone.Category = copyString(t.Category)
	if t.Priority != nil {
		value := *t.Priority
		clone.Priority = &value
	}
	return &clone
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	value := *t
	return &value
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	value := *s
	return &value
}
