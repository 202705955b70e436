package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-todo-tracker/internal/models"
	"github.com/adanyl0v/go-todo-tracker/internal/services"
)

const dateLayout = "2006-01-02"

// decodeObject reads a JSON object body and rejects keys outside allowed.
func decodeObject(c *gin.Context, allowed ...string) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(c.Request.Body)
	err := dec.Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidRequestBody, err)
	}
	var extra json.RawMessage
	if err = dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after object", errInvalidRequestBody)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: body must be an object", errInvalidRequestBody)
	}

	for key := range raw {
		if !slices.Contains(allowed, key) {
			return nil, &services.ValidationError{Field: key, Reason: "is not allowed"}
		}
	}
	return raw, nil
}

func hasJSONField(raw map[string]json.RawMessage, field string) bool {
	_, ok := raw[field]
	return ok
}

func isJSONNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func invalidField(field, reason string) error {
	return &services.ValidationError{Field: field, Reason: reason}
}

// requiredString decodes a field that must be present and a string.
func requiredString(raw map[string]json.RawMessage, field string) (string, error) {
	value, ok := raw[field]
	if !ok || isJSONNull(value) {
		return "", invalidField(field, "is required")
	}
	var s string
	err := json.Unmarshal(value, &s)
	if err != nil {
		return "", invalidField(field, "must be a string")
	}
	return s, nil
}

// optionalString decodes a nullable string field. Absent, null and ""
// all come back as nil; set reports whether the key was present.
func optionalString(raw map[string]json.RawMessage, field string) (value *string, set bool, err error) {
	rawValue, ok := raw[field]
	if !ok {
		return nil, false, nil
	}
	if isJSONNull(rawValue) {
		return nil, true, nil
	}

	var s string
	err = json.Unmarshal(rawValue, &s)
	if err != nil {
		return nil, true, invalidField(field, "must be a string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true, nil
	}
	return &s, true, nil
}

func optionalDate(raw map[string]json.RawMessage, field string) (*time.Time, bool, error) {
	s, set, err := optionalString(raw, field)
	if err != nil || s == nil {
		return nil, set, err
	}

	t, err := parseDate(*s)
	if err != nil {
		return nil, true, invalidField(field, "must be a date")
	}
	return &t, true, nil
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func optionalPriority(raw map[string]json.RawMessage) (*models.Priority, bool, error) {
	s, set, err := optionalString(raw, "priority")
	if err != nil || s == nil {
		return nil, set, err
	}
	p := models.Priority(*s)
	return &p, true, nil
}

type credentialsRequest struct {
	Username string
	Password string
}

func buildCredentialsRequest(raw map[string]json.RawMessage) (credentialsRequest, error) {
	username, err := requiredString(raw, "username")
	if err != nil {
		return credentialsRequest{}, err
	}
	password, err := requiredString(raw, "password")
	if err != nil {
		return credentialsRequest{}, err
	}
	return credentialsRequest{Username: username, Password: password}, nil
}

var (
	createTaskFields = []string{"text", "dueDate", "category", "priority"}
	updateTaskFields = []string{"text", "completed", "dueDate", "category", "priority"}
)

func buildCreateTaskParams(userID string, raw map[string]json.RawMessage) (services.CreateTaskParams, error) {
	text, err := requiredString(raw, "text")
	if err != nil {
		return services.CreateTaskParams{}, err
	}
	dueDate, _, err := optionalDate(raw, "dueDate")
	if err != nil {
		return services.CreateTaskParams{}, err
	}
	category, _, err := optionalString(raw, "category")
	if err != nil {
		return services.CreateTaskParams{}, err
	}
	priority, _, err := optionalPriority(raw)
	if err != nil {
		return services.CreateTaskParams{}, err
	}

	return services.CreateTaskParams{
		UserID:   userID,
		Text:     text,
		DueDate:  dueDate,
		Category: category,
		Priority: priority,
	}, nil
}

func buildTaskPatch(raw map[string]json.RawMessage) (models.TaskPatch, error) {
	var patch models.TaskPatch

	if hasJSONField(raw, "text") {
		text, err := requiredString(raw, "text")
		if err != nil {
			return models.TaskPatch{}, err
		}
		patch.Text = &text
	}

	if value, ok := raw["completed"]; ok {
		var completed bool
		if isJSONNull(value) || json.Unmarshal(value, &completed) != nil {
			return models.TaskPatch{}, invalidField("completed", "must be a boolean")
		}
		patch.Completed = &completed
	}

	var err error
	patch.DueDate, patch.DueDateSet, err = optionalDate(raw, "dueDate")
	if err != nil {
		return models.TaskPatch{}, err
	}
	patch.Category, patch.CategorySet, err = optionalString(raw, "category")
	if err != nil {
		return models.TaskPatch{}, err
	}
	patch.Priority, patch.PrioritySet, err = optionalPriority(raw)
	if err != nil {
		return models.TaskPatch{}, err
	}
	return patch, nil
}
