package v1_test

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	v1 "github.com/adanyl0v/go-todo-tracker/internal/delivery/http/v1"
	"github.com/adanyl0v/go-todo-tracker/internal/models"
	"github.com/adanyl0v/go-todo-tracker/internal/services"
)

func TestTasks_Lifecycle(t *testing.T) {
	router := newTestRouter(t)
	token := register(t, router, "alice", "pw1")

	created := createTask(t, router, token, `{"text":"buy milk","priority":"low"}`)
	require.NotEmpty(t, created.ID)
	require.NotEmpty(t, created.User)
	require.Equal(t, "buy milk", created.Text)
	require.False(t, created.Completed)
	require.Equal(t, "low", *created.Priority)
	require.Nil(t, created.DueDate)
	require.Nil(t, created.Category)

	w := do(router, request{method: http.MethodGet, path: "/tasks", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[[]taskBody](t, w)
	require.Len(t, listed, 1)
	require.Equal(t, created, listed[0])

	w = do(router, request{
		method: http.MethodPut,
		path:   "/tasks/" + created.ID,
		body:   `{"completed":true}`,
		token:  token,
	})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[taskBody](t, w)
	require.Equal(t, created.ID, updated.ID)
	require.True(t, updated.Completed)
	require.Equal(t, "buy milk", updated.Text)
	require.Equal(t, "low", *updated.Priority)

	w = do(router, request{method: http.MethodDelete, path: "/tasks/" + created.ID, token: token})
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"msg":"Task removed"}`, w.Body.String())

	w = do(router, request{method: http.MethodDelete, path: "/tasks/" + created.ID, token: token})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Task not found", decode[msgBody](t, w).Msg)

	w = do(router, request{method: http.MethodGet, path: "/tasks", token: token})
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())
}

func TestTasks_OptionalFields(t *testing.T) {
	router := newTestRouter(t)
	token := register(t, router, "alice", "pw1")

	created := createTask(t, router, token,
		`{"text":"file taxes","dueDate":"2026-04-15","category":"admin","priority":"high"}`)
	require.Equal(t, "2026-04-15T00:00:00Z", *created.DueDate)
	require.Equal(t, "admin", *created.Category)

	w := do(router, request{
		method: http.MethodPut,
		path:   "/tasks/" + created.ID,
		body:   `{"dueDate":null,"category":"","text":"file taxes early"}`,
		token:  token,
	})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[taskBody](t, w)
	require.Nil(t, updated.DueDate)
	require.Nil(t, updated.Category)
	require.Equal(t, "high", *updated.Priority)
	require.Equal(t, "file taxes early", updated.Text)

	w = do(router, request{
		method: http.MethodPut,
		path:   "/tasks/" + created.ID,
		body:   `{"dueDate":"2026-04-10T09:30:00+02:00"}`,
		token:  token,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "2026-04-10T07:30:00Z", *decode[taskBody](t, w).DueDate)
}

func TestTasks_EmptyOptionalStringsAreUnset(t *testing.T) {
	router := newTestRouter(t)
	token := register(t, router, "alice", "pw1")

	created := createTask(t, router, token, `{"text":"x","dueDate":"","category":"","priority":""}`)
	require.Nil(t, created.DueDate)
	require.Nil(t, created.Category)
	require.Nil(t, created.Priority)
}

func TestTasks_RequireToken(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, request{method: http.MethodGet, path: "/tasks"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "No token, authorization denied", decode[msgBody](t, w).Msg)

	w = do(router, request{method: http.MethodGet, path: "/tasks", token: "garbage"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Token is not valid", decode[msgBody](t, w).Msg)

	w = do(router, request{method: http.MethodPost, path: "/tasks", body: `{"text":"x"}`})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTasks_BearerHeader(t *testing.T) {
	router := newTestRouter(t)
	token := register(t, router, "alice", "pw1")

	w := do(router, request{
		method:  http.MethodGet,
		path:    "/tasks",
		headers: map[string]string{"Authorization": "Bearer " + token},
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestTasks_OwnershipIsEnforced(t *testing.T) {
	router := newTestRouter(t)
	alice := register(t, router, "alice", "pw1")
	bob := register(t, router, "bob", "pw2")

	task := createTask(t, router, alice, `{"text":"buy milk"}`)

	w := do(router, request{method: http.MethodGet, path: "/tasks", token: bob})
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())

	w = do(router, request{
		method: http.MethodPut,
		path:   "/tasks/" + task.ID,
		body:   `{"completed":true}`,
		token:  bob,
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "User not authorized", decode[msgBody](t, w).Msg)

	w = do(router, request{method: http.MethodDelete, path: "/tasks/" + task.ID, token: bob})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "User not authorized", decode[msgBody](t, w).Msg)

	w = do(router, request{method: http.MethodGet, path: "/tasks", token: alice})
	listed := decode[[]taskBody](t, w)
	require.Len(t, listed, 1)
	require.False(t, listed[0].Completed)
}

func TestTasks_OwnershipCannotBeReassigned(t *testing.T) {
	router := newTestRouter(t)
	token := register(t, router, "alice", "pw1")
	task := createTask(t, router, token, `{"text":"buy milk"}`)

	for _, body := range []string{`{"user":"someone-else"}`, `{"_id":"other"}`} {
		w := do(router, request{method: http.MethodPut, path: "/tasks/" + task.ID, body: body, token: token})
		require.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestTasks_NotFound(t *testing.T) {
	router := newTestRouter(t)
	token := register(t, router, "alice", "pw1")

	w := do(router, request{
		method: http.MethodPut,
		path:   "/tasks/does-not-exist",
		body:   `{"completed":true}`,
		token:  token,
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Task not found", decode[msgBody](t, w).Msg)
}

func TestTasks_Validation(t *testing.T) {
	router := newTestRouter(t)
	token := register(t, router, "alice", "pw1")
	task := createTask(t, router, token, `{"text":"buy milk"}`)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		msg    string
	}{
		{name: "create without text", method: http.MethodPost, path: "/tasks", body: `{}`, msg: "Invalid value for text"},
		{name: "create blank text", method: http.MethodPost, path: "/tasks", body: `{"text":"  "}`, msg: "Invalid value for text"},
		{name: "create bad priority", method: http.MethodPost, path: "/tasks", body: `{"text":"x","priority":"urgent"}`, msg: "Invalid value for priority"},
		{name: "create bad date", method: http.MethodPost, path: "/tasks", body: `{"text":"x","dueDate":"tomorrow"}`, msg: "Invalid value for dueDate"},
		{name: "create completed", method: http.MethodPost, path: "/tasks", body: `{"text":"x","completed":true}`, msg: "Invalid value for completed"},
		{name: "update null text", method: http.MethodPut, path: "/tasks/" + task.ID, body: `{"text":null}`, msg: "Invalid value for text"},
		{name: "update completed string", method: http.MethodPut, path: "/tasks/" + task.ID, body: `{"completed":"yes"}`, msg: "Invalid value for completed"},
		{name: "update category number", method: http.MethodPut, path: "/tasks/" + task.ID, body: `{"category":7}`, msg: "Invalid value for category"},
		{name: "update malformed", method: http.MethodPut, path: "/tasks/" + task.ID, body: `{"text":`, msg: "Invalid request body"},
		{name: "create trailing garbage", method: http.MethodPost, path: "/tasks", body: `{"text":"a"} trailing-garbage`, msg: "Invalid request body"},
		{name: "update two objects", method: http.MethodPut, path: "/tasks/" + task.ID, body: `{"completed":true}{"completed":false}`, msg: "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, request{method: tt.method, path: tt.path, body: tt.body, token: token})
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			require.Equal(t, tt.msg, decode[msgBody](t, w).Msg)
		})
	}

	w := do(router, request{method: http.MethodGet, path: "/tasks", token: token})
	listed := decode[[]taskBody](t, w)
	require.Len(t, listed, 1)
	require.Equal(t, "buy milk", listed[0].Text)
}

func TestTasks_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{name: "not found", err: services.ErrTaskNotFound, code: http.StatusNotFound, msg: "Task not found"},
		{name: "forbidden", err: services.ErrTaskForbidden, code: http.StatusUnauthorized, msg: "User not authorized"},
		{name: "validation", err: &services.ValidationError{Field: "text", Reason: "is required"}, code: http.StatusBadRequest, msg: "Invalid value for text"},
		{name: "storage", err: errors.Join(services.ErrStorage, errors.New("socket closed")), code: http.StatusInternalServerError, msg: "Server error"},
		{name: "unexpected", err: errors.New("boom"), code: http.StatusInternalServerError, msg: "Server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := new(authServiceMock)
			auth.On("Verify", "token").Return("user-1", nil)

			tasks := new(taskServiceMock)
			tasks.On("UpdateTask", mock.Anything, services.UpdateTaskParams{
				UserID: "user-1",
				TaskID: "task-1",
				Patch:  models.TaskPatch{Completed: ptr(true)},
			}).Return(nil, tt.err)

			var logs bytes.Buffer
			router := newRouter(v1.New(zerolog.New(&logs), auth, tasks, newTranslator(t), new(pingerMock), "memory"))
			w := do(router, request{
				method: http.MethodPut,
				path:   "/tasks/task-1",
				body:   `{"completed":true}`,
				token:  "token",
			})
			require.Equal(t, tt.code, w.Code)
			require.JSONEq(t, `{"msg":"`+tt.msg+`"}`, w.Body.String())
			tasks.AssertExpectations(t)

			// Only server failures are logged as errors.
			if tt.code >= http.StatusInternalServerError {
				require.Contains(t, logs.String(), `"level":"error"`)
			} else {
				require.NotContains(t, logs.String(), `"level":"error"`)
			}
		})
	}
}

func TestTasks_ListStorageFailure(t *testing.T) {
	auth := new(authServiceMock)
	auth.On("Verify", "token").Return("user-1", nil)
	tasks := new(taskServiceMock)
	tasks.On("ListTasks", mock.Anything, "user-1").Return(nil, services.ErrStorage)

	router := newRouter(v1.New(zerolog.Nop(), auth, tasks, newTranslator(t), new(pingerMock), "memory"))
	w := do(router, request{method: http.MethodGet, path: "/tasks", token: "token"})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"msg":"Server error"}`, w.Body.String())
}

func ptr[T any](v T) *T { return &v }
