package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-todo-tracker/internal/models"
	"github.com/adanyl0v/go-todo-tracker/internal/services"
	"github.com/adanyl0v/go-todo-tracker/internal/translator"
)

type taskResponse struct {
	ID        string     `json:"_id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Category  *string    `json:"category,omitempty"`
	Priority  *string    `json:"priority,omitempty"`
	UserID    string     `json:"user"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func newTaskResponse(task *models.Task) taskResponse {
	resp := taskResponse{
		ID:        task.ID,
		Text:      task.Text,
		Completed: task.Completed,
		DueDate:   task.DueDate,
		Category:  task.Category,
		UserID:    task.UserID,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
	if task.Priority != nil {
		p := string(*task.Priority)
		resp.Priority = &p
	}
	return resp
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	userID := getUserID(c)

	tasks, err := h.tasks.ListTasks(c.Request.Context(), userID)
	if err != nil {
		apiErr := serviceError(err)
		h.logEvent(apiErr).
			Err(err).
			Str("user_id", userID).
			Msg("failed to list tasks")
		h.abort(c, apiErr)
		return
	}

	resp := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		resp = append(resp, newTaskResponse(task))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID := getUserID(c)

	raw, err := decodeObject(c, createTaskFields...)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to decode request body")
		h.abort(c, serviceError(err))
		return
	}

	params, err := buildCreateTaskParams(userID, raw)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("invalid create task body")
		h.abort(c, serviceError(err))
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), params)
	if err != nil {
		apiErr := serviceError(err)
		h.logEvent(apiErr).
			Err(err).
			Str("user_id", userID).
			Msg("failed to create task")
		h.abort(c, apiErr)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	userID := getUserID(c)
	taskID := c.Param("id")

	raw, err := decodeObject(c, updateTaskFields...)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to decode request body")
		h.abort(c, serviceError(err))
		return
	}

	patch, err := buildTaskPatch(raw)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("invalid update task body")
		h.abort(c, serviceError(err))
		return
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), services.UpdateTaskParams{
		UserID: userID,
		TaskID: taskID,
		Patch:  patch,
	})
	if err != nil {
		apiErr := serviceError(err)
		h.logEvent(apiErr).
			Err(err).
			Str("task_id", taskID).
			Str("user_id", userID).
			Msg("failed to update task")
		h.abort(c, apiErr)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	userID := getUserID(c)
	taskID := c.Param("id")

	err := h.tasks.DeleteTask(c.Request.Context(), services.DeleteTaskParams{
		UserID: userID,
		TaskID: taskID,
	})
	if err != nil {
		apiErr := serviceError(err)
		h.logEvent(apiErr).
			Err(err).
			Str("task_id", taskID).
			Str("user_id", userID).
			Msg("failed to delete task")
		h.abort(c, apiErr)
		return
	}

	c.JSON(http.StatusOK, messageResponse{
		Msg: h.translator.Translate(GetLang(c), translator.MsgTaskRemoved, nil),
	})
}
