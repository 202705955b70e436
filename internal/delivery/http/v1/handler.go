package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-tracker/internal/services"
	"github.com/adanyl0v/go-todo-tracker/internal/storage"
	"github.com/adanyl0v/go-todo-tracker/internal/translator"
)

type Handler interface {
	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleGetTasks(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleHealth(c *gin.Context)
}

type handlerImpl struct {
	logger     zerolog.Logger
	auth       services.AuthService
	tasks      services.TaskService
	translator *translator.Translator
	storage    storage.Pinger
	storageID  string
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	taskService services.TaskService,
	tr *translator.Translator,
	pinger storage.Pinger,
	storageDriver string,
) Handler {
	return &handlerImpl{
		logger:     logger,
		auth:       authService,
		tasks:      taskService,
		translator: tr,
		storage:    pinger,
		storageID:  storageDriver,
	}
}
