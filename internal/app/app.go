package app

import (
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-tracker/internal/config"
	"github.com/adanyl0v/go-todo-tracker/internal/storage"
)

// App owns the process-wide dependencies. Each Must* step panics on
// failure after logging the cause.
type App struct {
	logger zerolog.Logger
	cfg    *config.Config
	store  storage.Store
}

func New() *App {
	return &App{logger: InitDefaultLogger()}
}
