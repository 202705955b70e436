package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-todo-tracker/internal/config"
	v1 "github.com/adanyl0v/go-todo-tracker/internal/delivery/http/v1"
	"github.com/adanyl0v/go-todo-tracker/internal/services"
	"github.com/adanyl0v/go-todo-tracker/internal/translator"
)

func (a *App) MustListenAndServeHTTP() {
	if a.cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := a.cfg.HTTP

	router, err := a.newRouter()
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("failed to build router")
		panic(err)
	}

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		a.logger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout.
	quit := make(chan os.Signal, 1)
	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	a.logger.Info().Msg("shut down http server")
}

func (a *App) newRouter() (*gin.Engine, error) {
	handler, err := a.newHandler()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(v1.RequestLoggerMiddleware(a.logger))
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(a.cfg.HTTP.CORSAllowedOrigins)))
	router.Use(v1.LanguageMiddleware())

	v1.RegisterRoutes(router, handler)
	return router, nil
}

func corsConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept-Language", "Authorization", "x-auth-token"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

func (a *App) newHandler() (v1.Handler, error) {
	hasher, err := services.NewPasswordHasher(a.cfg.Password.HashAlgorithm, a.cfg.Password.BcryptCost)
	if err != nil {
		return nil, err
	}

	tr, err := translator.New(a.logger)
	if err != nil {
		return nil, err
	}

	jwtCfg := a.cfg.JWT
	tokens := services.NewTokenIssuer(jwtCfg.Issuer, []byte(jwtCfg.SigningKey), jwtCfg.TokenTTL)

	return v1.New(
		a.logger,
		services.NewAuthService(a.logger, a.store, hasher, tokens),
		services.NewTaskService(a.logger, a.store),
		tr,
		a.store,
		a.cfg.StorageDriver,
	), nil
}
