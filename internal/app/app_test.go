package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-todo-tracker/internal/config"
	"github.com/adanyl0v/go-todo-tracker/internal/services"
	"github.com/adanyl0v/go-todo-tracker/internal/storage/memory"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	return &App{
		logger: zerolog.Nop(),
		cfg: &config.Config{
			Env:           config.EnvLocal,
			StorageDriver: config.StorageDriverMemory,
			HTTP: config.HTTPConfig{
				Port:               "3001",
				ShutdownTimeout:    time.Second,
				CORSAllowedOrigins: []string{"http://localhost:3000"},
			},
			JWT: config.JWTConfig{
				SigningKey: "test-secret",
				Issuer:     "go-todo-tracker",
				TokenTTL:   time.Hour,
			},
			Password: config.PasswordConfig{
				HashAlgorithm: services.HashAlgorithmBcrypt,
				BcryptCost:    4,
			},
		},
		store: memory.New(),
	}
}

func TestApplicationLogger(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	logger, err := applicationLogger(zerolog.New(nil), config.EnvProd, &buf)
	require.NoError(t, err)

	logger.Info().Str("k", "v").Msg("hello")
	logger.Debug().Msg("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "hello", entry["message"])
	require.Equal(t, "v", entry["k"])
	require.NotContains(t, buf.String(), "hidden")
}

func TestApplicationLogger_UnknownEnv(t *testing.T) {
	_, err := applicationLogger(zerolog.Nop(), "staging", &bytes.Buffer{})
	require.Error(t, err)
}

func TestConnectStorage(t *testing.T) {
	cfg := &config.Config{StorageDriver: config.StorageDriverMemory}
	store, err := connectStorage(context.Background(), zerolog.Nop(), cfg)
	require.NoError(t, err)
	require.NoError(t, store.Ping(context.Background()))

	cfg.StorageDriver = "sqlite"
	_, err = connectStorage(context.Background(), zerolog.Nop(), cfg)
	require.Error(t, err)
}

func TestConnectStorage_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &config.Config{
		StorageDriver: config.StorageDriverRedis,
		Redis:         config.RedisConfig{Addr: mr.Addr()},
	}
	store, err := connectStorage(context.Background(), zerolog.Nop(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	require.NoError(t, store.Ping(context.Background()))
}

func TestConnectStorage_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := &config.Config{
		StorageDriver: config.StorageDriverRedis,
		Redis:         config.RedisConfig{Addr: addr},
	}
	_, err := connectStorage(context.Background(), zerolog.Nop(), cfg)
	require.Error(t, err)
}

func TestNewRouter(t *testing.T) {
	a := newTestApp(t)
	router, err := a.newRouter()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/register",
		strings.NewReader(`{"username":"alice","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set("x-auth-token", body.Token)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `[]`, w.Body.String())
}

func TestNewRouter_UnknownHashAlgorithm(t *testing.T) {
	a := newTestApp(t)
	a.cfg.Password.HashAlgorithm = "md5"

	_, err := a.newRouter()
	require.Error(t, err)
}

func TestNewRouter_CORS(t *testing.T) {
	a := newTestApp(t)
	router, err := a.newRouter()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/tasks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "x-auth-token")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
