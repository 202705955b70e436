package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-tracker/internal/translator"
)

const (
	userIDCtxKey = "user_id"
	langCtxKey   = "lang"

	tokenHeader  = "x-auth-token"
	authHeader   = "Authorization"
	bearerPrefix = "Bearer"
)

// extractToken reads x-auth-token first and falls back to a bearer
// Authorization header.
func extractToken(c *gin.Context) string {
	token := strings.TrimSpace(c.GetHeader(tokenHeader))
	if token != "" {
		return token
	}

	parts := strings.SplitN(c.GetHeader(authHeader), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], bearerPrefix) {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	userID, err := h.auth.Verify(extractToken(c))
	if err != nil {
		h.logger.Debug().
			Err(err).
			Str("path", c.Request.URL.Path).
			Msg("rejected token")
		h.abort(c, serviceError(err))
		return
	}

	c.Set(userIDCtxKey, userID)
	c.Next()
}

func getUserID(c *gin.Context) string {
	return c.GetString(userIDCtxKey)
}

// LanguageMiddleware stores the raw Accept-Language header for message
// translation, falling back to English.
func LanguageMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := c.GetHeader("Accept-Language")
		if lang == "" {
			lang = translator.LanguageEn
		}
		c.Set(langCtxKey, lang)
		c.Next()
	}
}

func GetLang(c *gin.Context) string {
	if lang := c.GetString(langCtxKey); lang != "" {
		return lang
	}
	return translator.LanguageEn
}

// RequestLoggerMiddleware writes one line per request. Server errors are
// logged at error level.
func RequestLoggerMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}

		event.
			Int("status", status).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}
