package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-tracker/internal/services"
	"github.com/adanyl0v/go-todo-tracker/internal/translator"
)

var errInvalidRequestBody = errors.New("invalid request body")

// apiError is rendered as {"msg": ...} with the message translated for
// the request language.
type apiError struct {
	Code      int
	MessageID string
	Data      map[string]any
}

func newAPIError(code int, messageID string) apiError {
	return apiError{
		Code:      code,
		MessageID: messageID,
	}
}

func (e apiError) Error() string {
	return e.MessageID
}

type messageResponse struct {
	Msg string `json:"msg"`
}

func (h *handlerImpl) abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, messageResponse{
		Msg: h.translator.Translate(GetLang(c), err.MessageID, err.Data),
	})
}

// logEvent picks the level for a failed request. Client errors were
// already logged by the service that rejected them.
func (h *handlerImpl) logEvent(err apiError) *zerolog.Event {
	if err.Code >= http.StatusInternalServerError {
		return h.logger.Error()
	}
	return h.logger.Debug()
}

func newBadRequestError(messageID string) apiError {
	return newAPIError(http.StatusBadRequest, messageID)
}

func newUnauthorizedError(messageID string) apiError {
	return newAPIError(http.StatusUnauthorized, messageID)
}

func newNotFoundError(messageID string) apiError {
	return newAPIError(http.StatusNotFound, messageID)
}

func newServerError() apiError {
	return newAPIError(http.StatusInternalServerError, translator.MsgServerError)
}

func newValidationError(err error) apiError {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		apiErr := newBadRequestError(translator.MsgInvalidField)
		apiErr.Data = map[string]any{"Field": validationErr.Field}
		return apiErr
	}
	return newBadRequestError(translator.MsgInvalidRequestBody)
}

// serviceError maps a service error to the response the client sees.
// Anything unexpected becomes a bare server error.
func serviceError(err error) apiError {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, errInvalidRequestBody):
		return newValidationError(err)
	case errors.Is(err, services.ErrUserAlreadyExists):
		return newBadRequestError(translator.MsgUserAlreadyExists)
	case errors.Is(err, services.ErrInvalidCredentials):
		return newBadRequestError(translator.MsgInvalidCredentials)
	case errors.Is(err, services.ErrMissingToken):
		return newUnauthorizedError(translator.MsgNoToken)
	case errors.Is(err, services.ErrInvalidToken):
		return newUnauthorizedError(translator.MsgTokenNotValid)
	case errors.Is(err, services.ErrTaskNotFound):
		return newNotFoundError(translator.MsgTaskNotFound)
	case errors.Is(err, services.ErrTaskForbidden):
		return newUnauthorizedError(translator.MsgUserNotAuthorized)
	default:
		return newServerError()
	}
}
