package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-todo-tracker/internal/services"
)

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *handlerImpl) bindCredentials(c *gin.Context) (services.CredentialsParams, bool) {
	raw, err := decodeObject(c, "username", "password")
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to decode request body")
		h.abort(c, serviceError(err))
		return services.CredentialsParams{}, false
	}

	req, err := buildCredentialsRequest(raw)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("invalid credentials body")
		h.abort(c, serviceError(err))
		return services.CredentialsParams{}, false
	}
	return services.CredentialsParams{
		Username: req.Username,
		Password: req.Password,
	}, true
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	params, ok := h.bindCredentials(c)
	if !ok {
		return
	}

	result, err := h.auth.Register(c.Request.Context(), params)
	if err != nil {
		apiErr := serviceError(err)
		h.logEvent(apiErr).
			Err(err).
			Msg("failed to register user")
		h.abort(c, apiErr)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Token: result.Token})
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	params, ok := h.bindCredentials(c)
	if !ok {
		return
	}

	result, err := h.auth.Login(c.Request.Context(), params)
	if err != nil {
		apiErr := serviceError(err)
		h.logEvent(apiErr).
			Err(err).
			Msg("failed to login")
		h.abort(c, apiErr)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Token: result.Token})
}
