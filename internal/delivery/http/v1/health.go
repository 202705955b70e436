package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	statusOK   = "ok"
	statusDown = "down"

	healthPingTimeout = 2 * time.Second
)

type healthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Driver  string `json:"driver"`
}

func (h *handlerImpl) HandleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()

	resp := healthResponse{
		Status:  statusOK,
		Storage: statusOK,
		Driver:  h.storageID,
	}
	code := http.StatusOK

	err := h.storage.Ping(ctx)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("driver", h.storageID).
			Msg("storage ping failed")
		resp.Status = statusDown
		resp.Storage = statusDown
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, resp)
}
