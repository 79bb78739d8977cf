package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imyashkale/mcpdashboard/internal/gateway"
	"github.com/imyashkale/mcpdashboard/internal/logger"
	"github.com/imyashkale/mcpdashboard/internal/models"
	"github.com/imyashkale/mcpdashboard/internal/queue"
	"github.com/imyashkale/mcpdashboard/internal/services"
)

// respondError renders err as an ErrorResponse with a matching status code
func respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"

	var gwErr *gateway.GatewayError
	switch {
	case errors.Is(err, services.ErrServerNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrGatewayNotConfigured):
		status, code = http.StatusConflict, "gateway_not_configured"
	case errors.Is(err, services.ErrAlreadyConnected):
		status, code = http.StatusConflict, "already_connected"
	case errors.Is(err, services.ErrEmptyMessage):
		status, code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, queue.ErrQueueFull), errors.Is(err, queue.ErrQueueClosed):
		status, code = http.StatusServiceUnavailable, "unavailable"
	case errors.As(err, &gwErr):
		status, code = http.StatusBadGateway, "gateway_error"
	}

	if status >= http.StatusInternalServerError {
		logger.Errorf("Request %s %s failed with %d: %v", c.Request.Method, c.Request.URL.Path, status, err)
	}

	c.JSON(status, models.ErrorResponse{
		Error:   code,
		Message: err.Error(),
	})
}

// badRequest renders a binding failure
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "bad_request",
		Message: err.Error(),
	})
}
