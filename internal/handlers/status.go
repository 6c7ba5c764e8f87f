package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/watchlater-dev/watchlater/internal/platform/logger"
	"github.com/watchlater-dev/watchlater/internal/services"
)

type StatusHandler struct {
	log       *logger.Logger
	statusSvc services.StatusService
}

func NewStatusHandler(log *logger.Logger, statusSvc services.StatusService) *StatusHandler {
	return &StatusHandler{
		log:       log.With("handler", "StatusHandler"),
		statusSvc: statusSvc,
	}
}

// GET /app-config
func (h *StatusHandler) GetAppConfig(c *gin.Context) {
	RespondOK(c, h.statusSvc.AppConfig(c.Request.Context()))
}

// GET /healthcheck
func (h *StatusHandler) GetHealthcheck(c *gin.Context) {
	RespondOK(c, h.statusSvc.Healthcheck(c.Request.Context()))
}
