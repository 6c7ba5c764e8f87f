package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/watchlater-dev/watchlater/internal/platform/logger"
	"github.com/watchlater-dev/watchlater/internal/services"
)

type PageHandler struct {
	log       *logger.Logger
	statusSvc services.StatusService
}

func NewPageHandler(log *logger.Logger, statusSvc services.StatusService) *PageHandler {
	return &PageHandler{
		log:       log.With("handler", "PageHandler"),
		statusSvc: statusSvc,
	}
}

// GET /
func (h *PageHandler) Index(c *gin.Context) {
	data := h.statusSvc.IndexData(c.Request.Context())
	c.HTML(http.StatusOK, "index.html", gin.H{
		"db_count":         data.DBCount,
		"collection_name":  data.CollectionName,
		"collection_empty": data.CollectionEmpty,
		"default_results":  data.DefaultResults,
		"embedding_model":  data.EmbeddingModel,
	})
}
