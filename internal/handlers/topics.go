package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/watchlater-dev/watchlater/internal/platform/logger"
	"github.com/watchlater-dev/watchlater/internal/services"
)

type TopicHandler struct {
	log      *logger.Logger
	topicSvc services.TopicService
}

func NewTopicHandler(log *logger.Logger, topicSvc services.TopicService) *TopicHandler {
	return &TopicHandler{
		log:      log.With("handler", "TopicHandler"),
		topicSvc: topicSvc,
	}
}

// GET /topics
func (h *TopicHandler) GetTopics(c *gin.Context) {
	resp, err := h.topicSvc.Topics(c.Request.Context())
	if err != nil {
		h.log.Error("topic listing failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "topics_failed", errors.New("topic listing failed"))
		return
	}
	RespondOK(c, resp)
}

// GET /topics/videos?id=N
func (h *TopicHandler) GetTopicVideos(c *gin.Context) {
	raw, ok := c.GetQuery("id")
	if !ok {
		RespondError(c, http.StatusBadRequest, "missing_id", errors.New("id parameter required"))
		return
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", errors.New("id must be an integer"))
		return
	}

	resp, err := h.topicSvc.TopicVideos(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrTopicNotFound) {
			RespondError(c, http.StatusNotFound, "topic_not_found", err)
			return
		}
		h.log.Error("topic videos failed", "topic_id", id, "error", err)
		RespondError(c, http.StatusInternalServerError, "topic_videos_failed", errors.New("topic videos lookup failed"))
		return
	}
	RespondOK(c, resp)
}
