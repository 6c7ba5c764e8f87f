package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/watchlater-dev/watchlater/internal/platform/logger"
	"github.com/watchlater-dev/watchlater/internal/services"
)

const maxChannelLimit = 500

var channelSortOrders = map[string]bool{
	"count_desc": true,
	"count_asc":  true,
	"alpha":      true,
	"alpha_desc": true,
}

type ChannelHandler struct {
	log        *logger.Logger
	channelSvc services.ChannelService
}

func NewChannelHandler(log *logger.Logger, channelSvc services.ChannelService) *ChannelHandler {
	return &ChannelHandler{
		log:        log.With("handler", "ChannelHandler"),
		channelSvc: channelSvc,
	}
}

// GET /channels
func (h *ChannelHandler) GetChannels(c *gin.Context) {
	sort := c.DefaultQuery("sort", "count_desc")
	if !channelSortOrders[sort] {
		sort = "count_desc"
	}

	var limit *int
	if raw, ok := c.GetQuery("limit"); ok {
		if n, err := strconv.Atoi(raw); err == nil {
			if n < 0 {
				n = 0
			}
			if n > maxChannelLimit {
				n = maxChannelLimit
			}
			limit = &n
		}
	}

	offset := 0
	if n, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && n > 0 {
		offset = n
	}

	resp, err := h.channelSvc.Channels(c.Request.Context(), services.ChannelQuery{
		Sort:   sort,
		Limit:  limit,
		Offset: offset,
		Q:      c.Query("q"),
	})
	if err != nil {
		h.log.Error("channel listing failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "channels_failed", errors.New("channel listing failed"))
		return
	}
	RespondOK(c, resp)
}

// GET /channel_videos?channel=NAME
func (h *ChannelHandler) GetChannelVideos(c *gin.Context) {
	channel := strings.TrimSpace(c.Query("channel"))
	if channel == "" {
		RespondError(c, http.StatusBadRequest, "missing_channel", errors.New("channel parameter required"))
		return
	}

	resp, err := h.channelSvc.ChannelVideos(c.Request.Context(), channel)
	if err != nil {
		h.log.Error("channel videos failed", "channel", channel, "error", err)
		RespondError(c, http.StatusInternalServerError, "channel_videos_failed", errors.New("channel videos lookup failed"))
		return
	}
	RespondOK(c, resp)
}
