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

type SearchHandler struct {
	log       *logger.Logger
	searchSvc services.SearchService
}

func NewSearchHandler(log *logger.Logger, searchSvc services.SearchService) *SearchHandler {
	return &SearchHandler{
		log:       log.With("handler", "SearchHandler"),
		searchSvc: searchSvc,
	}
}

type searchRequest struct {
	Query string `json:"query"`
	// Accepts numbers and numeric strings; anything else falls back to
	// the configured default.
	NumResults any `json:"num_results"`
}

// POST /search
func (h *SearchHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("no search parameters provided"))
		return
	}

	displayN := coerceNumResults(req.NumResults)

	resp, err := h.searchSvc.Search(c.Request.Context(), req.Query, displayN)
	if err != nil {
		if errors.Is(err, services.ErrEmptyQuery) {
			RespondError(c, http.StatusBadRequest, "empty_query", err)
			return
		}
		h.log.Error("search failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "search_failed", errors.New("search failed"))
		return
	}
	RespondOK(c, resp)
}

// coerceNumResults maps the loose num_results field to a positive int;
// 0 tells the service to use its default.
func coerceNumResults(v any) int {
	n := 0
	switch val := v.(type) {
	case float64:
		n = int(val)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0
		}
		n = parsed
	default:
		return 0
	}
	if n < 1 {
		return 1
	}
	return n
}
