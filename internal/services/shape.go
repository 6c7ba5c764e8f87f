package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/watchlater-dev/watchlater/internal/platform/vectordb"
	"github.com/watchlater-dev/watchlater/internal/types"
)

const unknownChannel = "(Unknown Channel)"

// shapeVideo turns a stored record into the wire shape the frontend
// renders everywhere (search hits, channel listings, topic members).
func shapeVideo(rec vectordb.Record, score float64) types.VideoResult {
	vid := rec.ID
	thumbnail := ""
	if vid != "" {
		thumbnail = fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", vid)
	}
	url := payloadString(rec.Payload, "url")
	if url == "" {
		if vid != "" {
			url = "https://www.youtube.com/watch?v=" + vid
		} else {
			url = "#"
		}
	}
	title := payloadString(rec.Payload, "title")
	if title == "" {
		title = "N/A"
	}
	channel := payloadString(rec.Payload, "channel")
	if channel == "" {
		channel = "N/A"
	}
	return types.VideoResult{
		ID:               vid,
		Title:            title,
		Channel:          channel,
		ChannelID:        payloadString(rec.Payload, "channel_id"),
		URL:              url,
		Score:            score,
		Thumbnail:        thumbnail,
		ChannelThumbnail: payloadString(rec.Payload, "channel_thumbnail"),
		Tags:             payloadString(rec.Payload, "tags_str"),
		Document:         rec.Document,
		Metadata:         rec.Payload,
	}
}

func payloadString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	if s, ok := payload[key].(string); ok {
		return s
	}
	return ""
}

// payloadSeconds reads a duration payload value that ingestion may have
// stored as a JSON number or a numeric string. Non-positive and
// unparseable values report 0.
func payloadSeconds(payload map[string]any, key string) int64 {
	if payload == nil {
		return 0
	}
	switch v := payload[key].(type) {
	case float64:
		if v > 0 {
			return int64(v)
		}
	case int64:
		if v > 0 {
			return v
		}
	case int:
		if v > 0 {
			return int64(v)
		}
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err == nil && n > 0 {
			return n
		}
	}
	return 0
}

func normalizeChannel(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return unknownChannel
	}
	return trimmed
}
