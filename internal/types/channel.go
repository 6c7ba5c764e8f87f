package types

// ChannelRow is one aggregated channel entry. WatchTime is the compact
// human form of TotalDurationSeconds ("2h 15m"), empty when no duration
// data was stored for the channel.
type ChannelRow struct {
	Channel              string  `json:"channel"`
	Count                int     `json:"count"`
	Percent              float64 `json:"percent"`
	ChannelThumbnail     string  `json:"channel_thumbnail"`
	TotalDurationSeconds int64   `json:"total_duration_seconds"`
	WatchTime            string  `json:"watch_time,omitempty"`
}

// ChannelsResponse pages through the aggregated channel rows. Limit is
// nil when the caller did not cap the page, and HasMore is only ever
// true when a limit was given.
type ChannelsResponse struct {
	TotalVideos      int64        `json:"total_videos"`
	DistinctChannels int          `json:"distinct_channels"`
	TotalAvailable   int          `json:"total_available"`
	Returned         int          `json:"returned"`
	Offset           int          `json:"offset"`
	Limit            *int         `json:"limit"`
	HasMore          bool         `json:"has_more"`
	Sort             string       `json:"sort"`
	Stale            bool         `json:"stale"`
	Q                string       `json:"q,omitempty"`
	Channels         []ChannelRow `json:"channels"`
}
