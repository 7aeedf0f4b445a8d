package models

// TestPostingRequest represents the request payload for running a posting
// through the pipeline without persistence or alerting
type TestPostingRequest struct {
	Text      string              `json:"text" validate:"required,min=1"`
	ChannelID string              `json:"channel_id,omitempty"`
	Options   *TestPostingOptions `json:"options,omitempty"`
}

// TestPostingOptions provides additional configuration for test runs
type TestPostingOptions struct {
	SkipScrape bool `json:"skip_scrape,omitempty"` // Disable URL enrichment
	Threshold  *int `json:"threshold,omitempty"`   // Override the stored alert threshold
}

// ChannelRequest represents the request payload for channel management
type ChannelRequest struct {
	ChannelID   string `json:"channel_id" validate:"required"`
	ChannelName string `json:"channel_name,omitempty"`
}

// FilterRequest represents the request payload for adding a filter rule
type FilterRequest struct {
	Kind  string `json:"kind" validate:"required,oneof=keyword excluded location seniority remote"`
	Value string `json:"value" validate:"required,min=1"`
}
