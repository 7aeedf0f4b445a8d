package models

import "time"

// TestPostingResponse represents the response from a test posting run
type TestPostingResponse struct {
	Success        bool          `json:"success"`
	IsJob          bool          `json:"is_job"`
	KeywordCount   int           `json:"keyword_count"`
	Fields         *JobFields    `json:"fields,omitempty"`
	Result         *MatchResult  `json:"result,omitempty"`
	WouldAlert     bool          `json:"would_alert"`
	Error          string        `json:"error,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
	RequestID      string        `json:"request_id"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// MatchesResponse represents the recent-matches listing
type MatchesResponse struct {
	Matches []MatchedJob `json:"matches"`
	Count   int          `json:"count"`
}

// StatsResponse represents aggregate pipeline counters
type StatsResponse struct {
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ChannelsResponse represents the monitored channel listing
type ChannelsResponse struct {
	Channels []Channel `json:"channels"`
	Count    int       `json:"count"`
}

// FiltersResponse represents the active filter rule listing
type FiltersResponse struct {
	Filters []Filter  `json:"filters"`
	Set     FilterSet `json:"set"`
}
