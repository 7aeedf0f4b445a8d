package models

import (
	"strconv"
	"strings"
	"time"
)

// Posting is one ingested unit of free text evaluated for being a job
// advertisement. Identity is (ChannelID, MessageID); Text may be enriched
// in place by scraping while a pipeline run owns the posting.
type Posting struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name,omitempty"`
	MessageID   int64     `json:"message_id"`
	Text        string    `json:"text"`
	Date        time.Time `json:"date"`
	Link        string    `json:"link,omitempty"`
}

// MessageLink returns a t.me link to the original message, constructing
// one from the channel ID when the listener did not provide it.
func (p *Posting) MessageLink() string {
	if p.Link != "" {
		return p.Link
	}
	channel := strings.TrimPrefix(p.ChannelID, "-100")
	return "https://t.me/c/" + channel + "/" + strconv.FormatInt(p.MessageID, 10)
}

// Seniority is the closed set of detected seniority levels, ordered from
// most junior to most senior. Rules compare by equality only.
type Seniority string

const (
	SeniorityIntern    Seniority = "intern"
	SeniorityJunior    Seniority = "junior"
	SeniorityMid       Seniority = "mid"
	SenioritySenior    Seniority = "senior"
	SeniorityLead      Seniority = "lead"
	SeniorityPrincipal Seniority = "principal"
	SeniorityManager   Seniority = "manager"
	SeniorityDirector  Seniority = "director"
	SeniorityVP        Seniority = "vp"
	SeniorityExecutive Seniority = "executive"
)

// ParseSeniority returns the Seniority for a stored string value, or
// false when the value is not a known level.
func ParseSeniority(s string) (Seniority, bool) {
	switch Seniority(strings.ToLower(strings.TrimSpace(s))) {
	case SeniorityIntern, SeniorityJunior, SeniorityMid, SenioritySenior,
		SeniorityLead, SeniorityPrincipal, SeniorityManager,
		SeniorityDirector, SeniorityVP, SeniorityExecutive:
		return Seniority(strings.ToLower(strings.TrimSpace(s))), true
	}
	return "", false
}

// Title returns the level with its first letter upper-cased, for display.
func (s Seniority) Title() string {
	if s == "" {
		return ""
	}
	if s == SeniorityVP {
		return "VP"
	}
	return strings.ToUpper(string(s[0])) + string(s[1:])
}

// JobFields holds the structured fields extracted from a posting. Every
// field except RawText is best-effort and may be empty. Remote is
// tri-state: nil means unknown.
type JobFields struct {
	RoleTitle       string    `json:"role_title,omitempty"`
	Company         string    `json:"company,omitempty"`
	Location        string    `json:"location,omitempty"`
	Remote          *bool     `json:"remote,omitempty"`
	Seniority       Seniority `json:"seniority,omitempty"`
	SalaryInfo      string    `json:"salary_info,omitempty"`
	Requirements    string    `json:"requirements,omitempty"`
	ApplicationLink string    `json:"application_link,omitempty"`
	RawText         string    `json:"raw_text"`
}

// IsRemote reports whether the posting was positively detected as remote.
func (f *JobFields) IsRemote() bool {
	return f.Remote != nil && *f.Remote
}

// Summary returns a short human-readable label for the posting.
func (f *JobFields) Summary() string {
	parts := make([]string, 0, 2)
	if f.RoleTitle != "" {
		parts = append(parts, f.RoleTitle)
	}
	if f.Company != "" {
		parts = append(parts, "@ "+f.Company)
	}
	if len(parts) == 0 {
		return "Job Post"
	}
	return strings.Join(parts, " ")
}

// MatchResult is the output of scoring a posting against a profile.
// Score is always within [0,100]; the sub-scores are pre-clamp values
// kept for diagnostics and test reports.
type MatchResult struct {
	Score         int      `json:"score"`
	MatchReasons  []string `json:"match_reasons,omitempty"`
	FilterReasons []string `json:"filter_reasons,omitempty"`
	SemanticScore float64  `json:"semantic_score"`
	KeywordScore  float64  `json:"keyword_score"`
}

// MatchedJob is a posting that cleared the alert threshold, recorded as a
// historical fact.
type MatchedJob struct {
	ID        int64       `json:"id,omitempty"`
	ChannelID string      `json:"channel_id"`
	MessageID int64       `json:"message_id"`
	Fields    JobFields   `json:"fields"`
	Result    MatchResult `json:"result"`
	CreatedAt time.Time   `json:"created_at,omitempty"`
}

// Channel is a monitored source of postings.
type Channel struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name,omitempty"`
	AddedAt     time.Time `json:"added_at,omitempty"`
	IsActive    bool      `json:"is_active"`
}

// Status summarizes the running service for /status and the bot's
// /status command.
type Status struct {
	IsRunning      bool       `json:"is_running"`
	IsPaused       bool       `json:"is_paused"`
	ChannelsCount  int64      `json:"channels_count"`
	ProcessedCount int64      `json:"processed_count"`
	MatchedCount   int64      `json:"matched_count"`
	FiltersCount   int64      `json:"filters_count"`
	HasProfile     bool       `json:"has_profile"`
	MatchThreshold int        `json:"match_threshold"`
	LastMatch      *time.Time `json:"last_match,omitempty"`
}
