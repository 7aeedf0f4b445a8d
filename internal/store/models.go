package store

import "time"

// ChannelRecord is a monitored channel row
type ChannelRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	ChannelID   string    `gorm:"uniqueIndex;not null"`
	ChannelName string
	AddedAt     time.Time `gorm:"autoCreateTime"`
	IsActive    bool      `gorm:"default:true"`
}

func (ChannelRecord) TableName() string { return "channels" }

// ProcessedMessageRecord is one row of the dedup ledger. The
// (channel_id, message_id) pair is unique; inserts of an existing pair
// are ignored.
type ProcessedMessageRecord struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	ChannelID   string `gorm:"uniqueIndex:idx_channel_message;not null"`
	MessageID   int64  `gorm:"uniqueIndex:idx_channel_message;not null"`
	ContentHash string `gorm:"index;not null"`
	ProcessedAt time.Time `gorm:"autoCreateTime;index"`
	IsJobPost   bool
	MatchScore  *int
}

func (ProcessedMessageRecord) TableName() string { return "processed_messages" }

// MatchedJobRecord is a posting that cleared the alert threshold. Reason
// lists are stored JSON-encoded.
type MatchedJobRecord struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	ChannelID       string `gorm:"not null"`
	MessageID       int64  `gorm:"not null"`
	RoleTitle       string
	Company         string
	Location        string
	IsRemote        *bool
	Seniority       string
	SalaryInfo      string
	ApplicationLink string
	RawText         string
	MatchScore      int `gorm:"index"`
	MatchReasons    string
	FilterReasons   string
	SemanticScore   float64
	KeywordScore    float64
	CreatedAt       time.Time `gorm:"autoCreateTime;index"`
}

func (MatchedJobRecord) TableName() string { return "matched_jobs" }

// FilterRecord is one stored (kind, value) preference row
type FilterRecord struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	FilterType  string `gorm:"index;not null"`
	FilterValue string `gorm:"not null"`
	IsActive    bool   `gorm:"default:true"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (FilterRecord) TableName() string { return "filters" }

// SettingRecord is a key/value setting row
type SettingRecord struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

func (SettingRecord) TableName() string { return "settings" }

// Setting keys used by the service
const (
	SettingPaused         = "paused"
	SettingMatchThreshold = "threshold"
)
