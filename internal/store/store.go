package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jobsonar/pkg/models"
)

// Store wraps the sqlite database holding channels, the dedup ledger,
// matched jobs, filters and settings
type Store struct {
	db *gorm.DB
}

// NewStore opens the database at dbPath and migrates the schema
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(
		&ChannelRecord{},
		&ProcessedMessageRecord{},
		&MatchedJobRecord{},
		&FilterRecord{},
		&SettingRecord{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate models: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping verifies the database connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Channels

// AddChannel registers a channel for monitoring. Returns false when the
// channel was already registered.
func (s *Store) AddChannel(ctx context.Context, channelID, channelName string) (bool, error) {
	record := ChannelRecord{ChannelID: channelID, ChannelName: channelName, IsActive: true}
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel_id"}},
		DoNothing: true,
	}).Create(&record)
	if tx.Error != nil {
		return false, fmt.Errorf("add channel: %w", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

// RemoveChannel deletes a channel. Returns false when it was not
// registered.
func (s *Store) RemoveChannel(ctx context.Context, channelID string) (bool, error) {
	tx := s.db.WithContext(ctx).Where("channel_id = ?", channelID).Delete(&ChannelRecord{})
	if tx.Error != nil {
		return false, fmt.Errorf("remove channel: %w", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

// ListChannels returns channels, active ones only unless all is set
func (s *Store) ListChannels(ctx context.Context, all bool) ([]models.Channel, error) {
	query := s.db.WithContext(ctx).Model(&ChannelRecord{}).Order("added_at ASC")
	if !all {
		query = query.Where("is_active = ?", true)
	}

	var records []ChannelRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}

	channels := make([]models.Channel, 0, len(records))
	for _, r := range records {
		channels = append(channels, models.Channel{
			ChannelID:   r.ChannelID,
			ChannelName: r.ChannelName,
			AddedAt:     r.AddedAt,
			IsActive:    r.IsActive,
		})
	}
	return channels, nil
}

// SetChannelActive toggles monitoring for a channel without forgetting it
func (s *Store) SetChannelActive(ctx context.Context, channelID string, active bool) error {
	tx := s.db.WithContext(ctx).Model(&ChannelRecord{}).
		Where("channel_id = ?", channelID).
		Update("is_active", active)
	if tx.Error != nil {
		return fmt.Errorf("set channel active: %w", tx.Error)
	}
	return nil
}

// IsChannelMonitored reports whether the channel is registered and active
func (s *Store) IsChannelMonitored(ctx context.Context, channelID string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&ChannelRecord{}).
		Where("channel_id = ? AND is_active = ?", channelID, true).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check channel: %w", err)
	}
	return count > 0, nil
}

// Dedup ledger

// IsMessageProcessed reports whether the exact message was already seen
func (s *Store) IsMessageProcessed(ctx context.Context, channelID string, messageID int64) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&ProcessedMessageRecord{}).
		Where("channel_id = ? AND message_id = ?", channelID, messageID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check processed message: %w", err)
	}
	return count > 0, nil
}

// IsContentDuplicate reports whether the content hash was recorded
// within the window
func (s *Store) IsContentDuplicate(ctx context.Context, contentHash string, window time.Duration) (bool, error) {
	cutoff := time.Now().Add(-window)
	var count int64
	if err := s.db.WithContext(ctx).Model(&ProcessedMessageRecord{}).
		Where("content_hash = ? AND processed_at > ?", contentHash, cutoff).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check content hash: %w", err)
	}
	return count > 0, nil
}

// AddProcessedMessage records a processed message. Re-inserting the same
// (channel_id, message_id) pair is a no-op.
func (s *Store) AddProcessedMessage(ctx context.Context, channelID string, messageID int64, contentHash string, isJob bool, score *int) error {
	record := ProcessedMessageRecord{
		ChannelID:   channelID,
		MessageID:   messageID,
		ContentHash: contentHash,
		IsJobPost:   isJob,
		MatchScore:  score,
	}
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "channel_id"}, {Name: "message_id"}},
		DoNothing: true,
	}).Create(&record)
	if tx.Error != nil {
		return fmt.Errorf("add processed message: %w", tx.Error)
	}
	return nil
}

// CleanupOldMessages deletes ledger rows older than the retention period
func (s *Store) CleanupOldMessages(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	tx := s.db.WithContext(ctx).Where("processed_at < ?", cutoff).Delete(&ProcessedMessageRecord{})
	if tx.Error != nil {
		return 0, fmt.Errorf("cleanup old messages: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}

// Matched jobs

// AddMatchedJob records a posting that cleared the alert threshold
func (s *Store) AddMatchedJob(ctx context.Context, job *models.MatchedJob) error {
	matchReasons, err := json.Marshal(job.Result.MatchReasons)
	if err != nil {
		return fmt.Errorf("marshal match reasons: %w", err)
	}
	filterReasons, err := json.Marshal(job.Result.FilterReasons)
	if err != nil {
		return fmt.Errorf("marshal filter reasons: %w", err)
	}

	record := MatchedJobRecord{
		ChannelID:       job.ChannelID,
		MessageID:       job.MessageID,
		RoleTitle:       job.Fields.RoleTitle,
		Company:         job.Fields.Company,
		Location:        job.Fields.Location,
		IsRemote:        job.Fields.Remote,
		Seniority:       string(job.Fields.Seniority),
		SalaryInfo:      job.Fields.SalaryInfo,
		ApplicationLink: job.Fields.ApplicationLink,
		RawText:         job.Fields.RawText,
		MatchScore:      job.Result.Score,
		MatchReasons:    string(matchReasons),
		FilterReasons:   string(filterReasons),
		SemanticScore:   job.Result.SemanticScore,
		KeywordScore:    job.Result.KeywordScore,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("add matched job: %w", err)
	}
	job.ID = record.ID
	job.CreatedAt = record.CreatedAt
	return nil
}

// RecentMatches returns the newest matched jobs, newest first
func (s *Store) RecentMatches(ctx context.Context, limit int) ([]models.MatchedJob, error) {
	if limit <= 0 {
		limit = 10
	}

	var records []MatchedJobRecord
	if err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("recent matches: %w", err)
	}

	jobs := make([]models.MatchedJob, 0, len(records))
	for _, r := range records {
		jobs = append(jobs, recordToMatchedJob(r))
	}
	return jobs, nil
}

// LastMatch returns the most recent matched job, or nil
func (s *Store) LastMatch(ctx context.Context) (*models.MatchedJob, error) {
	var record MatchedJobRecord
	err := s.db.WithContext(ctx).Order("created_at DESC").First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("last match: %w", err)
	}
	job := recordToMatchedJob(record)
	return &job, nil
}

func recordToMatchedJob(r MatchedJobRecord) models.MatchedJob {
	var matchReasons, filterReasons []string
	_ = json.Unmarshal([]byte(r.MatchReasons), &matchReasons)
	_ = json.Unmarshal([]byte(r.FilterReasons), &filterReasons)

	return models.MatchedJob{
		ID:        r.ID,
		ChannelID: r.ChannelID,
		MessageID: r.MessageID,
		Fields: models.JobFields{
			RoleTitle:       r.RoleTitle,
			Company:         r.Company,
			Location:        r.Location,
			Remote:          r.IsRemote,
			Seniority:       models.Seniority(r.Seniority),
			SalaryInfo:      r.SalaryInfo,
			ApplicationLink: r.ApplicationLink,
			RawText:         r.RawText,
		},
		Result: models.MatchResult{
			Score:         r.MatchScore,
			MatchReasons:  matchReasons,
			FilterReasons: filterReasons,
			SemanticScore: r.SemanticScore,
			KeywordScore:  r.KeywordScore,
		},
		CreatedAt: r.CreatedAt,
	}
}

// Filters

// AddFilter stores a new filter row and returns its ID
func (s *Store) AddFilter(ctx context.Context, kind models.FilterKind, value string) (int64, error) {
	record := FilterRecord{FilterType: string(kind), FilterValue: value, IsActive: true}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return 0, fmt.Errorf("add filter: %w", err)
	}
	return record.ID, nil
}

// RemoveFilter deletes a filter row by ID
func (s *Store) RemoveFilter(ctx context.Context, id int64) (bool, error) {
	tx := s.db.WithContext(ctx).Delete(&FilterRecord{}, id)
	if tx.Error != nil {
		return false, fmt.Errorf("remove filter: %w", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

// ClearFilters deletes all filter rows and returns the number removed
func (s *Store) ClearFilters(ctx context.Context) (int64, error) {
	tx := s.db.WithContext(ctx).Where("1 = 1").Delete(&FilterRecord{})
	if tx.Error != nil {
		return 0, fmt.Errorf("clear filters: %w", tx.Error)
	}
	return tx.RowsAffected, nil
}

// ListFilters returns all active filter rows
func (s *Store) ListFilters(ctx context.Context) ([]models.Filter, error) {
	var records []FilterRecord
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("created_at ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list filters: %w", err)
	}

	filters := make([]models.Filter, 0, len(records))
	for _, r := range records {
		kind, ok := models.ParseFilterKind(r.FilterType)
		if !ok {
			continue
		}
		filters = append(filters, models.Filter{
			ID:        r.ID,
			Kind:      kind,
			Value:     r.FilterValue,
			IsActive:  r.IsActive,
			CreatedAt: r.CreatedAt,
		})
	}
	return filters, nil
}

// FilterSet loads all active filters folded into a typed set, with the
// stored threshold applied
func (s *Store) FilterSet(ctx context.Context) (models.FilterSet, error) {
	filters, err := s.ListFilters(ctx)
	if err != nil {
		return models.FilterSet{}, err
	}

	fs := models.FilterSetFromRecords(filters)
	if threshold, err := s.GetIntSetting(ctx, SettingMatchThreshold, fs.Threshold); err == nil {
		fs.Threshold = threshold
	}
	return fs, nil
}

// Settings

// GetSetting returns the value for a key, or the default when unset
func (s *Store) GetSetting(ctx context.Context, key, defaultValue string) (string, error) {
	var record SettingRecord
	err := s.db.WithContext(ctx).First(&record, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return defaultValue, nil
		}
		return defaultValue, fmt.Errorf("get setting: %w", err)
	}
	return record.Value, nil
}

// SetSetting stores a key/value setting, replacing any existing value
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	record := SettingRecord{Key: key, Value: value}
	tx := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&record)
	if tx.Error != nil {
		return fmt.Errorf("set setting: %w", tx.Error)
	}
	return nil
}

// GetIntSetting returns an integer setting, or the default when unset or
// unparseable
func (s *Store) GetIntSetting(ctx context.Context, key string, defaultValue int) (int, error) {
	value, err := s.GetSetting(ctx, key, strconv.Itoa(defaultValue))
	if err != nil {
		return defaultValue, err
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, nil
	}
	return parsed, nil
}

// GetBoolSetting returns a boolean setting, or the default when unset
func (s *Store) GetBoolSetting(ctx context.Context, key string, defaultValue bool) (bool, error) {
	fallback := "false"
	if defaultValue {
		fallback = "true"
	}
	value, err := s.GetSetting(ctx, key, fallback)
	if err != nil {
		return defaultValue, err
	}
	return value == "true" || value == "1", nil
}

// Stats

// Stats returns aggregate counters for the status surfaces
func (s *Store) Stats(ctx context.Context) (models.Status, error) {
	var status models.Status

	if err := s.db.WithContext(ctx).Model(&ChannelRecord{}).Where("is_active = ?", true).Count(&status.ChannelsCount).Error; err != nil {
		return status, fmt.Errorf("count channels: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&ProcessedMessageRecord{}).Count(&status.ProcessedCount).Error; err != nil {
		return status, fmt.Errorf("count processed: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&MatchedJobRecord{}).Count(&status.MatchedCount).Error; err != nil {
		return status, fmt.Errorf("count matched: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&FilterRecord{}).Where("is_active = ?", true).Count(&status.FiltersCount).Error; err != nil {
		return status, fmt.Errorf("count filters: %w", err)
	}

	if last, err := s.LastMatch(ctx); err == nil && last != nil {
		status.LastMatch = &last.CreatedAt
	}

	return status, nil
}
