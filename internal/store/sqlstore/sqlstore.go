// Package sqlstore persists topic snapshots and messages with gorm on SQLite.
package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	glog "gorm.io/gorm/logger"

	"topic-insights-go/internal/logger"
	"topic-insights-go/internal/store"
	"topic-insights-go/internal/types"
)

type sessionActivity struct {
	SessionID string
	LastSeen  int64
}

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// Open connects to dsn (a file path or ":memory:") and migrates the schema.
func Open(dsn string, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Discard()
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: glog.New(log.Component("sqlstore"), glog.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  glog.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	if strings.Contains(dsn, ":memory:") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// every pooled connection would otherwise get its own empty database
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&TopicRow{}, &MessageRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ReplaceTopics deletes the old rows of client#period and inserts the new
// ones in one transaction.
func (s *Store) ReplaceTopics(ctx context.Context, clientID string, period types.PeriodType, bounds types.PeriodBounds, topics []types.Topic) error {
	now := s.now().UTC()
	rows := make([]TopicRow, len(topics))
	for i, t := range topics {
		if t.TopicID == "" {
			t.TopicID = store.TopicID(t.Rank)
		}
		rows[i] = toTopicRow(clientID, period, bounds, now, t)
		rows[i].ExpiresAt = now.Add(store.Retention).Unix()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("client_period = ?", period.Key(clientID)).Delete(&TopicRow{}).Error; err != nil {
			return fmt.Errorf("delete old topics: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert topics: %w", err)
		}
		return nil
	})
}

// GetTopics returns the unexpired snapshot for client#period ordered by rank.
func (s *Store) GetTopics(ctx context.Context, clientID string, period types.PeriodType) (types.TopicSet, error) {
	var rows []TopicRow
	err := s.db.WithContext(ctx).
		Where("client_period = ? AND expires_at > ?", period.Key(clientID), s.now().Unix()).
		Order("rank").
		Find(&rows).Error
	if err != nil {
		return types.TopicSet{}, fmt.Errorf("query topics: %w", err)
	}
	if len(rows) == 0 {
		return types.TopicSet{}, store.ErrNotFound
	}

	set := types.TopicSet{
		ClientID:    clientID,
		Period:      period,
		Bounds:      types.PeriodBounds{Start: rows[0].PeriodStart, End: rows[0].PeriodEnd},
		LastUpdated: rows[0].LastUpdated,
		Topics:      make([]types.Topic, 0, len(rows)),
	}
	for _, r := range rows {
		set.Topics = append(set.Topics, r.topic())
	}
	return set, nil
}

func (s *Store) SaveMessages(ctx context.Context, clientID string, messages []types.Message) error {
	if len(messages) == 0 {
		return nil
	}
	rows := make([]MessageRow, len(messages))
	for i, m := range messages {
		ts := m.Timestamp
		if ts.IsZero() {
			ts = s.now()
		}
		rows[i] = MessageRow{
			ClientID:  clientID,
			SessionID: m.SessionID,
			Role:      string(m.Role),
			Text:      m.Text,
			Timestamp: ts.UTC(),
			UnixMilli: ts.UnixMilli(),
		}
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&rows, 200).Error; err != nil {
		return fmt.Errorf("insert messages: %w", err)
	}
	return nil
}

// SessionIDs lists the client's sessions active since the given time, most
// recent first.
func (s *Store) SessionIDs(ctx context.Context, clientID string, since time.Time) ([]string, error) {
	var rows []sessionActivity
	err := s.db.WithContext(ctx).Model(&MessageRow{}).
		Select("session_id, MAX(unix_milli) AS last_seen").
		Where("client_id = ? AND unix_milli >= ?", clientID, since.UnixMilli()).
		Group("session_id").
		Order("last_seen DESC, session_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.SessionID
	}
	return ids, nil
}

func (s *Store) SessionMessages(ctx context.Context, sessionID string) ([]types.Message, error) {
	var rows []MessageRow
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("unix_milli, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch session %s: %w", sessionID, err)
	}
	out := make([]types.Message, len(rows))
	for i, r := range rows {
		out[i] = types.Message{
			SessionID: r.SessionID,
			Role:      types.Role(r.Role),
			Text:      r.Text,
			Timestamp: r.Timestamp,
		}
	}
	return out, nil
}
