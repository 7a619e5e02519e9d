package events

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Record is the archived form of a client event.
type Record struct {
	ID         uint      `gorm:"primaryKey"`
	EventID    string    `gorm:"size:36;uniqueIndex:idx_client_events_event_id;not null"`
	Name       string    `gorm:"size:255;index"`
	RequestID  string    `gorm:"size:64"`
	Payload    string    `gorm:"type:text;not null"`
	ReceivedAt time.Time `gorm:"index;not null"`
}

// TableName defines the table name for archived events.
func (Record) TableName() string {
	return "client_events"
}

// ArchiveSink appends events to a SQLite table.
type ArchiveSink struct {
	db     *gorm.DB
	logger *logrus.Logger
}

var _ Sink = (*ArchiveSink)(nil)

// NewArchiveSink constructs a Gorm-backed archive sink.
func NewArchiveSink(db *gorm.DB, logger *logrus.Logger) (*ArchiveSink, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}
	return &ArchiveSink{db: db, logger: logger}, nil
}

// Write inserts the event.
func (s *ArchiveSink) Write(ctx context.Context, event Event) error {
	record := &Record{
		EventID:    event.ID,
		Name:       event.Name,
		RequestID:  event.RequestID,
		Payload:    string(event.Payload),
		ReceivedAt: event.ReceivedAt,
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return eris.Wrapf(err, "archiving event: %s", event.ID)
	}
	return nil
}

// Recent returns up to limit archived events, newest first.
func (s *ArchiveSink) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	var records []Record
	if err := s.db.WithContext(ctx).Order("received_at DESC, id DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, eris.Wrap(err, "listing archived events")
	}
	return records, nil
}

// Migrate applies the event archive schema.
func Migrate(ctx context.Context, db *gorm.DB, logger *logrus.Logger) error {
	if db == nil {
		return eris.New("gorm DB is required")
	}

	logFields := logrus.Fields{"component": "events.migrate"}
	if logger != nil {
		logger.WithFields(logFields).Info("applying event archive schema")
	}

	if err := db.WithContext(ctx).AutoMigrate(&Record{}); err != nil {
		if logger != nil {
			logger.WithFields(logFields).WithField("error", err.Error()).Error("event archive migration failed")
		}
		return eris.Wrap(err, "auto migrating event archive schema")
	}

	return nil
}
