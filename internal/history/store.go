package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"agent-dispatch/internal/config"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("history record not found")

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Record is a single dispatch as stored in the history database.
type Record struct {
	ID         string    `gorm:"primaryKey;size:36"`
	Agent      string    `gorm:"size:128;index"`
	Prompt     string    `gorm:"type:text"`
	Files      string    `gorm:"type:text"`
	Outcome    string    `gorm:"size:32"`
	Status     int
	Text       string    `gorm:"type:text"`
	DurationMS int64
	CreatedAt  time.Time `gorm:"index"`
}

// TableName pins the table name independently of the struct name.
func (Record) TableName() string {
	return "dispatch_records"
}

// Filter narrows a history listing.
type Filter struct {
	Agent string
	Limit int
}

// Store persists dispatch records through gorm.
type Store struct {
	db *gorm.DB
}

// Open connects to the configured database and migrates the schema.
func Open(cfg config.HistoryConfig) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.HistoryDriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	case config.HistoryDriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported history driver: %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s history database: %w", cfg.Driver, err)
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Record appends a dispatch. Missing IDs and timestamps are filled in.
func (s *Store) Record(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("insert history record: %w", err)
	}
	return nil
}

// List returns records newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Record, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if filter.Agent != "" {
		query = query.Where("agent = ?", filter.Agent)
	}

	var records []Record
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list history records: %w", err)
	}
	return records, nil
}

// Get returns a single record by ID.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get history record: %w", err)
	}
	return rec, nil
}

// Prune deletes records created before the cutoff and reports how many were removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("created_at < ?", before.UTC()).Delete(&Record{})
	if result.Error != nil {
		return 0, fmt.Errorf("prune history records: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
