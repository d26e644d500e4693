package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ZaguanLabs/gotmemo"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

type translationRow struct {
	ID             string    `gorm:"type:text;primaryKey"`
	SourceText     string    `gorm:"type:text;not null"`
	TargetLang     string    `gorm:"type:varchar(35);not null;index"`
	TranslatedText string    `gorm:"type:text;not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (translationRow) TableName() string { return "translations" }

func (r translationRow) record() Record {
	return Record{
		SourceText:     r.SourceText,
		TargetLang:     r.TargetLang,
		TranslatedText: r.TranslatedText,
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
}

// PostgresStore is a PostgreSQL-backed translation store, shared by every
// process pointed at the same database.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore connects to the database at dsn and migrates the schema.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewPostgresStoreFromDB(db)
}

// NewPostgresStoreFromDB wraps an existing gorm connection and migrates the schema.
func NewPostgresStoreFromDB(db *gorm.DB) (*PostgresStore, error) {
	if err := db.AutoMigrate(&translationRow{}); err != nil {
		return nil, fmt.Errorf("migrate translations: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Get retrieves a record.
func (s *PostgresStore) Get(ctx context.Context, key string) (Record, bool, error) {
	var row translationRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, &gotmemo.StoreError{Op: "get", Key: key, Cause: err}
	}
	return row.record(), true, nil
}

// Put upserts a record.
func (s *PostgresStore) Put(ctx context.Context, key string, rec Record) error {
	row := translationRow{
		ID:             key,
		SourceText:     rec.SourceText,
		TargetLang:     rec.TargetLang,
		TranslatedText: rec.TranslatedText,
		UpdatedAt:      rec.UpdatedAt,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return &gotmemo.StoreError{Op: "put", Key: key, Cause: err}
	}
	return nil
}

// Records returns all records ordered by key.
func (s *PostgresStore) Records(ctx context.Context) ([]KeyedRecord, error) {
	var rows []translationRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, &gotmemo.StoreError{Op: "list", Cause: err}
	}

	result := make([]KeyedRecord, len(rows))
	for i, row := range rows {
		result[i] = KeyedRecord{Key: row.ID, Record: row.record()}
	}
	return result, nil
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Verify PostgresStore implements Lister
var _ Lister = (*PostgresStore)(nil)
