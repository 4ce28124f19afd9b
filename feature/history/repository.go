package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mod-builder/core/apperr"
	"mod-builder/core/database"
	"mod-builder/feature/generation"

	"gorm.io/gorm"
)

// Repository stores job records.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository. A nil db yields nil.
func NewRepository(db *gorm.DB) *Repository {
	if db == nil {
		return nil
	}
	return &Repository{db: db}
}

// Migrate creates or updates the history table.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&JobRecord{})
}

// CheckSchema returns the history columns missing from the database.
func (r *Repository) CheckSchema() ([]string, error) {
	return database.MissingColumns(r.db, JobRecord{}.TableName(), Columns)
}

// Save inserts one record.
func (r *Repository) Save(ctx context.Context, rec *JobRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to save job %s: %w", rec.ID, err)
	}
	return nil
}

// Get returns the record with id.
func (r *Repository) Get(ctx context.Context, id string) (*JobRecord, error) {
	var rec JobRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("job %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns the most recent records, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]JobRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var recs []JobRecord
	if err := r.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&recs).Error; err != nil {
		return nil, err
	}
	return recs, nil
}

// Record implements generation.Recorder.
func (r *Repository) Record(ctx context.Context, status generation.Status) error {
	return r.Save(ctx, FromStatus(status))
}

// FromStatus converts a finished job status into a record.
func FromStatus(status generation.Status) *JobRecord {
	rec := &JobRecord{
		ID:         status.ID,
		Stage:      string(status.Stage),
		Selections: status.Selections,
		Auxiliary:  status.Auxiliary,
		CreatedAt:  status.CreatedAt,
		FinishedAt: status.FinishedAt,
	}
	if res := status.Result; res != nil {
		rec.Success = res.Success
		rec.Message = res.Message
		rec.SuccessCount = res.SuccessCount
		if len(res.FailedItems) > 0 {
			if data, err := json.Marshal(res.FailedItems); err == nil {
				rec.FailedItems = string(data)
			}
		}
	}
	return rec
}
