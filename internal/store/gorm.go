package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"einvoice/internal/logger"
)

// GormStore keeps records in a SQL database through gorm.
type GormStore struct {
	db  *gorm.DB
	log zerolog.Logger
}

// OpenMySQL connects to MySQL and migrates the schema.
func OpenMySQL(dsn string) (*GormStore, error) {
	const op = "OpenMySQL"

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect: %w", op, err)
	}
	return NewGormStore(db)
}

// NewGormStore wraps an open connection and migrates the schema.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	const op = "NewGormStore"

	if err := db.AutoMigrate(&Record{}, &Share{}); err != nil {
		return nil, fmt.Errorf("%s: failed to migrate: %w", op, err)
	}

	return &GormStore{
		db:  db,
		log: logger.WithComponent("gorm-store"),
	}, nil
}

func (s *GormStore) Create(ctx context.Context, rec *Record) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return translate("Create", err)
	}
	s.log.Debug().Str("id", rec.ID.String()).Str("invoice_id", rec.InvoiceID).Msg("Record created")
	return nil
}

func (s *GormStore) Update(ctx context.Context, rec *Record) error {
	res := s.db.WithContext(ctx).
		Model(&Record{ID: rec.ID}).
		Select("invoice_id", "xml", "valid", "updated_at").
		Updates(rec)
	if res.Error != nil {
		return translate("Update", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	// Reload so rec carries the owner and timestamps like the memory store.
	if err := s.db.WithContext(ctx).First(rec, "id = ?", rec.ID).Error; err != nil {
		return translate("Update", err)
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	var rec Record
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, translate("Get", err)
	}
	return &rec, nil
}

func (s *GormStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&Share{}, "record_id = ?", id).Error; err != nil {
			return translate("Delete", err)
		}
		res := tx.Delete(&Record{}, "id = ?", id)
		if res.Error != nil {
			return translate("Delete", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *GormStore) ListByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	var records []Record
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at, id").
		Find(&records).Error
	if err != nil {
		return nil, translate("ListByOwner", err)
	}
	return records, nil
}

func (s *GormStore) ListSharedWith(ctx context.Context, userID string) ([]Record, error) {
	var records []Record
	err := s.db.WithContext(ctx).
		Joins("JOIN invoice_shares ON invoice_shares.record_id = invoice_records.id").
		Where("invoice_shares.user_id = ?", userID).
		Order("invoice_records.created_at, invoice_records.id").
		Find(&records).Error
	if err != nil {
		return nil, translate("ListSharedWith", err)
	}
	return records, nil
}

func (s *GormStore) Share(ctx context.Context, id uuid.UUID, userID string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&Share{RecordID: id, UserID: userID}).Error
	if err != nil {
		return translate("Share", err)
	}
	return nil
}

func (s *GormStore) IsSharedWith(ctx context.Context, id uuid.UUID, userID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&Share{}).
		Where("record_id = ? AND user_id = ?", id, userID).
		Count(&count).Error
	if err != nil {
		return false, translate("IsSharedWith", err)
	}
	return count > 0, nil
}

func translate(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return fmt.Errorf("store: %s: %w", op, err)
}
