// Package store persists generated invoice documents and their share grants.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no record matches the given id.
	ErrNotFound = errors.New("store: record not found")

	// ErrDuplicate is returned when an owner already has a record with the same invoice id.
	ErrDuplicate = errors.New("store: duplicate invoice id for owner")
)

// Record is one stored invoice document.
type Record struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	OwnerID   string    `gorm:"size:64;not null;uniqueIndex:idx_owner_invoice" json:"ownerId"`
	InvoiceID string    `gorm:"size:100;not null;uniqueIndex:idx_owner_invoice" json:"invoiceId"`
	XML       string    `gorm:"type:longtext;not null" json:"xml"`
	Valid     bool      `gorm:"not null" json:"valid"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Record) TableName() string {
	return "invoice_records"
}

func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Share grants read access on a record to another user.
type Share struct {
	RecordID  uuid.UUID `gorm:"type:char(36);primaryKey" json:"invoiceRecordId"`
	UserID    string    `gorm:"size:64;primaryKey;index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Share) TableName() string {
	return "invoice_shares"
}

// Repository is implemented by the gorm and in-memory stores. Listings are returned in creation
// order.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	Update(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id uuid.UUID) (*Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID string) ([]Record, error)
	ListSharedWith(ctx context.Context, userID string) ([]Record, error)
	// Share is idempotent.
	Share(ctx context.Context, id uuid.UUID, userID string) error
	IsSharedWith(ctx context.Context, id uuid.UUID, userID string) (bool, error)
}
