// Package invoice turns invoice payloads into stored, validated UBL documents.
//
// The Service checks the payload shape, renders the document with the ubl package, runs the
// Peppol rules from the validation package over the result and persists the document through a
// store.Repository. Documents are kept even when the rules report errors; the record's Valid flag
// captures the outcome.
//
// Access rules:
//   - the owner can read, update, delete, share and re-validate a record
//   - users a record was shared with can read and re-validate it
//   - anyone else gets ErrInvoiceNotFound, so record ids are not disclosed
package invoice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"einvoice/internal/listing"
	"einvoice/internal/logger"
	"einvoice/internal/store"
	"einvoice/internal/summary"
	"einvoice/internal/ubl"
	"einvoice/internal/validation"
	"einvoice/pkg/models"
)

// List scopes
const (
	ScopeMine   = "mine"
	ScopeShared = "shared"
)

// Sort fields
const (
	SortIssueDate = "issueDate"
	SortDueDate   = "dueDate"
	SortTotal     = "total"
)

var comparators = map[string]func(a, b Entry) int{
	SortIssueDate: func(a, b Entry) int { return summary.ByIssueDate(a.Summary, b.Summary) },
	SortDueDate:   func(a, b Entry) int { return summary.ByDueDate(a.Summary, b.Summary) },
	SortTotal:     func(a, b Entry) int { return summary.ByTotal(a.Summary, b.Summary) },
}

// Service coordinates generation, validation and storage of invoices.
type Service struct {
	repo      store.Repository
	validator *validation.Validator
	log       zerolog.Logger
}

// Result is the outcome of creating, updating or re-validating an invoice.
type Result struct {
	Record     *store.Record
	Validation *models.ValidationResult
}

// Entry is one row of an invoice listing.
type Entry struct {
	ID      uuid.UUID `json:"id"`
	OwnerID string    `json:"ownerId"`
	Valid   bool      `json:"valid"`
	summary.Summary
}

// ListOptions selects, orders and paginates a listing. Empty Scope means ScopeMine and empty Sort
// keeps creation order.
type ListOptions struct {
	Scope    string
	Sort     string
	Order    string // asc or desc
	Page     int
	PageSize int
}

func NewService(repo store.Repository, validator *validation.Validator) *Service {
	return &Service{
		repo:      repo,
		validator: validator,
		log:       logger.WithComponent("invoice-service"),
	}
}

// Create checks inv, renders and validates the document and stores it for owner.
func (s *Service) Create(ctx context.Context, owner string, inv *models.Invoice) (*Result, error) {
	const op = "Create"

	if err := Check(inv); err != nil {
		return nil, wrap(op, err)
	}

	doc, result, err := s.render(inv)
	if err != nil {
		return nil, wrap(op, err)
	}

	rec := &store.Record{
		OwnerID:   owner,
		InvoiceID: inv.InvoiceID,
		XML:       doc,
		Valid:     result.Valid,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, wrap(op, storeError(err))
	}

	s.log.Info().
		Str("id", rec.ID.String()).
		Str("invoice_id", rec.InvoiceID).
		Str("owner", owner).
		Bool("valid", result.Valid).
		Int("errors", len(result.Errors)).
		Msg("Invoice created")

	return &Result{Record: rec, Validation: result}, nil
}

// Update replaces the document of an existing invoice owned by owner.
func (s *Service) Update(ctx context.Context, owner string, id uuid.UUID, inv *models.Invoice) (*Result, error) {
	const op = "Update"

	current, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, wrap(op, err)
	}
	if err := Check(inv); err != nil {
		return nil, wrap(op, err)
	}

	doc, result, err := s.render(inv)
	if err != nil {
		return nil, wrap(op, err)
	}

	rec := current
	rec.InvoiceID = inv.InvoiceID
	rec.XML = doc
	rec.Valid = result.Valid
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, wrap(op, storeError(err))
	}

	s.log.Info().
		Str("id", id.String()).
		Str("invoice_id", rec.InvoiceID).
		Bool("valid", result.Valid).
		Msg("Invoice updated")

	return &Result{Record: rec, Validation: result}, nil
}

// Validate re-runs the rules over a stored document. When the owner re-validates, a changed
// outcome is written back to the record.
func (s *Service) Validate(ctx context.Context, user string, id uuid.UUID) (*Result, error) {
	const op = "Validate"

	rec, err := s.visible(ctx, user, id)
	if err != nil {
		return nil, wrap(op, err)
	}

	result := s.validator.Validate(rec.XML)
	if rec.OwnerID == user && rec.Valid != result.Valid {
		rec.Valid = result.Valid
		if err := s.repo.Update(ctx, rec); err != nil {
			return nil, wrap(op, storeError(err))
		}
	}

	return &Result{Record: rec, Validation: result}, nil
}

// ValidateXML runs the rules over a document that is not stored.
func (s *Service) ValidateXML(xml string) *models.ValidationResult {
	return s.validator.Validate(xml)
}

// Get returns a record the user owns or was given access to.
func (s *Service) Get(ctx context.Context, user string, id uuid.UUID) (*store.Record, error) {
	rec, err := s.visible(ctx, user, id)
	return rec, wrap("Get", err)
}

// Delete removes a record owned by owner together with its shares.
func (s *Service) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	const op = "Delete"

	if _, err := s.owned(ctx, owner, id); err != nil {
		return wrap(op, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrap(op, storeError(err))
	}

	s.log.Info().Str("id", id.String()).Str("owner", owner).Msg("Invoice deleted")
	return nil
}

// Share gives userID read access to a record owned by owner. Sharing twice is a no-op.
func (s *Service) Share(ctx context.Context, owner string, id uuid.UUID, userID string) error {
	const op = "Share"

	userID = strings.TrimSpace(userID)
	switch {
	case userID == "":
		return wrap(op, ValidationErrors{NewValidationError("userId", nil, "is required")})
	case userID == owner:
		return wrap(op, ValidationErrors{NewValidationError("userId", userID, "cannot share an invoice with its owner")})
	}

	if _, err := s.owned(ctx, owner, id); err != nil {
		return wrap(op, err)
	}
	if err := s.repo.Share(ctx, id, userID); err != nil {
		return wrap(op, storeError(err))
	}

	s.log.Info().Str("id", id.String()).Str("shared_with", userID).Msg("Invoice shared")
	return nil
}

// Entries returns every invoice in scope for user, in creation order.
func (s *Service) Entries(ctx context.Context, user, scope string) ([]Entry, error) {
	const op = "Entries"

	var (
		records []store.Record
		err     error
	)
	switch scope {
	case "", ScopeMine:
		records, err = s.repo.ListByOwner(ctx, user)
	case ScopeShared:
		records, err = s.repo.ListSharedWith(ctx, user)
	default:
		return nil, wrap(op, ValidationErrors{
			NewValidationError("scope", scope, fmt.Sprintf("must be %q or %q", ScopeMine, ScopeShared)),
		})
	}
	if err != nil {
		return nil, wrap(op, err)
	}

	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		sum, ok := summary.FromXML(rec.XML)
		if !ok {
			s.log.Warn().Str("id", rec.ID.String()).Msg("Stored document could not be parsed")
			sum = summary.Summary{InvoiceID: rec.InvoiceID}
		}
		entries = append(entries, Entry{ID: rec.ID, OwnerID: rec.OwnerID, Valid: rec.Valid, Summary: sum})
	}
	return entries, nil
}

// List returns one page of the invoices in scope for user.
func (s *Service) List(ctx context.Context, user string, opts ListOptions) (listing.Page[Entry], error) {
	const op = "List"

	query := listing.Query[Entry]{Page: opts.Page, PageSize: opts.PageSize}

	var problems ValidationErrors
	if opts.Sort != "" {
		compare, ok := comparators[opts.Sort]
		if !ok {
			problems = append(problems, NewValidationError("sort", opts.Sort,
				fmt.Sprintf("must be one of %s, %s, %s", SortIssueDate, SortDueDate, SortTotal)))
		}
		query.Compare = compare
	}
	switch strings.ToLower(opts.Order) {
	case "", "asc":
	case "desc":
		query.Descending = true
	default:
		problems = append(problems, NewValidationError("order", opts.Order, `must be "asc" or "desc"`))
	}
	if len(problems) > 0 {
		return listing.Page[Entry]{}, wrap(op, problems)
	}

	entries, err := s.Entries(ctx, user, opts.Scope)
	if err != nil {
		return listing.Page[Entry]{}, wrap(op, err)
	}
	return listing.Apply(entries, query), nil
}

func (s *Service) render(inv *models.Invoice) (string, *models.ValidationResult, error) {
	doc, err := ubl.Generate(inv)
	if err != nil {
		return "", nil, fmt.Errorf("generate UBL: %w", err)
	}
	return doc, s.validator.Validate(doc), nil
}

// owned loads a record and hides it from anyone but its owner.
func (s *Service) owned(ctx context.Context, owner string, id uuid.UUID) (*store.Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if rec.OwnerID != owner {
		return nil, ErrInvoiceNotFound
	}
	return rec, nil
}

// visible loads a record for its owner or a user it was shared with.
func (s *Service) visible(ctx context.Context, user string, id uuid.UUID) (*store.Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if rec.OwnerID == user {
		return rec, nil
	}
	shared, err := s.repo.IsSharedWith(ctx, id, user)
	if err != nil {
		return nil, err
	}
	if !shared {
		return nil, ErrInvoiceNotFound
	}
	return rec, nil
}

func storeError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrInvoiceNotFound
	case errors.Is(err, store.ErrDuplicate):
		return ErrDuplicateInvoice
	}
	return err
}
