package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Predefined errors for store operations
var (
	ErrCategoryNotFound     = errors.New("store: category not found")
	ErrCategoryCodeExists   = errors.New("store: category code already exists")
	ErrSubcategoryNotFound  = errors.New("store: subcategory not found")
	ErrSubcategoryExists    = errors.New("store: subcategory code already exists")
	ErrItemNotFound         = errors.New("store: catalog item not found")
	ErrItemCodeExists       = errors.New("store: catalog item code already exists")
	ErrPreQuotationNotFound = errors.New("store: pre-quotation not found")
	ErrSalesItemNotFound    = errors.New("store: sales item not found")
	ErrSalesItemExists      = errors.New("store: sales item code already exists")
	ErrQuotationNotFound    = errors.New("store: quotation not found")
	ErrUpdateFailed         = errors.New("store: update failed, 0 rows affected")
)

// PostgresStore implements CatalogStorer, PreQuotationStorer, SalesItemStorer
// and QuotationStorer using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const pqUniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique-constraint violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

// marshalJSON serializes a value for a JSONB column. Opaque payloads like
// line specifications stay structured in the domain and only become text
// here, at the persistence boundary.
func marshalJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("store: marshal jsonb payload: %w", err)
	}
	return data, nil
}

func unmarshalJSON(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("store: unmarshal jsonb payload: %w", err)
	}
	return nil
}
