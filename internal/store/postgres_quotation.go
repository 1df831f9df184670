package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"prequote-service/internal/domain"
)

// --- SalesItemStorer implementation ---

func (s *PostgresStore) GetSalesItemByCode(ctx context.Context, code string) (*domain.SalesItem, error) {
	query := `
		SELECT id, code, name, description, item_group, stock_uom, valuation_rate, created_at
		FROM prequote.sales_items
		WHERE code = $1;
	`
	var item domain.SalesItem
	err := s.db.QueryRowContext(ctx, query, code).Scan(
		&item.ID, &item.Code, &item.Name, &item.Description, &item.ItemGroup,
		&item.StockUOM, &item.ValuationRate, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSalesItemNotFound
		}
		return nil, fmt.Errorf("store: GetSalesItemByCode failed to scan row: %w", err)
	}
	return &item, nil
}

func (s *PostgresStore) CreateSalesItem(ctx context.Context, item *domain.SalesItem) (*domain.SalesItem, error) {
	query := `
		INSERT INTO prequote.sales_items (code, name, description, item_group, stock_uom, valuation_rate)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, code, name, description, item_group, stock_uom, valuation_rate, created_at;
	`
	var created domain.SalesItem
	err := s.db.QueryRowContext(ctx, query,
		item.Code, item.Name, item.Description, item.ItemGroup, item.StockUOM, item.ValuationRate).
		Scan(&created.ID, &created.Code, &created.Name, &created.Description, &created.ItemGroup,
			&created.StockUOM, &created.ValuationRate, &created.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSalesItemExists
		}
		return nil, fmt.Errorf("store: CreateSalesItem failed to scan row: %w", err)
	}
	return &created, nil
}

// --- QuotationStorer implementation ---

func (s *PostgresStore) CreateQuotation(ctx context.Context, q *domain.Quotation) (*domain.Quotation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: CreateQuotation begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO prequote.quotations (pre_quotation_id, customer_name, transaction_date, valid_until)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at;
	`
	created := *q
	err = tx.QueryRowContext(ctx, query, q.PreQuotationID, q.CustomerName, q.TransactionDate, q.ValidUntil).
		Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: CreateQuotation failed to scan row: %w", err)
	}

	lineQuery := `
		INSERT INTO prequote.quotation_lines
			(quotation_id, position, item_code, item_name, description, quantity, uom, rate, amount, vat_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id;
	`
	for i := range created.Lines {
		line := &created.Lines[i]
		if err := tx.QueryRowContext(ctx, lineQuery,
			created.ID, i, line.ItemCode, line.ItemName, line.Description,
			line.Quantity, line.UOM, line.Rate, line.Amount, line.VATRate).Scan(&line.ID); err != nil {
			return nil, fmt.Errorf("store: insert quotation line %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: CreateQuotation commit: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) GetQuotationByID(ctx context.Context, id int64) (*domain.Quotation, error) {
	query := `
		SELECT id, pre_quotation_id, customer_name, transaction_date, valid_until, created_at
		FROM prequote.quotations
		WHERE id = $1;
	`
	var q domain.Quotation
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&q.ID, &q.PreQuotationID, &q.CustomerName, &q.TransactionDate, &q.ValidUntil, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuotationNotFound
		}
		return nil, fmt.Errorf("store: GetQuotationByID failed to scan row: %w", err)
	}

	lineQuery := `
		SELECT id, item_code, item_name, description, quantity, uom, rate, amount, vat_rate
		FROM prequote.quotation_lines
		WHERE quotation_id = $1
		ORDER BY position ASC;
	`
	rows, err := s.db.QueryContext(ctx, lineQuery, id)
	if err != nil {
		return nil, fmt.Errorf("store: load quotation lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.QuotationLine
		if err := rows.Scan(&line.ID, &line.ItemCode, &line.ItemName, &line.Description,
			&line.Quantity, &line.UOM, &line.Rate, &line.Amount, &line.VATRate); err != nil {
			return nil, fmt.Errorf("store: scan quotation line: %w", err)
		}
		q.Lines = append(q.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: quotation lines iteration error: %w", err)
	}
	return &q, nil
}
