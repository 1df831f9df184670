package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"prequote-service/internal/domain"
)

// --- PreQuotationStorer implementation ---
//
// Lines are owned by their document: every write replaces the full line set
// inside one transaction, and deleting a document cascades to its lines.

func (s *PostgresStore) CreatePreQuotation(ctx context.Context, doc *domain.PreQuotation) (*domain.PreQuotation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: CreatePreQuotation begin tx: %w", err)
	}
	defer tx.Rollback()

	if doc.Status == "" {
		doc.Status = domain.StatusDraft
	}

	query := `
		INSERT INTO prequote.pre_quotations
			(customer, lead, contact_person, date, valid_until, status, notes,
			 estimated_total_cost, estimated_selling_price, total_profit_amount, total_vat_amount, overall_profit_margin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at;
	`
	created := *doc
	err = tx.QueryRowContext(ctx, query,
		doc.Customer, doc.Lead, doc.ContactPerson, doc.Date, doc.ValidUntil, doc.Status, doc.Notes,
		doc.EstimatedTotalCost, doc.EstimatedSellingPrice, doc.TotalProfitAmount, doc.TotalVATAmount, doc.OverallProfitMargin).
		Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("store: CreatePreQuotation failed to scan row: %w", err)
	}

	if err := s.insertLines(ctx, tx, created.ID, doc.Lines); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: CreatePreQuotation commit: %w", err)
	}

	return s.GetPreQuotationByID(ctx, created.ID)
}

func (s *PostgresStore) insertLines(ctx context.Context, tx *sql.Tx, docID int64, lines []domain.PreQuotationLine) error {
	query := `
		INSERT INTO prequote.pre_quotation_lines
			(pre_quotation_id, position, item_name, item_code, category, subcategory, description, quantity, uom,
			 cost_per_unit, material_cost, labor_cost, overhead_cost,
			 selling_price_per_unit, profit_margin_percent, vat_rate,
			 specifications, notes, manufacturing_notes,
			 total_cost, total_selling_amount, profit_amount, total_vat_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23);
	`
	for i, line := range lines {
		specsJSON, err := marshalJSON(line.Specifications)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query,
			docID, i, line.ItemName, line.ItemCode, line.Category, line.Subcategory, line.Description, line.Quantity, line.UOM,
			line.CostPerUnit, line.MaterialCost, line.LaborCost, line.OverheadCost,
			line.SellingPricePerUnit, line.ProfitMarginPercent, line.VATRate,
			specsJSON, line.Notes, line.ManufacturingNotes,
			line.TotalCost, line.TotalSellingAmount, line.ProfitAmount, line.TotalVATAmount); err != nil {
			return fmt.Errorf("store: insert pre-quotation line %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *PostgresStore) GetPreQuotationByID(ctx context.Context, id int64) (*domain.PreQuotation, error) {
	query := `
		SELECT id, customer, lead, contact_person, date, valid_until, status, notes,
		       estimated_total_cost, estimated_selling_price, total_profit_amount, total_vat_amount, overall_profit_margin,
		       created_at, updated_at
		FROM prequote.pre_quotations
		WHERE id = $1;
	`
	var doc domain.PreQuotation
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.Customer, &doc.Lead, &doc.ContactPerson, &doc.Date, &doc.ValidUntil, &doc.Status, &doc.Notes,
		&doc.EstimatedTotalCost, &doc.EstimatedSellingPrice, &doc.TotalProfitAmount, &doc.TotalVATAmount, &doc.OverallProfitMargin,
		&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPreQuotationNotFound
		}
		return nil, fmt.Errorf("store: GetPreQuotationByID failed to scan row: %w", err)
	}

	lines, err := s.loadLines(ctx, id)
	if err != nil {
		return nil, err
	}
	doc.Lines = lines
	return &doc, nil
}

func (s *PostgresStore) loadLines(ctx context.Context, docID int64) ([]domain.PreQuotationLine, error) {
	query := `
		SELECT id, item_name, item_code, category, subcategory, description, quantity, uom,
		       cost_per_unit, material_cost, labor_cost, overhead_cost,
		       selling_price_per_unit, profit_margin_percent, vat_rate,
		       specifications, notes, manufacturing_notes,
		       total_cost, total_selling_amount, profit_amount, total_vat_amount
		FROM prequote.pre_quotation_lines
		WHERE pre_quotation_id = $1
		ORDER BY position ASC;
	`
	rows, err := s.db.QueryContext(ctx, query, docID)
	if err != nil {
		return nil, fmt.Errorf("store: load pre-quotation lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.PreQuotationLine
	for rows.Next() {
		var line domain.PreQuotationLine
		var specsJSON []byte
		if err := rows.Scan(&line.ID, &line.ItemName, &line.ItemCode, &line.Category, &line.Subcategory, &line.Description, &line.Quantity, &line.UOM,
			&line.CostPerUnit, &line.MaterialCost, &line.LaborCost, &line.OverheadCost,
			&line.SellingPricePerUnit, &line.ProfitMarginPercent, &line.VATRate,
			&specsJSON, &line.Notes, &line.ManufacturingNotes,
			&line.TotalCost, &line.TotalSellingAmount, &line.ProfitAmount, &line.TotalVATAmount); err != nil {
			return nil, fmt.Errorf("store: scan pre-quotation line: %w", err)
		}
		if err := unmarshalJSON(specsJSON, &line.Specifications); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: pre-quotation lines iteration error: %w", err)
	}
	return lines, nil
}

func (s *PostgresStore) ListPreQuotations(ctx context.Context, params ListPreQuotationsParams) ([]domain.PreQuotation, int, error) {
	countQuery := `SELECT COUNT(*) FROM prequote.pre_quotations WHERE ($1::text IS NULL OR status = $1);`
	var status *string
	if params.Status != nil {
		v := string(*params.Status)
		status = &v
	}

	var totalCount int
	if err := s.db.QueryRowContext(ctx, countQuery, status).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListPreQuotations count failed: %w", err)
	}
	if totalCount == 0 {
		return []domain.PreQuotation{}, 0, nil
	}

	query := `
		SELECT id, customer, lead, contact_person, date, valid_until, status, notes,
		       estimated_total_cost, estimated_selling_price, total_profit_amount, total_vat_amount, overall_profit_margin,
		       created_at, updated_at
		FROM prequote.pre_quotations
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := s.db.QueryContext(ctx, query, status, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListPreQuotations query failed: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.PreQuotation, 0, params.Limit)
	for rows.Next() {
		var doc domain.PreQuotation
		if err := rows.Scan(&doc.ID, &doc.Customer, &doc.Lead, &doc.ContactPerson, &doc.Date, &doc.ValidUntil,
			&doc.Status, &doc.Notes, &doc.EstimatedTotalCost, &doc.EstimatedSellingPrice, &doc.TotalProfitAmount,
			&doc.TotalVATAmount, &doc.OverallProfitMargin, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("store: ListPreQuotations failed to scan row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: ListPreQuotations iteration error: %w", err)
	}
	return docs, totalCount, nil
}

func (s *PostgresStore) UpdatePreQuotation(ctx context.Context, doc *domain.PreQuotation) (*domain.PreQuotation, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: UpdatePreQuotation begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE prequote.pre_quotations
		SET customer = $1, lead = $2, contact_person = $3, date = $4, valid_until = $5, status = $6, notes = $7,
			estimated_total_cost = $8, estimated_selling_price = $9, total_profit_amount = $10,
			total_vat_amount = $11, overall_profit_margin = $12, updated_at = CURRENT_TIMESTAMP
		WHERE id = $13;
	`
	result, err := tx.ExecContext(ctx, query,
		doc.Customer, doc.Lead, doc.ContactPerson, doc.Date, doc.ValidUntil, doc.Status, doc.Notes,
		doc.EstimatedTotalCost, doc.EstimatedSellingPrice, doc.TotalProfitAmount,
		doc.TotalVATAmount, doc.OverallProfitMargin, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("store: UpdatePreQuotation exec failed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("store: UpdatePreQuotation rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrPreQuotationNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM prequote.pre_quotation_lines WHERE pre_quotation_id = $1;`, doc.ID); err != nil {
		return nil, fmt.Errorf("store: UpdatePreQuotation clear lines: %w", err)
	}
	if err := s.insertLines(ctx, tx, doc.ID, doc.Lines); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: UpdatePreQuotation commit: %w", err)
	}

	return s.GetPreQuotationByID(ctx, doc.ID)
}

func (s *PostgresStore) UpdatePreQuotationStatus(ctx context.Context, id int64, status domain.Status) error {
	query := `
		UPDATE prequote.pre_quotations
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2;
	`
	result, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("store: UpdatePreQuotationStatus exec failed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: UpdatePreQuotationStatus rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPreQuotationNotFound
	}
	return nil
}

func (s *PostgresStore) DeletePreQuotation(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM prequote.pre_quotations WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("store: DeletePreQuotation exec failed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeletePreQuotation rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPreQuotationNotFound
	}
	return nil
}
