package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"prequote-service/internal/domain"
)

// --- CatalogStorer implementation ---

func (s *PostgresStore) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		INSERT INTO prequote.categories (code, name, icon, description, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, code, name, icon, description, sort_order, is_active, created_at, updated_at;
	`
	row := s.db.QueryRowContext(ctx, query,
		category.Code, category.Name, category.Icon, category.Description, category.SortOrder, category.IsActive)

	var created domain.Category
	err := row.Scan(&created.ID, &created.Code, &created.Name, &created.Icon, &created.Description,
		&created.SortOrder, &created.IsActive, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCategoryCodeExists
		}
		return nil, fmt.Errorf("store: CreateCategory failed to scan row: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) GetCategoryByCode(ctx context.Context, code string) (*domain.Category, error) {
	query := `
		SELECT id, code, name, icon, description, sort_order, is_active, created_at, updated_at
		FROM prequote.categories
		WHERE code = $1;
	`
	var category domain.Category
	err := s.db.QueryRowContext(ctx, query, code).Scan(
		&category.ID, &category.Code, &category.Name, &category.Icon, &category.Description,
		&category.SortOrder, &category.IsActive, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("store: GetCategoryByCode failed to scan row: %w", err)
	}
	return &category, nil
}

func (s *PostgresStore) ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	query := `
		SELECT id, code, name, icon, description, sort_order, is_active, created_at, updated_at
		FROM prequote.categories
		WHERE ($1 = false OR is_active = true)
		ORDER BY sort_order ASC, code ASC;
	`
	rows, err := s.db.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("store: ListCategories query failed: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Icon, &c.Description,
			&c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: ListCategories failed to scan row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListCategories iteration error: %w", err)
	}
	return categories, nil
}

func (s *PostgresStore) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		UPDATE prequote.categories
		SET name = $1, icon = $2, description = $3, sort_order = $4, is_active = $5, updated_at = CURRENT_TIMESTAMP
		WHERE code = $6
		RETURNING id, code, name, icon, description, sort_order, is_active, created_at, updated_at;
	`
	var updated domain.Category
	err := s.db.QueryRowContext(ctx, query,
		category.Name, category.Icon, category.Description, category.SortOrder, category.IsActive, category.Code).
		Scan(&updated.ID, &updated.Code, &updated.Name, &updated.Icon, &updated.Description,
			&updated.SortOrder, &updated.IsActive, &updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("store: UpdateCategory failed to scan row: %w", err)
	}
	return &updated, nil
}

func (s *PostgresStore) CreateSubcategory(ctx context.Context, sub *domain.Subcategory) (*domain.Subcategory, error) {
	query := `
		INSERT INTO prequote.subcategories (category_code, code, name, icon, description, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, category_code, code, name, icon, description, sort_order, is_active, created_at, updated_at;
	`
	row := s.db.QueryRowContext(ctx, query,
		sub.CategoryCode, sub.Code, sub.Name, sub.Icon, sub.Description, sub.SortOrder, sub.IsActive)

	var created domain.Subcategory
	err := row.Scan(&created.ID, &created.CategoryCode, &created.Code, &created.Name, &created.Icon,
		&created.Description, &created.SortOrder, &created.IsActive, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSubcategoryExists
		}
		return nil, fmt.Errorf("store: CreateSubcategory failed to scan row: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) GetSubcategoryByCode(ctx context.Context, code string) (*domain.Subcategory, error) {
	query := `
		SELECT id, category_code, code, name, icon, description, sort_order, is_active, created_at, updated_at
		FROM prequote.subcategories
		WHERE code = $1;
	`
	var sub domain.Subcategory
	err := s.db.QueryRowContext(ctx, query, code).Scan(
		&sub.ID, &sub.CategoryCode, &sub.Code, &sub.Name, &sub.Icon, &sub.Description,
		&sub.SortOrder, &sub.IsActive, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubcategoryNotFound
		}
		return nil, fmt.Errorf("store: GetSubcategoryByCode failed to scan row: %w", err)
	}
	return &sub, nil
}

func (s *PostgresStore) ListSubcategories(ctx context.Context, activeOnly bool) ([]domain.Subcategory, error) {
	query := `
		SELECT id, category_code, code, name, icon, description, sort_order, is_active, created_at, updated_at
		FROM prequote.subcategories
		WHERE ($1 = false OR is_active = true)
		ORDER BY sort_order ASC, code ASC;
	`
	rows, err := s.db.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("store: ListSubcategories query failed: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subcategory
	for rows.Next() {
		var sc domain.Subcategory
		if err := rows.Scan(&sc.ID, &sc.CategoryCode, &sc.Code, &sc.Name, &sc.Icon, &sc.Description,
			&sc.SortOrder, &sc.IsActive, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: ListSubcategories failed to scan row: %w", err)
		}
		subs = append(subs, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListSubcategories iteration error: %w", err)
	}
	return subs, nil
}

func (s *PostgresStore) UpdateSubcategory(ctx context.Context, sub *domain.Subcategory) (*domain.Subcategory, error) {
	query := `
		UPDATE prequote.subcategories
		SET category_code = $1, name = $2, icon = $3, description = $4, sort_order = $5, is_active = $6, updated_at = CURRENT_TIMESTAMP
		WHERE code = $7
		RETURNING id, category_code, code, name, icon, description, sort_order, is_active, created_at, updated_at;
	`
	var updated domain.Subcategory
	err := s.db.QueryRowContext(ctx, query,
		sub.CategoryCode, sub.Name, sub.Icon, sub.Description, sub.SortOrder, sub.IsActive, sub.Code).
		Scan(&updated.ID, &updated.CategoryCode, &updated.Code, &updated.Name, &updated.Icon,
			&updated.Description, &updated.SortOrder, &updated.IsActive, &updated.CreatedAt, &updated.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubcategoryNotFound
		}
		return nil, fmt.Errorf("store: UpdateSubcategory failed to scan row: %w", err)
	}
	return &updated, nil
}

func (s *PostgresStore) CreateItem(ctx context.Context, item *domain.CatalogItem) (*domain.CatalogItem, error) {
	item.NormalizeImages()

	specsJSON, err := marshalJSON(item.Specifications)
	if err != nil {
		return nil, err
	}
	imagesJSON, err := marshalJSON(item.Images)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO prequote.items
			(subcategory_code, code, name, description, base_cost, base_price, unit, sort_order, is_active, specifications, images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at;
	`
	created := *item
	err = s.db.QueryRowContext(ctx, query,
		item.SubcategoryCode, item.Code, item.Name, item.Description, item.BaseCost, item.BasePrice,
		item.Unit, item.SortOrder, item.IsActive, specsJSON, imagesJSON).
		Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrItemCodeExists
		}
		return nil, fmt.Errorf("store: CreateItem failed to scan row: %w", err)
	}
	return &created, nil
}

const itemColumns = `id, subcategory_code, code, name, description, base_cost, base_price, unit, sort_order, is_active, specifications, images, created_at, updated_at`

func scanItem(row interface{ Scan(dest ...any) error }) (*domain.CatalogItem, error) {
	var item domain.CatalogItem
	var specsJSON, imagesJSON []byte
	err := row.Scan(&item.ID, &item.SubcategoryCode, &item.Code, &item.Name, &item.Description,
		&item.BaseCost, &item.BasePrice, &item.Unit, &item.SortOrder, &item.IsActive,
		&specsJSON, &imagesJSON, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSON(specsJSON, &item.Specifications); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(imagesJSON, &item.Images); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *PostgresStore) GetItemByCode(ctx context.Context, code string) (*domain.CatalogItem, error) {
	query := `SELECT ` + itemColumns + ` FROM prequote.items WHERE code = $1;`
	item, err := scanItem(s.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("store: GetItemByCode failed to scan row: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) ListItems(ctx context.Context, activeOnly bool) ([]domain.CatalogItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM prequote.items
		WHERE ($1 = false OR is_active = true)
		ORDER BY sort_order ASC, code ASC;
	`
	rows, err := s.db.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("store: ListItems query failed: %w", err)
	}
	defer rows.Close()

	var items []domain.CatalogItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("store: ListItems failed to scan row: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListItems iteration error: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) UpdateItem(ctx context.Context, item *domain.CatalogItem) (*domain.CatalogItem, error) {
	item.NormalizeImages()

	specsJSON, err := marshalJSON(item.Specifications)
	if err != nil {
		return nil, err
	}
	imagesJSON, err := marshalJSON(item.Images)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE prequote.items
		SET subcategory_code = $1, name = $2, description = $3, base_cost = $4, base_price = $5,
			unit = $6, sort_order = $7, is_active = $8, specifications = $9, images = $10,
			updated_at = CURRENT_TIMESTAMP
		WHERE code = $11
		RETURNING ` + itemColumns + `;
	`
	updated, err := scanItem(s.db.QueryRowContext(ctx, query,
		item.SubcategoryCode, item.Name, item.Description, item.BaseCost, item.BasePrice,
		item.Unit, item.SortOrder, item.IsActive, specsJSON, imagesJSON, item.Code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("store: UpdateItem failed to scan row: %w", err)
	}
	return updated, nil
}
