package storage

import (
	"context"
	"fmt"

	"steward/internal/core"
)

// Category and subcategory CRUD lives elsewhere; this layer only reads
// the taxonomy for labels and category-level rollups.

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *SQLiteRepository) ListSubcategories(ctx context.Context) ([]core.Subcategory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, category_id FROM subcategories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	var subs []core.Subcategory
	for rows.Next() {
		var s core.Subcategory
		if err := rows.Scan(&s.ID, &s.Name, &s.CategoryID); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
