package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/apexplus/storefront/internal/domain"
	"github.com/apexplus/storefront/pkg/database"
	apperrors "github.com/apexplus/storefront/pkg/errors"
)

const categoryColumns = `id, name, created_at, updated_at`

// CategoryRepository implements repository.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	pool database.DBTX
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool database.DBTX) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// isUniqueViolation reports whether the error is a PostgreSQL unique
// constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

// Create inserts a new category and its subcategories within a transaction.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO categories (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.Name, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("category", "id", c.ID)
		}
		return fmt.Errorf("insert category: %w", err)
	}

	for i, sub := range c.Subcategories {
		_, err = tx.Exec(ctx,
			`INSERT INTO subcategories (id, category_id, name, position) VALUES ($1, $2, $3, $4)`,
			sub.ID, c.ID, sub.Name, i,
		)
		if err != nil {
			return fmt.Errorf("insert subcategory: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a category by its slug, eagerly loading subcategories.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	var c domain.Category
	err := r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}

	subs, err := r.loadSubcategories(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	c.Subcategories = subs[id]
	if c.Subcategories == nil {
		c.Subcategories = []domain.Subcategory{}
	}

	return &c, nil
}

// List returns all categories with their subcategories, oldest first.
func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		c.Subcategories = []domain.Subcategory{}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	// Batch-load subcategories for all categories in a single query to avoid N+1.
	if len(categories) > 0 {
		ids := make([]string, len(categories))
		for i := range categories {
			ids[i] = categories[i].ID
		}

		subsByCategory, err := r.loadSubcategories(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range categories {
			if subs, ok := subsByCategory[categories[i].ID]; ok {
				categories[i].Subcategories = subs
			}
		}
	}

	return categories, nil
}

// Update renames a category and replaces its subcategory set. The slug stays
// as originally derived.
func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx,
		`UPDATE categories SET name = $1, updated_at = $2 WHERE id = $3`,
		c.Name, time.Now().UTC(), c.ID,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", c.ID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM subcategories WHERE category_id = $1`, c.ID); err != nil {
		return fmt.Errorf("delete subcategories: %w", err)
	}

	for i, sub := range c.Subcategories {
		_, err = tx.Exec(ctx,
			`INSERT INTO subcategories (id, category_id, name, position) VALUES ($1, $2, $3, $4)`,
			sub.ID, c.ID, sub.Name, i,
		)
		if err != nil {
			return fmt.Errorf("insert subcategory: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Delete removes a category and its subcategory rows. Products keep their
// category_id reference and surface it raw until re-assigned.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM subcategories WHERE category_id = $1`, id); err != nil {
		return fmt.Errorf("delete subcategories: %w", err)
	}

	ct, err := tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", id)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Exists reports whether a category with the given slug exists.
func (r *CategoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category exists: %w", err)
	}
	return exists, nil
}

// loadSubcategories retrieves subcategories for the given category slugs,
// grouped by category and ordered by position.
func (r *CategoryRepository) loadSubcategories(ctx context.Context, categoryIDs []string) (map[string][]domain.Subcategory, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, category_id, name, position
		 FROM subcategories
		 WHERE category_id = ANY($1)
		 ORDER BY position`,
		categoryIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("query subcategories: %w", err)
	}
	defer rows.Close()

	byCategory := make(map[string][]domain.Subcategory)
	for rows.Next() {
		var sub domain.Subcategory
		if err := rows.Scan(&sub.ID, &sub.CategoryID, &sub.Name, &sub.Position); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		byCategory[sub.CategoryID] = append(byCategory[sub.CategoryID], sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subcategory rows: %w", err)
	}

	return byCategory, nil
}
