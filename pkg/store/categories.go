package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	zmerrors "github.com/zoea-platform/zmig/pkg/errors"
	"github.com/zoea-platform/zmig/pkg/logging"
)

// CategoryRepository reads and writes categories in the target store.
type CategoryRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewCategoryRepository creates a category repository backed by pool.
func NewCategoryRepository(pool *pgxpool.Pool, logger logging.Logger) *CategoryRepository {
	return &CategoryRepository{pool: pool, logger: logger}
}

func (r *CategoryRepository) getOne(ctx context.Context, q string, arg any, what string) (*Category, error) {
	c := &Category{}
	err := r.pool.QueryRow(ctx, q, arg).Scan(&c.ID, &c.LegacyID, &c.Name, &c.Slug, &c.ParentID, &c.IsActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", what, zmerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get category %s: %w: %v", what, zmerrors.ErrQuery, err)
	}
	return c, nil
}

// GetBySlug returns the category with the given slug, or ErrNotFound.
func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	const q = `
		SELECT id, legacy_id, name, slug, parent_id, is_active
		FROM categories WHERE slug = $1`
	return r.getOne(ctx, q, slug, fmt.Sprintf("slug=%q", slug))
}

// GetByLegacyID returns the category claiming legacyID, or ErrNotFound.
func (r *CategoryRepository) GetByLegacyID(ctx context.Context, legacyID int64) (*Category, error) {
	const q = `
		SELECT id, legacy_id, name, slug, parent_id, is_active
		FROM categories WHERE legacy_id = $1`
	return r.getOne(ctx, q, legacyID, fmt.Sprintf("legacy_id=%d", legacyID))
}

// ListWithoutLegacyID returns categories that have not been linked to a
// legacy row yet, in a stable order.
func (r *CategoryRepository) ListWithoutLegacyID(ctx context.Context) ([]Category, error) {
	const q = `
		SELECT id, legacy_id, name, slug, parent_id, is_active
		FROM categories
		WHERE legacy_id IS NULL
		ORDER BY name, id`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list unlinked categories: %w: %v", zmerrors.ErrQuery, err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.LegacyID, &c.Name, &c.Slug, &c.ParentID, &c.IsActive); err != nil {
			return nil, fmt.Errorf("scan category: %w: %v", zmerrors.ErrQuery, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list unlinked categories: %w: %v", zmerrors.ErrQuery, err)
	}
	return out, nil
}

// ClaimedLegacyIDs returns every legacy id already held by a category.
func (r *CategoryRepository) ClaimedLegacyIDs(ctx context.Context) ([]int64, error) {
	const q = `SELECT legacy_id FROM categories WHERE legacy_id IS NOT NULL ORDER BY legacy_id`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list claimed legacy ids: %w: %v", zmerrors.ErrQuery, err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan legacy id: %w: %v", zmerrors.ErrQuery, err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list claimed legacy ids: %w: %v", zmerrors.ErrQuery, err)
	}
	return out, nil
}

// SetLegacyID links a category to its legacy counterpart.
func (r *CategoryRepository) SetLegacyID(ctx context.Context, id uuid.UUID, legacyID int64) error {
	const q = `UPDATE categories SET legacy_id = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, legacyID)
	if err != nil {
		return classifyWriteErr("set category legacy id", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("category %s: %w", id, zmerrors.ErrNotFound)
	}
	return nil
}

func equalLegacyID(a, b *int64) bool {
	if b == nil {
		return true
	}
	return a != nil && *a == *b
}

// Upsert looks the category up by slug, inserts it when absent, updates it
// when the name or legacy id diverge, and skips it when converged.
func (r *CategoryRepository) Upsert(ctx context.Context, c *Category) (Outcome, error) {
	if existing, err := r.GetBySlug(ctx, c.Slug); err == nil {
		c.ID = existing.ID
		if existing.Name == c.Name && equalLegacyID(existing.LegacyID, c.LegacyID) {
			return OutcomeSkipped, nil
		}
		const upd = `UPDATE categories SET name = $2, legacy_id = COALESCE($3, legacy_id) WHERE id = $1`
		if _, err := r.pool.Exec(ctx, upd, existing.ID, c.Name, c.LegacyID); err != nil {
			return OutcomeSkipped, classifyWriteErr("update category", err)
		}
		return OutcomeUpdated, nil
	} else if !errors.Is(err, zmerrors.ErrNotFound) {
		return OutcomeSkipped, err
	}

	const q = `
		INSERT INTO categories (id, legacy_id, name, slug, parent_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (slug) DO NOTHING`

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	tag, err := r.pool.Exec(ctx, q, c.ID, c.LegacyID, c.Name, c.Slug, c.ParentID, c.IsActive)
	if err != nil {
		werr := classifyWriteErr("insert category", err)
		if errors.Is(werr, zmerrors.ErrAlreadyExists) {
			return OutcomeSkipped, nil
		}
		return OutcomeSkipped, werr
	}
	if tag.RowsAffected() == 0 {
		return OutcomeSkipped, nil
	}
	return OutcomeInserted, nil
}
