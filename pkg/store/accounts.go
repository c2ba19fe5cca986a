package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	zmerrors "github.com/zoea-platform/zmig/pkg/errors"
	"github.com/zoea-platform/zmig/pkg/logging"
)

// AccountRepository reads and writes user accounts in the target store and
// owns the cascade-deletion path used by the duplicate resolver.
type AccountRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewAccountRepository creates an account repository backed by pool.
func NewAccountRepository(pool *pgxpool.Pool, logger logging.Logger) *AccountRepository {
	return &AccountRepository{pool: pool, logger: logger}
}

const accountColumns = `
	id, legacy_id, email, phone_number, first_name, last_name,
	COALESCE(full_name, ''), COALESCE(password_hash, ''), legacy_password_hash,
	password_migrated, roles, is_active, created_at`

func scanAccount(row pgx.Row) (*Account, error) {
	a := &Account{}
	err := row.Scan(
		&a.ID, &a.LegacyID, &a.Email, &a.PhoneNumber, &a.FirstName, &a.LastName,
		&a.FullName, &a.PasswordHash, &a.LegacyPasswordHash,
		&a.PasswordMigrated, &a.Roles, &a.IsActive, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AccountRepository) getOne(ctx context.Context, q string, arg any, what string) (*Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx, q, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", what, zmerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account %s: %w: %v", what, zmerrors.ErrQuery, err)
	}
	return a, nil
}

// GetByLegacyID returns the account claiming legacyID, or ErrNotFound.
func (r *AccountRepository) GetByLegacyID(ctx context.Context, legacyID int64) (*Account, error) {
	q := `SELECT ` + accountColumns + ` FROM users WHERE legacy_id = $1 AND deleted_at IS NULL`
	return r.getOne(ctx, q, legacyID, fmt.Sprintf("legacy_id=%d", legacyID))
}

// GetByPhone returns the account with the exact phone number, or ErrNotFound.
func (r *AccountRepository) GetByPhone(ctx context.Context, phone string) (*Account, error) {
	q := `SELECT ` + accountColumns + ` FROM users WHERE phone_number = $1 AND deleted_at IS NULL`
	return r.getOne(ctx, q, phone, fmt.Sprintf("phone=%s", phone))
}

// GetByEmail returns the account with the given email (case-insensitive),
// or ErrNotFound.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	q := `SELECT ` + accountColumns + ` FROM users WHERE LOWER(email) = LOWER($1) AND deleted_at IS NULL`
	return r.getOne(ctx, q, email, fmt.Sprintf("email=%s", email))
}

// FindByPhonePattern returns every account whose phone number contains the
// pattern. Patterns carrying the country prefix also match numbers stored
// without it: "250788" finds both "+250788123456" and "0788123456".
func (r *AccountRepository) FindByPhonePattern(ctx context.Context, pattern string) ([]Account, error) {
	const q = `
		SELECT ` + accountColumns + `
		FROM users
		WHERE deleted_at IS NULL
		  AND (phone_number LIKE '%' || $1 || '%' OR phone_number LIKE '%' || $2 || '%')
		ORDER BY created_at, id`

	bare := strings.TrimPrefix(pattern, "250")
	rows, err := r.pool.Query(ctx, q, pattern, bare)
	if err != nil {
		return nil, fmt.Errorf("find accounts by phone pattern: %w: %v", zmerrors.ErrQuery, err)
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w: %v", zmerrors.ErrQuery, err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find accounts by phone pattern: %w: %v", zmerrors.ErrQuery, err)
	}
	return out, nil
}

// Insert creates an account with skip-duplicates semantics on the phone
// natural key. Returns OutcomeSkipped when the phone already exists.
func (r *AccountRepository) Insert(ctx context.Context, a *Account) (Outcome, error) {
	if a.PhoneNumber != nil {
		if _, err := r.GetByPhone(ctx, *a.PhoneNumber); err == nil {
			return OutcomeSkipped, nil
		} else if !errors.Is(err, zmerrors.ErrNotFound) {
			return OutcomeSkipped, err
		}
	}

	const q = `
		INSERT INTO users (
			id, legacy_id, email, phone_number, first_name, last_name, full_name,
			password_hash, legacy_password_hash, password_migrated, roles, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (phone_number) DO NOTHING`

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	tag, err := r.pool.Exec(ctx, q,
		a.ID, a.LegacyID, a.Email, a.PhoneNumber, a.FirstName, a.LastName, a.FullName,
		a.PasswordHash, a.LegacyPasswordHash, a.PasswordMigrated, a.Roles, a.IsActive, a.CreatedAt)
	if err != nil {
		werr := classifyWriteErr("insert account", err)
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

// SetLegacyID stamps an account with the legacy id it was resolved to.
func (r *AccountRepository) SetLegacyID(ctx context.Context, id uuid.UUID, legacyID int64) error {
	const q = `UPDATE users SET legacy_id = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, legacyID)
	if err != nil {
		return classifyWriteErr("set account legacy id", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", id, zmerrors.ErrNotFound)
	}
	return nil
}

// RelatedCounts holds the dependent-row tallies for one account, reported
// before any deletion so the operator can judge the blast radius.
type RelatedCounts struct {
	Bookings     int64
	Orders       int64
	Reviews      int64
	Favorites    int64
	Carts        int64
	Sessions     int64
	Transactions int64
	Profiles     int64
	Cards        int64
}

// Total returns the sum of all dependent rows.
func (c RelatedCounts) Total() int64 {
	return c.Bookings + c.Orders + c.Reviews + c.Favorites +
		c.Carts + c.Sessions + c.Transactions + c.Profiles + c.Cards
}

// RelatedCounts tallies the rows that reference the account across every
// dependent table.
func (r *AccountRepository) RelatedCounts(ctx context.Context, id uuid.UUID) (RelatedCounts, error) {
	const q = `
		SELECT
			(SELECT COUNT(*) FROM bookings WHERE user_id = $1),
			(SELECT COUNT(*) FROM orders WHERE user_id = $1),
			(SELECT COUNT(*) FROM reviews WHERE user_id = $1),
			(SELECT COUNT(*) FROM favorites WHERE user_id = $1),
			(SELECT COUNT(*) FROM carts WHERE user_id = $1),
			(SELECT COUNT(*) FROM sessions WHERE user_id = $1),
			(SELECT COUNT(*) FROM transactions WHERE user_id = $1),
			(SELECT COUNT(*) FROM merchant_profiles WHERE user_id = $1) +
			(SELECT COUNT(*) FROM organizer_profiles WHERE user_id = $1) +
			(SELECT COUNT(*) FROM tour_operator_profiles WHERE user_id = $1),
			(SELECT COUNT(*) FROM zoea_cards WHERE user_id = $1)`

	var c RelatedCounts
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&c.Bookings, &c.Orders, &c.Reviews, &c.Favorites,
		&c.Carts, &c.Sessions, &c.Transactions, &c.Profiles, &c.Cards)
	if err != nil {
		return c, fmt.Errorf("count related rows: %w: %v", zmerrors.ErrQuery, err)
	}
	return c, nil
}

// cascadeSteps is the deletion order for an account's dependent rows.
// Children go before parents so no step ever orphans a row; the user row
// itself is deleted last, inside the same transaction.
var cascadeSteps = []struct {
	table string
	query string
}{
	{"cart_items", `DELETE FROM cart_items WHERE cart_id IN (SELECT id FROM carts WHERE user_id = $1)`},
	{"carts", `DELETE FROM carts WHERE user_id = $1`},
	{"sessions", `DELETE FROM sessions WHERE user_id = $1`},
	{"favorites", `DELETE FROM favorites WHERE user_id = $1`},
	{"reviews", `DELETE FROM reviews WHERE user_id = $1`},
	{"booking_guests", `DELETE FROM booking_guests WHERE booking_id IN (SELECT id FROM bookings WHERE user_id = $1)`},
	{"bookings", `DELETE FROM bookings WHERE user_id = $1`},
	{"order_items", `DELETE FROM order_items WHERE order_id IN (SELECT id FROM orders WHERE user_id = $1)`},
	{"orders", `DELETE FROM orders WHERE user_id = $1`},
	{"transactions", `DELETE FROM transactions WHERE user_id = $1`},
	{"merchant_profiles", `DELETE FROM merchant_profiles WHERE user_id = $1`},
	{"organizer_profiles", `DELETE FROM organizer_profiles WHERE user_id = $1`},
	{"tour_operator_profiles", `DELETE FROM tour_operator_profiles WHERE user_id = $1`},
	{"zoea_cards", `DELETE FROM zoea_cards WHERE user_id = $1`},
}

// DeleteCascade removes the account and all rows that depend on it, in a
// single transaction. A foreign-key violation anywhere in the cascade maps
// to ErrConstraintViolation and rolls the whole account back.
func (r *AccountRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin cascade delete: %w: %v", zmerrors.ErrQuery, err)
	}
	defer tx.Rollback(ctx)

	for _, step := range cascadeSteps {
		tag, err := tx.Exec(ctx, step.query, id)
		if err != nil {
			return classifyWriteErr("delete "+step.table, err)
		}
		if n := tag.RowsAffected(); n > 0 {
			r.logger.Debug("deleted dependent rows",
				logging.F("table", step.table),
				logging.F("user_id", id.String()),
				logging.F("rows", n))
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return classifyWriteErr("delete account", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", id, zmerrors.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit cascade delete: %w: %v", zmerrors.ErrQuery, err)
	}
	return nil
}
