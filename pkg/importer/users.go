package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	zmerrors "github.com/zoea-platform/zmig/pkg/errors"
	"github.com/zoea-platform/zmig/pkg/legacy"
	"github.com/zoea-platform/zmig/pkg/logging"
	"github.com/zoea-platform/zmig/pkg/runner"
	"github.com/zoea-platform/zmig/pkg/store"
)

// DefaultPassword is issued to every migrated account. Users reset it on
// first login; the legacy MD5 hash is kept alongside for the transition
// auth path.
const DefaultPassword = "Pass123"

// AccountStore is the slice of the account repository the user importer
// needs.
type AccountStore interface {
	GetByLegacyID(ctx context.Context, legacyID int64) (*store.Account, error)
	GetByPhone(ctx context.Context, phone string) (*store.Account, error)
	GetByEmail(ctx context.Context, email string) (*store.Account, error)
	Insert(ctx context.Context, a *store.Account) (store.Outcome, error)
	SetLegacyID(ctx context.Context, id uuid.UUID, legacyID int64) error
}

// UserImporter migrates legacy users into target accounts.
type UserImporter struct {
	accounts AccountStore
	logger   logging.Logger
}

// NewUserImporter creates a user importer over accounts.
func NewUserImporter(accounts AccountStore, logger logging.Logger) *UserImporter {
	return &UserImporter{accounts: accounts, logger: logger}
}

// Run migrates the given legacy users. Collisions resolve conservatively: a
// phone already in the target claims the legacy id instead of inserting a
// twin, and a taken email migrates the account with no email at all.
func (im *UserImporter) Run(ctx context.Context, users []legacy.User, sum *runner.StageSummary) error {
	for i := range users {
		u := &users[i]
		key := fmt.Sprintf("%d", u.ID)

		if _, err := im.accounts.GetByLegacyID(ctx, u.ID); err == nil {
			sum.Skipped++
			continue
		} else if !errors.Is(err, zmerrors.ErrNotFound) {
			return err
		}

		acct, err := im.build(ctx, u)
		if err != nil {
			sum.RecordFailure("user", key, err)
			continue
		}

		if acct.PhoneNumber != nil {
			existing, err := im.accounts.GetByPhone(ctx, *acct.PhoneNumber)
			if err == nil {
				// Same person already in the target; link instead of
				// inserting a duplicate.
				if existing.LegacyID == nil {
					if err := im.accounts.SetLegacyID(ctx, existing.ID, u.ID); err != nil {
						sum.RecordFailure("user", key, err)
						continue
					}
					im.logger.Debug("claimed existing account by phone",
						logging.F("legacy_id", u.ID),
						logging.F("account_id", existing.ID.String()))
				}
				sum.Skipped++
				continue
			} else if !errors.Is(err, zmerrors.ErrNotFound) {
				return err
			}
		}

		outcome, err := im.accounts.Insert(ctx, acct)
		if err != nil {
			sum.RecordFailure("user", key, err)
			continue
		}
		switch outcome {
		case store.OutcomeInserted:
			sum.Migrated++
		default:
			sum.Skipped++
		}
	}
	return nil
}

func (im *UserImporter) build(ctx context.Context, u *legacy.User) (*store.Account, error) {
	first := strings.TrimSpace(u.FirstName.String)
	last := strings.TrimSpace(u.LastName.String)
	full := strings.TrimSpace(first + " " + last)

	acct := &store.Account{
		LegacyID:         &u.ID,
		FullName:         full,
		PasswordMigrated: false,
		Roles:            rolesFor(u.AccountType.String),
		IsActive:         isActiveStatus(u.Status.String),
	}
	if first != "" {
		acct.FirstName = &first
	}
	if last != "" {
		acct.LastName = &last
	}
	if u.RegDate.Valid {
		acct.CreatedAt = u.RegDate.Time
	} else {
		acct.CreatedAt = time.Now().UTC()
	}

	phone := NormalizePhone(u.Phone.String)
	if phone == "" {
		phone = PlaceholderPhone(u.ID)
	}
	acct.PhoneNumber = &phone

	if email := strings.ToLower(strings.TrimSpace(u.Email.String)); email != "" {
		_, err := im.accounts.GetByEmail(ctx, email)
		switch {
		case errors.Is(err, zmerrors.ErrNotFound):
			acct.Email = &email
		case err == nil:
			im.logger.Warn("email already taken, migrating without it",
				logging.F("legacy_id", u.ID),
				logging.F("email", email))
		default:
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash default password: %w", err)
	}
	acct.PasswordHash = string(hash)
	if u.Password.Valid && u.Password.String != "" {
		legacyHash := u.Password.String
		acct.LegacyPasswordHash = &legacyHash
	}

	return acct, nil
}

func rolesFor(accountType string) []string {
	switch strings.ToLower(strings.TrimSpace(accountType)) {
	case "business", "merchant", "venue":
		return []string{"user", "merchant"}
	default:
		return []string{"user"}
	}
}

func isActiveStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "", "active", "1", "verified":
		return true
	default:
		return false
	}
}
