package importer

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	zmerrors "github.com/zoea-platform/zmig/pkg/errors"
	"github.com/zoea-platform/zmig/pkg/legacy"
	"github.com/zoea-platform/zmig/pkg/logging"
	"github.com/zoea-platform/zmig/pkg/runner"
	"github.com/zoea-platform/zmig/pkg/store"
)

type fakeAccounts struct {
	byLegacy map[int64]*store.Account
	byPhone  map[string]*store.Account
	byEmail  map[string]*store.Account
	claimed  map[uuid.UUID]int64
	inserted []*store.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{
		byLegacy: map[int64]*store.Account{},
		byPhone:  map[string]*store.Account{},
		byEmail:  map[string]*store.Account{},
		claimed:  map[uuid.UUID]int64{},
	}
}

func (f *fakeAccounts) add(a *store.Account) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.LegacyID != nil {
		f.byLegacy[*a.LegacyID] = a
	}
	if a.PhoneNumber != nil {
		f.byPhone[*a.PhoneNumber] = a
	}
	if a.Email != nil {
		f.byEmail[*a.Email] = a
	}
}

func (f *fakeAccounts) GetByLegacyID(_ context.Context, id int64) (*store.Account, error) {
	if a, ok := f.byLegacy[id]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("account legacy_id=%d: %w", id, zmerrors.ErrNotFound)
}

func (f *fakeAccounts) GetByPhone(_ context.Context, phone string) (*store.Account, error) {
	if a, ok := f.byPhone[phone]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("account phone=%s: %w", phone, zmerrors.ErrNotFound)
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*store.Account, error) {
	if a, ok := f.byEmail[email]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("account email=%s: %w", email, zmerrors.ErrNotFound)
}

func (f *fakeAccounts) Insert(_ context.Context, a *store.Account) (store.Outcome, error) {
	if a.PhoneNumber != nil {
		if _, ok := f.byPhone[*a.PhoneNumber]; ok {
			return store.OutcomeSkipped, nil
		}
	}
	f.add(a)
	f.inserted = append(f.inserted, a)
	return store.OutcomeInserted, nil
}

func (f *fakeAccounts) SetLegacyID(_ context.Context, id uuid.UUID, legacyID int64) error {
	f.claimed[id] = legacyID
	return nil
}

func ns(s string) sql.NullString { return sql.NullString{String: s, Valid: s != ""} }

func legacyUser(id int64, first, last, email, phone string) legacy.User {
	return legacy.User{
		ID:        id,
		FirstName: ns(first),
		LastName:  ns(last),
		Email:     ns(email),
		Phone:     ns(phone),
		Status:    ns("active"),
	}
}

func TestUserImporterMigratesCleanUser(t *testing.T) {
	fa := newFakeAccounts()
	im := NewUserImporter(fa, logging.NewNop())
	var sum runner.StageSummary

	err := im.Run(context.Background(),
		[]legacy.User{legacyUser(7, "Alice", "Uwase", "Alice@Example.RW", "0788123456")}, &sum)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Migrated)
	require.Len(t, fa.inserted, 1)
	a := fa.inserted[0]
	assert.Equal(t, "Alice Uwase", a.FullName)
	assert.Equal(t, "alice@example.rw", *a.Email)
	assert.Equal(t, "250788123456", *a.PhoneNumber)
	assert.Equal(t, []string{"user"}, a.Roles)
	assert.True(t, a.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(DefaultPassword)))
}

func TestUserImporterPlaceholderPhone(t *testing.T) {
	fa := newFakeAccounts()
	im := NewUserImporter(fa, logging.NewNop())
	var sum runner.StageSummary

	err := im.Run(context.Background(),
		[]legacy.User{legacyUser(42, "No", "Phone", "", "")}, &sum)
	require.NoError(t, err)

	require.Len(t, fa.inserted, 1)
	assert.Equal(t, "250999000042", *fa.inserted[0].PhoneNumber)
	assert.Nil(t, fa.inserted[0].Email)
}

func TestUserImporterClaimsExistingPhone(t *testing.T) {
	fa := newFakeAccounts()
	phone := "250788123456"
	existing := &store.Account{ID: uuid.New(), PhoneNumber: &phone}
	fa.add(existing)

	im := NewUserImporter(fa, logging.NewNop())
	var sum runner.StageSummary

	err := im.Run(context.Background(),
		[]legacy.User{legacyUser(7, "Alice", "U", "", "0788123456")}, &sum)
	require.NoError(t, err)

	assert.Equal(t, 0, sum.Migrated)
	assert.Equal(t, 1, sum.Skipped)
	assert.Empty(t, fa.inserted)
	assert.Equal(t, int64(7), fa.claimed[existing.ID], "existing account claims the legacy id")
}

func TestUserImporterDropsTakenEmail(t *testing.T) {
	fa := newFakeAccounts()
	email := "alice@example.rw"
	otherPhone := "250788000000"
	fa.add(&store.Account{ID: uuid.New(), Email: &email, PhoneNumber: &otherPhone})

	im := NewUserImporter(fa, logging.NewNop())
	var sum runner.StageSummary

	err := im.Run(context.Background(),
		[]legacy.User{legacyUser(9, "Other", "Alice", "alice@example.rw", "0788999888")}, &sum)
	require.NoError(t, err)

	require.Len(t, fa.inserted, 1)
	assert.Nil(t, fa.inserted[0].Email, "taken email is dropped, account still migrates")
	assert.Equal(t, 1, sum.Migrated)
}

func TestUserImporterIdempotent(t *testing.T) {
	fa := newFakeAccounts()
	im := NewUserImporter(fa, logging.NewNop())
	users := []legacy.User{legacyUser(7, "Alice", "U", "a@b.rw", "0788123456")}

	var first runner.StageSummary
	require.NoError(t, im.Run(context.Background(), users, &first))
	assert.Equal(t, 1, first.Migrated)

	var second runner.StageSummary
	require.NoError(t, im.Run(context.Background(), users, &second))
	assert.Equal(t, 0, second.Migrated)
	assert.Equal(t, 1, second.Skipped)
	assert.Len(t, fa.inserted, 1)
}

func TestUserImporterMerchantRole(t *testing.T) {
	fa := newFakeAccounts()
	im := NewUserImporter(fa, logging.NewNop())

	u := legacyUser(3, "Biz", "Owner", "", "0788111222")
	u.AccountType = ns("business")

	var sum runner.StageSummary
	require.NoError(t, im.Run(context.Background(), []legacy.User{u}, &sum))
	require.Len(t, fa.inserted, 1)
	assert.Equal(t, []string{"user", "merchant"}, fa.inserted[0].Roles)
}
