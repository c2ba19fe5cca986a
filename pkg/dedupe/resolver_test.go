package dedupe

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zmerrors "github.com/zoea-platform/zmig/pkg/errors"
	"github.com/zoea-platform/zmig/pkg/logging"
	"github.com/zoea-platform/zmig/pkg/store"
)

type fakeStore struct {
	accounts   []store.Account
	related    map[uuid.UUID]store.RelatedCounts
	deleteErrs map[uuid.UUID]error
	deleted    []uuid.UUID
}

func (f *fakeStore) FindByPhonePattern(_ context.Context, _ string) ([]store.Account, error) {
	return f.accounts, nil
}

func (f *fakeStore) RelatedCounts(_ context.Context, id uuid.UUID) (store.RelatedCounts, error) {
	return f.related[id], nil
}

func (f *fakeStore) DeleteCascade(_ context.Context, id uuid.UUID) error {
	if err := f.deleteErrs[id]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func acct(email, fullName string, created time.Time) store.Account {
	a := store.Account{ID: uuid.New(), FullName: fullName, CreatedAt: created}
	if email != "" {
		a.Email = &email
	}
	phone := "0788123456"
	a.PhoneNumber = &phone
	return a
}

func TestRunDryByDefault(t *testing.T) {
	rich := acct("a@b.rw", "Alice", time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
	bare := acct("", "", time.Time{})
	fs := &fakeStore{accounts: []store.Account{bare, rich}}

	r := NewResolver(fs, logging.NewNop())
	report, err := r.Run(context.Background(), "788123", false)
	require.NoError(t, err)

	assert.False(t, report.Executed)
	assert.Equal(t, 2, report.GroupSize)
	require.NotNil(t, report.Canonical)
	assert.Equal(t, rich.ID, report.Canonical.ID)
	require.Len(t, report.Deletions, 1)
	assert.False(t, report.Deletions[0].Deleted)
	assert.Empty(t, fs.deleted, "dry run must not delete")
}

func TestRunExecuteDeletesDuplicates(t *testing.T) {
	rich := acct("a@b.rw", "Alice", time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
	bare := acct("", "", time.Time{})
	fs := &fakeStore{
		accounts: []store.Account{bare, rich},
		related:  map[uuid.UUID]store.RelatedCounts{bare.ID: {Bookings: 2}},
	}

	r := NewResolver(fs, logging.NewNop())
	report, err := r.Run(context.Background(), "788123", true)
	require.NoError(t, err)

	assert.True(t, report.Executed)
	require.Len(t, report.Deletions, 1)
	assert.True(t, report.Deletions[0].Deleted)
	assert.Equal(t, int64(2), report.Deletions[0].Related.Bookings)
	assert.Equal(t, []uuid.UUID{bare.ID}, fs.deleted)
}

func TestRunConstraintFailureContinues(t *testing.T) {
	rich := acct("a@b.rw", "Alice", time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
	blocked := acct("", "Bob", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	bare := acct("", "", time.Time{})
	fs := &fakeStore{
		accounts: []store.Account{blocked, bare, rich},
		deleteErrs: map[uuid.UUID]error{
			blocked.ID: fmt.Errorf("delete bookings: %w", zmerrors.ErrConstraintViolation),
		},
	}

	r := NewResolver(fs, logging.NewNop())
	report, err := r.Run(context.Background(), "788123", true)
	require.NoError(t, err, "a blocked account is not fatal for the run")

	require.Len(t, report.Deletions, 2)
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, blocked.ID, failed[0].Account.ID)
	// The unblocked duplicate was still deleted.
	assert.Equal(t, []uuid.UUID{bare.ID}, fs.deleted)
}

func TestRunSingleMatchIsNoop(t *testing.T) {
	only := acct("a@b.rw", "Alice", time.Now())
	fs := &fakeStore{accounts: []store.Account{only}}

	r := NewResolver(fs, logging.NewNop())
	report, err := r.Run(context.Background(), "788123", true)
	require.NoError(t, err)

	assert.Nil(t, report.Canonical)
	assert.Empty(t, report.Deletions)
	assert.Empty(t, fs.deleted)
}

func TestRunEmptyPatternRejected(t *testing.T) {
	r := NewResolver(&fakeStore{}, logging.NewNop())
	_, err := r.Run(context.Background(), "", false)
	assert.ErrorIs(t, err, zmerrors.ErrValidation)
}
