package dedupe

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestScore(t *testing.T) {
	created := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		acct Account
		want int
	}{
		{"full", Account{Email: strPtr("a@b.rw"), FullName: "Alice U", CreatedAt: created}, 16},
		{"no email", Account{FullName: "Alice U", CreatedAt: created}, 6},
		{"empty email counts as missing", Account{Email: strPtr("  "), FullName: "Alice U", CreatedAt: created}, 6},
		{"only timestamp", Account{CreatedAt: created}, 1},
		{"bare", Account{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.acct))
		})
	}
}

func TestBuildPlanHighestScoreWins(t *testing.T) {
	rich := Account{ID: uuid.New(), Email: strPtr("a@b.rw"), FullName: "Alice", CreatedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)}
	bare := Account{ID: uuid.New(), Phone: "0788123456"}

	plan, ok := BuildPlan("788123", []Account{bare, rich})
	require.True(t, ok)
	assert.Equal(t, rich.ID, plan.Canonical.ID)
	require.Len(t, plan.Duplicates, 1)
	assert.Equal(t, bare.ID, plan.Duplicates[0].ID)
}

func TestBuildPlanTieGoesToOldest(t *testing.T) {
	older := Account{ID: uuid.New(), FullName: "Same", CreatedAt: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := Account{ID: uuid.New(), FullName: "Same", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	plan, ok := BuildPlan("788", []Account{newer, older})
	require.True(t, ok)
	assert.Equal(t, older.ID, plan.Canonical.ID)
}

func TestBuildPlanNeedsAtLeastTwo(t *testing.T) {
	_, ok := BuildPlan("788", nil)
	assert.False(t, ok)

	_, ok = BuildPlan("788", []Account{{ID: uuid.New()}})
	assert.False(t, ok)
}

func TestBuildPlanDoesNotMutateInput(t *testing.T) {
	a := Account{ID: uuid.New(), Email: strPtr("x@y.rw")}
	b := Account{ID: uuid.New()}
	group := []Account{b, a}

	_, ok := BuildPlan("788", group)
	require.True(t, ok)
	assert.Equal(t, b.ID, group[0].ID)
	assert.Equal(t, a.ID, group[1].ID)
}

func TestStripPrefix(t *testing.T) {
	assert.Equal(t, "788123456", StripPrefix("250788123456"))
	assert.Equal(t, "0788123456", StripPrefix("0788123456"))
	assert.Equal(t, "788", StripPrefix("788"))
}
