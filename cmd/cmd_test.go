package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupeRequiresPattern(t *testing.T) {
	cmd := NewDedupeCommand(DefaultDeps())
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arg")
}

func TestDedupeRejectsExtraArgs(t *testing.T) {
	cmd := NewDedupeCommand(DefaultDeps())
	cmd.SetArgs([]string{"788123", "999888"})
	err := cmd.Execute()
	require.Error(t, err)
}

func TestDedupeExecuteDefaultsOff(t *testing.T) {
	cmd := NewDedupeCommand(DefaultDeps())
	execute, err := cmd.Flags().GetBool("execute")
	require.NoError(t, err)
	assert.False(t, execute, "dedupe must default to dry run")
}

func TestScheduleDaysDefault(t *testing.T) {
	cmd := NewScheduleCommand(DefaultDeps())
	days, err := cmd.Flags().GetInt("days")
	require.NoError(t, err)
	assert.Equal(t, 90, days)
}

func TestScheduleRejectsPositionalArgs(t *testing.T) {
	cmd := NewScheduleCommand(DefaultDeps())
	cmd.SetArgs([]string{"30"})
	err := cmd.Execute()
	require.Error(t, err)
}

func TestMigrateRejectsPositionalArgs(t *testing.T) {
	cmd := NewMigrateCommand(DefaultDeps())
	cmd.SetArgs([]string{"users"})
	err := cmd.Execute()
	require.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	deps := DefaultDeps()
	for _, c := range []string{
		NewMigrateCommand(deps).Use,
		NewClassifyCommand(deps).Use,
		NewFeaturedCommand(deps).Use,
		NewBackfillCommand(deps).Use,
		NewDedupeCommand(deps).Use,
		NewScheduleCommand(deps).Use,
	} {
		assert.NotEmpty(t, c)
	}
}
