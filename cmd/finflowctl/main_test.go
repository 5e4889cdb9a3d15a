package main

import (
	"bytes"
	"testing"
	"time"

	"finflow/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"parse", "consume", "resync"}, names)
}

func TestParseCommand_RequiresFile(t *testing.T) {
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"parse"})

	assert.Error(t, root.Execute())
}

func TestResyncCommand_RejectsBadUserID(t *testing.T) {
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"resync", "not-a-uuid"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid user id")
}

func TestSummarize(t *testing.T) {
	day := time.Date(2024, 5, 24, 0, 0, 0, 0, time.UTC)
	s := summarize([]models.ParsedTransaction{
		{Date: day, Amount: decimal.RequireFromString("142.30"), Direction: models.DirectionDebit},
		{Date: day, Amount: decimal.RequireFromString("23.50"), Direction: models.DirectionDebit},
		{Date: day, Amount: decimal.RequireFromString("2500.00"), Direction: models.DirectionCredit},
	})

	assert.Equal(t, "165.80", s.TotalDebit.StringFixed(2))
	assert.Equal(t, "2500.00", s.TotalCredit.StringFixed(2))
	assert.Equal(t, 3, s.Count)
}
