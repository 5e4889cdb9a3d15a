package service

import (
	"strings"
	"testing"
	"time"

	"finflow/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		date        time.Time
		amount      string
		direction   models.Direction
		description string
	}{
		{
			name:        "debit with trailing balance",
			line:        "24/05/2024 142.30 DR Whole Foods Market 5000.00",
			date:        day(2024, time.May, 24),
			amount:      "142.30",
			direction:   models.DirectionDebit,
			description: "Whole Foods Market",
		},
		{
			name:        "credit indicator after description",
			line:        "15/06/2024 Salary deposit 25000.00 CR",
			date:        day(2024, time.June, 15),
			amount:      "25000",
			direction:   models.DirectionCredit,
			description: "Salary deposit",
		},
		{
			name:        "no indicator defaults to debit",
			line:        "01/07/2024 Netflix subscription 499.00",
			date:        day(2024, time.July, 1),
			amount:      "499",
			direction:   models.DirectionDebit,
			description: "Netflix subscription",
		},
		{
			name:        "refund hint means credit",
			line:        "12/03/2024 Amazon refund 59.99",
			date:        day(2024, time.March, 12),
			amount:      "59.99",
			direction:   models.DirectionCredit,
			description: "Amazon refund",
		},
		{
			name:        "indicator before the amount",
			line:        "24/05/2024 DR Whole Foods 142.30",
			date:        day(2024, time.May, 24),
			amount:      "142.30",
			direction:   models.DirectionDebit,
			description: "Whole Foods",
		},
		{
			name:        "month first when day first is impossible",
			line:        "03/25/2024 Uber ride 23.50",
			date:        day(2024, time.March, 25),
			amount:      "23.5",
			direction:   models.DirectionDebit,
			description: "Uber ride",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, ok := ParseLine(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.date, tx.Date)
			assert.True(t, decimal.RequireFromString(tt.amount).Equal(tx.Amount), "amount %s", tx.Amount)
			assert.Equal(t, tt.direction, tx.Direction)
			assert.Equal(t, tt.description, tx.Description)
			assert.Equal(t, tt.description, tx.RawMerchant)
		})
	}
}

func TestParseLine_Rejects(t *testing.T) {
	for _, line := range []string{
		"",
		"Opening balance 1000.00",
		"Statement period: May 2024",
		"31/02/2024 Impossible date 100.00",
		"Statement date: 24/05/2024",
		"Account opened 15/01/2023",
		"Balance 500.00 as of 24/05/2024",
	} {
		_, ok := ParseLine(line)
		assert.False(t, ok, line)
	}
}

func TestParseLine_TruncatesLongDescriptions(t *testing.T) {
	line := "24/05/2024 10.00 DR " + strings.Repeat("x", 300)
	tx, ok := ParseLine(line)
	require.True(t, ok)
	assert.Len(t, []rune(tx.Description), maxDescriptionLen)
	assert.Len(t, []rune(tx.RawMerchant), maxMerchantLen)
}

func TestParseStatementText(t *testing.T) {
	text := strings.Join([]string{
		"ACME BANK STATEMENT",
		"Date Amount Type Description Balance",
		"24/05/2024 142.30 DR Whole Foods Market 5000.00",
		"",
		"25/05/2024 2500.00 CR Salary 7500.00\r",
		"Closing balance 7500.00",
	}, "\n")

	txs := ParseStatementText(text)
	require.Len(t, txs, 2)
	assert.Equal(t, "Whole Foods Market", txs[0].Description)
	assert.Equal(t, models.DirectionCredit, txs[1].Direction)
	assert.Equal(t, "Salary", txs[1].Description)

	assert.Empty(t, ParseStatementText(""))
}

func TestParseStatementDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"24/05/2024", day(2024, time.May, 24), true},
		{"05/24/2024", day(2024, time.May, 24), true},
		{"01/02/24", day(2024, time.February, 1), true},
		{"2024-05-24", day(2024, time.May, 24), true},
		{"24-May-2024", day(2024, time.May, 24), true},
		{"24-may-24", day(2024, time.May, 24), true},
		{"May 24, 2024", day(2024, time.May, 24), true},
		{"31/02/2024", time.Time{}, false},
		{"2024-13-01", time.Time{}, false},
		{"not a date", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseStatementDate(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
				assert.Equal(t, time.UTC, got.Location())
			}
		})
	}
}

func TestParseReference(t *testing.T) {
	ref := ParseReference("UPI/005722738967/P2V/7250963600@YBL/SONU SRIVASTA")
	assert.True(t, ref.IsStructured)
	assert.Equal(t, TransferP2V, ref.TransferType)
	assert.Equal(t, "ybl", ref.BeneficiaryID)
	assert.Equal(t, "SONU SRIVASTA", ref.BeneficiaryName)

	loose := ParseReference("UPI-p2m payment/ZOMATO LTD")
	assert.True(t, loose.IsStructured)
	assert.Equal(t, TransferP2M, loose.TransferType)
	assert.Equal(t, "ZOMATO LTD", loose.BeneficiaryName)

	plain := ParseReference("Whole Foods Market")
	assert.False(t, plain.IsStructured)
	assert.Empty(t, plain.TransferType)
}
