package types

import (
	"testing"
	"time"

	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-2026-000001", FormatInvoiceNumber("2026", 1))
	assert.Equal(t, "INV-2026-004213", FormatInvoiceNumber("2026", 4213))
	// the suffix widens instead of wrapping
	assert.Equal(t, "INV-2026-1000000", FormatInvoiceNumber("2026", 1000000))
}

func TestParseInvoiceNumber(t *testing.T) {
	tests := []struct {
		name       string
		number     string
		wantPeriod string
		wantSeq    int64
		wantErr    bool
	}{
		{name: "standard", number: "INV-2026-000042", wantPeriod: "2026", wantSeq: 42},
		{name: "wide suffix", number: "INV-2026-1000000", wantPeriod: "2026", wantSeq: 1000000},
		{name: "wrong prefix", number: "BIL-2026-000001", wantErr: true},
		{name: "missing sequence", number: "INV-2026", wantErr: true},
		{name: "non numeric sequence", number: "INV-2026-00A001", wantErr: true},
		{name: "empty period", number: "INV--000001", wantErr: true},
		{name: "extra segment", number: "INV-2026-01-000001", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period, seq, err := ParseInvoiceNumber(tt.number)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, ierr.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPeriod, period)
			assert.Equal(t, tt.wantSeq, seq)
			assert.Equal(t, tt.number, FormatInvoiceNumber(period, seq))
		})
	}
}

func TestInvoiceNumberPeriod(t *testing.T) {
	tokyo, err := LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	newYearsEveUTC := time.Date(2026, 12, 31, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026", InvoiceNumberPeriod(newYearsEveUTC, time.UTC))
	assert.Equal(t, "2027", InvoiceNumberPeriod(newYearsEveUTC, tokyo))
	assert.Equal(t, "2026", InvoiceNumberPeriod(newYearsEveUTC, nil))
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("jst")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())

	loc, err = LoadLocation("  ")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = LoadLocation("Africa/Kampala")
	require.NoError(t, err)
	assert.Equal(t, "Africa/Kampala", loc.String())

	_, err = LoadLocation("Mars/Olympus")
	assert.True(t, ierr.IsValidation(err))
}

func TestInvoiceStatus(t *testing.T) {
	assert.NoError(t, InvoiceStatusOverdue.Validate())
	assert.True(t, ierr.IsValidation(InvoiceStatus("SETTLED").Validate()))

	assert.True(t, InvoiceStatusPaid.IsFinal())
	assert.True(t, InvoiceStatusCancelled.IsFinal())
	assert.False(t, InvoiceStatusPartiallyPaid.IsFinal())
	assert.False(t, InvoiceStatusOverdue.IsFinal())
}

func TestInvoiceStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		from InvoiceStatus
		to   InvoiceStatus
		want bool
	}{
		{InvoiceStatusIssued, InvoiceStatusIssued, true},
		{InvoiceStatusIssued, InvoiceStatusOverdue, true},
		{InvoiceStatusIssued, InvoiceStatusPaid, true},
		{InvoiceStatusOverdue, InvoiceStatusCancelled, true},
		{InvoiceStatusPartiallyPaid, InvoiceStatusPaid, true},
		{InvoiceStatusOverdue, InvoiceStatusIssued, false},
		{InvoiceStatusPartiallyPaid, InvoiceStatusIssued, false},
		{InvoiceStatusPartiallyPaid, InvoiceStatusCancelled, false},
		{InvoiceStatusPaid, InvoiceStatusPaid, false},
		{InvoiceStatusPaid, InvoiceStatusCancelled, false},
		{InvoiceStatusCancelled, InvoiceStatusIssued, false},
		{InvoiceStatusIssued, InvoiceStatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.True(t, InvoiceStatusPaid.IsPaymentOwned())
	assert.True(t, InvoiceStatusPartiallyPaid.IsPaymentOwned())
	assert.False(t, InvoiceStatusOverdue.IsPaymentOwned())
}

func TestValidatePayerID(t *testing.T) {
	assert.NoError(t, ValidatePayerID("7b1c1a52-8d6e-4a3b-9f0e-2a9c0d5e1f01"))

	err := ValidatePayerID("student-42")
	require.Error(t, err)
	assert.True(t, ierr.IsValidation(err))
	assert.Contains(t, err.Error(), "invalid id format")

	assert.True(t, ierr.IsValidation(ValidatePayerID("  ")))
}

func TestRoundToCurrencyPrecision(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		expected string
	}{
		{amount: "10.275", currency: "usd", expected: "10.28"},
		{amount: "10.274", currency: "USD", expected: "10.27"},
		{amount: "0.005", currency: "eur", expected: "0.01"},
		{amount: "1000.5", currency: "jpy", expected: "1001"},
		{amount: "999.4", currency: "krw", expected: "999"},
		{amount: "12.5", currency: "clp", expected: "13"},
		{amount: "-2.345", currency: "usd", expected: "-2.35"},
	}

	for _, tt := range tests {
		t.Run(tt.currency+"_"+tt.amount, func(t *testing.T) {
			rounded := RoundToCurrencyPrecision(decimal.RequireFromString(tt.amount), tt.currency)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(rounded), "got %s", rounded)
		})
	}

	assert.Equal(t, int32(2), GetCurrencyPrecision("xyz"))
}

func TestInvoiceFilterValidate(t *testing.T) {
	f := NewInvoiceFilter()
	assert.NoError(t, f.Validate())
	assert.Equal(t, 0, f.GetOffset())

	f.InvoiceStatus = []InvoiceStatus{InvoiceStatusIssued, "SETTLED"}
	assert.True(t, ierr.IsValidation(f.Validate()))

	var empty InvoiceFilter
	assert.NoError(t, empty.Validate())
	assert.Equal(t, NewDefaultQueryFilter().GetLimit(), empty.GetLimit())
	assert.True(t, NewNoLimitInvoiceFilter().IsUnlimited())
}
