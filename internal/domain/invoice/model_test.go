package invoice

import (
	"testing"

	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice() *Invoice {
	inv := &Invoice{
		ID:             "inv_1",
		InvoiceNumber:  "INV-2026-000001",
		InvoiceStatus:  types.InvoiceStatusIssued,
		Currency:       "usd",
		TotalAmount:    decimal.NewFromInt(150),
		DiscountAmount: decimal.NewFromInt(15),
		LateFeeAmount:  decimal.Zero,
		PaidAmount:     decimal.Zero,
		CampusID:       lo.ToPtr("campus_north"),
		Version:        1,
		Lines: []*InvoiceLine{
			{
				ID:               "invl_1",
				Category:         "TUITION",
				Amount:           decimal.NewFromInt(100),
				Quantity:         decimal.NewFromInt(1),
				LineItemDiscount: decimal.NewFromInt(10),
			},
			{
				ID:               "invl_2",
				Category:         "LIBRARY",
				Amount:           decimal.NewFromInt(50),
				Quantity:         decimal.NewFromInt(1),
				LineItemDiscount: decimal.NewFromInt(5),
			},
		},
	}
	inv.RecalculateNet()
	return inv
}

func TestInvoice_Amounts(t *testing.T) {
	inv := newTestInvoice()
	assert.True(t, decimal.NewFromInt(135).Equal(inv.NetAmount))

	inv.LateFeeAmount = decimal.NewFromInt(20)
	inv.RecalculateNet()
	assert.True(t, decimal.NewFromInt(155).Equal(inv.NetAmount))

	inv.PaidAmount = decimal.NewFromInt(55)
	assert.True(t, decimal.NewFromInt(100).Equal(inv.AmountDue()))
	assert.True(t, decimal.NewFromInt(90).Equal(inv.Lines[0].NetAmount()))
}

func TestInvoice_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Invoice)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Invoice) {}},
		{
			name:    "stale net amount",
			mutate:  func(i *Invoice) { i.DiscountAmount = decimal.NewFromInt(20) },
			wantErr: true,
		},
		{
			name: "negative late fee",
			mutate: func(i *Invoice) {
				i.LateFeeAmount = decimal.NewFromInt(-1)
				i.RecalculateNet()
			},
			wantErr: true,
		},
		{
			name:    "unknown status",
			mutate:  func(i *Invoice) { i.InvoiceStatus = "SETTLED" },
			wantErr: true,
		},
		{
			name:    "line discount above line amount",
			mutate:  func(i *Invoice) { i.Lines[1].LineItemDiscount = decimal.NewFromInt(51) },
			wantErr: true,
		},
		{
			name:    "negative quantity",
			mutate:  func(i *Invoice) { i.Lines[0].Quantity = decimal.NewFromInt(-1) },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := newTestInvoice()
			tt.mutate(inv)
			err := inv.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, ierr.IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestInvoice_Copy(t *testing.T) {
	inv := newTestInvoice()
	cp := inv.Copy()

	cp.InvoiceStatus = types.InvoiceStatusCancelled
	*cp.CampusID = "campus_south"
	cp.Lines[0].LineItemDiscount = decimal.Zero
	cp.ReversalReason = lo.ToPtr("duplicate")

	assert.Equal(t, types.InvoiceStatusIssued, inv.InvoiceStatus)
	assert.Equal(t, "campus_north", *inv.CampusID)
	assert.True(t, decimal.NewFromInt(10).Equal(inv.Lines[0].LineItemDiscount))
	assert.Nil(t, inv.ReversalReason)
	assert.False(t, inv.IsCancelled())
	assert.True(t, cp.IsCancelled())

	var nilInvoice *Invoice
	assert.Nil(t, nilInvoice.Copy())
}
