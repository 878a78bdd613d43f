package labcase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newCase(total, advance float64) *Case {
	c := &Case{CommissionStatus: CommissionUnpaid}
	if err := c.ApplyAmounts(total, advance); err != nil {
		panic(err)
	}
	return c
}

func TestApplyAmounts_Derivation(t *testing.T) {
	tests := []struct {
		name           string
		total          float64
		advance        float64
		wantDue        float64
		wantCommission float64
		wantStatus     Status
	}{
		{"partial payment", 800, 400, 400, 160, StatusPartial},
		{"fully paid", 650, 650, 0, 260, StatusPaid},
		{"nothing collected", 1000, 0, 1000, 0, StatusDue},
		{"overpaid advance", 500, 600, -100, 240, StatusPaid},
		{"zero case", 0, 0, 0, 0, StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCase(tt.total, tt.advance)
			assert.Equal(t, tt.wantDue, c.DueAmount)
			assert.Equal(t, tt.wantCommission, c.CommissionAmount)
			assert.Equal(t, tt.wantStatus, c.Status)
		})
	}
}

func TestApplyAmounts_RejectsNegativeInput(t *testing.T) {
	c := newCase(800, 400)

	assert.ErrorIs(t, c.ApplyAmounts(-1, 0), ErrInvalidAmount)
	assert.ErrorIs(t, c.ApplyAmounts(100, -1), ErrInvalidAmount)

	// Rejected input leaves every derived field as it was
	assert.Equal(t, 800.0, c.TotalAmount)
	assert.Equal(t, 400.0, c.DueAmount)
	assert.Equal(t, 160.0, c.CommissionAmount)
	assert.Equal(t, StatusPartial, c.Status)
}

func TestApplyAmounts_SurfacesCommissionInconsistency(t *testing.T) {
	c := newCase(800, 400)
	assert.NoError(t, c.PayCommission(160, nil, PaidByUser))

	// Lowering the advance would drop commission below what is already paid
	err := c.ApplyAmounts(800, 100)
	assert.ErrorIs(t, err, ErrCommissionInconsistent)
	assert.Equal(t, 400.0, c.AdvanceAmount)
	assert.Equal(t, 160.0, c.CommissionAmount)
}

func TestPayCommission(t *testing.T) {
	c := newCase(800, 400)

	assert.NoError(t, c.PayCommission(100, nil, PaidByUser))
	assert.Equal(t, 100.0, c.CommissionPaid)
	assert.Equal(t, CommissionPartial, c.CommissionStatus)
	if assert.NotNil(t, c.CommissionPaidBy) {
		assert.Equal(t, PaidByUser, *c.CommissionPaidBy)
	}

	assert.NoError(t, c.PayCommission(60, nil, PaidByAdmin))
	assert.Equal(t, 160.0, c.CommissionPaid)
	assert.Equal(t, CommissionPaid, c.CommissionStatus)
	assert.Equal(t, PaidByAdmin, *c.CommissionPaidBy)

	// Any further payment would exceed the commission amount
	err := c.PayCommission(1, nil, PaidByAdmin)
	assert.ErrorIs(t, err, ErrOverpayment)
	assert.Equal(t, 160.0, c.CommissionPaid)
	assert.Equal(t, CommissionPaid, c.CommissionStatus)
}

func TestPayCommission_ZeroAmountKeepsState(t *testing.T) {
	c := newCase(800, 400)

	assert.NoError(t, c.PayCommission(0, nil, PaidByUser))
	assert.Equal(t, 0.0, c.CommissionPaid)
	assert.Equal(t, CommissionUnpaid, c.CommissionStatus)
	assert.Nil(t, c.CommissionPaidBy)
}

func TestPayCommission_RejectsNegativeAmount(t *testing.T) {
	c := newCase(800, 400)
	assert.ErrorIs(t, c.PayCommission(-5, nil, PaidByUser), ErrInvalidAmount)
}

func TestPayCommission_OverrideTotal(t *testing.T) {
	c := newCase(800, 400)

	override := 200.0
	assert.NoError(t, c.PayCommission(200, &override, PaidByAdmin))
	assert.Equal(t, 200.0, c.CommissionAmount)
	assert.Equal(t, 200.0, c.CommissionPaid)
	assert.Equal(t, CommissionPaid, c.CommissionStatus)

	// Override below what was already paid cannot absorb the new payment
	c2 := newCase(800, 400)
	assert.NoError(t, c2.PayCommission(150, nil, PaidByUser))
	low := 100.0
	assert.ErrorIs(t, c2.PayCommission(0, &low, PaidByUser), ErrOverpayment)
	assert.Equal(t, 160.0, c2.CommissionAmount)
	assert.Equal(t, 150.0, c2.CommissionPaid)
}

func TestPayCommission_RejectsNegativeOverride(t *testing.T) {
	c := newCase(800, 400)
	bad := -10.0
	assert.ErrorIs(t, c.PayCommission(0, &bad, PaidByAdmin), ErrInvalidAmount)
}

func TestMarkCommissionFullyPaid(t *testing.T) {
	c := newCase(800, 400)
	assert.NoError(t, c.PayCommission(60, nil, PaidByUser))

	assert.NoError(t, c.MarkCommissionFullyPaid(PaidByAdmin))
	assert.Equal(t, c.CommissionAmount, c.CommissionPaid)
	assert.Equal(t, CommissionPaid, c.CommissionStatus)
	assert.Equal(t, PaidByAdmin, *c.CommissionPaidBy)
}

func TestWriteOffDue(t *testing.T) {
	c := newCase(800, 400)

	assert.NoError(t, c.WriteOffDue(400))
	assert.Equal(t, 0.0, c.DueAmount)
	assert.Equal(t, StatusPaid, c.Status)
	if assert.NotNil(t, c.WriteOff) {
		assert.Equal(t, 400.0, c.WriteOff.Amount)
		assert.Equal(t, 400.0, c.WriteOff.OriginalDue)
	}
	// Commission re-based on the realized amount: (800-400) * 0.40
	assert.Equal(t, 160.0, c.CommissionAmount)
	assert.Contains(t, c.Notes, "Written off: 400.00")
}

func TestWriteOffDue_RebasesCommission(t *testing.T) {
	c := newCase(1000, 200)
	assert.Equal(t, 80.0, c.CommissionAmount)

	assert.NoError(t, c.WriteOffDue(800))
	assert.Equal(t, 80.0, c.CommissionAmount) // (1000-800) * 0.40
	assert.Equal(t, StatusPaid, c.Status)
}

func TestWriteOffDue_AmountMismatch(t *testing.T) {
	c := newCase(800, 400)

	err := c.WriteOffDue(399)
	assert.ErrorIs(t, err, ErrInvalidWriteOff)
	assert.Equal(t, 400.0, c.DueAmount)
	assert.Equal(t, StatusPartial, c.Status)
	assert.Nil(t, c.WriteOff)
	assert.Empty(t, c.Notes)
}

func TestWriteOffDue_NoOutstandingBalance(t *testing.T) {
	c := newCase(650, 650)
	assert.ErrorIs(t, c.WriteOffDue(0), ErrInvalidWriteOff)
}

func TestWriteOffDue_RejectsWhenPaidExceedsRebasedCommission(t *testing.T) {
	// Advance 400 earns 160 commission; all of it gets paid out. A write-off
	// of the remaining 600 would re-base commission to 80, below the 160
	// already disbursed.
	c := newCase(1000, 400)
	assert.NoError(t, c.PayCommission(160, nil, PaidByAdmin))

	err := c.WriteOffDue(600)
	assert.ErrorIs(t, err, ErrCommissionInconsistent)
	assert.Equal(t, 600.0, c.DueAmount)
	assert.Equal(t, 160.0, c.CommissionAmount)
	assert.Nil(t, c.WriteOff)
}

func TestWriteOffDue_AppendsToExistingNotes(t *testing.T) {
	c := newCase(800, 400)
	c.Notes = "brought by evening courier"

	assert.NoError(t, c.WriteOffDue(400))
	assert.Contains(t, c.Notes, "brought by evening courier")
	assert.Contains(t, c.Notes, "Written off: 400.00")
}
