package labcase

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CommissionRate is the share of collected money owed to the collector.
// Commission is earned on the amount actually collected, never the full bill.
const CommissionRate = 0.40

// moneyEpsilon absorbs float64 noise when comparing currency amounts.
const moneyEpsilon = 1e-9

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

func (s Sex) IsValid() bool {
	switch s {
	case SexMale, SexFemale, SexOther:
		return true
	}
	return false
}

// Status is the payment state of the case, derived from due/advance amounts.
type Status string

const (
	StatusPaid    Status = "paid"
	StatusPartial Status = "partial"
	StatusDue     Status = "due"
)

type CommissionStatus string

const (
	CommissionUnpaid  CommissionStatus = "unpaid"
	CommissionPartial CommissionStatus = "partial"
	CommissionPaid    CommissionStatus = "paid"
)

// DeliveryStatus tracks report hand-over. It is set explicitly and is
// independent of the payment state.
type DeliveryStatus string

const (
	DeliveryDelivered    DeliveryStatus = "delivered"
	DeliveryPartial      DeliveryStatus = "partial"
	DeliveryNotDelivered DeliveryStatus = "not_delivered"
)

func (d DeliveryStatus) IsValid() bool {
	switch d {
	case DeliveryDelivered, DeliveryPartial, DeliveryNotDelivered:
		return true
	}
	return false
}

// PaidBy records who triggered the most recent commission payment.
type PaidBy string

const (
	PaidByUser  PaidBy = "user"
	PaidByAdmin PaidBy = "admin"
)

// WriteOffDetail marks a case whose outstanding due was forgiven. A nil
// detail means a standard case; a non-nil one carries the altered
// invariants (due forced to zero, commission re-based on realized money).
type WriteOffDetail struct {
	Amount      float64 `json:"amount"`
	OriginalDue float64 `json:"original_due"`
}

type Case struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PatientName  string `gorm:"column:patient_name;type:varchar(150);not null"`
	Age          int    `gorm:"column:age"`
	Sex          Sex    `gorm:"column:sex;type:varchar(10);not null"`
	MobileNumber string `gorm:"column:mobile_number;type:varchar(20)"`

	// TestIDs is stored exactly as submitted. Ids that no longer resolve in
	// the catalog stay in the list; they only price at zero when totals are
	// derived from the selection.
	TestIDs []string `gorm:"column:test_ids;serializer:json"`

	TotalAmount      float64 `gorm:"column:total_amount;type:decimal(12,2);not null"`
	AdvanceAmount    float64 `gorm:"column:advance_amount;type:decimal(12,2);not null"`
	DueAmount        float64 `gorm:"column:due_amount;type:decimal(12,2);not null"`
	CommissionAmount float64 `gorm:"column:commission_amount;type:decimal(12,2);not null"`
	CommissionPaid   float64 `gorm:"column:commission_paid;type:decimal(12,2);not null;default:0"`

	Status           Status           `gorm:"column:status;type:varchar(20);not null;index"`
	CommissionStatus CommissionStatus `gorm:"column:commission_status;type:varchar(20);not null;default:'unpaid';index"`
	CommissionPaidBy *PaidBy          `gorm:"column:commission_paid_by;type:varchar(10)"`
	DeliveryStatus   DeliveryStatus   `gorm:"column:delivery_status;type:varchar(20);not null;default:'not_delivered'"`

	WriteOff *WriteOffDetail `gorm:"column:write_off;serializer:json"`
	Notes    string          `gorm:"column:notes;type:text"`

	// Date is the creation date; immutable once set.
	Date time.Time `gorm:"column:date;not null;index"`

	// UserID is the collector this case is attributed to. It drives both
	// visibility scoping and commission attribution.
	UserID          uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	CollectedByName string    `gorm:"column:collected_by_name;type:varchar(100)"`
	TestedByName    string    `gorm:"column:tested_by_name;type:varchar(100)"`
}

func (Case) TableName() string {
	return "lab.cases"
}

func (c *Case) IsWrittenOff() bool {
	return c.WriteOff != nil
}

func (c *Case) CommissionRemaining() float64 {
	return c.CommissionAmount - c.CommissionPaid
}

// ApplyAmounts sets the billed and collected amounts and recomputes every
// derived field from them. This is the single authority for the due,
// commission, and status formulas; creation and amount-bearing updates both
// go through it. The case is left untouched on error.
func (c *Case) ApplyAmounts(total, advance float64) error {
	if total < 0 || advance < 0 {
		return ErrInvalidAmount
	}

	commission := advance * CommissionRate
	if c.CommissionPaid > commission+moneyEpsilon {
		return ErrCommissionInconsistent
	}

	c.TotalAmount = total
	c.AdvanceAmount = advance
	c.DueAmount = total - advance
	c.CommissionAmount = commission
	c.Status = deriveStatus(c.DueAmount, advance)
	return nil
}

// PayCommission applies a commission payment, optionally overriding the
// commission total first (administrative correction). Payments that would
// push the paid total past the commission amount are rejected outright.
func (c *Case) PayCommission(amount float64, overrideTotal *float64, by PaidBy) error {
	if amount < 0 {
		return ErrInvalidAmount
	}

	commission := c.CommissionAmount
	if overrideTotal != nil {
		if *overrideTotal < 0 {
			return ErrInvalidAmount
		}
		commission = *overrideTotal
	}

	newPaid := c.CommissionPaid + amount
	if newPaid > commission+moneyEpsilon {
		return ErrOverpayment
	}

	c.CommissionAmount = commission
	c.CommissionPaid = newPaid
	c.CommissionStatus = deriveCommissionStatus(newPaid, commission)
	if amount > 0 || overrideTotal != nil {
		paidBy := by
		c.CommissionPaidBy = &paidBy
	}
	return nil
}

// MarkCommissionFullyPaid settles the entire remaining commission balance
// in one step.
func (c *Case) MarkCommissionFullyPaid(by PaidBy) error {
	return c.PayCommission(c.CommissionRemaining(), nil, by)
}

// WriteOffDue forgives exactly the outstanding due balance. The commission
// is re-based on the money actually realized (total minus the forgiven due).
// If the re-based commission would fall below what was already disbursed the
// write-off is rejected, surfacing the inconsistency instead of silently
// truncating the paid total.
func (c *Case) WriteOffDue(amount float64) error {
	if c.DueAmount <= 0 {
		return ErrInvalidWriteOff
	}
	if math.Abs(amount-c.DueAmount) > moneyEpsilon {
		return ErrInvalidWriteOff
	}

	rebased := (c.TotalAmount - amount) * CommissionRate
	if c.CommissionPaid > rebased+moneyEpsilon {
		return ErrCommissionInconsistent
	}

	c.WriteOff = &WriteOffDetail{Amount: amount, OriginalDue: c.DueAmount}
	c.DueAmount = 0
	c.Status = StatusPaid
	c.CommissionAmount = rebased
	c.appendNote(fmt.Sprintf("Written off: %.2f", amount))
	return nil
}

func (c *Case) appendNote(note string) {
	if strings.TrimSpace(c.Notes) == "" {
		c.Notes = note
		return
	}
	c.Notes = c.Notes + "\n" + note
}

func deriveStatus(due, advance float64) Status {
	switch {
	case due <= 0:
		return StatusPaid
	case advance > 0:
		return StatusPartial
	default:
		return StatusDue
	}
}

func deriveCommissionStatus(paid, total float64) CommissionStatus {
	switch {
	case paid >= total-moneyEpsilon:
		return CommissionPaid
	case paid > 0:
		return CommissionPartial
	default:
		return CommissionUnpaid
	}
}

type CreateCaseCommand struct {
	PatientName  string
	Age          int
	Sex          Sex
	MobileNumber string
	TestIDs      []string

	// TotalAmount defaults to the sum of the selected tests' current rates
	// when nil.
	TotalAmount   *float64
	AdvanceAmount float64

	// CollectorUserID attributes the case to another collector; only admins
	// may set it. Defaults to the caller.
	CollectorUserID *uuid.UUID

	TestedByName   string
	DeliveryStatus *DeliveryStatus
	Notes          string
}

type UpdateCaseCommand struct {
	PatientName  *string
	Age          *int
	Sex          *Sex
	MobileNumber *string

	// TestIDs replaces the stored selection as-is. Changing the selection
	// alone never recomputes the billed total.
	TestIDs *[]string

	TotalAmount   *float64
	AdvanceAmount *float64

	DeliveryStatus *DeliveryStatus
	Notes          *string
	TestedByName   *string
}

// HasAmountChange reports whether the update carries either monetary field,
// which is what triggers the full derived-field recomputation.
func (cmd *UpdateCaseCommand) HasAmountChange() bool {
	return cmd.TotalAmount != nil || cmd.AdvanceAmount != nil
}

type ListCasesQuery struct {
	// CollectorID restricts the listing to one collector's cases; nil
	// returns the whole ledger.
	CollectorID *uuid.UUID
}
