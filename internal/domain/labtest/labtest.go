package labtest

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a catalog entry. Suspended tests
// stay referenced by historical cases but are excluded from new-case
// selection lists.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

type Test struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name   string  `gorm:"column:name;type:varchar(150);not null"`
	Rate   float64 `gorm:"column:rate;type:decimal(12,2);not null"`
	Status Status  `gorm:"column:status;type:varchar(20);not null;default:'active';index"`
}

func (Test) TableName() string {
	return "lab.tests"
}

func (t *Test) IsActive() bool {
	return t.Status == StatusActive
}

// ToggleStatus flips active <-> suspended.
func (t *Test) ToggleStatus() {
	if t.Status == StatusActive {
		t.Status = StatusSuspended
	} else {
		t.Status = StatusActive
	}
}

type CreateTestCommand struct {
	Name string
	Rate float64
}

type UpdateTestCommand struct {
	Name *string
	Rate *float64
}
