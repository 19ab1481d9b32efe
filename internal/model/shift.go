package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shift status values. OPEN → CLOSED → VALIDATED; VALIDATED is terminal.
const (
	ShiftOpen      = "OPEN"
	ShiftClosed    = "CLOSED"
	ShiftValidated = "VALIDATED"
)

// Shift is one pompiste's working session on one nozzle, from meter-start to
// meter-end. At most one OPEN shift may exist per nozzle and per pompiste —
// enforced transactionally and backstopped by partial unique indexes
// (see infra.applySchemaPatches).
type Shift struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NozzleID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	PompisteID uuid.UUID       `gorm:"type:uuid;not null;index"`
	IndexStart decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// IndexEnd stays nil until the shift is closed; once set, IndexEnd >= IndexStart.
	IndexEnd     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Status       string           `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	IncidentNote *string
	StartedAt    time.Time
	EndedAt      *time.Time
	// ValidatedBy / ValidatedAt are set only on the CLOSED → VALIDATED transition.
	ValidatedBy *uuid.UUID `gorm:"type:uuid"`
	ValidatedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Nozzle   *Nozzle `gorm:"foreignKey:NozzleID"`
	Pompiste *User   `gorm:"foreignKey:PompisteID"`
	Sales    []Sale  `gorm:"foreignKey:ShiftID"`
}
