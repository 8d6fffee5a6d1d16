package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is anything with a stable identity
type Entity interface {
	GetID() uuid.UUID
}

// BaseEntity provides common fields for all entities
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// Touch records a modification at t
func (e *BaseEntity) Touch(t time.Time) {
	e.UpdatedAt = Timestamp(t)
}

// NewBaseEntity creates a base entity with a generated ID, stamped now
func NewBaseEntity() BaseEntity {
	return NewBaseEntityAt(time.Now())
}

// NewBaseEntityAt creates a base entity with a generated ID, stamped at t
func NewBaseEntityAt(t time.Time) BaseEntity {
	now := Timestamp(t)
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Timestamp normalizes t to UTC at microsecond precision, the resolution
// PostgreSQL keeps, so a value compares equal after a round trip.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
