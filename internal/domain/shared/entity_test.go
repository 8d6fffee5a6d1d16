package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTimestamp(t *testing.T) {
	local := time.FixedZone("UTC+3", 3*60*60)
	in := time.Date(2026, 3, 14, 13, 0, 0, 123456789, local)

	got := Timestamp(in)

	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 123456000, got.Nanosecond())
	assert.True(t, got.Equal(in.Truncate(time.Microsecond)))
}

func TestNewBaseEntityAt(t *testing.T) {
	at := time.Date(2026, 3, 14, 10, 0, 0, 999, time.UTC)

	e := NewBaseEntityAt(at)

	assert.NotEqual(t, uuid.Nil, e.GetID())
	assert.Equal(t, Timestamp(at), e.CreatedAt)
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)
}

func TestBaseEntity_Touch(t *testing.T) {
	e := NewBaseEntity()
	created := e.CreatedAt

	later := created.Add(90 * time.Minute)
	e.Touch(later)

	assert.Equal(t, created, e.CreatedAt)
	assert.Equal(t, Timestamp(later), e.UpdatedAt)
}

func TestNewBaseAggregateRoot(t *testing.T) {
	a := NewBaseAggregateRoot()

	assert.Equal(t, 1, a.GetVersion())
	a.IncrementVersion()
	assert.Equal(t, 2, a.GetVersion())
	assert.Empty(t, a.GetDomainEvents())
}
