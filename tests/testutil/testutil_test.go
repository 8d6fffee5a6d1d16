package testutil

import (
	"net/http"
	"testing"
	"time"

	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/parcelhub/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)
	defer mockDB.Close()

	assert.NotNil(t, mockDB.DB)
	assert.NotNil(t, mockDB.Mock)
	mockDB.ExpectationsWereMet(t)
}

func TestTestContext_CarriesCaller(t *testing.T) {
	tc := NewTestContext(t)
	assert.Equal(t, http.MethodGet, tc.Context.Request.Method)

	tc.SetRequestID("req-123")
	assert.Equal(t, "req-123", tc.Context.GetString("request_id"))

	_, ok := middleware.GetCaller(tc.Context)
	assert.False(t, ok)

	tc.SetCaller(BranchCaller(4))
	caller, ok := middleware.GetCaller(tc.Context)
	require.True(t, ok)
	assert.Equal(t, ledger.RoleBranchManager, caller.Role)
	require.NotNil(t, caller.BranchID)
	assert.Equal(t, int64(4), *caller.BranchID)
}

func TestCallers(t *testing.T) {
	assert.Equal(t, BranchCaller(2).UserID, BranchCaller(2).UserID)
	assert.NotEqual(t, BranchCaller(2).UserID, BranchCaller(3).UserID)

	admin := AdminCaller()
	assert.Equal(t, ledger.RoleAdmin, admin.Role)
	assert.Nil(t, admin.BranchID)
}

func TestNewTestUUID_IsStable(t *testing.T) {
	assert.Equal(t, NewTestUUID("seed"), NewTestUUID("seed"))
	assert.NotEqual(t, NewTestUUID("seed"), NewTestUUID("other"))
}

func TestContextWithTimeout(t *testing.T) {
	ctx := ContextWithTimeout(t, 50*time.Millisecond)
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 20*time.Millisecond)
}

func TestAssertNever(t *testing.T) {
	AssertNever(t, func() bool { return false }, 30*time.Millisecond, 5*time.Millisecond)
}
