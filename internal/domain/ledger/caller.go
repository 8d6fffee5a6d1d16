package ledger

import (
	"github.com/google/uuid"
)

// Role names the caller's role in the back office
type Role string

const (
	RoleSuperAdmin    Role = "SUPER_ADMIN"
	RoleAdmin         Role = "ADMIN"
	RoleBranchManager Role = "BRANCH_MANAGER"
	RoleCashier       Role = "CASHIER"
	RoleClerk         Role = "CLERK"
)

// IsBranchExempt returns true for roles that are not scoped to one branch
func (r Role) IsBranchExempt() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

// CallerContext identifies who is invoking a ledger operation
type CallerContext struct {
	UserID   uuid.UUID
	Role     Role
	BranchID *int64
}

// HasBranch returns true if the caller is attached to a branch
func (c CallerContext) HasBranch() bool {
	return c.BranchID != nil && *c.BranchID > 0
}

// InitiatingBranch resolves the branch a new debt is booked under.
// Branch-scoped callers always use their own branch. Exempt callers without a
// branch must name one explicitly.
func (c CallerContext) InitiatingBranch(requested *int64) (int64, error) {
	if c.UserID == uuid.Nil {
		return 0, NewValidationError("caller user id is required")
	}
	if c.HasBranch() {
		if requested != nil && *requested != *c.BranchID && !c.Role.IsBranchExempt() {
			return 0, NewValidationError("cannot book a debt under another branch")
		}
		if requested != nil && c.Role.IsBranchExempt() && *requested > 0 {
			return *requested, nil
		}
		return *c.BranchID, nil
	}
	if !c.Role.IsBranchExempt() {
		return 0, NewValidationError("caller has no branch assigned")
	}
	if requested == nil || *requested <= 0 {
		return 0, NewValidationError("initiating branch is required for callers without a branch")
	}
	return *requested, nil
}
