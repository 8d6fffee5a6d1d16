package ledger

import "context"

// Branch is an entry of the branch directory
type Branch struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// BranchDirectory resolves branch ids to display names
type BranchDirectory interface {
	// Resolve returns the branch or shared.ErrNotFound
	Resolve(ctx context.Context, branchID int64) (*Branch, error)
	// ResolveMany returns the branches found among ids, keyed by id
	ResolveMany(ctx context.Context, ids []int64) (map[int64]*Branch, error)
	List(ctx context.Context) ([]Branch, error)
}

// BranchName returns a display name, falling back to a generic label
func BranchName(b *Branch, id int64) string {
	if b != nil && b.Name != "" {
		return b.Name
	}
	return "Branch #" + FormatBranchID(id)
}
