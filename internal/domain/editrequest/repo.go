package editrequest

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for edit requests.
type Repository interface {
	Insert(ctx context.Context, req *EditRequest) error
	// GetByID returns (nil, nil) when no request exists with the id.
	GetByID(ctx context.Context, id uuid.UUID) (*EditRequest, error)
	// ListByStatus returns requests in the given status ordered by
	// created_at descending, plus the total count in that status.
	ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*EditRequest, int, error)
	CountByStatus(ctx context.Context, status Status) (int, error)
	// ResolveStatus atomically transitions the request from pending to the
	// given terminal status. It returns false when the stored status was no
	// longer pending, so concurrent resolvers cannot both win.
	ResolveStatus(ctx context.Context, id uuid.UUID, to Status, resolvedBy string) (bool, error)
}
