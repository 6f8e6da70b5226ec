package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for patients.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	// GetByID returns (nil, nil) when no patient exists with the id.
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Patient, int, error)
}
