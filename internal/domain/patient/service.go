package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/chartgate/chartgate/internal/domain/editrequest"
	"github.com/chartgate/chartgate/internal/platform/auth"
)

// Service owns patient record CRUD. Reads are organization-scoped for
// operators; writes beyond creation go through the edit-request flow unless
// the actor is a superadmin.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a patient. Operators may only create records for their
// own organization.
func (s *Service) Create(ctx context.Context, actor auth.Actor, p *Patient) error {
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if p.OrganizationID == uuid.Nil {
		return fmt.Errorf("organization_id is required")
	}
	if !actor.Elevated() && actor.OrganizationID != p.OrganizationID {
		return editrequest.ErrForbidden
	}
	return s.repo.Create(ctx, p)
}

// Get returns a patient visible to the actor. A record outside a scoped
// actor's organization reports not-found, the same as a nonexistent one, so
// the response does not reveal whether the record exists.
func (s *Service) Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, editrequest.ErrRecordNotFound
	}
	if !actor.Elevated() && actor.OrganizationID != p.OrganizationID {
		return nil, editrequest.ErrRecordNotFound
	}
	return p, nil
}

// List returns all patients for elevated actors and the actor's own
// organization's patients otherwise.
func (s *Service) List(ctx context.Context, actor auth.Actor, limit, offset int) ([]*Patient, int, error) {
	if actor.Elevated() {
		return s.repo.List(ctx, limit, offset)
	}
	return s.repo.ListByOrganization(ctx, actor.OrganizationID, limit, offset)
}

// Update applies an editable-field payload directly, bypassing the approval
// queue. Superadmin only; the payload is validated and merged through the
// same diff engine the approval path uses.
func (s *Service) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, changes editrequest.Changes) (*Patient, error) {
	if !actor.Elevated() {
		return nil, editrequest.ErrForbidden
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, editrequest.ErrRecordNotFound
	}
	if changes.Len() == 0 {
		return nil, editrequest.ErrEmptyChangeSet
	}
	merged, err := editrequest.ApplyDiff(p.Editable(), changes, EditableSchema())
	if err != nil {
		return nil, err
	}
	if err := p.ApplyEditable(merged); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a patient. Superadmin only. Pending edit requests pointing
// at the record become orphans and drop out of the pending list.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.Elevated() {
		return editrequest.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}
