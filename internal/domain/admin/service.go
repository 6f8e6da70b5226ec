package admin

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	orgs OrganizationRepository
}

func NewService(orgs OrganizationRepository) *Service {
	return &Service{orgs: orgs}
}

func (s *Service) CreateOrganization(ctx context.Context, org *Organization) error {
	if org.Name == "" {
		return fmt.Errorf("organization name is required")
	}
	if org.TypeCode == "" {
		org.TypeCode = "prov"
	}
	org.Active = true
	return s.orgs.Create(ctx, org)
}

func (s *Service) GetOrganization(ctx context.Context, id uuid.UUID) (*Organization, error) {
	return s.orgs.GetByID(ctx, id)
}

func (s *Service) UpdateOrganization(ctx context.Context, org *Organization) error {
	if org.Name == "" {
		return fmt.Errorf("organization name is required")
	}
	return s.orgs.Update(ctx, org)
}

func (s *Service) DeleteOrganization(ctx context.Context, id uuid.UUID) error {
	return s.orgs.Delete(ctx, id)
}

func (s *Service) ListOrganizations(ctx context.Context, limit, offset int) ([]*Organization, int, error) {
	return s.orgs.List(ctx, limit, offset)
}
