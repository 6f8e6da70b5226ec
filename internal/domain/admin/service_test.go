package admin

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockOrgRepo struct {
	orgs map[uuid.UUID]*Organization
}

func newMockOrgRepo() *mockOrgRepo {
	return &mockOrgRepo{orgs: make(map[uuid.UUID]*Organization)}
}

func (m *mockOrgRepo) Create(_ context.Context, org *Organization) error {
	org.ID = uuid.New()
	org.CreatedAt = time.Now()
	org.UpdatedAt = time.Now()
	m.orgs[org.ID] = org
	return nil
}

func (m *mockOrgRepo) GetByID(_ context.Context, id uuid.UUID) (*Organization, error) {
	org, ok := m.orgs[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return org, nil
}

func (m *mockOrgRepo) Update(_ context.Context, org *Organization) error {
	if _, ok := m.orgs[org.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.orgs[org.ID] = org
	return nil
}

func (m *mockOrgRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.orgs, id)
	return nil
}

func (m *mockOrgRepo) List(_ context.Context, limit, offset int) ([]*Organization, int, error) {
	var result []*Organization
	for _, org := range m.orgs {
		result = append(result, org)
	}
	total := len(result)
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func TestCreateOrganization(t *testing.T) {
	svc := NewService(newMockOrgRepo())

	org := &Organization{Name: "St. Mary General"}
	if err := svc.CreateOrganization(context.Background(), org); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}
	if org.ID == uuid.Nil {
		t.Error("expected ID to be assigned")
	}
	if !org.Active {
		t.Error("expected new organization to be active")
	}
	if org.TypeCode != "prov" {
		t.Errorf("expected default type_code prov, got %s", org.TypeCode)
	}
}

func TestCreateOrganization_RequiresName(t *testing.T) {
	svc := NewService(newMockOrgRepo())

	if err := svc.CreateOrganization(context.Background(), &Organization{}); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestUpdateOrganization(t *testing.T) {
	repo := newMockOrgRepo()
	svc := NewService(repo)

	org := &Organization{Name: "St. Mary General"}
	if err := svc.CreateOrganization(context.Background(), org); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}

	org.Name = "St. Mary Regional"
	if err := svc.UpdateOrganization(context.Background(), org); err != nil {
		t.Fatalf("UpdateOrganization failed: %v", err)
	}

	got, err := svc.GetOrganization(context.Background(), org.ID)
	if err != nil {
		t.Fatalf("GetOrganization failed: %v", err)
	}
	if got.Name != "St. Mary Regional" {
		t.Errorf("expected updated name, got %s", got.Name)
	}
}

func TestUpdateOrganization_RequiresName(t *testing.T) {
	svc := NewService(newMockOrgRepo())

	if err := svc.UpdateOrganization(context.Background(), &Organization{ID: uuid.New()}); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestDeleteOrganization(t *testing.T) {
	repo := newMockOrgRepo()
	svc := NewService(repo)

	org := &Organization{Name: "St. Mary General"}
	if err := svc.CreateOrganization(context.Background(), org); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}
	if err := svc.DeleteOrganization(context.Background(), org.ID); err != nil {
		t.Fatalf("DeleteOrganization failed: %v", err)
	}
	if _, err := svc.GetOrganization(context.Background(), org.ID); err == nil {
		t.Error("expected error after delete")
	}
}

func TestListOrganizations(t *testing.T) {
	svc := NewService(newMockOrgRepo())

	for i := 0; i < 3; i++ {
		org := &Organization{Name: fmt.Sprintf("Hospital %d", i)}
		if err := svc.CreateOrganization(context.Background(), org); err != nil {
			t.Fatalf("CreateOrganization failed: %v", err)
		}
	}

	orgs, total, err := svc.ListOrganizations(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("ListOrganizations failed: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if len(orgs) != 3 {
		t.Errorf("expected 3 organizations, got %d", len(orgs))
	}
}
