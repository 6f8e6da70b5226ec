package integration

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/chartgate/chartgate/internal/domain/editrequest"
	"github.com/chartgate/chartgate/internal/domain/patient"
	"github.com/chartgate/chartgate/internal/platform/auth"
	"github.com/chartgate/chartgate/internal/platform/db"
)

func newEditRequestService() (*editrequest.Service, patient.Repository) {
	patientRepo := patient.NewRepo(globalDB.Pool)
	svc := editrequest.NewService(
		editrequest.NewRepo(globalDB.Pool),
		patient.NewRecordStore(patientRepo),
		func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.WithTx(ctx, globalDB.Pool, fn)
		},
	)
	return svc, patientRepo
}

func mustParseChanges(t *testing.T, raw string) editrequest.Changes {
	t.Helper()
	var c editrequest.Changes
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("parse changes: %v", err)
	}
	return c
}

func TestEditRequestApprovalFlow(t *testing.T) {
	ctx := context.Background()
	svc, patientRepo := newEditRequestService()

	org := createTestOrganization(t, ctx, "Flow General Hospital")
	p := createTestPatient(t, ctx, org.ID, "Maya", "Ortiz")

	operator := auth.Actor{ID: "op-1", Role: auth.RoleOperator, OrganizationID: org.ID}
	reviewer := auth.Actor{ID: "admin-1", Role: auth.RoleSuperadmin}

	changes := mustParseChanges(t, `{"last_name":"Silva","contact":{"phone":"555-0199"}}`)
	req, err := svc.Submit(ctx, operator, p.ID, changes)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if req.Status != editrequest.StatusPending {
		t.Fatalf("expected pending status, got %s", req.Status)
	}
	if req.OriginOrganizationID != org.ID {
		t.Fatalf("expected origin org %s, got %s", org.ID, req.OriginOrganizationID)
	}

	// The stored change set must round-trip in submission order.
	stored, err := svc.Get(ctx, reviewer, req.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	keys := stored.ProposedChanges.Keys()
	if len(keys) != 2 || keys[0] != "last_name" || keys[1] != "contact" {
		t.Fatalf("expected submission-order keys, got %v", keys)
	}

	diff, err := svc.Diff(ctx, reviewer, req.ID)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if len(diff) != 2 {
		t.Fatalf("expected 2 field changes, got %d", len(diff))
	}
	if diff[0].Field != "last_name" || diff[0].New != "Silva" {
		t.Fatalf("unexpected first change: %+v", diff[0])
	}

	resolved, err := svc.Resolve(ctx, reviewer, req.ID, editrequest.DecisionApprove)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if resolved.Status != editrequest.StatusApproved {
		t.Fatalf("expected approved, got %s", resolved.Status)
	}
	if resolved.ResolvedAt == nil || resolved.ResolvedBy == nil {
		t.Fatal("expected resolution metadata to be set")
	}

	// The merge is shallow on nested fields: email survives the phone change.
	merged, err := patientRepo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("reload patient: %v", err)
	}
	if merged.LastName != "Silva" {
		t.Fatalf("expected merged last name Silva, got %s", merged.LastName)
	}
	if merged.ContactPhone == nil || *merged.ContactPhone != "555-0199" {
		t.Fatalf("expected merged phone, got %v", merged.ContactPhone)
	}
	if merged.ContactEmail == nil || *merged.ContactEmail != "old@example.org" {
		t.Fatalf("expected sibling email preserved, got %v", merged.ContactEmail)
	}

	// A second resolution attempt hits the already-resolved guard.
	if _, err := svc.Resolve(ctx, reviewer, req.ID, editrequest.DecisionReject); !errors.Is(err, editrequest.ErrAlreadyResolved) {
		t.Fatalf("expected already-resolved error, got %v", err)
	}
}

func TestEditRequestScopeAndQueue(t *testing.T) {
	ctx := context.Background()
	svc, patientRepo := newEditRequestService()

	orgA := createTestOrganization(t, ctx, "Queue Org A")
	orgB := createTestOrganization(t, ctx, "Queue Org B")
	pA := createTestPatient(t, ctx, orgA.ID, "Ira", "Nilsen")

	operatorB := auth.Actor{ID: "op-b", Role: auth.RoleOperator, OrganizationID: orgB.ID}
	reviewer := auth.Actor{ID: "admin-1", Role: auth.RoleSuperadmin}

	// A scoped operator cannot target another organization's chart.
	changes := mustParseChanges(t, `{"notes":"transferred"}`)
	if _, err := svc.Submit(ctx, operatorB, pA.ID, changes); !errors.Is(err, editrequest.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	operatorA := auth.Actor{ID: "op-a", Role: auth.RoleOperator, OrganizationID: orgA.ID}
	req, err := svc.Submit(ctx, operatorA, pA.ID, changes)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// Scoped actors cannot read the review queue.
	if _, _, err := svc.ListPending(ctx, operatorA, 50, 0); !errors.Is(err, editrequest.ErrForbidden) {
		t.Fatalf("expected forbidden list, got %v", err)
	}

	pending, _, err := svc.ListPending(ctx, reviewer, 50, 0)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	found := false
	for _, r := range pending {
		if r.ID == req.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected request %s in pending queue", req.ID)
	}

	// Deleting the target chart orphans the request: hidden from the queue
	// but still part of the raw pending count.
	countBefore, err := svc.CountPending(ctx, reviewer)
	if err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if err := patientRepo.Delete(ctx, pA.ID); err != nil {
		t.Fatalf("delete patient: %v", err)
	}

	pending, _, err = svc.ListPending(ctx, reviewer, 50, 0)
	if err != nil {
		t.Fatalf("list pending after delete: %v", err)
	}
	for _, r := range pending {
		if r.ID == req.ID {
			t.Fatal("orphaned request should be filtered from the queue")
		}
	}

	countAfter, err := svc.CountPending(ctx, reviewer)
	if err != nil {
		t.Fatalf("count pending after delete: %v", err)
	}
	if countAfter != countBefore {
		t.Fatalf("raw pending count should include orphans: before=%d after=%d", countBefore, countAfter)
	}

	// Rejecting the orphan still works and clears it from the count.
	if _, err := svc.Resolve(ctx, reviewer, req.ID, editrequest.DecisionReject); err != nil {
		t.Fatalf("reject orphan: %v", err)
	}
}

func TestEditRequestUnknownTarget(t *testing.T) {
	ctx := context.Background()
	svc, _ := newEditRequestService()

	org := createTestOrganization(t, ctx, "Ghost Org")
	operator := auth.Actor{ID: "op-1", Role: auth.RoleOperator, OrganizationID: org.ID}

	changes := mustParseChanges(t, `{"notes":"hello"}`)
	if _, err := svc.Submit(ctx, operator, uuid.New(), changes); !errors.Is(err, editrequest.ErrRecordNotFound) {
		t.Fatalf("expected record-not-found, got %v", err)
	}
}
