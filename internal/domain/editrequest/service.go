package editrequest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chartgate/chartgate/internal/platform/auth"
)

// TxRunner runs fn atomically. The production wiring passes db.WithTx bound
// to the pool; tests pass a passthrough.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Service orchestrates submission, listing, counting and resolution of edit
// requests. Scope checks run before any mutation; a failed check has no
// observable side effect.
type Service struct {
	requests Repository
	records  RecordStore
	inTx     TxRunner
}

func NewService(requests Repository, records RecordStore, inTx TxRunner) *Service {
	if inTx == nil {
		inTx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	return &Service{requests: requests, records: records, inTx: inTx}
}

// Submit validates scope and schema, then persists a new pending request.
func (s *Service) Submit(ctx context.Context, actor auth.Actor, targetRecordID uuid.UUID, changes Changes) (*EditRequest, error) {
	rec, err := s.records.FindByID(ctx, targetRecordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrRecordNotFound
	}
	if err := CanCreate(actor, rec); err != nil {
		return nil, err
	}
	if changes.Len() == 0 {
		return nil, ErrEmptyChangeSet
	}
	if err := s.records.Schema().Validate(changes); err != nil {
		return nil, err
	}

	req := &EditRequest{
		TargetRecordID:       targetRecordID,
		OriginOrganizationID: originOrg(actor, rec),
		ProposedChanges:      changes,
		Status:               StatusPending,
		CreatedAt:            time.Now().UTC(),
	}
	if err := s.requests.Insert(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// originOrg is the organization on whose behalf the request is made: the
// actor's own for scoped actors, the record's owner for elevated ones.
func originOrg(actor auth.Actor, rec Record) uuid.UUID {
	if actor.Elevated() {
		return rec.OwnerOrgID()
	}
	return actor.OrganizationID
}

// ListPending returns pending requests newest-first. Requests whose target
// record no longer exists are excluded from the returned slice; they stay
// in storage, unresolved. The total is the raw stored pending count and may
// exceed the filtered page.
func (s *Service) ListPending(ctx context.Context, actor auth.Actor, limit, offset int) ([]*EditRequest, int, error) {
	if err := CanResolve(actor); err != nil {
		return nil, 0, err
	}
	reqs, total, err := s.requests.ListByStatus(ctx, StatusPending, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*EditRequest, 0, len(reqs))
	for _, req := range reqs {
		rec, err := s.records.FindByID(ctx, req.TargetRecordID)
		if err != nil {
			return nil, 0, err
		}
		if rec == nil {
			continue
		}
		out = append(out, req)
	}
	return out, total, nil
}

// CountPending returns the raw stored pending count, for badge display.
// Orphaned requests filtered out of ListPending are still counted here.
func (s *Service) CountPending(ctx context.Context, actor auth.Actor) (int, error) {
	if err := CanResolve(actor); err != nil {
		return 0, err
	}
	return s.requests.CountByStatus(ctx, StatusPending)
}

// Get returns a single request by id, for the review detail view.
func (s *Service) Get(ctx context.Context, actor auth.Actor, requestID uuid.UUID) (*EditRequest, error) {
	if err := CanResolve(actor); err != nil {
		return nil, err
	}
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	return req, nil
}

// Diff computes the reviewer-facing field changes of a request against the
// live record.
func (s *Service) Diff(ctx context.Context, actor auth.Actor, requestID uuid.UUID) ([]FieldChange, error) {
	if err := CanResolve(actor); err != nil {
		return nil, err
	}
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	rec, err := s.records.FindByID(ctx, req.TargetRecordID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrRecordNotFound
	}
	return ComputeDiff(rec.Editable(), req.ProposedChanges, s.records.Schema())
}

// Resolve applies a reviewer's decision to a pending request. Approval
// merges the proposed changes onto the live record and transitions the
// request in one transaction; rejection only transitions. A request in a
// terminal status yields ErrAlreadyResolved.
func (s *Service) Resolve(ctx context.Context, actor auth.Actor, requestID uuid.UUID, decision Decision) (*EditRequest, error) {
	if err := CanResolve(actor); err != nil {
		return nil, err
	}
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.Status.Terminal() {
		return nil, ErrAlreadyResolved
	}

	switch decision {
	case DecisionApprove:
		err = s.approve(ctx, actor, req)
	case DecisionReject:
		err = s.reject(ctx, actor, req)
	default:
		return nil, fmt.Errorf("unknown decision %q", decision)
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// approve merges and transitions atomically. The conditional status update
// runs inside the same transaction as the record save: if another resolver
// won the race, the update affects no row, ErrAlreadyResolved rolls the
// merge back and the record is untouched. A missing record fails with
// ErrRecordNotFound and leaves the request pending, so the reviewer can
// retry or reject.
func (s *Service) approve(ctx context.Context, actor auth.Actor, req *EditRequest) error {
	err := s.inTx(ctx, func(ctx context.Context) error {
		rec, err := s.records.FindByID(ctx, req.TargetRecordID)
		if err != nil {
			return err
		}
		if rec == nil {
			return ErrRecordNotFound
		}
		merged, err := ApplyDiff(rec.Editable(), req.ProposedChanges, s.records.Schema())
		if err != nil {
			return err
		}
		if err := rec.ApplyEditable(merged); err != nil {
			return err
		}
		if err := s.records.Save(ctx, rec); err != nil {
			return err
		}
		ok, err := s.requests.ResolveStatus(ctx, req.ID, StatusApproved, actor.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAlreadyResolved
		}
		return nil
	})
	if err != nil {
		return err
	}
	markResolved(req, StatusApproved, actor.ID)
	return nil
}

func (s *Service) reject(ctx context.Context, actor auth.Actor, req *EditRequest) error {
	ok, err := s.requests.ResolveStatus(ctx, req.ID, StatusRejected, actor.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAlreadyResolved
	}
	markResolved(req, StatusRejected, actor.ID)
	return nil
}

func markResolved(req *EditRequest, status Status, resolvedBy string) {
	now := time.Now().UTC()
	req.Status = status
	req.ResolvedAt = &now
	req.ResolvedBy = &resolvedBy
}
