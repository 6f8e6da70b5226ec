package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/chartgate/chartgate/internal/domain/editrequest"
)

// RecordStore adapts the patient repository to the edit-request engine's
// record collaborator.
type RecordStore struct {
	repo Repository
}

func NewRecordStore(repo Repository) *RecordStore {
	return &RecordStore{repo: repo}
}

func (s *RecordStore) FindByID(ctx context.Context, id uuid.UUID) (editrequest.Record, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		// Explicit nil interface, not a typed nil *Patient.
		return nil, nil
	}
	return p, nil
}

func (s *RecordStore) Save(ctx context.Context, rec editrequest.Record) error {
	p, ok := rec.(*Patient)
	if !ok {
		return editrequest.ErrRecordNotFound
	}
	return s.repo.Update(ctx, p)
}

func (s *RecordStore) Schema() editrequest.Schema {
	return EditableSchema()
}
