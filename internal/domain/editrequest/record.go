package editrequest

import (
	"context"

	"github.com/google/uuid"
)

// Record is the canonical entity an edit request targets. The engine never
// touches a record beyond this surface.
type Record interface {
	RecordID() uuid.UUID
	OwnerOrgID() uuid.UUID
	// Editable returns the record's current editable values keyed by schema
	// field name. Fields with no value are absent from the map.
	Editable() map[string]interface{}
	// ApplyEditable assigns a full merged editable map back onto the record.
	ApplyEditable(fields map[string]interface{}) error
}

// RecordStore resolves and persists target records and exposes their
// editable-field schema.
type RecordStore interface {
	// FindByID returns (nil, nil) when no record exists with the id.
	FindByID(ctx context.Context, id uuid.UUID) (Record, error)
	Save(ctx context.Context, rec Record) error
	Schema() Schema
}
