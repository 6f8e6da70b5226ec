package admin

import (
	"time"

	"github.com/google/uuid"
)

// Organization maps to the organization table. Every patient record and edit
// request carries a reference to exactly one organization.
type Organization struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	TypeCode     string    `db:"type_code" json:"type_code"`
	Active       bool      `db:"active" json:"active"`
	AddressLine1 *string   `db:"address_line1" json:"address_line1,omitempty"`
	AddressLine2 *string   `db:"address_line2" json:"address_line2,omitempty"`
	City         *string   `db:"city" json:"city,omitempty"`
	State        *string   `db:"state" json:"state,omitempty"`
	PostalCode   *string   `db:"postal_code" json:"postal_code,omitempty"`
	Country      *string   `db:"country" json:"country,omitempty"`
	Phone        *string   `db:"phone" json:"phone,omitempty"`
	Email        *string   `db:"email" json:"email,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
