package patient

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chartgate/chartgate/internal/domain/editrequest"
)

const birthDateLayout = "2006-01-02"

// Patient maps to the patient table. It is the canonical record edit
// requests target: mutated only by a direct superadmin edit or by an
// approved request merge, never by operators directly.
type Patient struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organization_id"`
	MRN            string    `db:"mrn" json:"mrn"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	BirthDate      *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender         *string   `db:"gender" json:"gender,omitempty"`
	BloodGroup     *string   `db:"blood_group" json:"blood_group,omitempty"`
	Allergies      *string   `db:"allergies" json:"allergies,omitempty"`
	Notes          *string   `db:"notes" json:"notes,omitempty"`
	ContactPhone   *string   `db:"contact_phone" json:"contact_phone,omitempty"`
	ContactEmail   *string   `db:"contact_email" json:"contact_email,omitempty"`
	AddressLine1   *string   `db:"address_line1" json:"address_line1,omitempty"`
	AddressLine2   *string   `db:"address_line2" json:"address_line2,omitempty"`
	City           *string   `db:"city" json:"city,omitempty"`
	State          *string   `db:"state" json:"state,omitempty"`
	PostalCode     *string   `db:"postal_code" json:"postal_code,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// EditableSchema is the bounded field set an edit request may touch.
// Ownership and identity columns (id, organization_id, mrn) are deliberately
// outside it, so a crafted payload cannot move a record between hospitals.
func EditableSchema() editrequest.Schema {
	return editrequest.Schema{
		"first_name":  nil,
		"last_name":   nil,
		"birth_date":  nil,
		"gender":      nil,
		"blood_group": nil,
		"allergies":   nil,
		"notes":       nil,
		"contact":     {"phone", "email"},
		"address":     {"line1", "line2", "city", "state", "postal_code"},
	}
}

func (p *Patient) RecordID() uuid.UUID   { return p.ID }
func (p *Patient) OwnerOrgID() uuid.UUID { return p.OrganizationID }

// Editable returns the patient's current editable values keyed by schema
// field name. Fields with no value are absent, and absent nested objects
// are omitted entirely.
func (p *Patient) Editable() map[string]interface{} {
	m := map[string]interface{}{
		"first_name": p.FirstName,
		"last_name":  p.LastName,
	}
	if p.BirthDate != nil {
		m["birth_date"] = p.BirthDate.Format(birthDateLayout)
	}
	putOpt(m, "gender", p.Gender)
	putOpt(m, "blood_group", p.BloodGroup)
	putOpt(m, "allergies", p.Allergies)
	putOpt(m, "notes", p.Notes)

	contact := map[string]interface{}{}
	putOpt(contact, "phone", p.ContactPhone)
	putOpt(contact, "email", p.ContactEmail)
	if len(contact) > 0 {
		m["contact"] = contact
	}

	address := map[string]interface{}{}
	putOpt(address, "line1", p.AddressLine1)
	putOpt(address, "line2", p.AddressLine2)
	putOpt(address, "city", p.City)
	putOpt(address, "state", p.State)
	putOpt(address, "postal_code", p.PostalCode)
	if len(address) > 0 {
		m["address"] = address
	}
	return m
}

// ApplyEditable assigns a full merged editable map back onto the patient.
// Keys absent from the map are left untouched; an explicit null clears the
// field.
func (p *Patient) ApplyEditable(fields map[string]interface{}) error {
	for field, v := range fields {
		switch field {
		case "first_name":
			s, err := stringValue(field, v)
			if err != nil {
				return err
			}
			p.FirstName = s
		case "last_name":
			s, err := stringValue(field, v)
			if err != nil {
				return err
			}
			p.LastName = s
		case "birth_date":
			if v == nil {
				p.BirthDate = nil
				break
			}
			s, err := stringValue(field, v)
			if err != nil {
				return err
			}
			t, err := time.Parse(birthDateLayout, s)
			if err != nil {
				return fmt.Errorf("field birth_date must be a %s date: %w", birthDateLayout, err)
			}
			p.BirthDate = &t
		case "gender":
			if err := setOpt(&p.Gender, field, v); err != nil {
				return err
			}
		case "blood_group":
			if err := setOpt(&p.BloodGroup, field, v); err != nil {
				return err
			}
		case "allergies":
			if err := setOpt(&p.Allergies, field, v); err != nil {
				return err
			}
		case "notes":
			if err := setOpt(&p.Notes, field, v); err != nil {
				return err
			}
		case "contact":
			sub, err := subMap(field, v)
			if err != nil {
				return err
			}
			if err := applySub(sub, map[string]**string{
				"phone": &p.ContactPhone,
				"email": &p.ContactEmail,
			}); err != nil {
				return err
			}
		case "address":
			sub, err := subMap(field, v)
			if err != nil {
				return err
			}
			if err := applySub(sub, map[string]**string{
				"line1":       &p.AddressLine1,
				"line2":       &p.AddressLine2,
				"city":        &p.City,
				"state":       &p.State,
				"postal_code": &p.PostalCode,
			}); err != nil {
				return err
			}
		default:
			return editrequest.InvalidField(field)
		}
	}
	return nil
}

func putOpt(m map[string]interface{}, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}

func stringValue(field string, v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %s must be a string, got %T", field, v)
	}
	return s, nil
}

func setOpt(dst **string, field string, v interface{}) error {
	if v == nil {
		*dst = nil
		return nil
	}
	s, err := stringValue(field, v)
	if err != nil {
		return err
	}
	*dst = &s
	return nil
}

func subMap(field string, v interface{}) (map[string]interface{}, error) {
	if v == nil {
		return nil, nil
	}
	sub, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("field %s must be an object, got %T", field, v)
	}
	return sub, nil
}

func applySub(sub map[string]interface{}, targets map[string]**string) error {
	for key, dst := range targets {
		v, ok := sub[key]
		if !ok {
			continue
		}
		if err := setOpt(dst, key, v); err != nil {
			return err
		}
	}
	for key := range sub {
		if _, known := targets[key]; !known {
			return editrequest.InvalidField(key)
		}
	}
	return nil
}
