package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chartgate/chartgate/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepo creates a new Postgres-backed Repository.
func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const patientColumns = `id, organization_id, mrn, first_name, last_name, birth_date,
	gender, blood_group, allergies, notes,
	contact_phone, contact_email,
	address_line1, address_line2, city, state, postal_code,
	created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	if p.MRN == "" {
		p.MRN = p.ID.String()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (
			id, organization_id, mrn, first_name, last_name, birth_date,
			gender, blood_group, allergies, notes,
			contact_phone, contact_email,
			address_line1, address_line2, city, state, postal_code
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		p.ID, p.OrganizationID, p.MRN, p.FirstName, p.LastName, p.BirthDate,
		p.Gender, p.BloodGroup, p.Allergies, p.Notes,
		p.ContactPhone, p.ContactEmail,
		p.AddressLine1, p.AddressLine2, p.City, p.State, p.PostalCode,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := r.scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientColumns+` FROM patient WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			first_name = $2, last_name = $3, birth_date = $4,
			gender = $5, blood_group = $6, allergies = $7, notes = $8,
			contact_phone = $9, contact_email = $10,
			address_line1 = $11, address_line2 = $12, city = $13, state = $14, postal_code = $15,
			updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.FirstName, p.LastName, p.BirthDate,
		p.Gender, p.BloodGroup, p.Allergies, p.Notes,
		p.ContactPhone, p.ContactEmail,
		p.AddressLine1, p.AddressLine2, p.City, p.State, p.PostalCode,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientColumns+` FROM patient ORDER BY last_name, first_name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *repoPG) ListByOrganization(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patient WHERE organization_id = $1`, orgID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+patientColumns+` FROM patient
		WHERE organization_id = $1 ORDER BY last_name, first_name LIMIT $2 OFFSET $3`,
		orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *repoPG) collect(rows pgx.Rows, total int) ([]*Patient, int, error) {
	var patients []*Patient
	for rows.Next() {
		p, err := r.scanPatientRow(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, nil
}

func (r *repoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.OrganizationID, &p.MRN, &p.FirstName, &p.LastName, &p.BirthDate,
		&p.Gender, &p.BloodGroup, &p.Allergies, &p.Notes,
		&p.ContactPhone, &p.ContactEmail,
		&p.AddressLine1, &p.AddressLine2, &p.City, &p.State, &p.PostalCode,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) scanPatientRow(rows pgx.Rows) (*Patient, error) {
	var p Patient
	err := rows.Scan(
		&p.ID, &p.OrganizationID, &p.MRN, &p.FirstName, &p.LastName, &p.BirthDate,
		&p.Gender, &p.BloodGroup, &p.Allergies, &p.Notes,
		&p.ContactPhone, &p.ContactEmail,
		&p.AddressLine1, &p.AddressLine2, &p.City, &p.State, &p.PostalCode,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
