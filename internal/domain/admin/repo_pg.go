package admin

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chartgate/chartgate/internal/platform/db"
)

type orgRepoPG struct {
	pool *pgxpool.Pool
}

// NewOrganizationRepo creates a new Postgres-backed OrganizationRepository.
func NewOrganizationRepo(pool *pgxpool.Pool) OrganizationRepository {
	return &orgRepoPG{pool: pool}
}

func (r *orgRepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const orgColumns = `id, name, type_code, active,
	address_line1, address_line2, city, state, postal_code, country,
	phone, email, created_at, updated_at`

func (r *orgRepoPG) Create(ctx context.Context, org *Organization) error {
	org.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO organization (
			id, name, type_code, active,
			address_line1, address_line2, city, state, postal_code, country,
			phone, email
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		org.ID, org.Name, org.TypeCode, org.Active,
		org.AddressLine1, org.AddressLine2, org.City, org.State, org.PostalCode, org.Country,
		org.Phone, org.Email,
	)
	return err
}

func (r *orgRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Organization, error) {
	return r.scanOrg(r.conn(ctx).QueryRow(ctx, `SELECT `+orgColumns+` FROM organization WHERE id = $1`, id))
}

func (r *orgRepoPG) Update(ctx context.Context, org *Organization) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE organization SET
			name = $2, type_code = $3, active = $4,
			address_line1 = $5, address_line2 = $6, city = $7, state = $8,
			postal_code = $9, country = $10, phone = $11, email = $12,
			updated_at = NOW()
		WHERE id = $1`,
		org.ID, org.Name, org.TypeCode, org.Active,
		org.AddressLine1, org.AddressLine2, org.City, org.State,
		org.PostalCode, org.Country, org.Phone, org.Email,
	)
	return err
}

func (r *orgRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM organization WHERE id = $1`, id)
	return err
}

func (r *orgRepoPG) List(ctx context.Context, limit, offset int) ([]*Organization, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM organization`).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+orgColumns+` FROM organization ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orgs []*Organization
	for rows.Next() {
		org, err := r.scanOrgRow(rows)
		if err != nil {
			return nil, 0, err
		}
		orgs = append(orgs, org)
	}
	return orgs, total, nil
}

func (r *orgRepoPG) scanOrg(row pgx.Row) (*Organization, error) {
	var o Organization
	err := row.Scan(
		&o.ID, &o.Name, &o.TypeCode, &o.Active,
		&o.AddressLine1, &o.AddressLine2, &o.City, &o.State, &o.PostalCode, &o.Country,
		&o.Phone, &o.Email, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orgRepoPG) scanOrgRow(rows pgx.Rows) (*Organization, error) {
	var o Organization
	err := rows.Scan(
		&o.ID, &o.Name, &o.TypeCode, &o.Active,
		&o.AddressLine1, &o.AddressLine2, &o.City, &o.State, &o.PostalCode, &o.Country,
		&o.Phone, &o.Email, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
