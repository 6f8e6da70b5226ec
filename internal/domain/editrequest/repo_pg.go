package editrequest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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

// proposed_changes is a json column, not jsonb: jsonb normalizes key order
// and the payload's submission order must survive storage.
const reqColumns = `id, target_record_id, origin_organization_id, proposed_changes,
	status, created_at, resolved_at, resolved_by`

func (r *repoPG) Insert(ctx context.Context, req *EditRequest) error {
	req.ID = uuid.New()
	changes, err := json.Marshal(req.ProposedChanges)
	if err != nil {
		return fmt.Errorf("marshal proposed changes: %w", err)
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO edit_request (
			id, target_record_id, origin_organization_id, proposed_changes, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		req.ID, req.TargetRecordID, req.OriginOrganizationID, changes, string(req.Status), req.CreatedAt,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*EditRequest, error) {
	req, err := r.scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+reqColumns+` FROM edit_request WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return req, err
}

func (r *repoPG) ListByStatus(ctx context.Context, status Status, limit, offset int) ([]*EditRequest, int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM edit_request WHERE status = $1`, string(status)).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+reqColumns+` FROM edit_request
		WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		string(status), limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reqs []*EditRequest
	for rows.Next() {
		req, err := r.scanRequestRow(rows)
		if err != nil {
			return nil, 0, err
		}
		reqs = append(reqs, req)
	}
	return reqs, total, nil
}

func (r *repoPG) CountByStatus(ctx context.Context, status Status) (int, error) {
	var total int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM edit_request WHERE status = $1`, string(status)).Scan(&total)
	return total, err
}

func (r *repoPG) ResolveStatus(ctx context.Context, id uuid.UUID, to Status, resolvedBy string) (bool, error) {
	if !to.Terminal() {
		return false, fmt.Errorf("cannot transition to non-terminal status %q", to)
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE edit_request SET status = $2, resolved_at = NOW(), resolved_by = $3
		WHERE id = $1 AND status = $4`,
		id, string(to), resolvedBy, string(StatusPending),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) scanRequest(row pgx.Row) (*EditRequest, error) {
	var req EditRequest
	var changes []byte
	var status string
	err := row.Scan(
		&req.ID, &req.TargetRecordID, &req.OriginOrganizationID, &changes,
		&status, &req.CreatedAt, &req.ResolvedAt, &req.ResolvedBy,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(changes, &req.ProposedChanges); err != nil {
		return nil, fmt.Errorf("unmarshal proposed changes: %w", err)
	}
	req.Status = Status(status)
	return &req, nil
}

func (r *repoPG) scanRequestRow(rows pgx.Rows) (*EditRequest, error) {
	var req EditRequest
	var changes []byte
	var status string
	err := rows.Scan(
		&req.ID, &req.TargetRecordID, &req.OriginOrganizationID, &changes,
		&status, &req.CreatedAt, &req.ResolvedAt, &req.ResolvedBy,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(changes, &req.ProposedChanges); err != nil {
		return nil, fmt.Errorf("unmarshal proposed changes: %w", err)
	}
	req.Status = Status(status)
	return &req, nil
}
