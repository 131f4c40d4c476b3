package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"visitordesk/internal/domain"
)

type visitorRepository struct {
	DB *sql.DB
}

// NewVisitorRepository returns a domain.VisitorRepository implemented with Postgres.
func NewVisitorRepository(db *sql.DB) domain.VisitorRepository {
	return &visitorRepository{DB: db}
}

func (r *visitorRepository) Create(ctx context.Context, v *domain.Visitor) error {
	query := `
		INSERT INTO visitors (name, email, phone, location_id, meet_with, purpose, notes, status, scheduled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		v.Name, v.Email, v.Phone, v.LocationID, v.MeetWith, v.Purpose, v.Notes,
		string(v.Status), v.ScheduledAt, v.CreatedAt, v.UpdatedAt,
	).Scan(&v.ID)
}

func (r *visitorRepository) GetByID(ctx context.Context, id string) (*domain.Visitor, error) {
	query := `
		SELECT id, name, email, phone, location_id, meet_with, purpose, notes, status,
		       scheduled_at, approved_by, approved_at, check_in_at, check_out_at, created_at, updated_at
		FROM visitors
		WHERE id = $1
	`
	return r.scanVisitor(r.DB.QueryRowContext(ctx, query, id))
}

func (r *visitorRepository) List(ctx context.Context, status domain.VisitorStatus, locationID string, params domain.PaginationParams) ([]*domain.Visitor, int, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM visitors
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR location_id = $2)
	`
	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, string(status), locationID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, name, email, phone, location_id, meet_with, purpose, notes, status,
		       scheduled_at, approved_by, approved_at, check_in_at, check_out_at, created_at, updated_at
		FROM visitors
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR location_id = $2)
		ORDER BY scheduled_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.DB.QueryContext(ctx, query, string(status), locationID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var visitors []*domain.Visitor
	for rows.Next() {
		v, err := r.scanVisitor(rows)
		if err != nil {
			return nil, 0, err
		}
		visitors = append(visitors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if visitors == nil {
		visitors = []*domain.Visitor{}
	}
	return visitors, total, nil
}

// UpdateStatusCAS applies the update only when the stored status still
// equals expected. The status precondition in the WHERE clause is what
// serializes concurrent transitions on one visitor: the losing writer
// matches zero rows and gets applied == false.
func (r *visitorRepository) UpdateStatusCAS(ctx context.Context, id string, expected domain.VisitorStatus, update domain.VisitorStatusUpdate) (bool, error) {
	result, err := r.execStatusUpdate(ctx, id, &expected, update)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *visitorRepository) SetStatus(ctx context.Context, id string, update domain.VisitorStatusUpdate) error {
	result, err := r.execStatusUpdate(ctx, id, nil, update)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *visitorRepository) execStatusUpdate(ctx context.Context, id string, expected *domain.VisitorStatus, update domain.VisitorStatusUpdate) (sql.Result, error) {
	checkIn := "COALESCE($6, check_in_at)"
	checkOut := "COALESCE($7, check_out_at)"
	if update.ClearCheckTimes {
		checkIn = "NULL"
		checkOut = "NULL"
	}
	query := `
		UPDATE visitors
		SET status = $1,
		    notes = COALESCE($2, notes),
		    scheduled_at = COALESCE($3, scheduled_at),
		    approved_by = COALESCE($4, approved_by),
		    approved_at = COALESCE($5, approved_at),
		    check_in_at = ` + checkIn + `,
		    check_out_at = ` + checkOut + `,
		    updated_at = $8
		WHERE id = $9 AND ($10 = '' OR status = $10)
	`
	expectedArg := ""
	if expected != nil {
		expectedArg = string(*expected)
	}
	var checkInArg, checkOutArg *time.Time
	if !update.ClearCheckTimes {
		checkInArg = update.CheckInAt
		checkOutArg = update.CheckOutAt
	}
	return r.DB.ExecContext(ctx, query,
		string(update.Status), update.Notes, update.ScheduledAt,
		update.ApprovedBy, update.ApprovedAt, checkInArg, checkOutArg,
		update.UpdatedAt, id, expectedArg,
	)
}

func (r *visitorRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM visitors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *visitorRepository) scanVisitor(row rowScanner) (*domain.Visitor, error) {
	v := &domain.Visitor{}
	var (
		status     string
		approvedBy sql.NullString
		approvedAt sql.NullTime
		checkInAt  sql.NullTime
		checkOutAt sql.NullTime
	)
	err := row.Scan(
		&v.ID, &v.Name, &v.Email, &v.Phone, &v.LocationID, &v.MeetWith, &v.Purpose, &v.Notes, &status,
		&v.ScheduledAt, &approvedBy, &approvedAt, &checkInAt, &checkOutAt, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	v.Status = domain.VisitorStatus(status)
	if approvedBy.Valid {
		v.ApprovedBy = approvedBy.String
	}
	if approvedAt.Valid {
		t := approvedAt.Time
		v.ApprovedAt = &t
	}
	if checkInAt.Valid {
		t := checkInAt.Time
		v.CheckInAt = &t
	}
	if checkOutAt.Valid {
		t := checkOutAt.Time
		v.CheckOutAt = &t
	}
	return v, nil
}
