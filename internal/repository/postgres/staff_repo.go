package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"visitordesk/internal/domain"
)

const staffColumns = `id, first_name, last_name, email, role, location_id, active, password_hash, salt, created_at, updated_at`

type staffRepository struct {
	DB *sql.DB
}

// NewStaffRepository returns a domain.StaffRepository implemented with Postgres.
func NewStaffRepository(db *sql.DB) domain.StaffRepository {
	return &staffRepository{DB: db}
}

func (r *staffRepository) Create(ctx context.Context, s *domain.Staff) error {
	query := `
		INSERT INTO staff (first_name, last_name, email, role, location_id, active, password_hash, salt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		s.FirstName, s.LastName, s.Email, s.Role, s.LocationID, s.Active,
		s.PasswordHash, s.Salt, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	return mapStaffError(err)
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE id = $1`
	return r.scanStaff(r.DB.QueryRowContext(ctx, query, id))
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE email = $1`
	return r.scanStaff(r.DB.QueryRowContext(ctx, query, email))
}

func (r *staffRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Staff, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM staff`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT ` + staffColumns + `
		FROM staff
		ORDER BY last_name, first_name
		LIMIT $1 OFFSET $2
	`
	staff, err := r.queryStaff(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return staff, total, nil
}

func (r *staffRepository) ListActive(ctx context.Context) ([]*domain.Staff, error) {
	query := `
		SELECT ` + staffColumns + `
		FROM staff
		WHERE active = TRUE
		ORDER BY last_name, first_name
	`
	return r.queryStaff(ctx, query)
}

func (r *staffRepository) ListLocationAdmins(ctx context.Context, locationID string) ([]*domain.Staff, error) {
	query := `
		SELECT ` + staffColumns + `
		FROM staff
		WHERE active = TRUE AND role = $1 AND location_id = $2
		ORDER BY last_name, first_name
	`
	return r.queryStaff(ctx, query, domain.RoleAdmin, locationID)
}

func (r *staffRepository) ListGlobalAdmins(ctx context.Context) ([]*domain.Staff, error) {
	query := `
		SELECT ` + staffColumns + `
		FROM staff
		WHERE active = TRUE AND role = $1
		ORDER BY last_name, first_name
	`
	return r.queryStaff(ctx, query, domain.RoleAdmin)
}

func (r *staffRepository) Update(ctx context.Context, s *domain.Staff) error {
	query := `
		UPDATE staff
		SET first_name = $1, last_name = $2, email = $3, role = $4, location_id = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := r.DB.ExecContext(ctx, query,
		s.FirstName, s.LastName, s.Email, s.Role, s.LocationID, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return mapStaffError(err)
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

func (r *staffRepository) SetActive(ctx context.Context, id string, active bool) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE staff SET active = $1, updated_at = NOW() WHERE id = $2`, active, id)
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

func (r *staffRepository) queryStaff(ctx context.Context, query string, args ...any) ([]*domain.Staff, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []*domain.Staff
	for rows.Next() {
		s, err := r.scanStaff(rows)
		if err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if staff == nil {
		staff = []*domain.Staff{}
	}
	return staff, nil
}

func (r *staffRepository) scanStaff(row rowScanner) (*domain.Staff, error) {
	s := &domain.Staff{}
	var locationID sql.NullString
	err := row.Scan(
		&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Role, &locationID, &s.Active,
		&s.PasswordHash, &s.Salt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if locationID.Valid {
		s.LocationID = locationID.String
	}
	return s, nil
}

// mapStaffError translates the unique-violation on staff.email into the
// domain sentinel.
func mapStaffError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return domain.ErrDuplicateEmail
	}
	return err
}
