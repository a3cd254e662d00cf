package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medsys/medsys/internal/platform/db"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// -- Users --

type userRepoPG struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

func (r *userRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const userCols = `id, username, email, password_hash, is_admin, active, created_at`

func (r *userRepoPG) Create(ctx context.Context, u *UserAccount) error {
	u.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO user_account (id, username, email, password_hash, is_admin, active)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.IsAdmin, u.Active,
	)
	return err
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*UserAccount, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM user_account WHERE id = $1`, id))
}

func (r *userRepoPG) GetByUsername(ctx context.Context, username string) (*UserAccount, error) {
	return scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM user_account WHERE username = $1`, username))
}

func (r *userRepoPG) AddMembership(ctx context.Context, userID uuid.UUID, role Role) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO user_role (user_id, role) VALUES ($1,$2)
		ON CONFLICT (user_id, role) DO NOTHING`,
		userID, string(role),
	)
	return err
}

func (r *userRepoPG) Memberships(ctx context.Context, userID uuid.UUID) ([]Role, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT role FROM user_role WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, Role(role))
	}
	return roles, rows.Err()
}

func (r *userRepoPG) ListUsersByRole(ctx context.Context, role Role) ([]*UserAccount, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT u.id, u.username, u.email, u.password_hash, u.is_admin, u.active, u.created_at
		FROM user_account u
		JOIN user_role ur ON ur.user_id = u.id
		WHERE ur.role = $1 AND u.active
		ORDER BY u.username`, string(role))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*UserAccount
	for rows.Next() {
		var u UserAccount
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, rows.Err()
}

func scanUser(row pgx.Row) (*UserAccount, error) {
	var u UserAccount
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.Active, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// -- Staff --

type staffRepoPG struct {
	pool *pgxpool.Pool
}

func NewStaffRepo(pool *pgxpool.Pool) StaffRepository {
	return &staffRepoPG{pool: pool}
}

func (r *staffRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const staffCols = `id, user_id, first_name, last_name, email, phone, specialty,
	role_title, joining_date, active, supervisor_id, created_at`

func (r *staffRepoPG) Create(ctx context.Context, s *Staff) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO staff (
			id, user_id, first_name, last_name, email, phone, specialty,
			role_title, joining_date, active, supervisor_id
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		s.ID, s.UserID, s.FirstName, s.LastName, s.Email, s.Phone, s.Specialty,
		s.RoleTitle, s.JoiningDate, s.Active, s.SupervisorID,
	)
	return err
}

func (r *staffRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return scanStaff(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staff WHERE id = $1`, id))
}

func (r *staffRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Staff, error) {
	return scanStaff(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staff WHERE user_id = $1`, userID))
}

func (r *staffRepoPG) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Staff, int, error) {
	where := ""
	if activeOnly {
		where = " WHERE active"
	}
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM staff`+where).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+staffCols+` FROM staff`+where+` ORDER BY last_name, first_name LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var members []*Staff
	for rows.Next() {
		var s Staff
		if err := rows.Scan(&s.ID, &s.UserID, &s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.Specialty,
			&s.RoleTitle, &s.JoiningDate, &s.Active, &s.SupervisorID, &s.CreatedAt); err != nil {
			return nil, 0, err
		}
		members = append(members, &s)
	}
	return members, total, rows.Err()
}

func (r *staffRepoPG) Update(ctx context.Context, s *Staff) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE staff SET
			first_name=$2, last_name=$3, email=$4, phone=$5, specialty=$6,
			role_title=$7, joining_date=$8, active=$9, supervisor_id=$10
		WHERE id = $1`,
		s.ID, s.FirstName, s.LastName, s.Email, s.Phone, s.Specialty,
		s.RoleTitle, s.JoiningDate, s.Active, s.SupervisorID,
	)
	return err
}

func scanStaff(row pgx.Row) (*Staff, error) {
	var s Staff
	err := row.Scan(&s.ID, &s.UserID, &s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.Specialty,
		&s.RoleTitle, &s.JoiningDate, &s.Active, &s.SupervisorID, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
