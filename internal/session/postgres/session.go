package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	sessionDatamodel "github.com/frahmantamala/employee-portal/internal/core/datamodel/session"
	"github.com/frahmantamala/employee-portal/internal/session"
)

const sessionColumns = `id, user_id, user_name, user_email, department, role, ip_address, app_name, login_at`

// SessionRepository talks plain SQL through sqlx; placeholders are rebound per driver.
type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) session.RepositoryAPI {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *sessionDatamodel.Session) error {
	query := r.db.Rebind(`INSERT INTO sessions (user_id, user_name, user_email, department, role, ip_address, app_name, login_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	return r.db.QueryRowxContext(ctx, query,
		s.UserID, s.UserName, s.UserEmail, s.Department, s.Role, s.IPAddress, s.AppName, s.LoginAt,
	).Scan(&s.ID)
}

func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*sessionDatamodel.Session, error) {
	var s sessionDatamodel.Session
	query := r.db.Rebind(`SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`)
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) List(ctx context.Context, filter session.Filter) ([]*sessionDatamodel.Session, int, error) {
	var (
		where []string
		args  []interface{}
	)
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		where = append(where, "(LOWER(user_name) LIKE ? OR LOWER(user_email) LIKE ?)")
		args = append(args, like, like)
	}
	if dept := strings.TrimSpace(filter.Department); dept != "" {
		where = append(where, "department = ?")
		args = append(args, dept)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM sessions`+clause), args...); err != nil {
		return nil, 0, err
	}

	sessions := []*sessionDatamodel.Session{}
	query := r.db.Rebind(`SELECT ` + sessionColumns + ` FROM sessions` + clause + ` ORDER BY login_at DESC, id DESC LIMIT ? OFFSET ?`)
	pageArgs := append(append([]interface{}{}, args...), filter.PageSize, filter.Offset())
	if err := r.db.SelectContext(ctx, &sessions, query, pageArgs...); err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID int64) ([]*sessionDatamodel.Session, error) {
	sessions := []*sessionDatamodel.Session{}
	query := r.db.Rebind(`SELECT ` + sessionColumns + ` FROM sessions WHERE user_id = ? ORDER BY login_at DESC, id DESC`)
	err := r.db.SelectContext(ctx, &sessions, query, userID)
	return sessions, err
}

func (r *SessionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE id = ?`), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SessionRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM sessions WHERE user_id = ?`), userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SessionRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM sessions WHERE user_id = ?`), userID)
	return n, err
}

func (r *SessionRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM sessions WHERE id = ?`), id); err != nil {
		return false, err
	}
	return n > 0, nil
}
