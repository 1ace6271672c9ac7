package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/admin"
)

// AdminRepository работает с таблицами admin_sessions и admin_login_attempts.
type AdminRepository struct {
	db *pgxpool.Pool
}

// NewAdminRepository создаёт репозиторий админ-панели.
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

// CreateSession создаёт новую сессию.
func (r *AdminRepository) CreateSession(ctx context.Context, s *admin.Session) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO admin_sessions (user_id, session_token, authenticated_at, expires_at, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id
	`, s.UserID, s.SessionToken, s.AuthenticatedAt, s.ExpiresAt).Scan(&s.ID)
}

// GetActiveSession возвращает последнюю неистёкшую сессию.
func (r *AdminRepository) GetActiveSession(ctx context.Context, userID int64) (*admin.Session, error) {
	var s admin.Session
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, session_token, authenticated_at, expires_at, is_active
		FROM admin_sessions
		WHERE user_id = $1 AND is_active AND expires_at > NOW()
		ORDER BY authenticated_at DESC
		LIMIT 1
	`, userID).Scan(&s.ID, &s.UserID, &s.SessionToken, &s.AuthenticatedAt, &s.ExpiresAt, &s.IsActive)
	if err != nil {
		return nil, notFound(err, common.ErrNotFound)
	}
	return &s, nil
}

// DeactivateSession закрывает все сессии пользователя.
func (r *AdminRepository) DeactivateSession(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx,
		"UPDATE admin_sessions SET is_active = FALSE WHERE user_id = $1 AND is_active", userID)
	return err
}

// LogAttempt записывает попытку входа.
func (r *AdminRepository) LogAttempt(ctx context.Context, userID int64, success bool) error {
	_, err := r.db.Exec(ctx,
		"INSERT INTO admin_login_attempts (user_id, success) VALUES ($1, $2)", userID, success)
	return err
}

// FailedAttemptsSince считает неудачные попытки после since.
func (r *AdminRepository) FailedAttemptsSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM admin_login_attempts
		WHERE user_id = $1 AND NOT success AND attempted_at >= $2
	`, userID, since).Scan(&n)
	return n, err
}
