package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/members"
)

const memberColumns = `user_id, username, first_name, last_name, created_at, last_seen_at`

// MembersRepository работает с таблицей members.
type MembersRepository struct {
	db *pgxpool.Pool
}

// NewMembersRepository создаёт репозиторий пользователей.
func NewMembersRepository(db *pgxpool.Pool) *MembersRepository {
	return &MembersRepository{db: db}
}

// Upsert создаёт пользователя или обновляет его данные. Заполняет CreatedAt.
func (r *MembersRepository) Upsert(ctx context.Context, m *members.Member) error {
	if m.LastSeenAt.IsZero() {
		m.LastSeenAt = time.Now()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO members (user_id, username, first_name, last_name, last_seen_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    last_seen_at = EXCLUDED.last_seen_at
		RETURNING created_at
	`, m.UserID, m.Username, m.FirstName, m.LastName, m.LastSeenAt).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("сохранение пользователя: %w", err)
	}
	return nil
}

func (r *MembersRepository) get(ctx context.Context, where string, arg any) (*members.Member, error) {
	var m members.Member
	err := r.db.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE `+where, arg).Scan(
		&m.UserID, &m.Username, &m.FirstName, &m.LastName, &m.CreatedAt, &m.LastSeenAt,
	)
	if err != nil {
		return nil, notFound(err, common.ErrUserNotFound)
	}
	return &m, nil
}

// GetByUserID ищет пользователя по Telegram ID.
func (r *MembersRepository) GetByUserID(ctx context.Context, userID int64) (*members.Member, error) {
	return r.get(ctx, "user_id = $1", userID)
}

// GetByUsername ищет пользователя по username без учёта регистра.
func (r *MembersRepository) GetByUsername(ctx context.Context, username string) (*members.Member, error) {
	return r.get(ctx, "LOWER(username) = LOWER($1) AND username <> ''", username)
}
