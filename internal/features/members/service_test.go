package members

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/eco-bot/internal/common"
)

type memRepo struct {
	byID map[int64]*Member
}

func (r *memRepo) Upsert(_ context.Context, m *Member) error {
	if have, ok := r.byID[m.UserID]; ok {
		have.Username, have.FirstName, have.LastName, have.LastSeenAt = m.Username, m.FirstName, m.LastName, m.LastSeenAt
		return nil
	}
	c := *m
	r.byID[m.UserID] = &c
	return nil
}

func (r *memRepo) GetByUserID(_ context.Context, userID int64) (*Member, error) {
	if m, ok := r.byID[userID]; ok {
		return m, nil
	}
	return nil, common.ErrUserNotFound
}

func (r *memRepo) GetByUsername(_ context.Context, username string) (*Member, error) {
	for _, m := range r.byID {
		if strings.EqualFold(m.Username, username) {
			return m, nil
		}
	}
	return nil, common.ErrUserNotFound
}

func TestTouchAndResolve(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&memRepo{byID: map[int64]*Member{}})

	require.NoError(t, svc.Touch(ctx, 42, "leaf", "Аня", ""))
	require.NoError(t, svc.Touch(ctx, 42, "green_leaf", "Аня", "К"))

	m, err := svc.Resolve(ctx, "@Green_Leaf")
	require.NoError(t, err)
	assert.Equal(t, int64(42), m.UserID)

	m, err = svc.Resolve(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "@green_leaf", m.DisplayName())

	_, err = svc.Resolve(ctx, "@leaf")
	assert.ErrorIs(t, err, common.ErrUserNotFound)
	_, err = svc.Resolve(ctx, " ")
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Аня К", (&Member{FirstName: "Аня", LastName: "К"}).DisplayName())
	assert.Equal(t, "id7", (&Member{UserID: 7}).DisplayName())
}
