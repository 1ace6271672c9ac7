package admin

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/members"
)

func hashPassword(password string) string {
	salt := []byte("0123456789abcdef")
	// Малые параметры, чтобы тест шёл быстро
	hash := argon2.IDKey([]byte(password), salt, 1, 1024, 1, 32)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, 1024, 1, 1,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))
}

type fakeRepo struct {
	sessions map[int64]*Session
	attempts []bool
}

func (r *fakeRepo) CreateSession(_ context.Context, s *Session) error {
	s.IsActive = true
	r.sessions[s.UserID] = s
	return nil
}

func (r *fakeRepo) GetActiveSession(_ context.Context, userID int64) (*Session, error) {
	s, ok := r.sessions[userID]
	if !ok || !s.IsActive || time.Now().After(s.ExpiresAt) {
		return nil, common.ErrNotFound
	}
	return s, nil
}

func (r *fakeRepo) DeactivateSession(_ context.Context, userID int64) error {
	delete(r.sessions, userID)
	return nil
}

func (r *fakeRepo) LogAttempt(_ context.Context, _ int64, success bool) error {
	r.attempts = append(r.attempts, success)
	return nil
}

func (r *fakeRepo) FailedAttemptsSince(_ context.Context, _ int64, _ time.Time) (int, error) {
	n := 0
	for _, ok := range r.attempts {
		if !ok {
			n++
		}
	}
	return n, nil
}

type fakeResolver map[string]*members.Member

func (f fakeResolver) Resolve(_ context.Context, ref string) (*members.Member, error) {
	if m, ok := f[ref]; ok {
		return m, nil
	}
	return nil, common.ErrUserNotFound
}

type fakeLedger struct{ balances map[int64]int64 }

func (l *fakeLedger) AddBalance(_ context.Context, userID int64, amount int64, _, _ string) error {
	l.balances[userID] += amount
	return nil
}

func (l *fakeLedger) DeductBalance(_ context.Context, userID int64, amount int64, _, _ string) error {
	if l.balances[userID] < amount {
		return common.ErrInsufficientBalance
	}
	l.balances[userID] -= amount
	return nil
}

type fakeResetter struct{ reset []int64 }

func (f *fakeResetter) Reset(_ context.Context, userID int64) error {
	f.reset = append(f.reset, userID)
	return nil
}

func newTestService() (*Service, *fakeRepo, *fakeLedger, *fakeResetter) {
	repo := &fakeRepo{sessions: map[int64]*Session{}}
	ledger := &fakeLedger{balances: map[int64]int64{}}
	resetter := &fakeResetter{}
	resolver := fakeResolver{"@leaf": {UserID: 7, Username: "leaf"}}
	svc := NewService(repo, resolver, ledger, resetter, []int64{1}, hashPassword("secret"))
	return svc, repo, ledger, resetter
}

func TestVerifyArgon2id(t *testing.T) {
	hash := hashPassword("secret")
	assert.True(t, verifyArgon2id("secret", hash))
	assert.False(t, verifyArgon2id("Secret", hash))
	assert.False(t, verifyArgon2id("secret", "garbage"))
	assert.False(t, verifyArgon2id("secret", "$argon2id$v=19$m=x$a$b"))
}

func TestLoginLockout(t *testing.T) {
	svc, _, _, _ := newTestService()
	ctx := context.Background()

	assert.ErrorIs(t, svc.Login(ctx, 2, "secret"), common.ErrNotAdmin)

	for i := 0; i < MaxFailedAttempts; i++ {
		assert.ErrorIs(t, svc.Login(ctx, 1, "wrong"), common.ErrWrongPassword)
	}
	assert.ErrorIs(t, svc.Login(ctx, 1, "secret"), common.ErrTooManyAttempts)
}

func TestGrantAndReset(t *testing.T) {
	svc, _, ledger, resetter := newTestService()
	ctx := context.Background()

	_, err := svc.Grant(ctx, 1, "@leaf", 100)
	assert.ErrorIs(t, err, common.ErrSessionExpired)

	require.NoError(t, svc.Login(ctx, 1, "secret"))

	m, err := svc.Grant(ctx, 1, "@leaf", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(7), m.UserID)
	assert.Equal(t, int64(100), ledger.balances[7])

	_, err = svc.Grant(ctx, 1, "@leaf", -150)
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)
	_, err = svc.Grant(ctx, 1, "@leaf", -40)
	require.NoError(t, err)
	assert.Equal(t, int64(60), ledger.balances[7])

	_, err = svc.Grant(ctx, 1, "@leaf", 0)
	assert.ErrorIs(t, err, common.ErrInvalidAmount)
	_, err = svc.Grant(ctx, 1, "@nobody", 5)
	assert.ErrorIs(t, err, common.ErrUserNotFound)

	_, err = svc.ResetProject(ctx, 1, "@leaf")
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, resetter.reset)

	require.NoError(t, svc.Logout(ctx, 1))
	_, err = svc.ResetProject(ctx, 1, "@leaf")
	assert.ErrorIs(t, err, common.ErrSessionExpired)
}
