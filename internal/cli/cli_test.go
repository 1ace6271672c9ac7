package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/keyring"
)

type harness struct {
	t   *testing.T
	db  string
	now time.Time
}

func newHarness(t *testing.T) *harness {
	return &harness{
		t:   t,
		db:  filepath.Join(t.TempDir(), "eco.db"),
		now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

// run выполняет команду над общим файлом хранилища.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	rt := &runtime{now: func() time.Time { return h.now }}
	cmd := newRoot(rt)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--db", h.db, "--timezone", "UTC"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "ecoctl %s", strings.Join(args, " "))
	return out
}

func TestStatusWithoutProject(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("status")
	assert.ErrorIs(t, err, common.ErrNoProject)
	assert.Equal(t, "❌ "+common.ErrNoProject.Error(), Message(err))
}

func TestJournalAndStart(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("journal", "add", "2,5")
	assert.Contains(t, out, "✅ Записано")

	h.mustRun("journal", "add", "1.5")
	out = h.mustRun("journal", "list")
	assert.Contains(t, out, "Журнал отходов (2)")

	out = h.mustRun("start")
	assert.Contains(t, out, "Ферментация запущена")

	_, err := h.run("journal", "add", "1")
	assert.ErrorIs(t, err, common.ErrFermentationStarted)

	_, err = h.run("start")
	assert.ErrorIs(t, err, common.ErrAlreadyStarted)
}

func TestInvalidWeight(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("journal", "add", "много")
	assert.ErrorIs(t, err, common.ErrInvalidWeight)
}

func TestStartWithoutWaste(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("start")
	assert.ErrorIs(t, err, common.ErrNoProject)
}

func TestCheckinFlow(t *testing.T) {
	h := newHarness(t)
	h.mustRun("journal", "add", "3")
	h.mustRun("start")

	out := h.mustRun("checkin")
	assert.Contains(t, out, "День 1 отмечен")

	out = h.mustRun("checkin", "1")
	assert.Contains(t, out, "День 1 уже отмечен")

	_, err := h.run("checkin", "5")
	assert.ErrorIs(t, err, common.ErrDayLocked)

	_, err = h.run("checkin", "abc")
	assert.ErrorIs(t, err, common.ErrInvalidDay)

	h.now = h.now.AddDate(0, 0, 1)
	out = h.mustRun("checkin")
	assert.Contains(t, out, "День 2 отмечен")

	out = h.mustRun("timeline")
	assert.Contains(t, out, "Сегодня: день 2 из 90")

	out = h.mustRun("week")
	assert.Contains(t, out, "Неделя 1")

	_, err = h.run("week", "99")
	assert.Error(t, err)
}

func TestPhotoValidation(t *testing.T) {
	h := newHarness(t)
	h.mustRun("journal", "add", "3")
	h.mustRun("start")

	_, err := h.run("photo", "x", "https://example.com/a.jpg")
	assert.ErrorIs(t, err, common.ErrInvalidMonth)

	_, err = h.run("photo", "4", "https://example.com/a.jpg")
	assert.ErrorIs(t, err, common.ErrInvalidMonth)
}

func TestClaimNotEligible(t *testing.T) {
	h := newHarness(t)
	h.mustRun("journal", "add", "3")
	h.mustRun("start")

	_, err := h.run("claim")
	assert.ErrorIs(t, err, common.ErrNotEligible)

	out := h.mustRun("points")
	assert.Contains(t, out, "Баланс")
}

func TestResetRequiresConfirmation(t *testing.T) {
	h := newHarness(t)
	h.mustRun("journal", "add", "3")

	out := h.mustRun("reset")
	assert.Contains(t, out, "--yes")
	h.mustRun("status")

	out = h.mustRun("reset", "--yes")
	assert.Contains(t, out, "Проект удалён")

	_, err := h.run("status")
	assert.ErrorIs(t, err, common.ErrNoProject)
}

func TestUsersAreSeparate(t *testing.T) {
	h := newHarness(t)
	h.mustRun("journal", "add", "3")

	_, err := h.run("--user", "2", "status")
	assert.ErrorIs(t, err, common.ErrNoProject)
}

func TestHashPassword(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("hash-password", "s3cret")
	assert.True(t, strings.HasPrefix(out, "$argon2id$"))
}

func TestWhoamiLocal(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("whoami")
	assert.Contains(t, out, "Локальный режим: пользователь 1")
}

func TestLoginRequiresRemote(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("login", "token")
	assert.ErrorIs(t, err, errNoRemote)
}

func TestRemoteLoginAndWhoami(t *testing.T) {
	gokeyring.MockInit()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data":{"_id":"u1","username":"anna","email":"anna@example.com","total_points":320}}`)
	}))
	t.Cleanup(srv.Close)
	h := newHarness(t)

	_, err := h.run("--remote", srv.URL, "login", "bad")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	_, err = keyring.GetToken(srv.URL)
	assert.ErrorIs(t, err, keyring.ErrNotFound)

	out := h.mustRun("--remote", srv.URL, "login", "good")
	assert.Contains(t, out, "anna")

	out = h.mustRun("--remote", srv.URL, "whoami")
	assert.Contains(t, out, "anna@example.com")

	out = h.mustRun("--remote", srv.URL, "logout")
	assert.Contains(t, out, "Токен удалён")

	_, err = h.run("--remote", srv.URL, "status")
	assert.ErrorIs(t, err, keyring.ErrNotFound)
}
