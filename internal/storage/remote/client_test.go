package remote

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/project"
	"serotonyl.ru/eco-bot/internal/features/timeline"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, "secret", WithTimeout(2*time.Second))
}

func TestGetProjectSendsTokenAndDecodes(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/ecoenzim/projects/p1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"_id":"p1","userId":"42","organicWasteWeight":2.5,
			"startDate":"2026-01-01T09:00:00Z","endDate":"2026-04-01T09:00:00Z",
			"status":"ongoing","isClaimed":false,"createdAt":"2025-12-30T10:00:00Z"}`)
	})

	p, err := c.GetProject(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, int64(42), p.UserID)
	assert.Equal(t, int64(2500), p.WeightGrams)
	assert.Equal(t, project.StatusOngoing, p.Status)
	require.NotNil(t, p.EndsAt)
	assert.Equal(t, 4, int(p.EndsAt.Month()))
}

func TestMissingStatusIsNotStarted(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"_id":"p1","userId":"1","organicWasteWeight":1}]`)
	})

	list, err := c.ListProjects(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, project.StatusNotStarted, list[0].Status)
	assert.Nil(t, list[0].EndsAt)
}

func TestCreateProjectUnwrapsEnvelope(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"organicWasteWeight":1.25`)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"project":{"_id":"new-id","createdAt":"2026-01-02T00:00:00Z"}}`)
	})

	p := &project.Project{UserID: 7, WeightGrams: 1250, Status: project.StatusNotStarted}
	require.NoError(t, c.CreateProject(context.Background(), p))
	assert.Equal(t, "new-id", p.ID)
	assert.Equal(t, 2026, p.CreatedAt.Year())
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		code int
		want error
	}{
		{"unauthorized", http.StatusUnauthorized, common.ErrUnauthorized},
		{"not found", http.StatusNotFound, common.ErrNotFound},
		{"server error", http.StatusInternalServerError, common.ErrBackend},
		{"bad request", http.StatusBadRequest, common.ErrBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				io.WriteString(w, `{"message":"nope"}`)
			})
			_, err := c.GetProject(context.Background(), "x")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, "", WithTimeout(time.Second))
	_, err := c.ListProjects(context.Background(), 1)
	assert.ErrorIs(t, err, common.ErrBackend)
}

func TestStartConflictIsInvalidTransition(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/start"))
		w.WriteHeader(http.StatusConflict)
	})

	now := time.Now()
	err := c.StartProject(context.Background(), "p1", now, now.Add(90*common.Day))
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
}

func TestSaveCheckinInsertedFlag(t *testing.T) {
	var code atomic.Int32
	code.Store(http.StatusCreated)
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ecoenzim/projects/p1/checkins", r.URL.Path)
		w.WriteHeader(int(code.Load()))
	})
	ctx := context.Background()
	rec := timeline.Checkin{Day: 3, Checked: true, CheckedAt: time.Now()}

	inserted, err := c.SaveCheckin(ctx, "p1", rec)
	require.NoError(t, err)
	assert.True(t, inserted)

	code.Store(http.StatusOK)
	inserted, err = c.SaveCheckin(ctx, "p1", rec)
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestUploadsSplitIntoEntriesAndPhotos(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ecoenzim/uploads/project/p1", r.URL.Path)
		io.WriteString(w, `[
			{"_id":"u2","ecoenzimProjectId":"p1","weight":0.5,"uploadedDate":"2026-01-03T00:00:00Z"},
			{"_id":"u1","ecoenzimProjectId":"p1","weight":1.0,"uploadedDate":"2026-01-01T00:00:00Z"},
			{"_id":"u3","ecoenzimProjectId":"p1","monthNumber":1,"photoUrl":"https://img/1.jpg","uploadedDate":"2026-01-30T00:00:00Z"},
			{"_id":"u4","ecoenzimProjectId":"p1","monthNumber":9,"photoUrl":"https://img/9.jpg","uploadedDate":"2026-01-30T00:00:00Z"}
		]`)
	})
	ctx := context.Background()

	entries, err := c.ListEntries(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "u1", entries[0].ID)
	assert.Equal(t, int64(500), entries[1].WeightGrams)

	photos, err := c.ListPhotos(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, 1, photos[0].Month)
}

func TestClaim(t *testing.T) {
	var calls atomic.Int32
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) > 1 {
			w.WriteHeader(http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	ctx := context.Background()

	claimed, err := c.Claim(ctx, "p1", 1, 100)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = c.Claim(ctx, "p1", 1, 100)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestBalanceFromMe(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/me", r.URL.Path)
		io.WriteString(w, `{"data":{"_id":"u","username":"eco","total_points":340}}`)
	})
	ctx := context.Background()

	balance, err := c.GetBalance(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(340), balance)

	assert.ErrorIs(t, c.AddBalance(ctx, 0, 10, "x", "y"), common.ErrUnsupported)
	assert.ErrorIs(t, c.DeductBalance(ctx, 0, 10, "x", "y"), common.ErrUnsupported)
}

func TestStartDateWithoutEndDateIsActive(t *testing.T) {
	start := time.Now().Add(-10 * common.Day).UTC().Format(time.RFC3339)
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"_id":"p1","userId":"1","organicWasteWeight":3,
			"status":"ongoing","startDate":"`+start+`"}]`)
	})

	list, err := c.ListProjects(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].EndsAt)

	clock := list[0].Clock()
	require.True(t, clock.IsActive())
	assert.Equal(t, 80, clock.DaysRemaining(time.Now()))
}
