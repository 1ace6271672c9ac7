//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/eco-bot/internal/common"
	dbpostgres "serotonyl.ru/eco-bot/internal/db/postgres"
	"serotonyl.ru/eco-bot/internal/features/project"
	"serotonyl.ru/eco-bot/internal/features/timeline"
	"serotonyl.ru/eco-bot/internal/features/tree"
)

// newPool подключается к TEST_DATABASE_URL и применяет миграции.
func newPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL не задан")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, dbpostgres.RunMigrations(ctx, pool))
	return pool
}

// userID выдаёт уникального пользователя на тест.
func userID() int64 {
	return int64(uuid.New().ID()) + 1_000_000
}

func TestProjectRepositoryLifecycle(t *testing.T) {
	pool := newPool(t)
	repo := NewProjectRepository(pool)
	ctx := context.Background()
	user := userID()

	p := &project.Project{UserID: user, Status: project.StatusNotStarted}
	require.NoError(t, repo.CreateProject(ctx, p))
	require.NotEmpty(t, p.ID)

	require.NoError(t, repo.AddEntry(ctx, &project.Entry{ProjectID: p.ID, WeightGrams: 1200}))
	require.NoError(t, repo.AddEntry(ctx, &project.Entry{ProjectID: p.ID, WeightGrams: 300}))

	got, err := repo.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), got.WeightGrams)

	start := time.Now().Truncate(time.Second)
	require.NoError(t, repo.StartProject(ctx, p.ID, start, start.Add(90*common.Day)))
	assert.ErrorIs(t, repo.StartProject(ctx, p.ID, start, start), common.ErrInvalidTransition)

	inserted, err := repo.SaveCheckin(ctx, p.ID, timeline.Checkin{Day: 1, Checked: true, CheckedAt: start})
	require.NoError(t, err)
	assert.True(t, inserted)
	inserted, err = repo.SaveCheckin(ctx, p.ID, timeline.Checkin{Day: 1, Checked: true, CheckedAt: start})
	require.NoError(t, err)
	assert.False(t, inserted)

	require.NoError(t, repo.SavePhoto(ctx, p.ID, timeline.Photo{Month: 1, Ref: "a", UploadedAt: start}))
	require.NoError(t, repo.SavePhoto(ctx, p.ID, timeline.Photo{Month: 1, Ref: "b", UploadedAt: start}))
	photos, err := repo.ListPhotos(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, "b", photos[0].Ref)

	ongoing, err := repo.ListByStatus(ctx, project.StatusOngoing)
	require.NoError(t, err)
	assert.NotEmpty(t, ongoing)

	require.NoError(t, repo.DeleteProject(ctx, p.ID))
	_, err = repo.GetProject(ctx, p.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestClaimAwardsOnce(t *testing.T) {
	pool := newPool(t)
	repo := NewProjectRepository(pool)
	econ := NewEconomyRepository(pool)
	ctx := context.Background()
	user := userID()

	p := &project.Project{UserID: user, Status: project.StatusNotStarted}
	require.NoError(t, repo.CreateProject(ctx, p))

	claimed, err := repo.Claim(ctx, p.ID, user, 150)
	require.NoError(t, err)
	assert.True(t, claimed)
	claimed, err = repo.Claim(ctx, p.ID, user, 150)
	require.NoError(t, err)
	assert.False(t, claimed)

	balance, err := econ.GetBalance(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(150), balance)

	assert.ErrorIs(t, econ.DeductBalance(ctx, user, 151, "voucher", "x"), common.ErrInsufficientBalance)
	require.NoError(t, econ.DeductBalance(ctx, user, 50, "voucher", "x"))

	txs, err := econ.GetTransactions(ctx, user, 10)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, int64(-50), txs[0].Amount)
}

func TestTreeRepositoryFruits(t *testing.T) {
	pool := newPool(t)
	repo := NewTreeRepository(pool)
	ctx := context.Background()
	user := userID()
	day := "2026-03-10"

	tasks := []*tree.Task{
		{UserID: user, Date: day, Code: "a", Title: "A", Category: tree.CategoryEco},
		{UserID: user, Date: day, Code: "b", Title: "B", Category: tree.CategoryHealth},
	}
	require.NoError(t, repo.EnsureTasks(ctx, tasks))
	require.NoError(t, repo.EnsureTasks(ctx, tasks))

	list, err := repo.ListTasks(ctx, user, day, day)
	require.NoError(t, err)
	require.Len(t, list, 2)

	for _, task := range list {
		done, err := repo.CompleteTask(ctx, user, task.ID, time.Now())
		require.NoError(t, err)
		assert.True(t, done)
	}

	users, err := repo.UsersWithFullDay(ctx, day)
	require.NoError(t, err)
	assert.Contains(t, users, user)

	f := &tree.Fruit{UserID: user, Date: day, Points: 10}
	created, err := repo.CreateFruit(ctx, f)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = repo.CreateFruit(ctx, &tree.Fruit{UserID: user, Date: day, Points: 10})
	require.NoError(t, err)
	assert.False(t, created)

	claimed, err := repo.ClaimFruit(ctx, user, f.ID)
	require.NoError(t, err)
	assert.True(t, claimed)
	claimed, err = repo.ClaimFruit(ctx, user, f.ID)
	require.NoError(t, err)
	assert.False(t, claimed)

	n, err := repo.Harvested(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
