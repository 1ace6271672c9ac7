package summary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/project"
	"serotonyl.ru/eco-bot/internal/features/tree"
)

type stubProjects struct {
	o   *project.Overview
	err error
}

func (s stubProjects) Overview(context.Context, int64) (*project.Overview, error) { return s.o, s.err }

type stubTasks struct{ p tree.Progress }

func (s stubTasks) TodayProgress(context.Context, int64) (tree.Progress, error) { return s.p, nil }

type stubBalances struct{ b int64 }

func (s stubBalances) GetBalance(context.Context, int64) (int64, error) { return s.b, nil }

func TestBuildWithProject(t *testing.T) {
	o := &project.Overview{
		Project:       &project.Project{Status: project.StatusOngoing},
		Percent:       40,
		Month:         2,
		DaysRemaining: 54,
	}
	svc := NewService(stubProjects{o: o}, stubTasks{p: tree.Progress{Completed: 2, Total: 3, Percent: 67}}, stubBalances{b: 150})

	s, err := svc.Build(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, s.Eco)
	assert.Equal(t, &Eco{Status: project.StatusOngoing, Percent: 40, Month: 2, DaysRemaining: 54}, s.Eco)
	assert.Equal(t, 2, s.Tasks.Completed)
	assert.Equal(t, int64(150), s.Balance)

	text := Format(s)
	assert.Contains(t, text, "2/3")
	assert.Contains(t, text, "месяц 2")
	assert.Contains(t, text, "150 баллов")
}

func TestBuildWithoutProject(t *testing.T) {
	svc := NewService(stubProjects{err: common.ErrNoProject}, nil, stubBalances{b: 1})

	s, err := svc.Build(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, s.Eco)
	assert.Nil(t, s.Tasks)
	assert.Contains(t, Format(s), "проекта нет")
}
