package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"serotonyl.ru/eco-bot/internal/features/project"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeProjects struct {
	refreshed int
	reminders []project.Reminder
	err       error
}

func (f *fakeProjects) RefreshStatuses(context.Context) (int, error) {
	f.refreshed++
	return 1, f.err
}

func (f *fakeProjects) PendingReminders(context.Context) ([]project.Reminder, error) {
	return f.reminders, f.err
}

type fakeFruits struct {
	dates []time.Time
}

func (f *fakeFruits) GrowFruits(_ context.Context, date time.Time) (int, error) {
	f.dates = append(f.dates, date)
	return 2, nil
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeMessenger struct {
	mu     sync.Mutex
	sent   []sentMessage
	failOn int64
}

func (m *fakeMessenger) SendText(_ context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if chatID == m.failOn {
		return errors.New("blocked")
	}
	m.sent = append(m.sent, sentMessage{chatID, text})
	return nil
}

var specs = Specs{StatusRefresh: "* * * * *", Reminders: "0 20 * * *", Fruits: "5 0 * * *"}

func TestStartStop(t *testing.T) {
	s := NewScheduler(time.UTC, specs, &fakeProjects{}, &fakeFruits{}, &fakeMessenger{})
	require.NoError(t, s.Start(context.Background()))
	assert.Len(t, s.cron.Entries(), 3)
	s.Stop()
}

func TestStartSkipsDisabledFeatures(t *testing.T) {
	s := NewScheduler(time.UTC, specs, nil, &fakeFruits{}, &fakeMessenger{})
	require.NoError(t, s.Start(context.Background()))
	assert.Len(t, s.cron.Entries(), 1)
	s.Stop()
}

func TestStartRejectsBadSpec(t *testing.T) {
	bad := specs
	bad.Reminders = "когда-нибудь"
	s := NewScheduler(time.UTC, bad, &fakeProjects{}, nil, &fakeMessenger{})
	assert.Error(t, s.Start(context.Background()))
}

func TestSendRemindersContinuesAfterFailure(t *testing.T) {
	projects := &fakeProjects{reminders: []project.Reminder{
		{UserID: 1, Day: 5},
		{UserID: 2, Day: 9},
		{UserID: 3, Day: 12},
	}}
	msg := &fakeMessenger{failOn: 2}
	s := NewScheduler(time.UTC, specs, projects, nil, msg)

	s.SendReminders(context.Background())

	require.Len(t, msg.sent, 2)
	assert.Equal(t, int64(1), msg.sent[0].chatID)
	assert.Contains(t, msg.sent[0].text, "День 5")
	assert.Equal(t, int64(3), msg.sent[1].chatID)
}

func TestRefreshStatusesLogsError(t *testing.T) {
	projects := &fakeProjects{err: errors.New("db down")}
	s := NewScheduler(time.UTC, specs, projects, nil, &fakeMessenger{})

	s.RefreshStatuses(context.Background())
	assert.Equal(t, 1, projects.refreshed)
}

func TestGrowFruitsUsesYesterday(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	fruits := &fakeFruits{}
	s := NewScheduler(loc, specs, nil, fruits, &fakeMessenger{})
	s.now = func() time.Time { return time.Date(2026, 3, 10, 0, 5, 0, 0, loc) }

	s.GrowFruits(context.Background())

	require.Len(t, fruits.dates, 1)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, loc), fruits.dates[0])
}
