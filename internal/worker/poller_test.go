//go:build unit

package worker_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"keypanel/internal/domain/order"
	"keypanel/internal/infra/db"
	"keypanel/internal/infra/provider"
	"keypanel/internal/pkg/clock"
	"keypanel/internal/pkg/config"
	"keypanel/internal/usecase/commands"
	"keypanel/internal/worker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passthroughRunner struct{}

func (passthroughRunner) RunInTx(_ context.Context, fn func(tx db.DBTX) error) error {
	return fn(nil)
}

type appliedChange struct {
	orderID    string
	status     order.Status
	message    string
	nextPollAt *time.Time
}

type fakePollRepo struct {
	tasks      []worker.PollTask
	claimCalls int
	applied    []appliedChange
	applyOK    bool
	touched    []string
	findTask   *worker.PollTask
	findErr    error
}

func (f *fakePollRepo) ClaimDue(_ context.Context, _ db.DBTX, _ int32, _, _ time.Time) ([]worker.PollTask, error) {
	f.claimCalls++
	tasks := f.tasks
	f.tasks = nil
	return tasks, nil
}

func (f *fakePollRepo) ApplyStatus(_ context.Context, _ db.DBTX, orderID string, status order.Status, message string, _ []byte, nextPollAt *time.Time, _ time.Time) (bool, error) {
	f.applied = append(f.applied, appliedChange{orderID: orderID, status: status, message: message, nextPollAt: nextPollAt})
	return f.applyOK, nil
}

func (f *fakePollRepo) Touch(_ context.Context, _ db.DBTX, orderID string, _ []byte) error {
	f.touched = append(f.touched, orderID)
	return nil
}

func (f *fakePollRepo) FindPollTask(_ context.Context, _ string) (*worker.PollTask, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findTask, nil
}

type fakeStatusGateway struct {
	result *provider.StatusResult
	err    error
	calls  int
}

func (f *fakeStatusGateway) QueryStatus(_ context.Context, _ provider.Credential, _ string) (*provider.StatusResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeNotificationRepo struct {
	created []commands.NotificationParams
}

func (f *fakeNotificationRepo) Create(_ context.Context, _ db.DBTX, params commands.NotificationParams) error {
	f.created = append(f.created, params)
	return nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, _ db.DBTX, _ uuid.UUID) error { return nil }
func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, _ db.DBTX) error           { return nil }

type pollerFixture struct {
	repo    *fakePollRepo
	notifs  *fakeNotificationRepo
	gateway *fakeStatusGateway
	clock   *clock.MockClock
	poller  *worker.Poller
	cfg     config.Config
}

func newPollerFixture(t *testing.T) *pollerFixture {
	t.Helper()

	f := &pollerFixture{
		repo:    &fakePollRepo{applyOK: true},
		notifs:  &fakeNotificationRepo{},
		gateway: &fakeStatusGateway{},
		clock:   clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		cfg:     config.NewTestConfig(),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.poller = worker.NewPoller(f.repo, f.notifs, f.gateway, passthroughRunner{}, f.clock, f.cfg, logger)
	return f
}

func newTask(status order.Status) worker.PollTask {
	link := "https://instagram.com/example"
	return worker.PollTask{
		OrderID:         "12345678",
		Status:          status,
		ProviderOrderID: "987654",
		Attempts:        1,
		Quantity:        100,
		Link:            &link,
		ServiceName:     "Instagram Followers",
		Credential: provider.Credential{
			ID:      uuid.New(),
			BaseURL: "https://provider.example.com/api/v2",
			Secret:  "provider-secret",
		},
	}
}

func TestRunCycle(t *testing.T) {
	ctx := context.Background()

	t.Run("completed status ends polling and notifies", func(t *testing.T) {
		f := newPollerFixture(t)
		f.repo.tasks = []worker.PollTask{newTask(order.StatusProcessing)}
		f.gateway.result = &provider.StatusResult{Status: "Completed", Raw: []byte(`{"status":"Completed"}`)}

		f.poller.RunCycle(ctx)

		require.Len(t, f.repo.applied, 1)
		change := f.repo.applied[0]
		assert.Equal(t, order.StatusCompleted, change.status)
		assert.Nil(t, change.nextPollAt, "terminal status must clear the poll schedule")

		require.Len(t, f.notifs.created, 1)
		assert.Equal(t, "order_completed", f.notifs.created[0].Type)
	})

	t.Run("unchanged status only refreshes the payload", func(t *testing.T) {
		f := newPollerFixture(t)
		f.repo.tasks = []worker.PollTask{newTask(order.StatusInProgress)}
		f.gateway.result = &provider.StatusResult{Status: "In progress", Raw: []byte(`{"status":"In progress"}`)}

		f.poller.RunCycle(ctx)

		assert.Empty(t, f.repo.applied)
		assert.Equal(t, []string{"12345678"}, f.repo.touched)
		assert.Empty(t, f.notifs.created)
	})

	t.Run("forward progress reschedules without notifying", func(t *testing.T) {
		f := newPollerFixture(t)
		f.repo.tasks = []worker.PollTask{newTask(order.StatusProcessing)}
		f.gateway.result = &provider.StatusResult{Status: "In progress"}

		f.poller.RunCycle(ctx)

		require.Len(t, f.repo.applied, 1)
		change := f.repo.applied[0]
		assert.Equal(t, order.StatusInProgress, change.status)
		require.NotNil(t, change.nextPollAt)
		assert.Equal(t, f.clock.Now().Add(f.cfg.Poller.RetryBackoff), *change.nextPollAt)
		assert.Empty(t, f.notifs.created)
	})

	t.Run("cancellation notifies as cancelled", func(t *testing.T) {
		f := newPollerFixture(t)
		f.repo.tasks = []worker.PollTask{newTask(order.StatusInProgress)}
		f.gateway.result = &provider.StatusResult{Status: "Canceled"}

		f.poller.RunCycle(ctx)

		require.Len(t, f.notifs.created, 1)
		assert.Equal(t, "order_cancelled", f.notifs.created[0].Type)
	})

	t.Run("unusable provider answer leaves the lease in place", func(t *testing.T) {
		f := newPollerFixture(t)
		f.repo.tasks = []worker.PollTask{newTask(order.StatusProcessing)}
		f.gateway.result = nil

		f.poller.RunCycle(ctx)

		assert.Empty(t, f.repo.applied)
		assert.Empty(t, f.repo.touched)
		assert.Empty(t, f.notifs.created)
	})

	t.Run("concurrently finished order yields no duplicate notification", func(t *testing.T) {
		f := newPollerFixture(t)
		f.repo.tasks = []worker.PollTask{newTask(order.StatusProcessing)}
		f.repo.applyOK = false
		f.gateway.result = &provider.StatusResult{Status: "Completed"}

		f.poller.RunCycle(ctx)

		require.Len(t, f.repo.applied, 1)
		assert.Empty(t, f.notifs.created)
	})

	t.Run("poll attempt cap abandons the order as failed", func(t *testing.T) {
		f := newPollerFixture(t)
		task := newTask(order.StatusProcessing)
		task.Attempts = int32(f.cfg.Poller.MaxAttempts) + 1
		f.repo.tasks = []worker.PollTask{task}

		f.poller.RunCycle(ctx)

		assert.Zero(t, f.gateway.calls, "exhausted orders must not hit the provider")
		require.Len(t, f.repo.applied, 1)
		assert.Equal(t, order.StatusFailed, f.repo.applied[0].status)
		require.Len(t, f.notifs.created, 1)
		assert.Equal(t, "order_failed", f.notifs.created[0].Type)
	})
}

func TestRefreshOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("terminal order skips the provider", func(t *testing.T) {
		f := newPollerFixture(t)
		task := newTask(order.StatusCompleted)
		f.repo.findTask = &task

		require.NoError(t, f.poller.RefreshOrder(ctx, task.OrderID))
		assert.Zero(t, f.gateway.calls)
	})

	t.Run("unsubmitted order skips the provider", func(t *testing.T) {
		f := newPollerFixture(t)
		task := newTask(order.StatusPending)
		task.ProviderOrderID = ""
		f.repo.findTask = &task

		require.NoError(t, f.poller.RefreshOrder(ctx, task.OrderID))
		assert.Zero(t, f.gateway.calls)
	})

	t.Run("status change is applied on demand", func(t *testing.T) {
		f := newPollerFixture(t)
		task := newTask(order.StatusProcessing)
		f.repo.findTask = &task
		f.gateway.result = &provider.StatusResult{Status: "Partial", Remains: "40"}

		require.NoError(t, f.poller.RefreshOrder(ctx, task.OrderID))

		require.Len(t, f.repo.applied, 1)
		change := f.repo.applied[0]
		assert.Equal(t, order.StatusPartial, change.status)
		assert.Equal(t, "Order partially completed, remains 40", change.message)
		assert.Nil(t, change.nextPollAt)

		require.Len(t, f.notifs.created, 1)
		assert.Equal(t, "order_completed", f.notifs.created[0].Type)
	})

	t.Run("unchanged status refreshes the payload", func(t *testing.T) {
		f := newPollerFixture(t)
		task := newTask(order.StatusInProgress)
		f.repo.findTask = &task
		f.gateway.result = &provider.StatusResult{Status: "in_progress"}

		require.NoError(t, f.poller.RefreshOrder(ctx, task.OrderID))
		assert.Equal(t, []string{task.OrderID}, f.repo.touched)
		assert.Empty(t, f.repo.applied)
	})
}
