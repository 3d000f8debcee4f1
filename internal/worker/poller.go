package worker

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"keypanel/internal/domain/notification"
	"keypanel/internal/domain/order"
	"keypanel/internal/infra/db"
	"keypanel/internal/infra/provider"
	"keypanel/internal/pkg/clock"
	"keypanel/internal/pkg/config"
	"keypanel/internal/pkg/errs"
	"keypanel/internal/usecase/commands"
	"keypanel/internal/usecase/shared"
)

// Poller reconciles non-terminal orders against the provider on a fixed scan
// interval. Scheduling is durable: due orders are claimed with a lease
// (next_poll_at pushed forward, attempt counted) so a crashed instance loses
// nothing and concurrent instances never double-poll.
type Poller struct {
	orders        OrderPollRepository
	notifications commands.NotificationRepository
	gateway       StatusGateway
	runner        shared.TxRunner
	clock         clock.Clock
	cfg           config.PollerConfig
	logger        *slog.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewPoller(
	orders OrderPollRepository,
	notifications commands.NotificationRepository,
	gateway StatusGateway,
	runner shared.TxRunner,
	clock clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		orders:        orders,
		notifications: notifications,
		gateway:       gateway,
		runner:        runner,
		clock:         clock,
		cfg:           cfg.Poller,
		logger:        logger,
		stopCh:        make(chan struct{}),
	}
}

func (p *Poller) Start() {
	p.wg.Add(1)
	go p.run()
}

func (p *Poller) Stop() {
	close(p.stopCh)
	p.wg.Wait()
}

func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.RunCycle(context.Background())
		}
	}
}

// RunCycle claims one batch of due orders and polls each. Per-order failures
// are logged and absorbed; the claim lease already rescheduled the order.
func (p *Poller) RunCycle(ctx context.Context) {
	tasks, err := p.claimBatch(ctx)
	if err != nil {
		p.logger.Error("failed to claim due orders", "error", err.Error())
		return
	}

	for _, task := range tasks {
		select {
		case <-p.stopCh:
			return
		default:
		}
		p.poll(ctx, task)
	}
}

func (p *Poller) claimBatch(ctx context.Context) ([]PollTask, error) {
	var tasks []PollTask
	err := p.runner.RunInTx(ctx, func(tx db.DBTX) error {
		now := p.clock.Now()
		claimed, err := p.orders.ClaimDue(ctx, tx, int32(p.cfg.BatchSize), now, now.Add(p.cfg.RetryBackoff))
		if err != nil {
			return err
		}
		tasks = claimed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (p *Poller) poll(ctx context.Context, task PollTask) {
	if int(task.Attempts) > p.cfg.MaxAttempts {
		message := "Status polling abandoned after " + strconv.Itoa(p.cfg.MaxAttempts) + " attempts"
		p.logger.Warn("order exceeded poll attempts",
			"order_id", task.OrderID,
			"attempts", task.Attempts)
		if err := p.applyChange(ctx, task, order.StatusFailed, message, nil); err != nil {
			p.logger.Error("failed to abandon order",
				"order_id", task.OrderID,
				"error", err.Error())
		}
		return
	}

	result, err := p.gateway.QueryStatus(ctx, task.Credential, task.ProviderOrderID)
	if err != nil {
		p.logger.Warn("provider status query failed",
			"order_id", task.OrderID,
			"error", err.Error())
		return
	}
	if result == nil {
		// Provider answered without a usable status; try again next lease.
		return
	}

	status := order.NormalizeProviderStatus(result.Status)
	if status == task.Status {
		err := p.runner.RunInTx(ctx, func(tx db.DBTX) error {
			return p.orders.Touch(ctx, tx, task.OrderID, result.Raw)
		})
		if err != nil {
			p.logger.Warn("failed to record unchanged poll",
				"order_id", task.OrderID,
				"error", err.Error())
		}
		return
	}

	message := statusMessage(status, result)
	if err := p.applyChange(ctx, task, status, message, result.Raw); err != nil {
		p.logger.Error("failed to apply status change",
			"order_id", task.OrderID,
			"status", status.String(),
			"error", err.Error())
		return
	}

	p.logger.Info("order status changed",
		"order_id", task.OrderID,
		"from", task.Status.String(),
		"to", status.String())
}

// applyChange persists the transition and, for terminal statuses, raises the
// admin notification in the same transaction. The guarded update makes this
// idempotent: a concurrently finished order yields no change and no duplicate
// notification.
func (p *Poller) applyChange(ctx context.Context, task PollTask, status order.Status, message string, raw []byte) error {
	var nextPollAt *time.Time
	if !status.IsTerminal() {
		t := p.clock.Now().Add(p.cfg.RetryBackoff)
		nextPollAt = &t
	}

	return p.runner.RunInTx(ctx, func(tx db.DBTX) error {
		applied, err := p.orders.ApplyStatus(ctx, tx, task.OrderID, status, message, raw, nextPollAt, p.clock.Now())
		if err != nil {
			return err
		}
		if !applied || !status.IsTerminal() {
			return nil
		}
		return p.createNotification(ctx, tx, task, status, message)
	})
}

func (p *Poller) createNotification(ctx context.Context, tx db.DBTX, task PollTask, status order.Status, message string) error {
	var (
		notifType notification.Type
		title     string
	)
	switch status {
	case order.StatusCompleted:
		notifType, title = notification.TypeOrderCompleted, "Order completed"
	case order.StatusPartial:
		notifType, title = notification.TypeOrderCompleted, "Order partially completed"
	case order.StatusCancelled:
		notifType, title = notification.TypeOrderCancelled, "Order cancelled"
	case order.StatusFailed:
		notifType, title = notification.TypeOrderFailed, "Order failed"
	default:
		return nil
	}

	snapshot := notification.OrderSnapshot{
		OrderID:     task.OrderID,
		ServiceName: task.ServiceName,
		Quantity:    task.Quantity,
		Link:        task.Link,
		Status:      status.String(),
		Message:     message,
	}

	return p.notifications.Create(ctx, tx, commands.NotificationParams{
		Type:      string(notifType),
		Title:     title,
		Message:   "Order " + task.OrderID + ": " + message,
		OrderID:   task.OrderID,
		OrderData: snapshot.Encode(),
	})
}

// RefreshOrder reconciles one order on demand, outside the scan schedule. The
// regular lease is left untouched; a refresh only ever moves status forward.
func (p *Poller) RefreshOrder(ctx context.Context, orderID string) error {
	task, err := p.orders.FindPollTask(ctx, orderID)
	if err != nil {
		return errs.Wrap(err, "failed to load order for refresh")
	}
	if task.Status.IsTerminal() || task.ProviderOrderID == "" {
		return nil
	}

	result, err := p.gateway.QueryStatus(ctx, task.Credential, task.ProviderOrderID)
	if err != nil {
		return errs.Wrap(err, "provider status query failed")
	}
	if result == nil {
		return nil
	}

	status := order.NormalizeProviderStatus(result.Status)
	if status == task.Status {
		return p.runner.RunInTx(ctx, func(tx db.DBTX) error {
			return p.orders.Touch(ctx, tx, task.OrderID, result.Raw)
		})
	}

	return p.applyChange(ctx, *task, status, statusMessage(status, result), result.Raw)
}

func statusMessage(status order.Status, result *provider.StatusResult) string {
	switch status {
	case order.StatusCompleted:
		return "Order completed"
	case order.StatusPartial:
		if result.Remains != "" {
			return "Order partially completed, remains " + result.Remains
		}
		return "Order partially completed"
	case order.StatusCancelled:
		return "Order cancelled by provider"
	case order.StatusInProgress:
		return "Order in progress"
	case order.StatusProcessing:
		return "Order is being processed"
	default:
		return "Provider reports status: " + result.Status
	}
}
