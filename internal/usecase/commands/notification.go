package commands

import (
	"context"

	"keypanel/internal/infra"
	"keypanel/internal/infra/db"
	"keypanel/internal/pkg/errs"
	"keypanel/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrNotificationNotFound = errs.New("notification not found")

type NotificationCommands interface {
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context) error
}

type notificationCommandsImpl struct {
	notificationRepo NotificationRepository
	runner           shared.TxRunner
}

func NewNotificationCommands(notificationRepo NotificationRepository, runner shared.TxRunner) NotificationCommands {
	return &notificationCommandsImpl{
		notificationRepo: notificationRepo,
		runner:           runner,
	}
}

func (c *notificationCommandsImpl) MarkRead(ctx context.Context, id uuid.UUID) error {
	err := c.runner.RunInTx(ctx, func(tx db.DBTX) error {
		return c.notificationRepo.MarkRead(ctx, tx, id)
	})
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrNotificationNotFound
		}
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}

func (c *notificationCommandsImpl) MarkAllRead(ctx context.Context) error {
	err := c.runner.RunInTx(ctx, func(tx db.DBTX) error {
		return c.notificationRepo.MarkAllRead(ctx, tx)
	})
	if err != nil {
		return errs.Mark(err, ErrDatabaseOperationFailed)
	}
	return nil
}
