package repository

import (
	"context"

	"keypanel/internal/infra"
	"keypanel/internal/infra/db"
	"keypanel/internal/usecase/commands"

	"github.com/google/uuid"
)

type NotificationRepository struct {
	db db.DBTX
}

func NewNotificationRepository(db db.DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, tx db.DBTX, params commands.NotificationParams) error {
	const query = `
		INSERT INTO notifications (type, title, message, order_id, order_data)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query,
		params.Type,
		params.Title,
		params.Message,
		params.OrderID,
		params.OrderData,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create notification", err)
	}

	return nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, tx db.DBTX, id uuid.UUID) error {
	const query = `UPDATE notifications SET is_read = TRUE WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return infra.WrapRepoErr("failed to mark notification read", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("notification not found", nil, infra.KindNotFound)
	}

	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, tx db.DBTX) error {
	const query = `UPDATE notifications SET is_read = TRUE WHERE NOT is_read`

	if _, err := tx.Exec(ctx, query); err != nil {
		return infra.WrapRepoErr("failed to mark notifications read", err)
	}

	return nil
}
