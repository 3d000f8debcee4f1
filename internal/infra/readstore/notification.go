package readstore

import (
	"context"

	"keypanel/internal/infra"
	"keypanel/internal/infra/db"
	"keypanel/internal/pkg/pgconv"
	"keypanel/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgtype"
)

type NotificationReadStore struct {
	db db.DBTX
}

func NewNotificationReadStore(db db.DBTX) *NotificationReadStore {
	return &NotificationReadStore{db: db}
}

func (s *NotificationReadStore) List(ctx context.Context, onlyUnread bool, limit int32) ([]*queries.NotificationView, error) {
	const query = `
		SELECT id, type, title, message, order_id, order_data, is_read, created_at
		FROM notifications
		WHERE NOT is_read OR NOT $1::boolean
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := s.db.Query(ctx, query, onlyUnread, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list notifications", err)
	}
	defer rows.Close()

	var views []*queries.NotificationView
	for rows.Next() {
		var (
			view      queries.NotificationView
			createdAt pgtype.Timestamptz
		)

		err := rows.Scan(
			&view.ID,
			&view.Type,
			&view.Title,
			&view.Message,
			&view.OrderID,
			&view.OrderData,
			&view.Read,
			&createdAt,
		)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan notification", err)
		}

		view.CreatedAt = pgconv.TimeFromPgtype(createdAt)
		views = append(views, &view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read notifications", err)
	}

	return views, nil
}
