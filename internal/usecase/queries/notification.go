package queries

import (
	"context"

	"keypanel/internal/pkg/errs"
)

type NotificationReadStore interface {
	List(ctx context.Context, onlyUnread bool, limit int32) ([]*NotificationView, error)
}

type NotificationQueries interface {
	List(ctx context.Context, onlyUnread bool, limit int) ([]*NotificationView, error)
}

type notificationQueriesImpl struct {
	store NotificationReadStore
}

func NewNotificationQueries(store NotificationReadStore) NotificationQueries {
	return &notificationQueriesImpl{store: store}
}

func (q *notificationQueriesImpl) List(ctx context.Context, onlyUnread bool, limit int) ([]*NotificationView, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	views, err := q.store.List(ctx, onlyUnread, int32(limit))
	if err != nil {
		return nil, errs.Wrap(err, "failed to list notifications")
	}

	return views, nil
}
