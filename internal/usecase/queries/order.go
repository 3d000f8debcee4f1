package queries

import (
	"context"
	"log/slog"

	"keypanel/internal/domain/order"
	"keypanel/internal/infra"
	"keypanel/internal/pkg/errs"
)

var ErrOrderNotFound = errs.New("order not found")

type OrderReadStore interface {
	FindByID(ctx context.Context, orderID string) (*OrderView, error)
	FindDetailByID(ctx context.Context, orderID string) (*OrderDetailView, error)
}

// StatusRefresher performs a one-shot, on-demand reconciliation against the
// provider. The background poller implements it; the search query uses it to
// bridge user-initiated refresh with the regular polling schedule.
type StatusRefresher interface {
	RefreshOrder(ctx context.Context, orderID string) error
}

type OrderQueries interface {
	GetStatus(ctx context.Context, orderID string) (*OrderView, error)
	Search(ctx context.Context, orderID string) (*OrderDetailView, error)
}

type orderQueriesImpl struct {
	store     OrderReadStore
	refresher StatusRefresher
	logger    *slog.Logger
}

func NewOrderQueries(store OrderReadStore, refresher StatusRefresher, logger *slog.Logger) OrderQueries {
	return &orderQueriesImpl{
		store:     store,
		refresher: refresher,
		logger:    logger,
	}
}

func (q *orderQueriesImpl) GetStatus(ctx context.Context, orderID string) (*OrderView, error) {
	view, err := q.store.FindByID(ctx, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, errs.Wrap(err, "failed to find order")
	}

	return view, nil
}

func (q *orderQueriesImpl) Search(ctx context.Context, orderID string) (*OrderDetailView, error) {
	view, err := q.store.FindDetailByID(ctx, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, errs.Wrap(err, "failed to find order detail")
	}

	if order.Status(view.Status).IsTerminal() {
		return view, nil
	}

	// Best effort: a viewer actively watching an order gets the freshest
	// provider state, but a failed refresh never fails the read.
	if err := q.refresher.RefreshOrder(ctx, orderID); err != nil {
		q.logger.Warn("on-demand status refresh failed",
			"order_id", orderID,
			"error", err.Error())
		return view, nil
	}

	refreshed, err := q.store.FindDetailByID(ctx, orderID)
	if err != nil {
		return view, nil
	}

	return refreshed, nil
}
