package readstore

import (
	"context"

	"keypanel/internal/infra"
	"keypanel/internal/infra/db"
	"keypanel/internal/pkg/pgconv"
	"keypanel/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgtype"
)

type OrderReadStore struct {
	db db.DBTX
}

func NewOrderReadStore(db db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: db}
}

func (s *OrderReadStore) FindByID(ctx context.Context, orderID string) (*queries.OrderView, error) {
	const query = `
		SELECT order_id, status, message, created_at, completed_at
		FROM orders
		WHERE order_id = $1`

	var (
		view        queries.OrderView
		createdAt   pgtype.Timestamptz
		completedAt pgtype.Timestamptz
	)

	err := s.db.QueryRow(ctx, query, orderID).Scan(
		&view.OrderID,
		&view.Status,
		&view.Message,
		&createdAt,
		&completedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order view", err)
	}

	view.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	view.CompletedAt = pgconv.TimePtrFromPgtype(completedAt)

	return &view, nil
}

func (s *OrderReadStore) FindDetailByID(ctx context.Context, orderID string) (*queries.OrderDetailView, error) {
	const query = `
		SELECT o.order_id, o.status, o.message, o.quantity, o.link,
		       o.provider_order_id,
		       k.value, k.category,
		       s.name, s.platform, s.service_type,
		       o.created_at, o.completed_at
		FROM orders o
		JOIN keys k ON k.id = o.key_id
		JOIN services s ON s.id = o.service_id
		WHERE o.order_id = $1`

	var (
		view            queries.OrderDetailView
		link            pgtype.Text
		providerOrderID pgtype.Text
		createdAt       pgtype.Timestamptz
		completedAt     pgtype.Timestamptz
	)

	err := s.db.QueryRow(ctx, query, orderID).Scan(
		&view.OrderID,
		&view.Status,
		&view.Message,
		&view.Quantity,
		&link,
		&providerOrderID,
		&view.Key.Value,
		&view.Key.Category,
		&view.Service.Name,
		&view.Service.Platform,
		&view.Service.Type,
		&createdAt,
		&completedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order detail view", err)
	}

	view.Link = pgconv.StringPtrFromPgtype(link)
	view.ProviderOrderID = pgconv.StringPtrFromPgtype(providerOrderID)
	view.CreatedAt = pgconv.TimeFromPgtype(createdAt)
	view.CompletedAt = pgconv.TimePtrFromPgtype(completedAt)

	return &view, nil
}
