package repository

import (
	"context"
	"errors"
	"time"

	"keypanel/internal/domain/order"
	"keypanel/internal/infra"
	"keypanel/internal/infra/db"
	"keypanel/internal/pkg/pgconv"
	"keypanel/internal/worker"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const uniqueViolationCode = "23505"

// terminalStatuses guards every mutation after insert: a terminal order row
// is immutable apart from notification reads.
const terminalStatuses = `('completed', 'partial', 'cancelled', 'failed')`

type OrderRepository struct {
	db db.DBTX
}

func NewOrderRepository(db db.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

func (r *OrderRepository) Create(ctx context.Context, tx db.DBTX, o *order.Order) error {
	const query = `
		INSERT INTO orders (order_id, key_id, service_id, quantity, link, status, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		o.ID(),
		o.KeyID(),
		o.ServiceID(),
		o.Quantity(),
		pgconv.StringPtrToPgtype(o.Link()),
		o.Status().String(),
		o.Message(),
		pgconv.TimeToPgtype(o.CreatedAt()),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("order id already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create order", err)
	}

	return nil
}

func (r *OrderRepository) MarkSubmitted(
	ctx context.Context,
	tx db.DBTX,
	orderID, providerOrderID string,
	raw []byte,
	message string,
	nextPollAt time.Time,
) error {
	const query = `
		UPDATE orders
		SET status = $2,
		    message = $3,
		    provider_order_id = $4,
		    raw_response = $5,
		    next_poll_at = $6
		WHERE order_id = $1
		  AND status = 'pending'`

	tag, err := tx.Exec(ctx, query,
		orderID,
		order.StatusProcessing.String(),
		message,
		providerOrderID,
		raw,
		pgconv.TimeToPgtype(nextPollAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to mark order submitted", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("order is no longer pending", nil, infra.KindConflict)
	}

	return nil
}

func (r *OrderRepository) MarkFailed(ctx context.Context, tx db.DBTX, orderID, message string, raw []byte) error {
	const query = `
		UPDATE orders
		SET status = $2,
		    message = $3,
		    raw_response = COALESCE($4, raw_response),
		    next_poll_at = NULL
		WHERE order_id = $1
		  AND status NOT IN ` + terminalStatuses

	tag, err := tx.Exec(ctx, query, orderID, order.StatusFailed.String(), message, raw)
	if err != nil {
		return infra.WrapRepoErr("failed to mark order failed", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("order is already terminal", nil, infra.KindConflict)
	}

	return nil
}

// pollTaskColumns is shared between the claim and the single-order lookup so
// both scan identically.
const pollTaskColumns = `
	o.order_id, o.status, o.provider_order_id, o.poll_attempts,
	o.quantity, o.link, s.name,
	c.id, c.base_url, c.secret_key`

func (r *OrderRepository) ClaimDue(
	ctx context.Context,
	tx db.DBTX,
	limit int32,
	now, leaseUntil time.Time,
) ([]worker.PollTask, error) {
	query := `
		WITH due AS (
			SELECT order_id
			FROM orders
			WHERE next_poll_at IS NOT NULL
			  AND next_poll_at <= $2
			  AND provider_order_id IS NOT NULL
			  AND status NOT IN ` + terminalStatuses + `
			ORDER BY next_poll_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE orders o
		SET next_poll_at = $3,
		    poll_attempts = o.poll_attempts + 1
		FROM due, keys k, provider_credentials c, services s
		WHERE o.order_id = due.order_id
		  AND k.id = o.key_id
		  AND c.id = k.credential_id
		  AND s.id = o.service_id
		RETURNING ` + pollTaskColumns

	rows, err := tx.Query(ctx, query, limit, pgconv.TimeToPgtype(now), pgconv.TimeToPgtype(leaseUntil))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim due orders", err)
	}
	defer rows.Close()

	var tasks []worker.PollTask
	for rows.Next() {
		task, err := scanPollTask(rows.Scan)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan claimed order", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read claimed orders", err)
	}

	return tasks, nil
}

func (r *OrderRepository) ApplyStatus(
	ctx context.Context,
	tx db.DBTX,
	orderID string,
	status order.Status,
	message string,
	raw []byte,
	nextPollAt *time.Time,
	now time.Time,
) (bool, error) {
	const query = `
		UPDATE orders
		SET status = $2,
		    message = $3,
		    raw_response = COALESCE($4, raw_response),
		    next_poll_at = $5,
		    completed_at = CASE WHEN $6::boolean THEN COALESCE(completed_at, $7) ELSE completed_at END
		WHERE order_id = $1
		  AND status NOT IN ` + terminalStatuses

	tag, err := tx.Exec(ctx, query,
		orderID,
		status.String(),
		message,
		raw,
		pgconv.TimePtrToPgtype(nextPollAt),
		status.SetsCompletedAt(),
		pgconv.TimeToPgtype(now),
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to apply order status", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *OrderRepository) Touch(ctx context.Context, tx db.DBTX, orderID string, raw []byte) error {
	const query = `
		UPDATE orders
		SET raw_response = COALESCE($2, raw_response)
		WHERE order_id = $1
		  AND status NOT IN ` + terminalStatuses

	if _, err := tx.Exec(ctx, query, orderID, raw); err != nil {
		return infra.WrapRepoErr("failed to touch order", err)
	}

	return nil
}

func (r *OrderRepository) FindPollTask(ctx context.Context, orderID string) (*worker.PollTask, error) {
	query := `
		SELECT ` + pollTaskColumns + `
		FROM orders o
		JOIN keys k ON k.id = o.key_id
		JOIN provider_credentials c ON c.id = k.credential_id
		JOIN services s ON s.id = o.service_id
		WHERE o.order_id = $1`

	row := r.db.QueryRow(ctx, query, orderID)
	task, err := scanPollTask(row.Scan)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order for polling", err)
	}

	return task, nil
}

func scanPollTask(scan func(dest ...any) error) (*worker.PollTask, error) {
	var (
		task            worker.PollTask
		status          string
		providerOrderID pgtype.Text
		link            pgtype.Text
	)

	err := scan(
		&task.OrderID,
		&status,
		&providerOrderID,
		&task.Attempts,
		&task.Quantity,
		&link,
		&task.ServiceName,
		&task.Credential.ID,
		&task.Credential.BaseURL,
		&task.Credential.Secret,
	)
	if err != nil {
		return nil, err
	}

	task.Status = order.Status(status)
	task.Link = pgconv.StringPtrFromPgtype(link)
	if providerOrderID.Valid {
		task.ProviderOrderID = providerOrderID.String
	}

	return &task, nil
}
