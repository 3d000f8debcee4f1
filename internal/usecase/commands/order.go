package commands

import (
	"context"
	"errors"
	"log/slog"

	"keypanel/internal/domain/key"
	"keypanel/internal/domain/notification"
	"keypanel/internal/domain/order"
	svcdomain "keypanel/internal/domain/service"
	"keypanel/internal/infra"
	"keypanel/internal/infra/db"
	"keypanel/internal/infra/provider"
	"keypanel/internal/pkg/clock"
	"keypanel/internal/pkg/config"
	"keypanel/internal/pkg/errs"
	"keypanel/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrInvalidKey              = errs.New("invalid key")
	ErrQuotaExhausted          = errs.New("key quota exhausted")
	ErrQuotaExceeded           = errs.New("requested quantity exceeds remaining quota")
	ErrServiceUnavailable      = errs.New("service unavailable")
	ErrQuantityOutOfRange      = errs.New("quantity out of range")
	ErrKeyServiceMismatch      = errs.New("key is not valid for this service")
	ErrDatabaseOperationFailed = errs.New("database operation failed")
)

// maxIDAttempts bounds regeneration on order-id collisions. Eight random
// digits collide rarely enough that hitting the bound means something else is
// wrong.
const maxIDAttempts = 5

type CreateOrderInput struct {
	KeyValue  string
	ServiceID uuid.UUID
	Quantity  int32
	Link      *string
}

// CreateOrderResult reflects the initial submit outcome only; callers track
// further progress through the status endpoints.
type CreateOrderResult struct {
	OrderID string
	Status  order.Status
	Message string
}

type OrderCommands interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
}

type orderCommandsImpl struct {
	keyRepo          KeyRepository
	serviceRepo      ServiceRepository
	credentialRepo   CredentialRepository
	orderRepo        OrderRepository
	notificationRepo NotificationRepository
	gateway          ProviderGateway
	runner           shared.TxRunner
	clock            clock.Clock
	pollerCfg        config.PollerConfig
	logger           *slog.Logger
}

func NewOrderCommands(
	keyRepo KeyRepository,
	serviceRepo ServiceRepository,
	credentialRepo CredentialRepository,
	orderRepo OrderRepository,
	notificationRepo NotificationRepository,
	gateway ProviderGateway,
	runner shared.TxRunner,
	clock clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) OrderCommands {
	return &orderCommandsImpl{
		keyRepo:          keyRepo,
		serviceRepo:      serviceRepo,
		credentialRepo:   credentialRepo,
		orderRepo:        orderRepo,
		notificationRepo: notificationRepo,
		gateway:          gateway,
		runner:           runner,
		clock:            clock,
		pollerCfg:        cfg.Poller,
		logger:           logger,
	}
}

// CreateOrder validates the key and service, reserves quota, inserts the
// order and dispatches it to the key's bound provider. The order id is
// returned regardless of submit outcome so the caller can always track it.
// Reserved quota is never refunded, a failed submission still consumes it.
func (c *orderCommandsImpl) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	keyEntity, err := c.validateKey(ctx, input.KeyValue)
	if err != nil {
		return nil, err
	}

	serviceEntity, err := c.validateService(ctx, keyEntity, input.ServiceID, input.Quantity)
	if err != nil {
		return nil, err
	}

	cred, err := c.resolveCredential(ctx, keyEntity.CredentialID())
	if err != nil {
		return nil, err
	}

	if err := keyEntity.CanReserve(input.Quantity); err != nil {
		return nil, ErrQuotaExceeded
	}

	orderEntity, err := c.reserveAndInsert(ctx, keyEntity, serviceEntity, input)
	if err != nil {
		return nil, err
	}

	return c.submit(ctx, orderEntity, serviceEntity, cred), nil
}

func (c *orderCommandsImpl) validateKey(ctx context.Context, keyValue string) (*key.Key, error) {
	snap, err := c.keyRepo.FindByValue(ctx, keyValue)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrInvalidKey
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	keyEntity := key.ReconstructKey(
		snap.ID,
		snap.Value,
		snap.Category,
		snap.ServiceID,
		snap.CredentialID,
		snap.MaxQuantity,
		snap.UsedQuantity,
		snap.CreatedAt,
		snap.ExpiresAt,
	)

	if err := keyEntity.ValidateRedemption(c.clock.Now()); err != nil {
		if errors.Is(err, key.ErrQuotaExhausted) {
			return nil, ErrQuotaExhausted
		}
		return nil, ErrInvalidKey
	}

	return keyEntity, nil
}

func (c *orderCommandsImpl) validateService(
	ctx context.Context,
	keyEntity *key.Key,
	serviceID uuid.UUID,
	quantity int32,
) (*svcdomain.Service, error) {
	if !keyEntity.BoundTo(serviceID) {
		return nil, ErrKeyServiceMismatch
	}

	snap, err := c.serviceRepo.FindByID(ctx, serviceID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrServiceUnavailable
		}
		return nil, errs.Mark(err, ErrDatabaseOperationFailed)
	}

	serviceEntity := svcdomain.ReconstructService(
		snap.ID,
		snap.Name,
		snap.Platform,
		snap.ProviderCode,
		snap.MinQuantity,
		snap.MaxQuantity,
		snap.CredentialID,
		snap.Active,
	)

	if err := serviceEntity.ValidateOrder(quantity); err != nil {
		switch err {
		case svcdomain.ErrQuantityOutOfRange:
			return nil, ErrQuantityOutOfRange
		default:
			return nil, ErrServiceUnavailable
		}
	}

	return serviceEntity, nil
}

func (c *orderCommandsImpl) resolveCredential(ctx context.Context, credentialID uuid.UUID) (provider.Credential, error) {
	snap, err := c.credentialRepo.FindByID(ctx, credentialID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return provider.Credential{}, ErrServiceUnavailable
		}
		return provider.Credential{}, errs.Mark(err, ErrDatabaseOperationFailed)
	}
	if !snap.Active {
		return provider.Credential{}, ErrServiceUnavailable
	}

	return provider.Credential{
		ID:      snap.ID,
		BaseURL: snap.BaseURL,
		Secret:  snap.Secret,
	}, nil
}

// reserveAndInsert couples the quota increment and the order insert in one
// transaction: if the insert fails, no quota increment persists.
func (c *orderCommandsImpl) reserveAndInsert(
	ctx context.Context,
	keyEntity *key.Key,
	serviceEntity *svcdomain.Service,
	input CreateOrderInput,
) (*order.Order, error) {
	var orderEntity *order.Order

	err := c.runner.RunInTx(ctx, func(tx db.DBTX) error {
		if err := c.keyRepo.Reserve(ctx, tx, keyEntity.ID(), input.Quantity); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return ErrQuotaExceeded
			}
			return errs.Mark(err, ErrDatabaseOperationFailed)
		}

		for attempt := 0; attempt < maxIDAttempts; attempt++ {
			candidate, err := order.NewOrder(
				order.NewID(),
				keyEntity.ID(),
				serviceEntity.ID(),
				input.Quantity,
				input.Link,
				c.clock.Now(),
			)
			if err != nil {
				return errs.Mark(err, ErrQuantityOutOfRange)
			}

			err = c.orderRepo.Create(ctx, tx, candidate)
			if err == nil {
				orderEntity = candidate
				return nil
			}
			if !infra.IsKind(err, infra.KindDuplicateKey) {
				return errs.Mark(err, ErrDatabaseOperationFailed)
			}
		}

		return errs.Mark(errs.New("order id generation exhausted retries"), ErrDatabaseOperationFailed)
	})
	if err != nil {
		return nil, err
	}

	return orderEntity, nil
}

// submit dispatches the freshly inserted order. Submit failures are terminal:
// the order is marked failed and reported, never retried, to avoid
// double-charging the quota already reserved.
func (c *orderCommandsImpl) submit(
	ctx context.Context,
	orderEntity *order.Order,
	serviceEntity *svcdomain.Service,
	cred provider.Credential,
) *CreateOrderResult {
	link := ""
	if orderEntity.Link() != nil {
		link = *orderEntity.Link()
	}

	result, err := c.gateway.SubmitOrder(ctx, cred, serviceEntity.ProviderCode(), link, orderEntity.Quantity())
	if err != nil {
		c.logger.Error("provider submit unreachable",
			"order_id", orderEntity.ID(),
			"error", err.Error())
		message := "Order could not be delivered to the provider"
		c.failOrder(ctx, orderEntity, serviceEntity, message, nil)
		return &CreateOrderResult{
			OrderID: orderEntity.ID(),
			Status:  order.StatusFailed,
			Message: message,
		}
	}

	if result.Rejected() {
		c.logger.Warn("provider rejected order",
			"order_id", orderEntity.ID(),
			"provider_error", result.ErrorMessage)
		message := "Provider rejected the order: " + result.ErrorMessage
		c.failOrder(ctx, orderEntity, serviceEntity, message, result.Raw)
		return &CreateOrderResult{
			OrderID: orderEntity.ID(),
			Status:  order.StatusFailed,
			Message: message,
		}
	}

	firstPollAt := c.clock.Now().Add(c.pollerCfg.InitialDelay)
	message := "Order submitted to provider"

	err = c.runner.RunInTx(ctx, func(tx db.DBTX) error {
		return c.orderRepo.MarkSubmitted(ctx, tx, orderEntity.ID(), result.ProviderOrderID, result.Raw, message, firstPollAt)
	})
	if err != nil {
		// The provider accepted the order but the local update failed; the
		// row stays pending and visible for manual reconciliation.
		c.logger.Error("failed to record submit outcome",
			"order_id", orderEntity.ID(),
			"provider_order_id", result.ProviderOrderID,
			"error", err.Error())
		return &CreateOrderResult{
			OrderID: orderEntity.ID(),
			Status:  order.StatusPending,
			Message: "Order received",
		}
	}

	return &CreateOrderResult{
		OrderID: orderEntity.ID(),
		Status:  order.StatusProcessing,
		Message: message,
	}
}

func (c *orderCommandsImpl) failOrder(
	ctx context.Context,
	orderEntity *order.Order,
	serviceEntity *svcdomain.Service,
	message string,
	raw []byte,
) {
	snapshot := notification.OrderSnapshot{
		OrderID:     orderEntity.ID(),
		ServiceName: serviceEntity.Name(),
		Quantity:    orderEntity.Quantity(),
		Link:        orderEntity.Link(),
		Status:      order.StatusFailed.String(),
		Message:     message,
	}

	err := c.runner.RunInTx(ctx, func(tx db.DBTX) error {
		if err := c.orderRepo.MarkFailed(ctx, tx, orderEntity.ID(), message, raw); err != nil {
			return err
		}
		return c.notificationRepo.Create(ctx, tx, NotificationParams{
			Type:      string(notification.TypeOrderFailed),
			Title:     "Order failed",
			Message:   "Order " + orderEntity.ID() + " failed: " + message,
			OrderID:   orderEntity.ID(),
			OrderData: snapshot.Encode(),
		})
	})
	if err != nil {
		c.logger.Error("failed to record order failure",
			"order_id", orderEntity.ID(),
			"error", err.Error())
	}
}
